// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/config"
	"github.com/zintix-labs/pegdrop/round"
	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/core"
	"github.com/zintix-labs/pegdrop/server"
	"github.com/zintix-labs/pegdrop/server/app"
	"github.com/zintix-labs/pegdrop/server/logger"
	"github.com/zintix-labs/pegdrop/server/svrcfg"
	"github.com/zintix-labs/pegdrop/storage/memstore"
	"github.com/zintix-labs/pegdrop/storage/sqlite"
)

// 回合伺服器入口：設定檔 → 環境變數 → 旗標，依序覆寫。
func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("svr", flag.ContinueOnError)
	path := fs.String("config", "", "yaml config path (optional)")
	addr := fs.String("addr", "", "listen address, overrides config")
	logMode := fs.String("log-mode", "", "log mode: dev|prod|silence, overrides config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logMode != "" {
		cfg.LogMode = *logMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return err
	}
	log, ah := logger.NewAsync(4096, mode)

	engine, err := pegdrop.New(core.Default(), board.Encoding(cfg.Encoding))
	if err != nil {
		ah.Close()
		return err
	}
	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		ah.Close()
		return err
	}
	svc, err := round.NewService(store, engine, log, round.WithListLimit(cfg.ListLimit))
	if err != nil {
		_ = closeStore(ctx)
		ah.Close()
		return err
	}
	sCfg := &svrcfg.SvrCfg{
		Addr:        cfg.Addr,
		Log:         log,
		Rounds:      svc,
		Engine:      engine,
		CORSOrigins: cfg.CORSOrigins,
		SimWorkers:  4,
	}
	log.Info("[pegdrop] storage ready", "driver", cfg.Storage.Driver, "encoding", cfg.Encoding)
	return server.Run(ctx, sCfg, func(context.Context) error { ah.Close(); return nil }, closeStore)
}

// openStore 依設定選擇儲存層，並回傳對應的收尾函數。
func openStore(ctx context.Context, sc config.Storage) (round.Store, app.Closer, error) {
	switch sc.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func(context.Context) error { return st.Close() }, nil
	default:
		return memstore.New(), func(context.Context) error { return nil }, nil
	}
}
