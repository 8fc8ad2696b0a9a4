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
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/pegdrop"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/sdk/perf"
	"github.com/zintix-labs/pegdrop/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	column    int
	rounds    int
	worker    int
	seed      string
	format    string
	progress  bool
	pprofmode string
}

// 大量模擬：落點分布、RTP 與 Binomial 適合度。
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}
	mode, err := perf.ParseMode(cfg.pprofmode)
	if err != nil {
		return err
	}
	sim, err := pegdrop.NewSimulator(pegdrop.Default(), cfg.seed, cfg.worker)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return perf.RunPProf(func() error {
		if cfg.format == "" {
			green := "\033[1;32m"
			reset := "\033[0m"
			p := message.NewPrinter(language.English)
			p.Fprintf(out, "%s[WORKERS:%d] [COLUMN:%d] [ROUNDS:%d] [SEED:%s]%s\n", green, cfg.worker, cfg.column, cfg.rounds, sim.BaseSeed(), reset)
		}
		st, used, err := sim.Sim(ctx, cfg.column, cfg.rounds, cfg.progress)
		if err != nil {
			return err
		}
		if cfg.format == "" {
			st.StdOut(out, used)
			return nil
		}
		r, _ := stats.RenderFor(cfg.format)
		return st.WriteWith(out, r)
	}, mode, "")
}

func parseFlags(args []string) (*config, error) {
	cfg := new(config)
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.IntVar(&cfg.column, "column", drop.CenterColumn, "drop column 0-12")
	fs.IntVar(&cfg.rounds, "rounds", 1000000, "number of rounds")
	fs.IntVar(&cfg.worker, "worker", 1, "number of workers")
	fs.StringVar(&cfg.seed, "seed", "", "base seed; random when empty")
	fs.StringVar(&cfg.format, "format", "", "report format: '' (table), json, yaml")
	fs.BoolVar(&cfg.progress, "pb", true, "show progress bar")
	fs.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *config) valid() error {
	if cfg.worker < 1 {
		return errs.InvalidInput("value err : workers must > 0")
	}
	if cfg.rounds < 1 {
		return errs.InvalidInput("value err : rounds must > 0")
	}
	if err := drop.ValidateColumn(cfg.column); err != nil {
		return err
	}
	if cfg.format != "" {
		if _, ok := stats.RenderFor(cfg.format); !ok {
			return errs.InvalidInput("value err : unknown format %q", cfg.format)
		}
	}
	return nil
}
