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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/zintix-labs/pegdrop"
	"gopkg.in/yaml.v3"
)

const (
	exitOK       = 0
	exitMismatch = 1
	exitUsage    = 2
)

// 離線驗證：以揭露後的四個值重算，並與公布值逐欄比對。
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var rv pegdrop.Reveal
	var pub pegdrop.Published
	fs.StringVar(&rv.ServerSeed, "server-seed", "", "revealed server seed (required)")
	fs.StringVar(&rv.ClientSeed, "client-seed", "", "client seed (required)")
	fs.StringVar(&rv.Nonce, "nonce", "", "round nonce (required)")
	fs.IntVar(&rv.DropColumn, "column", -1, "drop column 0-12 (required)")
	fs.StringVar(&pub.CommitHex, "commit", "", "published commit hex")
	fs.StringVar(&pub.CombinedSeed, "combined", "", "published combined seed")
	fs.StringVar(&pub.PegMapHash, "hash", "", "published peg map hash (pegmap/v1 or legacy-json)")
	fs.Func("bin", "published bin index", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		pub.BinIndex = &n
		return nil
	})
	fs.Func("multiplier", "published payout multiplier", func(s string) error {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		pub.PayoutMultiplier = &f
		return nil
	})
	format := fs.String("format", "json", "output format: json|yaml")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if rv.ServerSeed == "" || rv.ClientSeed == "" || rv.Nonce == "" || rv.DropColumn < 0 {
		fmt.Fprintln(stderr, "server-seed, client-seed, nonce and column are required")
		fs.Usage()
		return exitUsage
	}

	rep, err := pegdrop.Audit(rv, pub)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err := write(stdout, *format, rep); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if !rep.OK {
		return exitMismatch
	}
	return exitOK
}

func write(w io.Writer, format string, rep *pegdrop.AuditReport) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rep)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
