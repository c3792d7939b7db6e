// Package main is the entrypoint for the tokenops CLI: capability-gated
// token ledger operations (mint, burn, capability transfer, admin handoff,
// pause control) plus the security verification harness.
package main

import (
	"fmt"
	"os"

	"github.com/helios-labs/tokenops/internal/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "tokenops: internal error: %v\n", r)
			os.Exit(cli.ExitInternal)
		}
	}()

	os.Exit(cli.New().Execute())
}
