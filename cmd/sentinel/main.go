// Package main is the entrypoint for sentinel, the standalone security
// verification runner. It runs the same adversarial scenario catalog as
// 'tokenops verify' but is built for CI and scheduled use: configuration
// comes from flags and environment, output is a JSON report on stdout, and
// the exit code is the verdict.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/config"
	"github.com/helios-labs/tokenops/internal/executor"
	"github.com/helios-labs/tokenops/internal/harness"
	"github.com/helios-labs/tokenops/internal/manifest"
	"github.com/helios-labs/tokenops/internal/node"
	"github.com/helios-labs/tokenops/internal/observability"
	"github.com/helios-labs/tokenops/internal/operation"
	"github.com/helios-labs/tokenops/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitPassed = 0
	exitFailed = 1
	exitError  = 2
)

func main() {
	report, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: %v\n", err)
		os.Exit(exitError)
	}
	if !report.OverallPassed {
		os.Exit(exitFailed)
	}
	os.Exit(exitPassed)
}

func run() (*models.SecurityReport, error) {
	var (
		configPath = flag.String("config", "", "config file (default: ~/.tokenops/config.yaml)")
		network    = flag.String("network", "", "network name (overrides config)")
		delayFlag  = flag.String("delay", "", "inter-scenario delay, e.g. 5s (overrides config)")
		outPath    = flag.String("out", "", "write the JSON report to a file instead of stdout")
		showVer    = flag.Bool("version", false, "show version")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("sentinel %s (commit: %s, built: %s)\n", version, commit, date)
		return &models.SecurityReport{OverallPassed: true}, nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *network != "" {
		cfg.Network = *network
	}

	net, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, err
	}
	if cfg.Token.PackageID == "" {
		return nil, fmt.Errorf("no token package configured: set token.packageId in the config")
	}
	if cfg.Signer.Address == "" {
		return nil, fmt.Errorf("no operator signer configured: set signer.address in the config")
	}

	timeout := 30 * time.Second
	if net.Timeout != "" {
		timeout, err = time.ParseDuration(net.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", net.Timeout, err)
		}
	}

	delay, err := time.ParseDuration(cfg.Harness.Delay)
	if err != nil {
		return nil, fmt.Errorf("invalid harness delay %q: %w", cfg.Harness.Delay, err)
	}
	if *delayFlag != "" {
		delay, err = time.ParseDuration(*delayFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid -delay %q: %w", *delayFlag, err)
		}
	}

	rpc := node.NewRPCClient(net.RPC, timeout)

	var fallback capability.Fallback
	if cfg.ManifestPath != "" {
		m, err := manifest.Load(cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		fallback = m
	}
	locator := capability.NewLocator(rpc, cfg.Token.PackageID, cfg.Token.Module, fallback)

	layout, err := operation.NewCallLayout(cfg.Token.LayoutVersion)
	if err != nil {
		return nil, err
	}
	builder := operation.NewBuilder(cfg.Token.PackageID, cfg.Token.Module, layout)

	// Adversarial submissions are audit entries too; every attempt the
	// harness makes is recorded alongside legitimate operations, through
	// the same backend selection as the CLI. A broken backend aborts the
	// run instead of degrading to a process stream.
	logger, closeLogger, err := observability.OpenAuditBackend(
		cfg.Audit.Backend, cfg.Audit.SQLitePath, cfg.Audit.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if closeLogger != nil {
		defer closeLogger()
	}
	if pl, ok := logger.(*observability.PersistentLogger); ok {
		pl.WithWriter(os.Stderr)
	}

	operator := executor.New(cfg.Signer.Address, rpc, rpc, executor.Options{
		GasObjectID: cfg.Signer.GasObject,
		Timeout:     timeout,
		Logger:      logger,
	})

	var attacker *executor.Executor
	if cfg.Attacker.Address != "" {
		attacker = executor.New(cfg.Attacker.Address, rpc, rpc, executor.Options{
			GasObjectID: cfg.Attacker.GasObject,
			Timeout:     timeout,
			Logger:      logger,
		})
	} else {
		log.Println("WARNING: no attacker identity configured; adversarial scenarios will be skipped")
	}

	env := &harness.Env{
		Network:      cfg.Network,
		PackageID:    cfg.Token.PackageID,
		Operator:     operator,
		Attacker:     attacker,
		OperatorAddr: cfg.Signer.Address,
		Builder:      builder,
		Locator:      locator,
		Query:        rpc,
		Decimals:     cfg.Token.Decimals,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("sentinel %s: running %d scenarios against %s (%s)", version, len(harness.Catalog()), cfg.Network, net.RPC)
	report, err := harness.New(env, harness.Catalog(), delay).Run(ctx)
	if err != nil {
		return nil, err
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	log.Printf("sentinel: passed=%d failed=%d vulnerabilities=%d skipped=%d informational=%d overall=%v",
		report.Passed, report.Failed, report.Vulnerabilities, report.Skipped, report.Informational, report.OverallPassed)
	return report, nil
}
