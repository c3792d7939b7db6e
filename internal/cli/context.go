package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/config"
	"github.com/helios-labs/tokenops/internal/executor"
	"github.com/helios-labs/tokenops/internal/manifest"
	"github.com/helios-labs/tokenops/internal/node"
	"github.com/helios-labs/tokenops/internal/observability"
	"github.com/helios-labs/tokenops/internal/operation"
)

// opsContext is the explicit per-invocation context object: configuration,
// node client, capability locator, builder, and the operator's executor.
// Constructed once per command and passed explicitly; there are no package
// singletons, so tests construct as many independent contexts as they like.
type opsContext struct {
	cfg *config.Config
	net config.NetworkConfig

	rpc      *node.RPCClient
	manifest *manifest.Manifest
	locator  *capability.Locator
	builder  *operation.Builder
	operator *executor.Executor
	logger   observability.OperationLogger

	closeLogger func() error
}

// newOpsContext assembles the invocation context from configuration. The
// deployment manifest is optional; when a path is configured, an invalid
// manifest fails the invocation instead of silently degrading discovery.
func (c *CLI) newOpsContext() (*opsContext, error) {
	o := &opsContext{cfg: c.cfg}

	net, err := c.cfg.ActiveNetwork()
	if err != nil {
		return nil, err
	}
	o.net = net

	if c.cfg.Token.PackageID == "" {
		return nil, fmt.Errorf("no token package configured: set token.packageId in the config")
	}

	timeout, err := parseTimeout(net.Timeout)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", c.cfg.Network, err)
	}
	o.rpc = node.NewRPCClient(net.RPC, timeout)

	if c.cfg.ManifestPath != "" {
		m, err := manifest.Load(c.cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		o.manifest = m
	}

	var fallback capability.Fallback
	if o.manifest != nil {
		fallback = o.manifest
	}
	o.locator = capability.NewLocator(o.rpc, c.cfg.Token.PackageID, c.cfg.Token.Module, fallback)
	o.locator.Warnf = func(format string, args ...interface{}) {
		c.errorf("warning: "+format+"\n", args...)
	}

	layout, err := operation.NewCallLayout(c.cfg.Token.LayoutVersion)
	if err != nil {
		return nil, err
	}
	o.builder = operation.NewBuilder(c.cfg.Token.PackageID, c.cfg.Token.Module, layout)
	o.builder.MaxSupply = amount.Amount(c.cfg.Token.MaxSupply)

	logger, closeLogger, err := c.openAuditLogger()
	if err != nil {
		return nil, err
	}
	o.logger = logger
	o.closeLogger = closeLogger

	if c.cfg.Signer.Address == "" {
		return nil, fmt.Errorf("no operator signer configured: set signer.address in the config")
	}
	o.operator = executor.New(c.cfg.Signer.Address, o.rpc, o.rpc, executor.Options{
		GasObjectID: c.cfg.Signer.GasObject,
		Timeout:     timeout,
		Logger:      logger,
	})

	return o, nil
}

// attackerExecutor builds an executor for the adversarial identity, or nil
// when none is configured. Used only by the verify command.
func (o *opsContext) attackerExecutor(timeout time.Duration) *executor.Executor {
	if o.cfg.Attacker.Address == "" {
		return nil
	}
	return executor.New(o.cfg.Attacker.Address, o.rpc, o.rpc, executor.Options{
		GasObjectID: o.cfg.Attacker.GasObject,
		Timeout:     timeout,
		Logger:      o.logger,
	})
}

// Close releases the audit backend, if any.
func (o *opsContext) Close() {
	if o.closeLogger != nil {
		if err := o.closeLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close audit log: %v\n", err)
		}
	}
}

func (o *opsContext) timeout() time.Duration {
	d, err := parseTimeout(o.net.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// openAuditLogger selects the audit backend. The persistent backends fail
// fast on open; audit entries must survive process restart, so a broken
// backend is a configuration error, not a downgrade to stdout.
func (c *CLI) openAuditLogger() (observability.OperationLogger, func() error, error) {
	logger, closeLogger, err := observability.OpenAuditBackend(
		c.cfg.Audit.Backend, c.cfg.Audit.SQLitePath, c.cfg.Audit.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if pl, ok := logger.(*observability.PersistentLogger); ok && c.debug {
		pl.WithWriter(os.Stderr)
	}
	return logger, closeLogger, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}
