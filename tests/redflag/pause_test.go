package redflag

import (
	"context"
	"testing"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	opserrors "github.com/helios-labs/tokenops/internal/errors"
	"github.com/helios-labs/tokenops/internal/executor"
	"github.com/helios-labs/tokenops/internal/operation"
)

// pauseLedger puts the world into the paused state through the real pause
// flow, failing the test if the toggle itself is rejected.
func pauseLedger(t *testing.T, w *world, ctx context.Context) {
	t.Helper()
	registry, _ := w.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	pause, _ := w.locator.ResolveShared(ctx, capability.KindPauseState)

	req, err := w.builder.BuildPause(registry, pause, "incident response")
	if err != nil {
		t.Fatalf("BuildPause: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit pause: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("pause rejected: %s", result.Raw)
	}
}

// TestPause_BlocksMint proves a paused ledger rejects mints even from the
// legitimate treasury holder, and reports the pause as the cause.
//
// Red-Flag: The system MUST refuse mutating operations while paused.
func TestPause_BlocksMint(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	pauseLedger(t, w, ctx)

	treasury, _ := w.locator.ResolveOwned(ctx, operator, capability.KindTreasury)
	registry, _ := w.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	pause, _ := w.locator.ResolveShared(ctx, capability.KindPauseState)

	req, err := w.builder.BuildMint(treasury, registry, pause, 1_000, "0xrecipient")
	if err != nil {
		t.Fatalf("BuildMint: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != executor.StatusFailure {
		t.Fatal("mint accepted while paused")
	}
	if result.ErrorKind != opserrors.KindPauseActive {
		t.Errorf("error kind = %s, want %s", result.ErrorKind, opserrors.KindPauseActive)
	}
	if got := w.ledger.Supply(); got != 0 {
		t.Errorf("supply = %d, want 0", got)
	}
}

// TestPause_BlocksBurn proves burns are equally gated on the pause state.
func TestPause_BlocksBurn(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	coinID := w.ledger.SeedCoin(operator, 500)
	pauseLedger(t, w, ctx)

	treasury, _ := w.locator.ResolveOwned(ctx, operator, capability.KindTreasury)
	pause, _ := w.locator.ResolveShared(ctx, capability.KindPauseState)

	req, err := w.builder.BuildBurn(treasury, pause, operation.CoinRef{ObjectID: coinID, Balance: 500}, nil)
	if err != nil {
		t.Fatalf("BuildBurn: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != executor.StatusFailure {
		t.Fatal("burn accepted while paused")
	}
	if result.ErrorKind != opserrors.KindPauseActive {
		t.Errorf("error kind = %s, want %s", result.ErrorKind, opserrors.KindPauseActive)
	}
	balance, _ := w.ledger.Balance(ctx, operator, coinType)
	if balance != 500 {
		t.Errorf("balance = %d, want 500", balance)
	}
}

// TestPause_UnpauseRestoresOperations proves the guard lifts completely once
// the admin unpauses.
func TestPause_UnpauseRestoresOperations(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	pauseLedger(t, w, ctx)

	registry, _ := w.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	pause, _ := w.locator.ResolveShared(ctx, capability.KindPauseState)

	req, err := w.builder.BuildUnpause(registry, pause, "incident resolved")
	if err != nil {
		t.Fatalf("BuildUnpause: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit unpause: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("unpause rejected: %s", result.Raw)
	}

	treasury, _ := w.locator.ResolveOwned(ctx, operator, capability.KindTreasury)
	req, err = w.builder.BuildMint(treasury, registry, pause, amount.Amount(2_000), "0xrecipient")
	if err != nil {
		t.Fatalf("BuildMint: %v", err)
	}
	result, err = w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit mint: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("mint rejected after unpause: %s", result.Raw)
	}
	if got := w.ledger.Supply(); got != 2_000 {
		t.Errorf("supply = %d, want 2000", got)
	}
}
