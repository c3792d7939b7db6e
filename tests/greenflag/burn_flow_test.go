package greenflag

import (
	"context"
	"testing"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/executor"
	"github.com/helios-labs/tokenops/internal/operation"
)

// TestBurn_WholeObject proves burning a coin without an amount consumes
// the whole object and reduces supply by its full balance.
func TestBurn_WholeObject(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	coinID := w.ledger.SeedCoin(operator, 750)

	treasury, err := w.locator.ResolveOwned(ctx, operator, capability.KindTreasury)
	if err != nil {
		t.Fatalf("resolve treasury: %v", err)
	}
	pause, err := w.locator.ResolveShared(ctx, capability.KindPauseState)
	if err != nil {
		t.Fatalf("resolve pause: %v", err)
	}

	req, err := w.builder.BuildBurn(treasury, pause, operation.CoinRef{ObjectID: coinID, Balance: 750}, nil)
	if err != nil {
		t.Fatalf("BuildBurn: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("burn rejected: %s", result.Raw)
	}

	if got := w.ledger.Supply(); got != 0 {
		t.Errorf("supply = %d, want 0", got)
	}
	balance, _ := w.ledger.Balance(ctx, operator, coinType)
	if balance != 0 {
		t.Errorf("balance = %d after whole-object burn", balance)
	}
}

// TestBurn_SplitThenBurn proves a partial burn consumes exactly the
// requested base units and leaves the remainder on the original coin.
func TestBurn_SplitThenBurn(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	coinID := w.ledger.SeedCoin(operator, 1000)

	treasury, _ := w.locator.ResolveOwned(ctx, operator, capability.KindTreasury)
	pause, _ := w.locator.ResolveShared(ctx, capability.KindPauseState)

	amt := amount.Amount(300)
	req, err := w.builder.BuildBurn(treasury, pause, operation.CoinRef{ObjectID: coinID, Balance: 1000}, &amt)
	if err != nil {
		t.Fatalf("BuildBurn: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("burn rejected: %s", result.Raw)
	}

	if got := w.ledger.Supply(); got != 700 {
		t.Errorf("supply = %d, want 700", got)
	}
	balance, _ := w.ledger.Balance(ctx, operator, coinType)
	if balance != 700 {
		t.Errorf("remaining balance = %d, want 700", balance)
	}
}

// TestPause_AdminCanToggle proves the registry administrator can pause and
// resume with recorded reasons.
func TestPause_AdminCanToggle(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	registry, err := w.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	if err != nil {
		t.Fatalf("resolve registry: %v", err)
	}
	pause, err := w.locator.ResolveShared(ctx, capability.KindPauseState)
	if err != nil {
		t.Fatalf("resolve pause: %v", err)
	}

	req, err := w.builder.BuildPause(registry, pause, "scheduled maintenance")
	if err != nil {
		t.Fatalf("BuildPause: %v", err)
	}
	result, err := w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("pause rejected: %s", result.Raw)
	}
	if !w.ledger.Paused() {
		t.Fatal("ledger not paused")
	}

	// The reason lands on the shared pause state.
	obj, err := w.ledger.GetObject(ctx, pause.ObjectID)
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if obj.Fields["reason"] != "scheduled maintenance" {
		t.Errorf("recorded reason = %v", obj.Fields["reason"])
	}

	req, err = w.builder.BuildUnpause(registry, pause, "maintenance complete")
	if err != nil {
		t.Fatalf("BuildUnpause: %v", err)
	}
	result, err = w.operator.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("unpause rejected: %s", result.Raw)
	}
	if w.ledger.Paused() {
		t.Error("ledger still paused")
	}
}
