package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/errors"
	"github.com/helios-labs/tokenops/internal/node"
	"github.com/helios-labs/tokenops/internal/observability"
	"github.com/helios-labs/tokenops/internal/operation"
)

const (
	testPackage  = "0xpkg"
	testModule   = "managed_token"
	testOperator = "0xoperator"
	testAttacker = "0xattacker"
)

type fixture struct {
	mock     *node.Mock
	builder  *operation.Builder
	locator  *capability.Locator
	operator *Executor
	logger   *observability.JSONLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mock := node.NewMock(testPackage, testModule, testPackage+"::"+testModule+"::TOKEN", 0)
	mock.Bootstrap(testOperator, false)
	mock.FundGas(testOperator, 1_000_000)

	layout, err := operation.NewCallLayout(operation.LayoutV1)
	if err != nil {
		t.Fatalf("NewCallLayout: %v", err)
	}

	logger := observability.NewJSONLogger(&strings.Builder{})
	return &fixture{
		mock:    mock,
		builder: operation.NewBuilder(testPackage, testModule, layout),
		locator: capability.NewLocator(mock, testPackage, testModule, nil),
		operator: New(testOperator, mock, mock, Options{
			GasObjectID: mock.GasObjectID(testOperator),
			Logger:      logger,
		}),
		logger: logger,
	}
}

func (f *fixture) mintRequest(t *testing.T, amt uint64, recipient string) *operation.Request {
	t.Helper()
	ctx := context.Background()
	treasury, err := f.locator.ResolveOwned(ctx, testOperator, capability.KindTreasury)
	if err != nil {
		t.Fatalf("resolve treasury: %v", err)
	}
	registry, err := f.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	if err != nil {
		t.Fatalf("resolve registry: %v", err)
	}
	pause, err := f.locator.ResolveShared(ctx, capability.KindPauseState)
	if err != nil {
		t.Fatalf("resolve pause: %v", err)
	}
	req, err := f.builder.BuildMint(treasury, registry, pause, amount.Amount(amt), recipient)
	if err != nil {
		t.Fatalf("BuildMint: %v", err)
	}
	return req
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(t)
	req := f.mintRequest(t, 1000, "0xrecipient")

	result, err := f.operator.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %s: %s", result.Status, result.Raw)
	}
	if result.Digest == "" {
		t.Error("no digest")
	}
	if result.Err() != nil {
		t.Errorf("Err() = %v for success", result.Err())
	}
	if f.mock.Supply() != 1000 {
		t.Errorf("supply = %d", f.mock.Supply())
	}
}

// A chain-level rejection is a failure Result with nil error; transport
// failures are the only errors. The two must never be conflated.
func TestSubmitRejectionIsResultNotError(t *testing.T) {
	f := newFixture(t)
	req := f.mintRequest(t, 1000, "0xrecipient")

	// The attacker holds no capabilities and signs with the operator's
	// treasury cap reference.
	f.mock.FundGas(testAttacker, 1_000_000)
	attacker := New(testAttacker, f.mock, f.mock, Options{GasObjectID: f.mock.GasObjectID(testAttacker)})

	result, err := attacker.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("rejection surfaced as transport error: %v", err)
	}
	if result.Status != StatusFailure {
		t.Fatal("unauthorized mint went through")
	}
	if result.ErrorKind != errors.KindAuthorizationDenied {
		t.Errorf("error kind = %s, want %s", result.ErrorKind, errors.KindAuthorizationDenied)
	}
	if result.Raw == "" {
		t.Error("raw ledger message must be preserved")
	}

	rerr := result.Err()
	var rejected *errors.ErrLedgerRejected
	if !stderrors.As(rerr, &rejected) {
		t.Fatalf("Err() = %T, want ErrLedgerRejected", rerr)
	}
	if len(rejected.Capabilities) == 0 {
		t.Error("rejection must name the capabilities used")
	}
	if rejected.Operation != string(operation.KindMint) {
		t.Errorf("operation = %s", rejected.Operation)
	}
	if f.mock.Supply() != 0 {
		t.Errorf("supply = %d after rejected mint", f.mock.Supply())
	}
}

func TestSubmitInsufficientGas(t *testing.T) {
	f := newFixture(t)
	req := f.mintRequest(t, 1000, "0xrecipient")

	broke := New("0xbroke", f.mock, f.mock, Options{})
	// 0xbroke owns nothing, but gas is checked first: reuse a request whose
	// capability refs belong to the operator to hit the gas path.
	result, err := broke.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != StatusFailure {
		t.Fatal("expected failure")
	}
	if result.ErrorKind != errors.KindInsufficientGas {
		t.Errorf("error kind = %s, want %s", result.ErrorKind, errors.KindInsufficientGas)
	}
}

func TestSubmitRefreshesGasVersion(t *testing.T) {
	f := newFixture(t)
	req := f.mintRequest(t, 1000, "0xrecipient")

	before := f.operator.GasVersion()
	if _, err := f.operator.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	after := f.operator.GasVersion()
	if after <= before {
		t.Errorf("gas version not re-observed: before=%d after=%d", before, after)
	}
}

func TestVerifyLayoutAcceptsV1(t *testing.T) {
	f := newFixture(t)
	req := f.mintRequest(t, 1000, "0xrecipient")

	if err := f.operator.VerifyLayout(context.Background(), req); err != nil {
		t.Fatalf("VerifyLayout: %v", err)
	}
}

func TestVerifyLayoutRejectsWrongArity(t *testing.T) {
	f := newFixture(t)
	req := f.mintRequest(t, 1000, "0xrecipient")
	// Drop one argument to simulate a layout mismatch.
	req.Steps[0].Args = req.Steps[0].Args[:3]

	if err := f.operator.VerifyLayout(context.Background(), req); err == nil {
		t.Fatal("dry run accepted a mismatched layout")
	}
}

func TestMapRawError(t *testing.T) {
	abort := func(fn string, code int) string {
		return fmt.Sprintf("MoveAbort in 0xpkg::managed_token::%s, code %d", fn, code)
	}

	tests := []struct {
		raw  string
		want errors.LedgerErrorKind
	}{
		{abort("mint", node.AbortNotAuthorized), errors.KindAuthorizationDenied},
		{abort("mint", node.AbortPaused), errors.KindPauseActive},
		{abort("mint", node.AbortSupplyExceeded), errors.KindSupplyExceeded},
		{abort("mint", node.AbortOverflow), errors.KindArithmeticOverflow},
		{"IncorrectSigner: object 0x1 is not owned by 0x2", errors.KindAuthorizationDenied},
		{"InsufficientGas: balance 0 below required 1000", errors.KindInsufficientGas},
		{"ObjectNotFound: 0xdead", errors.KindObjectNotFound},
		{"some novel failure mode", errors.KindUnknown},
		{"", errors.KindUnknown},
	}
	for _, tt := range tests {
		if got := MapRawError(tt.raw); got != tt.want {
			t.Errorf("MapRawError(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestSubmitSerialized(t *testing.T) {
	f := newFixture(t)

	ctx := context.Background()
	treasury, err := f.locator.ResolveOwned(ctx, testOperator, capability.KindTreasury)
	if err != nil {
		t.Fatalf("resolve treasury: %v", err)
	}
	registry, err := f.locator.ResolveShared(ctx, capability.KindAdminRegistry)
	if err != nil {
		t.Fatalf("resolve registry: %v", err)
	}
	pause, err := f.locator.ResolveShared(ctx, capability.KindPauseState)
	if err != nil {
		t.Fatalf("resolve pause: %v", err)
	}

	// Concurrent submissions must not interleave; the mock's supply is the
	// observable effect.
	done := make(chan error)
	const workers = 4
	for i := 0; i < workers; i++ {
		go func() {
			req, err := f.builder.BuildMint(treasury, registry, pause, 100, "0xrecipient")
			if err != nil {
				done <- err
				return
			}
			_, err = f.operator.Submit(ctx, req)
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("worker: %v", err)
		}
	}
	if f.mock.Supply() != 100*workers {
		t.Errorf("supply = %d, want %d", f.mock.Supply(), 100*workers)
	}
}
