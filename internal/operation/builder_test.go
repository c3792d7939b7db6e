package operation

import (
	"errors"
	"testing"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	opserrors "github.com/helios-labs/tokenops/internal/errors"
)

const (
	testPackage   = "0xpkg"
	testModule    = "managed_token"
	testRecipient = "0xrecipient"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	layout, err := NewCallLayout(LayoutV1)
	if err != nil {
		t.Fatalf("NewCallLayout: %v", err)
	}
	return NewBuilder(testPackage, testModule, layout)
}

func ownedRef(kind capability.Kind, id string) capability.Ref {
	return capability.Ref{Kind: kind, ObjectID: id, Ownership: capability.Ownership{Address: "0xoperator"}, PackageID: testPackage}
}

func sharedRef(kind capability.Kind, id string) capability.Ref {
	return capability.Ref{Kind: kind, ObjectID: id, Ownership: capability.Ownership{Shared: true}, PackageID: testPackage}
}

func TestBuildMintLayout(t *testing.T) {
	b := testBuilder(t)
	treasury := ownedRef(capability.KindTreasury, "0xtreasury")
	registry := sharedRef(capability.KindAdminRegistry, "0xregistry")
	pause := sharedRef(capability.KindPauseState, "0xpause")

	req, err := b.BuildMint(treasury, registry, pause, 1_000_000_000, testRecipient)
	if err != nil {
		t.Fatalf("BuildMint: %v", err)
	}

	if req.Kind != KindMint {
		t.Errorf("kind = %s", req.Kind)
	}
	if req.ID == "" {
		t.Error("request has no idempotency key")
	}
	if len(req.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(req.Steps))
	}

	call := req.Steps[0]
	if call.Kind != StepMoveCall {
		t.Fatalf("step 0 kind = %s", call.Kind)
	}
	if call.Target != testPackage+"::"+testModule+"::mint" {
		t.Errorf("target = %s", call.Target)
	}
	// v1 order: treasury cap, amount, admin registry, pause state.
	if len(call.Args) != 4 {
		t.Fatalf("args = %d, want 4", len(call.Args))
	}
	if call.Args[0].ObjectID != "0xtreasury" {
		t.Errorf("arg 0 = %+v, want treasury cap", call.Args[0])
	}
	if call.Args[1].Kind != ArgPure || call.Args[1].Value != uint64(1_000_000_000) {
		t.Errorf("arg 1 = %+v, want pure amount", call.Args[1])
	}
	if call.Args[2].ObjectID != "0xregistry" {
		t.Errorf("arg 2 = %+v, want admin registry", call.Args[2])
	}
	if call.Args[3].ObjectID != "0xpause" {
		t.Errorf("arg 3 = %+v, want pause state", call.Args[3])
	}

	// The recipient is a transfer-of-result step, never a mint argument.
	xfer := req.Steps[1]
	if xfer.Kind != StepTransferObjects {
		t.Fatalf("step 1 kind = %s", xfer.Kind)
	}
	if xfer.Recipient != testRecipient {
		t.Errorf("transfer recipient = %s", xfer.Recipient)
	}
	if len(xfer.Objects) != 1 || xfer.Objects[0].Kind != ArgResult || xfer.Objects[0].Step != 0 {
		t.Errorf("transfer objects = %+v, want result of step 0", xfer.Objects)
	}
}

func TestBuildMintRejectsZero(t *testing.T) {
	b := testBuilder(t)
	_, err := b.BuildMint(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindAdminRegistry, "0xr"), sharedRef(capability.KindPauseState, "0xp"), 0, testRecipient)
	var zero *opserrors.ErrZeroAmount
	if !errors.As(err, &zero) {
		t.Fatalf("error = %v, want ErrZeroAmount", err)
	}
}

func TestBuildMintRejectsOverCap(t *testing.T) {
	b := testBuilder(t)
	b.MaxSupply = 1000

	_, err := b.BuildMint(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindAdminRegistry, "0xr"), sharedRef(capability.KindPauseState, "0xp"), 1001, testRecipient)
	var exceeds *opserrors.ErrExceedsMaxSupply
	if !errors.As(err, &exceeds) {
		t.Fatalf("error = %v, want ErrExceedsMaxSupply", err)
	}
}

func TestBuildMintRejectsBadRecipient(t *testing.T) {
	b := testBuilder(t)
	for _, addr := range []string{"recipient", "0x", "0x" + string(make([]byte, 80))} {
		_, err := b.BuildMint(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindAdminRegistry, "0xr"), sharedRef(capability.KindPauseState, "0xp"), 1, addr)
		var invalid *opserrors.ErrInvalidAddress
		if !errors.As(err, &invalid) {
			t.Errorf("recipient %q: error = %v, want ErrInvalidAddress", addr, err)
		}
	}
}

func TestBuildBurnWholeObject(t *testing.T) {
	b := testBuilder(t)
	coin := CoinRef{ObjectID: "0xcoin", Balance: 500}

	// Nil amount burns the whole object.
	req, err := b.BuildBurn(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindPauseState, "0xp"), coin, nil)
	if err != nil {
		t.Fatalf("BuildBurn: %v", err)
	}
	if len(req.Steps) != 1 {
		t.Fatalf("steps = %d, want 1 (no split)", len(req.Steps))
	}
	if req.Steps[0].Kind != StepMoveCall {
		t.Errorf("step kind = %s", req.Steps[0].Kind)
	}
	if req.Steps[0].Args[1].ObjectID != "0xcoin" {
		t.Errorf("burn input = %+v, want whole coin", req.Steps[0].Args[1])
	}
	if req.Amount != nil {
		t.Error("whole-object burn must not record a split amount")
	}
}

func TestBuildBurnAmountAtBalanceBurnsWholeObject(t *testing.T) {
	b := testBuilder(t)
	coin := CoinRef{ObjectID: "0xcoin", Balance: 500}
	amt := amount.Amount(500)

	req, err := b.BuildBurn(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindPauseState, "0xp"), coin, &amt)
	if err != nil {
		t.Fatalf("BuildBurn: %v", err)
	}
	if len(req.Steps) != 1 {
		t.Fatalf("steps = %d, want 1: amount at balance burns the object directly", len(req.Steps))
	}
}

func TestBuildBurnSplitThenBurn(t *testing.T) {
	b := testBuilder(t)
	coin := CoinRef{ObjectID: "0xcoin", Balance: 500}
	amt := amount.Amount(200)

	req, err := b.BuildBurn(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindPauseState, "0xp"), coin, &amt)
	if err != nil {
		t.Fatalf("BuildBurn: %v", err)
	}
	if len(req.Steps) != 2 {
		t.Fatalf("steps = %d, want split+burn", len(req.Steps))
	}

	split := req.Steps[0]
	if split.Kind != StepSplitCoins {
		t.Fatalf("step 0 kind = %s", split.Kind)
	}
	if split.Coin.ObjectID != "0xcoin" || len(split.Amounts) != 1 || split.Amounts[0] != 200 {
		t.Errorf("split = %+v", split)
	}

	burn := req.Steps[1]
	if burn.Kind != StepMoveCall {
		t.Fatalf("step 1 kind = %s", burn.Kind)
	}
	// The burn consumes the split's result, not the original coin: both
	// steps succeed or fail together.
	if burn.Args[1].Kind != ArgResult || burn.Args[1].Step != 0 {
		t.Errorf("burn input = %+v, want result of split", burn.Args[1])
	}
	if req.Amount == nil || *req.Amount != 200 {
		t.Errorf("recorded amount = %v, want 200", req.Amount)
	}
}

func TestBuildBurnRejectsZero(t *testing.T) {
	b := testBuilder(t)
	zero := amount.Amount(0)
	_, err := b.BuildBurn(ownedRef(capability.KindTreasury, "0xt"), sharedRef(capability.KindPauseState, "0xp"), CoinRef{ObjectID: "0xcoin", Balance: 10}, &zero)
	var zerr *opserrors.ErrZeroAmount
	if !errors.As(err, &zerr) {
		t.Fatalf("error = %v, want ErrZeroAmount", err)
	}
}

func TestBuildAdminChangeDoesNotTransferCap(t *testing.T) {
	b := testBuilder(t)
	req, err := b.BuildAdminChange(
		ownedRef(capability.KindTreasury, "0xt"),
		ownedRef(capability.KindAdmin, "0xadmin"),
		sharedRef(capability.KindAdminRegistry, "0xr"),
		testRecipient,
	)
	if err != nil {
		t.Fatalf("BuildAdminChange: %v", err)
	}
	if len(req.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(req.Steps))
	}
	if req.Steps[0].Target != testPackage+"::"+testModule+"::update_admin" {
		t.Errorf("target = %s", req.Steps[0].Target)
	}
	// The registry pointer moves; the admin capability object does not.
	for _, step := range req.Steps {
		if step.Kind == StepTransferObjects {
			t.Error("admin change must not transfer the admin capability object")
		}
	}
	if req.Steps[0].Args[3].Kind != ArgPure || req.Steps[0].Args[3].Value != testRecipient {
		t.Errorf("new admin arg = %+v", req.Steps[0].Args[3])
	}
}

func TestBuildPauseRequiresReason(t *testing.T) {
	b := testBuilder(t)
	registry := sharedRef(capability.KindAdminRegistry, "0xr")
	pause := sharedRef(capability.KindPauseState, "0xp")

	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := b.BuildPause(registry, pause, reason); err == nil {
			t.Errorf("BuildPause(%q): expected ErrEmptyReason", reason)
		} else {
			var empty *opserrors.ErrEmptyReason
			if !errors.As(err, &empty) {
				t.Errorf("BuildPause(%q): error = %v, want ErrEmptyReason", reason, err)
			}
		}
		if _, err := b.BuildUnpause(registry, pause, reason); err == nil {
			t.Errorf("BuildUnpause(%q): expected ErrEmptyReason", reason)
		}
	}

	req, err := b.BuildPause(registry, pause, "maintenance window")
	if err != nil {
		t.Fatalf("BuildPause: %v", err)
	}
	if req.Reason != "maintenance window" {
		t.Errorf("reason = %q", req.Reason)
	}
	if req.Steps[0].Args[2].Value != "maintenance window" {
		t.Errorf("reason arg = %+v", req.Steps[0].Args[2])
	}
}

func TestBuildTransferCapability(t *testing.T) {
	b := testBuilder(t)
	req, err := b.BuildTransferCapability(ownedRef(capability.KindAdmin, "0xadmin"), testRecipient)
	if err != nil {
		t.Fatalf("BuildTransferCapability: %v", err)
	}
	if len(req.Steps) != 1 || req.Steps[0].Kind != StepTransferObjects {
		t.Fatalf("steps = %+v", req.Steps)
	}
	if req.Steps[0].Objects[0].ObjectID != "0xadmin" {
		t.Errorf("transferred object = %+v", req.Steps[0].Objects[0])
	}
	if got := req.CapabilityIDs(); len(got) != 1 || got[0] != "0xadmin" {
		t.Errorf("capability ids = %v", got)
	}
}

func TestRequestIDsUnique(t *testing.T) {
	b := testBuilder(t)
	registry := sharedRef(capability.KindAdminRegistry, "0xr")
	pause := sharedRef(capability.KindPauseState, "0xp")

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		req, err := b.BuildPause(registry, pause, "r")
		if err != nil {
			t.Fatalf("BuildPause: %v", err)
		}
		if seen[req.ID] {
			t.Fatalf("duplicate idempotency key %s", req.ID)
		}
		seen[req.ID] = true
	}
}

func TestNewCallLayoutUnknownVersion(t *testing.T) {
	if _, err := NewCallLayout(0); err == nil {
		t.Error("layout version 0 must fail")
	}
	if _, err := NewCallLayout(2); err == nil {
		t.Error("unknown layout version must fail, not default to latest")
	}
}
