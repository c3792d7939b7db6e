package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{NewInvalidAmountFormat("x", "not a number"), 1},
		{NewZeroAmount("mint"), 1},
		{NewEmptyReason("pause"), 1},
		{NewCapabilityNotFound("TREASURY", "0xop", "0xpkg::m::TreasuryCap"), 2},
		{NewCapabilityAmbiguous("0xpkg::m::TreasuryCap", []string{"0x1", "0x2"}), 2},
		{NewLedgerRejected(KindAuthorizationDenied, "MINT", []string{"0x1"}, "denied"), 3},
		{NewNodeUnavailable("http://localhost:9000", "refused"), 3},
		{fmt.Errorf("plain error"), 4},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorsCarryReasonAndSuggestion(t *testing.T) {
	errs := []error{
		NewCapabilityNotFound("TREASURY", "0xop", "0xpkg::m::TreasuryCap"),
		NewCapabilityAmbiguous("0xpkg::m::TreasuryCap", []string{"0x1", "0x2"}),
		NewInvalidAmountFormat("1.2.3", "multiple decimal points"),
		NewNegativeAmount("-1"),
		NewZeroAmount("mint"),
		NewExceedsMaxSupply(100, 50),
		NewArithmeticOverflow("exceeds uint64"),
		NewEmptyReason("pause"),
		NewInvalidAddress("xyz", "missing 0x prefix"),
		NewManifestInvalid("objects.pause_state", "missing"),
		NewNodeUnavailable("http://x", "refused"),
		NewLedgerRejected(KindPauseActive, "MINT", []string{"0x1"}, "paused"),
	}
	for _, err := range errs {
		msg := err.Error()
		if !strings.Contains(msg, "Reason:") {
			t.Errorf("%T: no reason in %q", err, msg)
		}
		if !strings.Contains(msg, "Suggestion:") {
			t.Errorf("%T: no suggestion in %q", err, msg)
		}
	}
}

func TestLedgerRejectedNamesCapabilities(t *testing.T) {
	err := NewLedgerRejected(KindAuthorizationDenied, "MINT", []string{"0xtreasury", "0xregistry"}, "MoveAbort in p::m::mint, code 1")
	msg := err.Error()
	if !strings.Contains(msg, "0xtreasury") || !strings.Contains(msg, "0xregistry") {
		t.Errorf("capabilities missing from %q", msg)
	}
	// The raw ledger message is never swallowed.
	if !strings.Contains(msg, "MoveAbort in p::m::mint, code 1") {
		t.Errorf("raw message missing from %q", msg)
	}
	if err.Kind != KindAuthorizationDenied {
		t.Errorf("kind = %s", err.Kind)
	}
}

func TestAsOpsExtractsBaseError(t *testing.T) {
	tests := []struct {
		err            error
		wantOK         bool
		wantCode       ErrorCode
		wantMessagePfx string
	}{
		{NewEmptyReason("pause"), true, CodeValidation, "pause requires a reason"},
		{NewCapabilityNotFound("TREASURY", "0xop", "0xpkg::m::TreasuryCap"), true, CodeCapability, "TREASURY capability not found"},
		{NewLedgerRejected(KindPauseActive, "MINT", []string{"0x1"}, "paused"), true, CodeLedger, "MINT rejected by ledger"},
		{fmt.Errorf("plain error"), false, 0, ""},
		{nil, false, 0, ""},
	}
	for _, tt := range tests {
		ops, ok := AsOps(tt.err)
		if ok != tt.wantOK {
			t.Errorf("AsOps(%v) ok = %v, want %v", tt.err, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if ops.Code != tt.wantCode {
			t.Errorf("AsOps(%v) code = %d, want %d", tt.err, ops.Code, tt.wantCode)
		}
		if !strings.HasPrefix(ops.Message, tt.wantMessagePfx) {
			t.Errorf("AsOps(%v) message = %q, want prefix %q", tt.err, ops.Message, tt.wantMessagePfx)
		}
		if ops.Reason == "" || ops.Suggestion == "" {
			t.Errorf("AsOps(%v) lost reason/suggestion", tt.err)
		}
	}
}

func TestAmbiguousListsMatches(t *testing.T) {
	err := NewCapabilityAmbiguous("0xpkg::m::TreasuryCap", []string{"0xaaa", "0xbbb", "0xccc"})
	msg := err.Error()
	for _, id := range []string{"0xaaa", "0xbbb", "0xccc"} {
		if !strings.Contains(msg, id) {
			t.Errorf("match %s missing from %q", id, msg)
		}
	}
}
