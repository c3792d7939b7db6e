// Package errors provides explicit, human-readable error types for tokenops.
// All errors must include a Reason and Suggestion for actionable feedback.
//
// Local validation errors (amount format, empty reason) are produced before
// any network call. Ledger-surfaced errors always carry the raw message from
// the node verbatim; nothing is ever swallowed.
package errors

import (
	"fmt"
	"strings"
)

// OpsError is the base error type for all tokenops errors.
// Every error must provide a human-readable reason and suggestion.
type OpsError struct {
	Code       ErrorCode
	Message    string
	Reason     string
	Suggestion string
	Cause      error
}

// ErrorCode represents the category of error for exit code mapping.
type ErrorCode int

const (
	CodeValidation ErrorCode = 1
	CodeCapability ErrorCode = 2
	CodeLedger     ErrorCode = 3
	CodeInternal   ErrorCode = 4
)

func (e *OpsError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s\nReason: %s", msg, e.Reason)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s\nSuggestion: %s", msg, e.Suggestion)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s\nCaused by: %v", msg, e.Cause)
	}
	return msg
}

func (e *OpsError) Unwrap() error {
	return e.Cause
}

// ExitCode extracts the exit code for an error. Errors outside the tokenops
// taxonomy map to CodeInternal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	type coded interface{ exitCode() ErrorCode }
	if c, ok := err.(coded); ok {
		return int(c.exitCode())
	}
	return int(CodeInternal)
}

func (e *OpsError) exitCode() ErrorCode { return e.Code }

// AsOps extracts the embedded base error from any taxonomy error, for
// callers that render Message, Reason, and Suggestion separately. Errors
// outside the taxonomy return false.
func AsOps(err error) (*OpsError, bool) {
	type wrapped interface{ ops() *OpsError }
	if w, ok := err.(wrapped); ok {
		return w.ops(), true
	}
	return nil, false
}

func (e *OpsError) ops() *OpsError { return e }

// ErrCapabilityNotFound is returned when a required capability object cannot
// be located, neither on chain nor in the deployment manifest.
type ErrCapabilityNotFound struct {
	OpsError
	Kind        string
	Owner       string
	TypePattern string
}

// NewCapabilityNotFound creates a new ErrCapabilityNotFound.
func NewCapabilityNotFound(kind, owner, typePattern string) *ErrCapabilityNotFound {
	where := "shared objects"
	if owner != "" {
		where = fmt.Sprintf("objects owned by %s", owner)
	}
	return &ErrCapabilityNotFound{
		OpsError: OpsError{
			Code:       CodeCapability,
			Message:    fmt.Sprintf("%s capability not found", kind),
			Reason:     fmt.Sprintf("no object of type %s among %s", typePattern, where),
			Suggestion: "check the configured package id, or point --manifest at the deployment record",
		},
		Kind:        kind,
		Owner:       owner,
		TypePattern: typePattern,
	}
}

// ErrCapabilityAmbiguous is returned when more than one object matches a
// capability type pattern. Resolution fails hard by default; the caller must
// disambiguate rather than let the locator silently pick one.
type ErrCapabilityAmbiguous struct {
	OpsError
	TypePattern string
	Matches     []string
}

// NewCapabilityAmbiguous creates a new ErrCapabilityAmbiguous.
func NewCapabilityAmbiguous(typePattern string, matches []string) *ErrCapabilityAmbiguous {
	return &ErrCapabilityAmbiguous{
		OpsError: OpsError{
			Code:       CodeCapability,
			Message:    fmt.Sprintf("ambiguous capability: %s", typePattern),
			Reason:     fmt.Sprintf("%d objects match: %s", len(matches), strings.Join(matches, ", ")),
			Suggestion: "pin the object id in the deployment manifest",
		},
		TypePattern: typePattern,
		Matches:     matches,
	}
}

// ErrInvalidAmountFormat is returned when a decimal amount string cannot be
// parsed into base units.
type ErrInvalidAmountFormat struct {
	OpsError
	Input string
}

// NewInvalidAmountFormat creates a new ErrInvalidAmountFormat.
func NewInvalidAmountFormat(input, reason string) *ErrInvalidAmountFormat {
	return &ErrInvalidAmountFormat{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("invalid amount: %q", input),
			Reason:     reason,
			Suggestion: "pass a plain decimal such as 1.5 or 1000000000",
		},
		Input: input,
	}
}

// ErrNegativeAmount is returned when an amount string carries a minus sign.
type ErrNegativeAmount struct {
	OpsError
	Input string
}

// NewNegativeAmount creates a new ErrNegativeAmount.
func NewNegativeAmount(input string) *ErrNegativeAmount {
	return &ErrNegativeAmount{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("negative amount: %q", input),
			Reason:     "amounts are unsigned base units",
			Suggestion: "pass a non-negative decimal amount",
		},
		Input: input,
	}
}

// ErrZeroAmount is returned when a zero amount is passed to an operation that
// disallows it.
type ErrZeroAmount struct {
	OpsError
	Operation string
}

// NewZeroAmount creates a new ErrZeroAmount.
func NewZeroAmount(operation string) *ErrZeroAmount {
	return &ErrZeroAmount{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("zero amount not allowed for %s", operation),
			Reason:     "the operation would be a no-op on chain but still burn gas",
			Suggestion: "pass an amount greater than zero",
		},
		Operation: operation,
	}
}

// ErrExceedsMaxSupply is returned when an amount would exceed the configured
// supply cap. The cap is supplied by the caller, never computed here.
type ErrExceedsMaxSupply struct {
	OpsError
	Amount uint64
	Cap    uint64
}

// NewExceedsMaxSupply creates a new ErrExceedsMaxSupply.
func NewExceedsMaxSupply(amount, cap uint64) *ErrExceedsMaxSupply {
	return &ErrExceedsMaxSupply{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    "amount exceeds max supply",
			Reason:     fmt.Sprintf("%d base units requested, cap is %d", amount, cap),
			Suggestion: "check remaining supply with 'tokenops status'",
		},
		Amount: amount,
		Cap:    cap,
	}
}

// ErrArithmeticOverflow is returned when a conversion or sum does not fit in
// the ledger's 64-bit amount representation.
type ErrArithmeticOverflow struct {
	OpsError
}

// NewArithmeticOverflow creates a new ErrArithmeticOverflow.
func NewArithmeticOverflow(detail string) *ErrArithmeticOverflow {
	return &ErrArithmeticOverflow{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    "amount overflows 64-bit base units",
			Reason:     detail,
			Suggestion: "base-unit amounts must fit in an unsigned 64-bit integer",
		},
	}
}

// ErrEmptyReason is returned when pause or unpause is attempted without a
// reason. Rejected before any network interaction.
type ErrEmptyReason struct {
	OpsError
	Operation string
}

// NewEmptyReason creates a new ErrEmptyReason.
func NewEmptyReason(operation string) *ErrEmptyReason {
	return &ErrEmptyReason{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("%s requires a reason", operation),
			Reason:     "the reason is recorded on shared pause state for auditability",
			Suggestion: "pass --reason with a non-empty explanation",
		},
		Operation: operation,
	}
}

// ErrInvalidAddress is returned when an address fails the prefix/length
// heuristic. This is deliberately weak validation; full address-format
// correctness is left to the ledger.
type ErrInvalidAddress struct {
	OpsError
	Address string
}

// NewInvalidAddress creates a new ErrInvalidAddress.
func NewInvalidAddress(address, reason string) *ErrInvalidAddress {
	return &ErrInvalidAddress{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("invalid address: %q", address),
			Reason:     reason,
			Suggestion: "addresses are 0x-prefixed hex strings",
		},
		Address: address,
	}
}

// ErrManifestInvalid is returned when the deployment manifest is missing or
// malformed. The manifest is validated at the boundary; no silent defaulting.
type ErrManifestInvalid struct {
	OpsError
	Field string
}

// NewManifestInvalid creates a new ErrManifestInvalid.
func NewManifestInvalid(field, reason string) *ErrManifestInvalid {
	return &ErrManifestInvalid{
		OpsError: OpsError{
			Code:       CodeValidation,
			Message:    "invalid deployment manifest",
			Reason:     fmt.Sprintf("field '%s': %s", field, reason),
			Suggestion: "re-run the deployment step to regenerate the manifest",
		},
		Field: field,
	}
}

// ErrNodeUnavailable is returned when the ledger RPC endpoint cannot be
// reached or returns a transport-level failure.
type ErrNodeUnavailable struct {
	OpsError
	Endpoint string
}

// NewNodeUnavailable creates a new ErrNodeUnavailable.
func NewNodeUnavailable(endpoint, reason string) *ErrNodeUnavailable {
	return &ErrNodeUnavailable{
		OpsError: OpsError{
			Code:       CodeLedger,
			Message:    "ledger node unavailable",
			Reason:     fmt.Sprintf("endpoint %s: %s", endpoint, reason),
			Suggestion: "check the network configuration and node health",
		},
		Endpoint: endpoint,
	}
}

// LedgerErrorKind classifies terminal execution failures surfaced by the
// ledger after submission. KindUnknown is a catch-all that must carry the
// raw underlying message for diagnosis.
type LedgerErrorKind string

const (
	KindAuthorizationDenied LedgerErrorKind = "AUTHORIZATION_DENIED"
	KindPauseActive         LedgerErrorKind = "PAUSE_ACTIVE"
	KindSupplyExceeded      LedgerErrorKind = "SUPPLY_EXCEEDED"
	KindArithmeticOverflow  LedgerErrorKind = "ARITHMETIC_OVERFLOW"
	KindObjectNotFound      LedgerErrorKind = "OBJECT_NOT_FOUND"
	KindInsufficientGas     LedgerErrorKind = "INSUFFICIENT_GAS"
	KindUnknown             LedgerErrorKind = "UNKNOWN"
)

// ErrLedgerRejected is returned when a submitted operation fails on chain.
// It names the operation attempted and the resolved capability identifiers
// used, so a human can diagnose and re-invoke deliberately. The operation is
// never silently retried.
type ErrLedgerRejected struct {
	OpsError
	Kind         LedgerErrorKind
	Operation    string
	Capabilities []string
	Raw          string
}

// NewLedgerRejected creates a new ErrLedgerRejected.
func NewLedgerRejected(kind LedgerErrorKind, operation string, capabilities []string, raw string) *ErrLedgerRejected {
	return &ErrLedgerRejected{
		OpsError: OpsError{
			Code:       CodeLedger,
			Message:    fmt.Sprintf("%s rejected by ledger (%s)", operation, kind),
			Reason:     raw,
			Suggestion: fmt.Sprintf("capabilities used: %s", strings.Join(capabilities, ", ")),
		},
		Kind:         kind,
		Operation:    operation,
		Capabilities: capabilities,
		Raw:          raw,
	}
}
