// Package redflag contains Red-Flag tests that prove the system correctly
// refuses unsafe or invalid operations. These tests validate capability
// boundaries, local validation, and trust guarantees.
package redflag

// This package contains Red-Flag tests organized by concern:
// - unauthorized_test.go: operations without the gating capability
// - validation_test.go: amounts, reasons, and addresses rejected locally
// - pause_test.go: the pause guard blocking mutating operations
// - audit_test.go: rejected operations still leave audit entries
