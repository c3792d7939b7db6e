// Package models provides shared data models for tokenops reports and
// machine-readable CLI output.
package models

import (
	"time"
)

// ScenarioRecord is one classified adversarial scenario outcome.
type ScenarioRecord struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	ExpectedOutcome string `json:"expected_outcome"`
	ActualOutcome   string `json:"actual_outcome,omitempty"`
	Classification  string `json:"classification"`
	Detail          string `json:"detail,omitempty"`
	Digest          string `json:"digest,omitempty"`
}

// SecurityReport aggregates a full harness run. OverallPassed is false
// whenever at least one scenario is classified as a vulnerability,
// regardless of every other count.
type SecurityReport struct {
	ReportID   string    `json:"report_id"`
	Network    string    `json:"network"`
	PackageID  string    `json:"package_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Scenarios []ScenarioRecord `json:"scenarios"`

	Passed          int  `json:"passed"`
	Failed          int  `json:"failed"`
	Skipped         int  `json:"skipped"`
	Vulnerabilities int  `json:"vulnerabilities"`
	Informational   int  `json:"informational"`
	OverallPassed   bool `json:"overall_passed"`
}

// StatusReport is the machine-readable output of 'tokenops status'.
type StatusReport struct {
	Network        string            `json:"network"`
	PackageID      string            `json:"package_id"`
	Paused         bool              `json:"paused"`
	PauseReason    string            `json:"pause_reason,omitempty"`
	Admin          string            `json:"admin"`
	TotalSupply    string            `json:"total_supply"`
	SignerAddress  string            `json:"signer_address"`
	SignerBalance  string            `json:"signer_balance"`
	Capabilities   map[string]string `json:"capabilities"`
	LayoutVersion  int               `json:"layout_version"`
	LayoutVerified bool              `json:"layout_verified"`
}

// ErrorResponse is the machine-readable error shape.
type ErrorResponse struct {
	Error      string `json:"error"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Code       int    `json:"code"`
}
