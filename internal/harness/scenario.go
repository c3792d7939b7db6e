// Package harness drives adversarial scenarios against a deployed token
// ledger and classifies outcomes. An expected on-chain rejection is an
// outcome value, never an exception path: a genuine transport or runtime
// failure is reported separately and cannot masquerade as a passed check.
package harness

import (
	"context"
	"errors"
	"fmt"
)

// Outcome is what a scenario's operation actually did.
type Outcome string

const (
	OutcomeSucceed Outcome = "SUCCEED"
	OutcomeFail    Outcome = "FAIL"
)

// Classification is the verdict for one scenario.
type Classification string

const (
	// ClassPassed means the actual outcome matched the expectation.
	ClassPassed Classification = "PASSED"

	// ClassFailed means an operation expected to succeed was blocked.
	ClassFailed Classification = "FAILED"

	// ClassVulnerability means an operation expected to be blocked went
	// through. Always surfaced at highest severity; a single
	// vulnerability forces the aggregate report to declare failure.
	ClassVulnerability Classification = "VULNERABILITY"

	// ClassSkipped means a required precondition object could not be
	// located or created. Tracked outside the pass/fail denominator.
	ClassSkipped Classification = "SKIPPED"

	// ClassInformational marks structural checks that observe but cannot
	// prove anything, such as the reentrancy-marker check.
	ClassInformational Classification = "INFORMATIONAL"
)

// State tracks a scenario through its lifecycle. Recorded is terminal.
type State string

const (
	StatePending    State = "PENDING"
	StateExecuting  State = "EXECUTING"
	StateBlocked    State = "BLOCKED"
	StateSucceeded  State = "SUCCEEDED"
	StateClassified State = "CLASSIFIED"
	StateRecorded   State = "RECORDED"
)

// validTransitions encodes Pending -> Executing -> {Blocked, Succeeded} ->
// Classified -> Recorded.
var validTransitions = map[State][]State{
	StatePending:    {StateExecuting},
	StateExecuting:  {StateBlocked, StateSucceeded},
	StateBlocked:    {StateClassified},
	StateSucceeded:  {StateClassified},
	StateClassified: {StateRecorded},
	StateRecorded:   {},
}

func transition(from, to State) (State, error) {
	for _, next := range validTransitions[from] {
		if next == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("harness: invalid state transition %s -> %s", from, to)
}

// ErrPrecondition marks a scenario whose required objects could not be
// located or created. Wrapped by scenario Run functions; classified as
// Skipped.
var ErrPrecondition = errors.New("precondition unavailable")

// Attempt is the observed result of executing a scenario's operation.
type Attempt struct {
	// Outcome is what actually happened on (or before) the ledger.
	Outcome Outcome

	// Detail is a human-readable account: the mapped error kind and raw
	// message for blocks, the digest for successes.
	Detail string

	// Digest is the transaction digest, when a submission happened.
	Digest string
}

// Scenario is one adversarial check. Run must return an Attempt for any
// outcome that was properly observed, ErrPrecondition-wrapped errors for
// missing preconditions, and other errors only for genuine runtime
// failures.
type Scenario struct {
	Name        string
	Description string

	// Expected declares whether the operation should succeed or be
	// blocked.
	Expected Outcome

	// Informational scenarios observe structure without proving
	// anything; their attempt is recorded but never counted as pass,
	// fail, or vulnerability.
	Informational bool

	Run func(ctx context.Context, env *Env) (*Attempt, error)
}

// Classify applies the classification rule to one observed attempt.
func Classify(expected, actual Outcome, informational bool) Classification {
	if informational {
		return ClassInformational
	}
	if actual == expected {
		return ClassPassed
	}
	if actual == OutcomeSucceed && expected == OutcomeFail {
		return ClassVulnerability
	}
	return ClassFailed
}
