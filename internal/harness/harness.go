package harness

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/executor"
	"github.com/helios-labs/tokenops/internal/ledger"
	"github.com/helios-labs/tokenops/internal/operation"
	"github.com/helios-labs/tokenops/pkg/models"
)

// Env is everything a scenario may touch. Constructed once per run and
// passed explicitly; scenarios share no global state.
type Env struct {
	Network   string
	PackageID string

	// Operator submits as the legitimate capability holder.
	Operator *executor.Executor

	// Attacker submits as an address holding no capabilities. Nil when
	// no attacker identity is configured; scenarios that need one are
	// skipped.
	Attacker *executor.Executor

	// OperatorAddr is the operator's address, used to resolve the
	// capability objects an attacker would target.
	OperatorAddr string

	Builder *operation.Builder
	Locator *capability.Locator
	Query   ledger.QueryClient

	Decimals int
}

// Harness executes a scenario catalog strictly sequentially. Mutating
// operations share signer identities whose fee-paying objects must be
// re-observed between operations, so scenarios are never pipelined; an
// inter-scenario delay gives the ledger time to settle shared object
// versions.
type Harness struct {
	env       *Env
	scenarios []Scenario
	delay     time.Duration
}

// New creates a harness over the given environment and catalog.
func New(env *Env, scenarios []Scenario, delay time.Duration) *Harness {
	return &Harness{env: env, scenarios: scenarios, delay: delay}
}

// Run executes every scenario in order and aggregates the report. The run
// itself only errors on context cancellation; individual scenario failures
// are classified, not propagated.
func (h *Harness) Run(ctx context.Context) (*models.SecurityReport, error) {
	report := &models.SecurityReport{
		ReportID:  uuid.NewString(),
		Network:   h.env.Network,
		PackageID: h.env.PackageID,
		StartedAt: time.Now().UTC(),
		Scenarios: make([]models.ScenarioRecord, 0, len(h.scenarios)),
	}

	for i, sc := range h.scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			h.settle(ctx)
		}

		record := h.runOne(ctx, sc)
		report.Scenarios = append(report.Scenarios, record)

		switch Classification(record.Classification) {
		case ClassPassed:
			report.Passed++
		case ClassFailed:
			report.Failed++
		case ClassVulnerability:
			report.Vulnerabilities++
		case ClassSkipped:
			report.Skipped++
		case ClassInformational:
			report.Informational++
		}
	}

	report.FinishedAt = time.Now().UTC()
	// One vulnerability fails the whole run, no matter the pass count.
	report.OverallPassed = report.Vulnerabilities == 0 && report.Failed == 0
	return report, nil
}

func (h *Harness) runOne(ctx context.Context, sc Scenario) models.ScenarioRecord {
	record := models.ScenarioRecord{
		Name:            sc.Name,
		Description:     sc.Description,
		ExpectedOutcome: string(sc.Expected),
	}

	state := StatePending
	state, _ = transition(state, StateExecuting)

	attempt, err := sc.Run(ctx, h.env)
	if err != nil {
		if errors.Is(err, ErrPrecondition) {
			record.Classification = string(ClassSkipped)
			record.Detail = err.Error()
			return record
		}
		// A runtime failure is not an observed block: the scenario
		// proved nothing, which counts against the run.
		record.Classification = string(ClassFailed)
		record.Detail = "scenario did not complete: " + err.Error()
		return record
	}

	switch attempt.Outcome {
	case OutcomeFail:
		state, _ = transition(state, StateBlocked)
	default:
		state, _ = transition(state, StateSucceeded)
	}

	record.ActualOutcome = string(attempt.Outcome)
	record.Detail = attempt.Detail
	record.Digest = attempt.Digest

	state, _ = transition(state, StateClassified)
	record.Classification = string(Classify(sc.Expected, attempt.Outcome, sc.Informational))
	_, _ = transition(state, StateRecorded)

	return record
}

// settle enforces the inter-scenario delay and re-observes both signers'
// fee-paying objects before the next mutating submission.
func (h *Harness) settle(ctx context.Context) {
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-ctx.Done():
			return
		}
	}
	if h.env.Operator != nil {
		h.env.Operator.RefreshGas(ctx)
	}
	if h.env.Attacker != nil {
		h.env.Attacker.RefreshGas(ctx)
	}
}
