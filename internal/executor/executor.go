// Package executor submits built operation requests to the ledger and maps
// terminal states to the error taxonomy.
//
// All mutating operations for one signer are serialized, and the signer's
// fee-paying object is re-observed after every mutating operation before
// the next is submitted: the ledger rejects submissions against a stale
// version of that object. This is an external consistency constraint, not
// a tuning choice. Operations are never silently retried.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/helios-labs/tokenops/internal/errors"
	"github.com/helios-labs/tokenops/internal/ledger"
	"github.com/helios-labs/tokenops/internal/observability"
	"github.com/helios-labs/tokenops/internal/operation"
)

// Submitter signs and executes requests. Implemented by the node RPC client
// and the in-memory mock.
type Submitter interface {
	Execute(ctx context.Context, signer string, req *operation.Request, gasID string) (*ledger.ExecutionResponse, error)
	DryRun(ctx context.Context, signer string, req *operation.Request) (*ledger.ExecutionResponse, error)
}

// Status is the terminal status of a submitted operation.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Result is produced once per submission and never mutated afterward.
type Result struct {
	Status    Status
	Digest    string
	Events    []ledger.Event
	ErrorKind errors.LedgerErrorKind
	Raw       string

	kind string
	caps []string
}

// Err converts a failed result into the typed ledger-rejected error,
// carrying the operation kind and the resolved capability identifiers. Nil
// for successful results.
func (r *Result) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	return errors.NewLedgerRejected(r.ErrorKind, r.kind, r.caps, r.Raw)
}

// Executor submits operations for a single signer identity.
type Executor struct {
	signer      string
	submitter   Submitter
	query       ledger.QueryClient
	gasObjectID string
	logger      observability.OperationLogger
	timeout     time.Duration

	mu         sync.Mutex
	gasVersion uint64
}

// Options configures an executor.
type Options struct {
	// GasObjectID is the signer's fee-paying object, re-observed after
	// each mutating operation. Optional when the submitter manages gas
	// selection itself.
	GasObjectID string

	// Timeout bounds a single submission round trip. Defaults to 60s.
	Timeout time.Duration

	// Logger receives one audit entry per submission. Defaults to the
	// no-op logger.
	Logger observability.OperationLogger
}

// New creates an executor for the given signer.
func New(signer string, submitter Submitter, query ledger.QueryClient, opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNoopLogger()
	}
	return &Executor{
		signer:      signer,
		submitter:   submitter,
		query:       query,
		gasObjectID: opts.GasObjectID,
		logger:      opts.Logger,
		timeout:     opts.Timeout,
	}
}

// Signer returns the signer address this executor submits as.
func (e *Executor) Signer() string {
	return e.signer
}

// Submit signs and executes the request, blocking until the ledger reports
// finality. A failed execution returns a failure Result with nil error;
// a non-nil error means the submission itself could not complete (transport
// failure, client-side validation) and the on-chain outcome is unknown. The
// two are never conflated.
func (e *Executor) Submit(ctx context.Context, req *operation.Request) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.submitter.Execute(ctx, e.signer, req, e.gasObjectID)
	elapsed := time.Since(start)

	if err != nil {
		e.log(ctx, req, "", elapsed, "error", "", err.Error())
		return nil, err
	}

	result := &Result{
		Digest: resp.Digest,
		Events: resp.Events,
		kind:   string(req.Kind),
		caps:   req.CapabilityIDs(),
	}

	if resp.Status == ledger.StatusSuccess {
		result.Status = StatusSuccess
		e.log(ctx, req, resp.Digest, elapsed, "success", "", "")
	} else {
		result.Status = StatusFailure
		result.Raw = resp.Error
		result.ErrorKind = MapRawError(resp.Error)
		e.log(ctx, req, resp.Digest, elapsed, "rejected", string(result.ErrorKind), resp.Error)
	}

	// The gas object version moved regardless of outcome; observe it
	// before the next mutating submission.
	e.refreshGasLocked(ctx)

	return result, nil
}

// VerifyLayout confirms the builder's call layout against the live deployed
// interface with a dry run. Must pass before the first mutating use of a
// newly configured layout.
func (e *Executor) VerifyLayout(ctx context.Context, req *operation.Request) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.submitter.DryRun(ctx, e.signer, req)
	if err != nil {
		return err
	}
	if resp.Status != ledger.StatusSuccess {
		kind := MapRawError(resp.Error)
		return errors.NewLedgerRejected(kind, string(req.Kind)+" (dry run)", req.CapabilityIDs(), resp.Error)
	}
	return nil
}

// RefreshGas re-observes the signer's fee-paying object. Called internally
// after every mutating submission; exposed for callers that interleave
// other mutations.
func (e *Executor) RefreshGas(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshGasLocked(ctx)
}

// GasVersion returns the last observed version of the gas object.
func (e *Executor) GasVersion() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gasVersion
}

// refreshGasLocked re-observes the fee-paying object. The submission
// envelope carries the gas object by id only; the node resolves its
// current version at execution time, so the observed version is never
// attached to the next request. The observation exists to block the next
// submission, under the same mutex, until the post-execution version is
// visible: submitting while the node still serves the pre-execution view
// is what triggers the stale-version rejection.
func (e *Executor) refreshGasLocked(ctx context.Context) {
	if e.gasObjectID == "" || e.query == nil {
		return
	}
	obj, err := e.query.GetObject(ctx, e.gasObjectID)
	if err != nil {
		// A failed refresh is not fatal here; the next submission will
		// surface the stale version explicitly.
		return
	}
	e.gasVersion = obj.Version
}

func (e *Executor) log(ctx context.Context, req *operation.Request, digest string, elapsed time.Duration, outcome, errorKind, errMsg string) {
	entry := observability.OperationLogEntry{
		OperationID:   req.ID,
		Signer:        e.signer,
		Kind:          string(req.Kind),
		Capabilities:  req.CapabilityIDs(),
		Recipient:     req.Recipient,
		Digest:        digest,
		ExecutionTime: elapsed,
		Outcome:       outcome,
		ErrorKind:     errorKind,
		Error:         errMsg,
	}
	if req.Amount != nil {
		entry.AmountBaseUnits = uint64(*req.Amount)
	}
	// Audit logging must not mask the operation outcome; a logging
	// failure is reported on stderr by the logger itself.
	_ = e.logger.LogOperation(ctx, entry)
}
