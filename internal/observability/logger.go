// Package observability provides structured logging for tokenops.
//
// Every submitted operation must emit: operation_id, signer, kind,
// capability ids used, amount, digest, outcome, execution time, and error
// (if any). Silent failures are forbidden.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// OperationLogEntry contains all required fields for operation logging.
type OperationLogEntry struct {
	// OperationID is the unique identifier (idempotency key) of the
	// operation. Required.
	OperationID string

	// Signer is the address that signed the operation. Required.
	Signer string

	// Kind is the operation kind attempted. Required.
	Kind string

	// Capabilities are the resolved capability object ids used, in
	// canonical order.
	Capabilities []string

	// AmountBaseUnits is the amount in base units, when the operation
	// carries one.
	AmountBaseUnits uint64

	// Recipient is the recipient address, when applicable.
	Recipient string

	// Digest is the transaction digest, empty if submission never
	// reached the ledger.
	Digest string

	// ExecutionTime is how long the submission took. Must be
	// non-negative.
	ExecutionTime time.Duration

	// Outcome is the result status: "success", "rejected", "error".
	Outcome string

	// ErrorKind is the mapped ledger error kind for rejections.
	ErrorKind string

	// Error is the raw failure message. Empty for successes.
	Error string
}

// Validate checks that all required fields are present.
func (e *OperationLogEntry) Validate() error {
	if e.OperationID == "" {
		return fmt.Errorf("observability: operation_id is required")
	}
	if e.Signer == "" {
		return fmt.Errorf("observability: signer is required")
	}
	if e.Kind == "" {
		return fmt.Errorf("observability: kind is required")
	}
	if e.ExecutionTime < 0 {
		return fmt.Errorf("observability: execution_time cannot be negative")
	}
	return nil
}

// OperationLogger is the interface for operation logging.
type OperationLogger interface {
	// LogOperation logs one submission. Returns an error if logging
	// fails or the entry is invalid.
	LogOperation(ctx context.Context, entry OperationLogEntry) error

	// GetAuditSummary returns aggregated audit statistics.
	GetAuditSummary() *AuditSummary
}

// AuditSummary represents aggregated audit statistics.
type AuditSummary struct {
	SucceededCount      int                   `json:"succeeded_count"`
	RejectedCount       int                   `json:"rejected_count"`
	TopRejectionReasons []RejectionReasonStat `json:"top_rejection_reasons"`
	OperationCounts     []OperationStat       `json:"operation_counts"`
}

// RejectionReasonStat represents rejection reason statistics.
type RejectionReasonStat struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// OperationStat represents per-kind operation counts.
type OperationStat struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// jsonLogOutput is the structured format for JSON logs.
type jsonLogOutput struct {
	Timestamp       string   `json:"timestamp"`
	Level           string   `json:"level"`
	OperationID     string   `json:"operation_id"`
	Signer          string   `json:"signer"`
	Kind            string   `json:"kind"`
	Capabilities    []string `json:"capabilities"`
	AmountBaseUnits uint64   `json:"amount_base_units,omitempty"`
	Recipient       string   `json:"recipient,omitempty"`
	Digest          string   `json:"digest,omitempty"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	Outcome         string   `json:"outcome,omitempty"`
	ErrorKind       string   `json:"error_kind,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// JSONLogger implements OperationLogger with JSON line output.
type JSONLogger struct {
	writer  io.Writer
	entries []OperationLogEntry
	mu      sync.RWMutex
}

// NewJSONLogger creates a new JSON logger writing to the given writer.
func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{
		writer:  w,
		entries: make([]OperationLogEntry, 0),
	}
}

// LogOperation logs one submission as a JSON line.
func (l *JSONLogger) LogOperation(ctx context.Context, entry OperationLogEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("observability: context error: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(toOutput(entry))
	if err != nil {
		return fmt.Errorf("observability: failed to marshal log: %w", err)
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("observability: failed to write log: %w", err)
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return nil
}

// GetAuditSummary returns aggregated audit statistics.
func (l *JSONLogger) GetAuditSummary() *AuditSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return summarize(l.entries)
}

func toOutput(entry OperationLogEntry) jsonLogOutput {
	level := "info"
	if entry.Error != "" {
		level = "error"
	}
	out := jsonLogOutput{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Level:           level,
		OperationID:     entry.OperationID,
		Signer:          entry.Signer,
		Kind:            entry.Kind,
		Capabilities:    entry.Capabilities,
		AmountBaseUnits: entry.AmountBaseUnits,
		Recipient:       entry.Recipient,
		Digest:          entry.Digest,
		ExecutionTimeMs: entry.ExecutionTime.Milliseconds(),
		Outcome:         entry.Outcome,
		ErrorKind:       entry.ErrorKind,
		Error:           entry.Error,
	}
	if out.Capabilities == nil {
		out.Capabilities = []string{}
	}
	return out
}

func summarize(entries []OperationLogEntry) *AuditSummary {
	summary := &AuditSummary{
		TopRejectionReasons: []RejectionReasonStat{},
		OperationCounts:     []OperationStat{},
	}

	rejectionReasons := make(map[string]int)
	kindCounts := make(map[string]int)

	for _, entry := range entries {
		if entry.Error == "" {
			summary.SucceededCount++
		} else {
			summary.RejectedCount++
			reason := entry.ErrorKind
			if reason == "" {
				reason = entry.Error
			}
			rejectionReasons[reason]++
		}
		kindCounts[entry.Kind]++
	}

	for reason, count := range rejectionReasons {
		summary.TopRejectionReasons = append(summary.TopRejectionReasons, RejectionReasonStat{Reason: reason, Count: count})
	}
	sort.Slice(summary.TopRejectionReasons, func(i, j int) bool {
		return summary.TopRejectionReasons[i].Count > summary.TopRejectionReasons[j].Count
	})
	if len(summary.TopRejectionReasons) > 5 {
		summary.TopRejectionReasons = summary.TopRejectionReasons[:5]
	}

	for kind, count := range kindCounts {
		summary.OperationCounts = append(summary.OperationCounts, OperationStat{Kind: kind, Count: count})
	}
	sort.Slice(summary.OperationCounts, func(i, j int) bool {
		if summary.OperationCounts[i].Count != summary.OperationCounts[j].Count {
			return summary.OperationCounts[i].Count > summary.OperationCounts[j].Count
		}
		return summary.OperationCounts[i].Kind < summary.OperationCounts[j].Kind
	})

	return summary
}

// NoopLogger is a logger that discards all logs.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// LogOperation does nothing and always succeeds.
func (l *NoopLogger) LogOperation(ctx context.Context, entry OperationLogEntry) error {
	return nil
}

// GetAuditSummary returns an empty summary for the no-op logger.
func (l *NoopLogger) GetAuditSummary() *AuditSummary {
	return &AuditSummary{
		TopRejectionReasons: []RejectionReasonStat{},
		OperationCounts:     []OperationStat{},
	}
}
