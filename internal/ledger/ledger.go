// Package ledger defines the read and submit interfaces to the token ledger
// node, along with the wire-level types shared by the RPC client and the
// in-memory test ledger.
//
// Clients must be:
// - Stateless: each call is independent
// - Explicit: no silent retries, no hidden fallbacks
// - Context-aware: every round trip takes a context
package ledger

import (
	"context"
)

// ObjectInfo describes a single on-chain object as observed by a query.
type ObjectInfo struct {
	// ObjectID is the unique object identifier (0x-prefixed hex).
	ObjectID string `json:"object_id"`

	// Type is the full struct type, package::module::Struct.
	Type string `json:"type"`

	// Owner is the owning address, or empty for shared objects.
	Owner string `json:"owner,omitempty"`

	// Shared is true for shared objects.
	Shared bool `json:"shared,omitempty"`

	// Version is the object's current version. Submitting against a stale
	// version is rejected by the ledger.
	Version uint64 `json:"version"`

	// Digest is the object digest at Version.
	Digest string `json:"digest,omitempty"`

	// Fields are the object's top-level fields. Used by structural checks
	// (reentrancy marker detection) and status reporting.
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// Coin describes an owned coin object of the managed token type.
type Coin struct {
	ObjectID string `json:"object_id"`
	Balance  uint64 `json:"balance"`
	Version  uint64 `json:"version"`
	Digest   string `json:"digest,omitempty"`
}

// Event is a single event emitted during execution.
type Event struct {
	Type   string                 `json:"type"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// ExecutionStatus is the terminal status of a submitted operation.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "success"
	StatusFailure ExecutionStatus = "failure"
)

// ExecutionResponse is the node's report for a finalized submission.
type ExecutionResponse struct {
	// Digest is the transaction digest assigned by the ledger.
	Digest string `json:"digest"`

	// Status is the terminal execution status.
	Status ExecutionStatus `json:"status"`

	// Error is the raw failure message from the node. Preserved verbatim;
	// the executor maps it to an error kind but never discards it.
	Error string `json:"error,omitempty"`

	// Events are the events emitted by the execution.
	Events []Event `json:"events,omitempty"`

	// GasUsed is the fee consumed in base units.
	GasUsed uint64 `json:"gas_used"`
}

// QueryClient is the read-only ledger query interface. The capability
// locator, the executor's gas re-observation, and the security harness all
// depend on this and nothing more.
type QueryClient interface {
	// OwnedObjects lists all objects owned by the address.
	OwnedObjects(ctx context.Context, owner string) ([]ObjectInfo, error)

	// ObjectsByType lists shared objects of the given full struct type.
	ObjectsByType(ctx context.Context, objectType string) ([]ObjectInfo, error)

	// GetObject fetches a single object by id, including its fields.
	GetObject(ctx context.Context, objectID string) (*ObjectInfo, error)

	// Coins lists coins of the given type owned by the address.
	Coins(ctx context.Context, owner, coinType string) ([]Coin, error)

	// Balance returns the total balance of the given coin type for the
	// address.
	Balance(ctx context.Context, owner, coinType string) (uint64, error)
}
