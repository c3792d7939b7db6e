// Package operation assembles privileged ledger calls. The builder owns the
// canonical, version-stable capability-ordering contract: the underlying
// call is position-sensitive, so argument order is part of a request's
// identity and must never vary between call sites.
package operation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
)

// Kind identifies a privileged operation.
type Kind string

const (
	KindMint               Kind = "MINT"
	KindBurn               Kind = "BURN"
	KindTransferCapability Kind = "TRANSFER_CAPABILITY"
	KindAdminChange        Kind = "ADMIN_CHANGE"
	KindPause              Kind = "PAUSE"
	KindUnpause            Kind = "UNPAUSE"
)

// ArgKind tags the variant of a call argument.
type ArgKind string

const (
	// ArgObject references an on-chain object by id.
	ArgObject ArgKind = "object"

	// ArgPure is an inline value (amount, address, string).
	ArgPure ArgKind = "pure"

	// ArgResult references the output of an earlier step in the same
	// request.
	ArgResult ArgKind = "result"
)

// Arg is a single positional call argument.
type Arg struct {
	Kind     ArgKind     `json:"kind"`
	ObjectID string      `json:"object_id,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Step     int         `json:"step,omitempty"`
}

// Object builds an object argument.
func Object(id string) Arg { return Arg{Kind: ArgObject, ObjectID: id} }

// Pure builds an inline value argument.
func Pure(v interface{}) Arg { return Arg{Kind: ArgPure, Value: v} }

// Result builds an argument referencing the output of step i.
func Result(i int) Arg { return Arg{Kind: ArgResult, Step: i} }

// StepKind tags the variant of a request step.
type StepKind string

const (
	StepMoveCall        StepKind = "move_call"
	StepSplitCoins      StepKind = "split_coins"
	StepTransferObjects StepKind = "transfer_objects"
)

// Step is one command inside an atomic request. All steps of a request
// execute in a single transaction; a failure rolls back every step.
type Step struct {
	Kind StepKind `json:"kind"`

	// Target is package::module::function, for move_call steps.
	Target string `json:"target,omitempty"`

	// Args are the positional call arguments, for move_call steps.
	Args []Arg `json:"args,omitempty"`

	// Coin is the coin being split, for split_coins steps.
	Coin Arg `json:"coin,omitempty"`

	// Amounts are the split amounts in base units, for split_coins steps.
	Amounts []uint64 `json:"amounts,omitempty"`

	// Objects are the objects transferred, for transfer_objects steps.
	Objects []Arg `json:"objects,omitempty"`

	// Recipient is the transfer recipient, for transfer_objects steps.
	Recipient string `json:"recipient,omitempty"`
}

// CoinRef identifies an owned coin used as a burn input.
type CoinRef struct {
	ObjectID string
	Balance  uint64
	Version  uint64
	Digest   string
}

// Request is a fully assembled operation, immutable once built. The order
// of Capabilities is part of its identity. The ID doubles as an idempotency
// key so an ambiguous network failure can be diagnosed without blind
// re-submission.
type Request struct {
	ID           string           `json:"id"`
	Kind         Kind             `json:"kind"`
	Capabilities []capability.Ref `json:"-"`
	Amount       *amount.Amount   `json:"amount,omitempty"`
	Recipient    string           `json:"recipient,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	Steps        []Step           `json:"steps"`
}

// CapabilityIDs returns the resolved capability object ids in canonical
// order, for error reports and audit logging.
func (r *Request) CapabilityIDs() []string {
	ids := make([]string, len(r.Capabilities))
	for i, ref := range r.Capabilities {
		ids[i] = ref.ObjectID
	}
	return ids
}

func newRequest(kind Kind, caps []capability.Ref, steps []Step) *Request {
	return &Request{
		ID:           uuid.NewString(),
		Kind:         kind,
		Capabilities: caps,
		Steps:        steps,
	}
}

func target(packageID, module, fn string) string {
	return fmt.Sprintf("%s::%s::%s", packageID, module, fn)
}
