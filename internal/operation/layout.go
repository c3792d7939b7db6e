package operation

import (
	"fmt"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
)

// CallLayout is the versioned argument layout for the deployed contract
// interface. Historical call sites disagreed on mint order and arity, so
// the layout is explicit configuration, selected once per invocation and
// confirmed against the live interface with a dry run before the first
// mutating use. It is never guessed per call site.
type CallLayout struct {
	version int
}

// LayoutV1 is the current deployed interface:
// mint(treasury_cap, amount, admin_registry, pause_state), with the
// recipient attached as a transfer-of-result step rather than a call
// argument.
const LayoutV1 = 1

// NewCallLayout selects a layout version. Unknown versions fail; there is
// no default-to-latest behavior.
func NewCallLayout(version int) (CallLayout, error) {
	if version != LayoutV1 {
		return CallLayout{}, fmt.Errorf("unknown call layout version %d (supported: %d)", version, LayoutV1)
	}
	return CallLayout{version: version}, nil
}

// Version returns the selected layout version.
func (l CallLayout) Version() int { return l.version }

// mintArgs returns the positional mint arguments in canonical order.
func (l CallLayout) mintArgs(treasury, adminRegistry, pauseState capability.Ref, amt amount.Amount) []Arg {
	// v1 order: treasury cap, amount, admin registry, pause state.
	return []Arg{
		Object(treasury.ObjectID),
		Pure(uint64(amt)),
		Object(adminRegistry.ObjectID),
		Object(pauseState.ObjectID),
	}
}

// burnArgs returns the positional burn arguments in canonical order.
func (l CallLayout) burnArgs(treasury capability.Ref, coin Arg, pauseState capability.Ref) []Arg {
	return []Arg{
		Object(treasury.ObjectID),
		coin,
		Object(pauseState.ObjectID),
	}
}

// adminChangeArgs returns the positional set-admin arguments.
func (l CallLayout) adminChangeArgs(treasury, admin, adminRegistry capability.Ref, newAdmin string) []Arg {
	return []Arg{
		Object(treasury.ObjectID),
		Object(admin.ObjectID),
		Object(adminRegistry.ObjectID),
		Pure(newAdmin),
	}
}

// pauseArgs returns the positional pause/unpause arguments.
func (l CallLayout) pauseArgs(adminRegistry, pauseState capability.Ref, reason string) []Arg {
	return []Arg{
		Object(adminRegistry.ObjectID),
		Object(pauseState.ObjectID),
		Pure(reason),
	}
}
