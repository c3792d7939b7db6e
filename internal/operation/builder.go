package operation

import (
	"strings"

	"github.com/helios-labs/tokenops/internal/amount"
	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/errors"
)

// Builder assembles operation requests against a single call layout. All
// local validation (amounts, reasons, address heuristics) happens here,
// before any network interaction.
type Builder struct {
	packageID string
	module    string
	layout    CallLayout

	// MaxSupply, when non-zero, caps mint amounts. Supplied by the caller
	// from contract metadata; never computed here.
	MaxSupply amount.Amount
}

// NewBuilder creates a builder for the deployed package and module.
func NewBuilder(packageID, module string, layout CallLayout) *Builder {
	return &Builder{packageID: packageID, module: module, layout: layout}
}

// Layout returns the builder's call layout.
func (b *Builder) Layout() CallLayout { return b.layout }

// BuildMint assembles a mint of `amt` base units to `recipient`. The minted
// coin is attached as a transfer-of-result step; the recipient is not a
// mint argument.
func (b *Builder) BuildMint(treasury, adminRegistry, pauseState capability.Ref, amt amount.Amount, recipient string) (*Request, error) {
	if err := amount.Validate(amt, amount.ValidateOptions{Operation: "mint", MaxSupply: b.MaxSupply}); err != nil {
		return nil, err
	}
	if err := checkAddress(recipient); err != nil {
		return nil, err
	}

	steps := []Step{
		{
			Kind:   StepMoveCall,
			Target: target(b.packageID, b.module, "mint"),
			Args:   b.layout.mintArgs(treasury, adminRegistry, pauseState, amt),
		},
		{
			Kind:      StepTransferObjects,
			Objects:   []Arg{Result(0)},
			Recipient: recipient,
		},
	}

	req := newRequest(KindMint, []capability.Ref{treasury, adminRegistry, pauseState}, steps)
	req.Amount = &amt
	req.Recipient = recipient
	return req, nil
}

// BuildBurn assembles a burn against an owned coin. With a nil amount, or an
// amount at or above the coin's balance, the whole object is burned with no
// split step. Otherwise a split step produces a coin of exactly `amt` and
// the burn consumes that result; both steps share one atomic request.
func (b *Builder) BuildBurn(treasury, pauseState capability.Ref, coin CoinRef, amt *amount.Amount) (*Request, error) {
	if amt != nil {
		if err := amount.Validate(*amt, amount.ValidateOptions{Operation: "burn"}); err != nil {
			return nil, err
		}
	}

	wholeObject := amt == nil || uint64(*amt) >= coin.Balance

	var steps []Step
	if wholeObject {
		steps = []Step{
			{
				Kind:   StepMoveCall,
				Target: target(b.packageID, b.module, "burn"),
				Args:   b.layout.burnArgs(treasury, Object(coin.ObjectID), pauseState),
			},
		}
	} else {
		steps = []Step{
			{
				Kind:    StepSplitCoins,
				Coin:    Object(coin.ObjectID),
				Amounts: []uint64{uint64(*amt)},
			},
			{
				Kind:   StepMoveCall,
				Target: target(b.packageID, b.module, "burn"),
				Args:   b.layout.burnArgs(treasury, Result(0), pauseState),
			},
		}
	}

	req := newRequest(KindBurn, []capability.Ref{treasury, pauseState}, steps)
	if amt != nil && !wholeObject {
		req.Amount = amt
	}
	return req, nil
}

// BuildTransferCapability assembles a plain ownership transfer of a
// capability object. The new owner is validated only with the prefix/length
// heuristic; full address-format correctness is left to the ledger.
func (b *Builder) BuildTransferCapability(ref capability.Ref, newOwner string) (*Request, error) {
	if err := checkAddress(newOwner); err != nil {
		return nil, err
	}

	steps := []Step{
		{
			Kind:      StepTransferObjects,
			Objects:   []Arg{Object(ref.ObjectID)},
			Recipient: newOwner,
		},
	}

	req := newRequest(KindTransferCapability, []capability.Ref{ref}, steps)
	req.Recipient = newOwner
	return req, nil
}

// BuildAdminChange assembles an update of the registry's recorded
// administrator address. This does not transfer the admin capability
// object: registry pointer and capability possession are independently
// transferable by the contract's design, and a complete handoff is
// BuildAdminChange followed by BuildTransferCapability on the admin cap.
func (b *Builder) BuildAdminChange(treasury, admin, adminRegistry capability.Ref, newAdmin string) (*Request, error) {
	if err := checkAddress(newAdmin); err != nil {
		return nil, err
	}

	steps := []Step{
		{
			Kind:   StepMoveCall,
			Target: target(b.packageID, b.module, "update_admin"),
			Args:   b.layout.adminChangeArgs(treasury, admin, adminRegistry, newAdmin),
		},
	}

	req := newRequest(KindAdminChange, []capability.Ref{treasury, admin, adminRegistry}, steps)
	req.Recipient = newAdmin
	return req, nil
}

// BuildPause assembles a pause with a mandatory non-empty reason, rejected
// locally before any network call.
func (b *Builder) BuildPause(adminRegistry, pauseState capability.Ref, reason string) (*Request, error) {
	return b.buildPauseToggle(KindPause, "pause", adminRegistry, pauseState, reason)
}

// BuildUnpause assembles an unpause. The reason requirement is the same as
// for pause.
func (b *Builder) BuildUnpause(adminRegistry, pauseState capability.Ref, reason string) (*Request, error) {
	return b.buildPauseToggle(KindUnpause, "unpause", adminRegistry, pauseState, reason)
}

func (b *Builder) buildPauseToggle(kind Kind, fn string, adminRegistry, pauseState capability.Ref, reason string) (*Request, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.NewEmptyReason(fn)
	}

	steps := []Step{
		{
			Kind:   StepMoveCall,
			Target: target(b.packageID, b.module, fn),
			Args:   b.layout.pauseArgs(adminRegistry, pauseState, reason),
		},
	}

	req := newRequest(kind, []capability.Ref{adminRegistry, pauseState}, steps)
	req.Reason = reason
	return req, nil
}

// checkAddress applies the prefix/length heuristic. Deliberately weak: it
// catches swapped arguments and truncated paste errors, nothing more.
func checkAddress(addr string) error {
	if !strings.HasPrefix(addr, "0x") {
		return errors.NewInvalidAddress(addr, "missing 0x prefix")
	}
	if len(addr) < 4 || len(addr) > 66 {
		return errors.NewInvalidAddress(addr, "implausible length")
	}
	return nil
}
