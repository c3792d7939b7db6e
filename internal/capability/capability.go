// Package capability defines the capability reference model and the locator
// that resolves unforgeable capability objects on the ledger.
//
// A capability object's possession grants exclusive permission to perform a
// restricted operation. The locator is the single place capability discovery
// happens; call sites never query object types ad hoc.
package capability

import (
	"fmt"
	"strings"
)

// Kind identifies a capability or shared-state object role.
type Kind string

const (
	// KindTreasury is the treasury capability gating mint and burn.
	KindTreasury Kind = "TREASURY"

	// KindAdmin is the admin capability object. Distinct from the admin
	// registry pointer: both are independently transferable.
	KindAdmin Kind = "ADMIN"

	// KindAdminRegistry is the shared registry recording the current
	// administrator address.
	KindAdminRegistry Kind = "ADMIN_REGISTRY"

	// KindPauseState is the shared state gating mutating operations.
	KindPauseState Kind = "PAUSE_STATE"

	// KindUpgrade is the package upgrade capability.
	KindUpgrade Kind = "UPGRADE"
)

// AllKinds returns all valid capability kinds.
func AllKinds() []Kind {
	return []Kind{KindTreasury, KindAdmin, KindAdminRegistry, KindPauseState, KindUpgrade}
}

// IsValid checks if the kind is known.
func (k Kind) IsValid() bool {
	for _, valid := range AllKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Shared reports whether objects of this kind live as shared ledger state
// rather than owned objects.
func (k Kind) Shared() bool {
	return k == KindAdminRegistry || k == KindPauseState
}

// StructName returns the on-chain struct name for the kind.
func (k Kind) StructName() string {
	switch k {
	case KindTreasury:
		return "TreasuryCap"
	case KindAdmin:
		return "AdminCap"
	case KindAdminRegistry:
		return "AdminRegistry"
	case KindPauseState:
		return "PauseState"
	case KindUpgrade:
		return "UpgradeCap"
	default:
		return ""
	}
}

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid capability kind: %s (valid: %v)", s, AllKinds())
	}
	return k, nil
}

// Ownership describes who controls a resolved object.
type Ownership struct {
	// Shared is true for shared objects; Address is empty then.
	Shared bool

	// Address is the owning address for owned objects.
	Address string
}

func (o Ownership) String() string {
	if o.Shared {
		return "shared"
	}
	return "owned by " + o.Address
}

// Ref is a resolved capability reference. Immutable once resolved within an
// invocation; a later invocation re-resolves and may observe a new version.
type Ref struct {
	Kind      Kind
	ObjectID  string
	Ownership Ownership
	PackageID string
}

// String renders the reference for logs and error reports.
func (r Ref) String() string {
	return fmt.Sprintf("%s(%s, %s)", r.Kind, r.ObjectID, r.Ownership)
}

// TypePattern matches on-chain object types of the form
// package::module::Struct.
type TypePattern struct {
	PackageID string
	Module    string
	Struct    string
}

// String renders the canonical package::module::Struct form.
func (p TypePattern) String() string {
	return fmt.Sprintf("%s::%s::%s", p.PackageID, p.Module, p.Struct)
}

// Matches checks an object type string against the pattern. Matching is by
// exact package, module, and struct. Generic type parameters on the object
// type (e.g. TreasuryCap<...::TOKEN>) are ignored.
func (p TypePattern) Matches(objectType string) bool {
	base := objectType
	if i := strings.IndexByte(base, '<'); i >= 0 {
		base = base[:i]
	}
	parts := strings.Split(base, "::")
	if len(parts) != 3 {
		return false
	}
	return parts[0] == p.PackageID && parts[1] == p.Module && parts[2] == p.Struct
}
