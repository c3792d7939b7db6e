package capability

import (
	"context"
	"log"

	"github.com/helios-labs/tokenops/internal/errors"
	"github.com/helios-labs/tokenops/internal/ledger"
)

// Fallback looks up pinned object ids from a persisted deployment record.
// Consulted read-only, and only when on-chain discovery fails.
type Fallback interface {
	ObjectFor(kind Kind) (objectID string, ok bool)
}

// Locator resolves capability references by type and ownership. One locator
// is constructed per invocation and passed explicitly; it holds no global
// state. Resolutions are cached for the lifetime of the locator.
type Locator struct {
	query     ledger.QueryClient
	packageID string
	module    string
	fallback  Fallback

	// AllowAmbiguous restores the legacy first-match-with-warning policy.
	// Off by default: multiple matches fail hard.
	AllowAmbiguous bool

	// Warnf receives non-fatal warnings. Defaults to log.Printf.
	Warnf func(format string, args ...interface{})

	cache map[string]Ref
}

// NewLocator creates a locator over the given query client. The fallback may
// be nil when no deployment manifest is configured.
func NewLocator(query ledger.QueryClient, packageID, module string, fallback Fallback) *Locator {
	return &Locator{
		query:     query,
		packageID: packageID,
		module:    module,
		fallback:  fallback,
		Warnf:     log.Printf,
		cache:     make(map[string]Ref),
	}
}

// PatternFor builds the type pattern for a capability kind.
func (l *Locator) PatternFor(kind Kind) TypePattern {
	return TypePattern{PackageID: l.packageID, Module: l.module, Struct: kind.StructName()}
}

// ResolveOwned resolves a capability object owned by the given address.
// Zero matches is a hard CapabilityNotFound. Multiple matches fail with
// CapabilityAmbiguous unless AllowAmbiguous is set, in which case the first
// match is taken with a warning.
func (l *Locator) ResolveOwned(ctx context.Context, owner string, kind Kind) (Ref, error) {
	pattern := l.PatternFor(kind)
	cacheKey := "owned:" + owner + ":" + pattern.String()
	if ref, ok := l.cache[cacheKey]; ok {
		return ref, nil
	}

	objects, err := l.query.OwnedObjects(ctx, owner)
	if err != nil {
		if ref, ok := l.fromFallback(kind, Ownership{Address: owner}); ok {
			l.warnf("capability discovery failed (%v); using manifest fallback for %s", err, kind)
			l.cache[cacheKey] = ref
			return ref, nil
		}
		return Ref{}, err
	}

	matches := filterByPattern(objects, pattern)
	ref, err := l.pick(kind, pattern, matches, Ownership{Address: owner}, owner)
	if err != nil {
		return Ref{}, err
	}
	l.cache[cacheKey] = ref
	return ref, nil
}

// ResolveShared resolves a shared object by type, used for the admin
// registry and pause state. Same matching and ambiguity rules as
// ResolveOwned.
func (l *Locator) ResolveShared(ctx context.Context, kind Kind) (Ref, error) {
	pattern := l.PatternFor(kind)
	cacheKey := "shared:" + pattern.String()
	if ref, ok := l.cache[cacheKey]; ok {
		return ref, nil
	}

	objects, err := l.query.ObjectsByType(ctx, pattern.String())
	if err != nil {
		if ref, ok := l.fromFallback(kind, Ownership{Shared: true}); ok {
			l.warnf("capability discovery failed (%v); using manifest fallback for %s", err, kind)
			l.cache[cacheKey] = ref
			return ref, nil
		}
		return Ref{}, err
	}

	shared := make([]ledger.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Shared {
			shared = append(shared, obj)
		}
	}
	matches := filterByPattern(shared, pattern)
	ref, err := l.pick(kind, pattern, matches, Ownership{Shared: true}, "")
	if err != nil {
		return Ref{}, err
	}
	l.cache[cacheKey] = ref
	return ref, nil
}

func (l *Locator) pick(kind Kind, pattern TypePattern, matches []ledger.ObjectInfo, ownership Ownership, owner string) (Ref, error) {
	switch {
	case len(matches) == 0:
		if ref, ok := l.fromFallback(kind, ownership); ok {
			return ref, nil
		}
		return Ref{}, errors.NewCapabilityNotFound(kind.String(), owner, pattern.String())
	case len(matches) > 1:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ObjectID
		}
		if !l.AllowAmbiguous {
			return Ref{}, errors.NewCapabilityAmbiguous(pattern.String(), ids)
		}
		l.warnf("ambiguous capability %s: %d matches, using first (%s)", pattern, len(matches), ids[0])
	}
	return Ref{
		Kind:      kind,
		ObjectID:  matches[0].ObjectID,
		Ownership: ownership,
		PackageID: l.packageID,
	}, nil
}

func (l *Locator) fromFallback(kind Kind, ownership Ownership) (Ref, bool) {
	if l.fallback == nil {
		return Ref{}, false
	}
	id, ok := l.fallback.ObjectFor(kind)
	if !ok || id == "" {
		return Ref{}, false
	}
	return Ref{Kind: kind, ObjectID: id, Ownership: ownership, PackageID: l.packageID}, true
}

func (l *Locator) warnf(format string, args ...interface{}) {
	if l.Warnf != nil {
		l.Warnf(format, args...)
	}
}

func filterByPattern(objects []ledger.ObjectInfo, pattern TypePattern) []ledger.ObjectInfo {
	var matches []ledger.ObjectInfo
	for _, obj := range objects {
		if pattern.Matches(obj.Type) {
			matches = append(matches, obj)
		}
	}
	return matches
}
