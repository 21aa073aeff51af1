package repositories

import (
	"context"
	"sort"
)

// heldContextKey is the type for lock context keys
type heldContextKey string

// heldKey is the context key for the set of held document locks
const heldKey heldContextKey = "held_documents"

// WithHeld records kinds as locked by the caller.
func WithHeld(ctx context.Context, kinds ...DocumentKind) context.Context {
	held := make(map[DocumentKind]struct{}, len(kinds))
	for k := range heldSet(ctx) {
		held[k] = struct{}{}
	}
	for _, k := range kinds {
		held[k] = struct{}{}
	}
	return context.WithValue(ctx, heldKey, held)
}

// Holds reports whether the caller already holds the lock of kind.
func Holds(ctx context.Context, kind DocumentKind) bool {
	_, ok := heldSet(ctx)[kind]
	return ok
}

// SortKinds returns kinds deduplicated, in lock acquisition order.
func SortKinds(kinds []DocumentKind) []DocumentKind {
	seen := make(map[DocumentKind]struct{}, len(kinds))
	out := make([]DocumentKind, 0, len(kinds))
	for _, k := range kinds {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func heldSet(ctx context.Context) map[DocumentKind]struct{} {
	held, _ := ctx.Value(heldKey).(map[DocumentKind]struct{})
	return held
}
