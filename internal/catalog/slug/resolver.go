package slug

import (
	"context"
	"fmt"
	"strconv"
)

// Lookup reports whether slug is held by any product other than excludeID.
// An empty excludeID excludes nothing.
type Lookup interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, slug, excludeID string) (bool, error)

func (f LookupFunc) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return f(ctx, slug, excludeID)
}

// Resolver finds the first free variant of a base slug: base, base-1,
// base-2, and so on. The answer only holds at the moment of the check;
// writers must still handle a uniqueness violation from the store.
type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

func (r *Resolver) Resolve(ctx context.Context, base, excludeID string) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		taken, err := r.lookup.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
