package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrEmpty is returned when a title produces no usable slug characters.
	ErrEmpty = errors.New("slug: title produces an empty slug")

	// ErrTaken is returned by Resolve under PolicyReject when the slug is
	// already used in the scope.
	ErrTaken = errors.New("slug: already taken")
)

// Scope answers whether a slug is already used by a row in some collection
// (all courses, all blog posts, ...).
type Scope interface {
	Exists(ctx context.Context, slug string) (bool, error)
}

// ScopeFunc adapts a plain function to the Scope interface.
type ScopeFunc func(ctx context.Context, slug string) (bool, error)

// Exists calls f(ctx, slug).
func (f ScopeFunc) Exists(ctx context.Context, slug string) (bool, error) {
	return f(ctx, slug)
}

// Policy decides what happens when a generated slug collides.
type Policy string

const (
	// PolicyReject refuses a title whose slug already exists.
	PolicyReject Policy = "reject"
	// PolicySuffix appends -1, -2, ... until the slug is free.
	PolicySuffix Policy = "suffix"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyReject, PolicySuffix:
		return Policy(s), nil
	}
	return "", fmt.Errorf("slug: unknown policy %q", s)
}

// Suffix returns base with a numeric suffix, e.g. Suffix("intro", 2) → "intro-2".
func Suffix(base string, n int) string {
	return base + "-" + strconv.Itoa(n)
}

// Unique slugifies text and probes the scope until it finds a free slug,
// appending an increasing counter to the base. Lookup errors are returned
// as-is; there is no retry and no upper bound on the counter.
//
// The probe is not atomic with the caller's insert. A unique constraint
// in storage has the final say.
func Unique(ctx context.Context, text string, scope Scope) (string, error) {
	base := Generate(text)
	if base == "" {
		return "", ErrEmpty
	}

	candidate := base
	for counter := 0; ; {
		exists, err := scope.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		counter++
		candidate = Suffix(base, counter)
	}
}

// Resolve applies the policy: PolicySuffix behaves like Unique, PolicyReject
// returns ErrTaken when the base slug is already used.
func Resolve(ctx context.Context, text string, scope Scope, policy Policy) (string, error) {
	if policy == PolicySuffix {
		return Unique(ctx, text, scope)
	}

	base := Generate(text)
	if base == "" {
		return "", ErrEmpty
	}
	exists, err := scope.Exists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("probe slug %q: %w", base, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrTaken, base)
	}
	return base, nil
}
