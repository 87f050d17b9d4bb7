// Package authz implements the scope module tree, policy composition,
// and the actor-resolution plumbing behind work-item offer and claim:
// a human offer names a required scope (and optionally a group); a claim
// is only valid once its actor satisfies the policy guarding that scope.
package authz

import (
	"strings"

	"github.com/gosimple/slug"
)

// Scope is a dotted module identifier, e.g. "finance.invoices.approve".
// Scopes form a tree: "finance.invoices" is an ancestor of
// "finance.invoices.approve".
type Scope string

// Normalize slugifies every dot-separated segment of s, so that scope
// names entered by different callers compare equal regardless of casing
// or punctuation noise.
func Normalize(s string) Scope {
	parts := strings.Split(string(s), ".")
	for i, p := range parts {
		parts[i] = slug.Make(p)
	}
	return Scope(strings.Join(parts, "."))
}

// Contains reports whether ancestor is the same scope as, or a dotted
// prefix of, descendant.
func (s Scope) Contains(descendant Scope) bool {
	if s == descendant {
		return true
	}
	return strings.HasPrefix(string(descendant), string(s)+".")
}

// Segments splits the scope into its dotted path components.
func (s Scope) Segments() []string {
	return strings.Split(string(s), ".")
}
