package authz

import "context"

// Actor is the resolved identity attempting to claim a work item. Group
// membership and scope grants are supplied by the host application's
// identity provider through an ActorResolver; this package never
// persists actor state itself.
type Actor struct {
	UserID string
	Groups []string
	Scopes []Scope
}

// HasScope reports whether the actor has been granted a scope that
// contains (or equals) required.
func (a Actor) HasScope(required Scope) bool {
	for _, s := range a.Scopes {
		if s.Contains(required) {
			return true
		}
	}
	return false
}

// InGroup reports whether the actor is a member of group.
func (a Actor) InGroup(group string) bool {
	for _, g := range a.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// ActorResolver resolves a raw user id (as supplied on a claim request)
// into an Actor with its current scope grants and group memberships.
type ActorResolver interface {
	Resolve(ctx context.Context, userID string) (Actor, error)
}

// Predicate evaluates whether an Actor satisfies a named policy leaf.
type Predicate func(ctx context.Context, actor Actor) (bool, error)

// Policy is a boolean composition of predicates: AND requires all to
// pass, OR requires at least one, NOT negates a single child.
type Policy struct {
	op    policyOp
	preds []Predicate
	child *Policy
}

type policyOp int

const (
	opLeaf policyOp = iota
	opAnd
	opOr
	opNot
)

// RequireScope builds a leaf policy requiring the actor hold required.
func RequireScope(required Scope) Policy {
	return Policy{op: opLeaf, preds: []Predicate{
		func(_ context.Context, a Actor) (bool, error) { return a.HasScope(required), nil },
	}}
}

// RequireGroup builds a leaf policy requiring the actor belong to group.
func RequireGroup(group string) Policy {
	return Policy{op: opLeaf, preds: []Predicate{
		func(_ context.Context, a Actor) (bool, error) { return a.InGroup(group), nil },
	}}
}

// And combines policies, all of which must pass.
func And(policies ...Policy) Policy {
	return Policy{op: opAnd, preds: flatten(policies)}
}

// Or combines policies, at least one of which must pass.
func Or(policies ...Policy) Policy {
	return Policy{op: opOr, preds: flatten(policies)}
}

// Not negates p.
func Not(p Policy) Policy {
	return Policy{op: opNot, child: &p}
}

func flatten(policies []Policy) []Predicate {
	preds := make([]Predicate, len(policies))
	for i, p := range policies {
		pc := p
		preds[i] = func(ctx context.Context, a Actor) (bool, error) { return pc.Evaluate(ctx, a) }
	}
	return preds
}

// Evaluate runs the policy tree against actor.
func (p Policy) Evaluate(ctx context.Context, actor Actor) (bool, error) {
	switch p.op {
	case opNot:
		ok, err := p.child.Evaluate(ctx, actor)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case opOr:
		for _, pred := range p.preds {
			ok, err := pred(ctx, actor)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case opAnd, opLeaf:
		for _, pred := range p.preds {
			ok, err := pred(ctx, actor)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}
