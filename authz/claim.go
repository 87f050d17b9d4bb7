package authz

import (
	"context"

	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/firing"
	"github.com/yawlrun/yawlrun/net"
)

// Registry maps a required scope name to the policy guarding it. A human
// offer's RequiredScope is looked up here at claim time; an offer whose
// scope has no registered policy is refused.
type Registry struct {
	resolver ActorResolver
	policies map[Scope]Policy
}

// NewRegistry builds an empty policy registry bound to resolver.
func NewRegistry(resolver ActorResolver) *Registry {
	return &Registry{resolver: resolver, policies: make(map[Scope]Policy)}
}

// Register associates scope with policy. A claim against an offer whose
// RequiredScope equals scope is evaluated against policy.
func (r *Registry) Register(scope Scope, policy Policy) {
	r.policies[Normalize(string(scope))] = policy
}

// AuthorizeClaim resolves userID to an Actor, checks it against the
// policy registered for wi's offer scope (and, if RequiredGroup is set,
// that the actor belongs to it), and on success calls
// firing.ClaimWorkItem. CodePolicyDeny is returned on refusal.
func AuthorizeClaim(ctx context.Context, rc *ctxrun.Context, reg *Registry, wi *net.WorkItem, userID string) error {
	if wi.Offer.Kind == net.OfferAutomated {
		return firing.ClaimWorkItem(rc, wi, net.Claim{Kind: net.ClaimAutomated})
	}
	actor, err := reg.resolver.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	scope := Normalize(wi.Offer.RequiredScope)
	policy, ok := reg.policies[scope]
	if !ok {
		return errs.New(errs.CodePolicyDeny, nil, map[string]any{
			"workItem": wi.ID.String(), "scope": string(scope), "reason": "no policy registered for this scope",
		})
	}
	allowed, err := policy.Evaluate(ctx, actor)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.New(errs.CodePolicyDeny, nil, map[string]any{
			"workItem": wi.ID.String(), "scope": string(scope), "user": userID,
		})
	}
	if wi.Offer.RequiredGroup != "" && !actor.InGroup(wi.Offer.RequiredGroup) {
		return errs.New(errs.CodePolicyDeny, nil, map[string]any{
			"workItem": wi.ID.String(), "group": wi.Offer.RequiredGroup, "user": userID,
		})
	}
	return firing.ClaimWorkItem(rc, wi, net.Claim{Kind: net.ClaimHuman, UserID: userID})
}
