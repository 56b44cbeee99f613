// Package authz implements the resource authorization policy as a pure
// decision function. Callers load the resource facts from the store,
// ask for a decision, and perform the mutation only after an Allow.
// The policy is total (never panics on well-formed inputs), side-effect
// free, and default-deny: any case not explicitly allowed is denied.
package authz

import (
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"

	"github.com/google/uuid"
)

// Action identifies the operation being authorized.
type Action string

const (
	// ActionReadService is a read of a single service listing.
	ActionReadService Action = "service:read"
	// ActionUpdateService is a mutation of a service listing's fields.
	ActionUpdateService Action = "service:update"
	// ActionDeleteService is the removal of a service listing.
	ActionDeleteService Action = "service:delete"
	// ActionCreateReview is the creation of a review on a service.
	ActionCreateReview Action = "review:create"
)

// Reason explains a denial. Reasons map 1:1 to externally visible
// error kinds at the boundary.
type Reason string

const (
	// ReasonNone accompanies an Allow decision.
	ReasonNone Reason = ""
	// ReasonForbidden covers ownership and role failures.
	ReasonForbidden Reason = "forbidden"
	// ReasonHidden denies reads of non-published listings by non-owners.
	// Reported as NotFound so draft listings do not leak their existence.
	ReasonHidden Reason = "hidden"
	// ReasonInvalidState denies deleting a listing with recorded purchases.
	ReasonInvalidState Reason = "invalid_state"
	// ReasonNotPurchased denies reviews without a matching transaction.
	ReasonNotPurchased Reason = "not_purchased"
	// ReasonDuplicateReview denies a second review for the same pair.
	ReasonDuplicateReview Reason = "duplicate_review"
)

// Actor is the authenticated entity making a request.
type Actor struct {
	ID         uuid.UUID
	Role       entity.Role
	ProviderID *uuid.UUID // Set only when the actor has a provider profile.
}

// ServiceFacts are the fields of a service listing the policy consults.
type ServiceFacts struct {
	OwnerProviderID uuid.UUID
	Status          entity.ServiceStatus
	PurchaseCount   int
}

// ReviewFacts are the store-derived preconditions for review creation.
// Ownership is re-derived by the caller at request time rather than
// trusting client-supplied identifiers.
type ReviewFacts struct {
	Purchased       bool // A transaction exists for (actor, service).
	AlreadyReviewed bool // A review by the actor for the service already exists.
}

// Resource carries the facts relevant to the action. Service facts are
// required for service actions, review facts for review creation.
type Resource struct {
	Service *ServiceFacts
	Review  *ReviewFacts
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonNone}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates the policy rules in order; the first match wins.
func Decide(actor Actor, action Action, res Resource) Decision {
	switch action {
	case ActionReadService, ActionUpdateService, ActionDeleteService:
		return decideService(actor, action, res.Service)
	case ActionCreateReview:
		return decideReview(actor, res.Review)
	default:
		return deny(ReasonForbidden)
	}
}

func decideService(actor Actor, action Action, svc *ServiceFacts) Decision {
	if svc == nil {
		return deny(ReasonForbidden)
	}

	// Rule 1: admins bypass ownership for provider-owned resources.
	if actor.Role == entity.RoleAdmin {
		if action == ActionDeleteService && svc.PurchaseCount > 0 {
			return deny(ReasonInvalidState)
		}

		return allow()
	}

	owns := actor.ProviderID != nil && *actor.ProviderID == svc.OwnerProviderID

	switch action {
	case ActionReadService:
		// Rule 2: non-published listings are visible only to owner or admin.
		if svc.Status != entity.ServiceStatusPublished && !owns {
			return deny(ReasonHidden)
		}

		return allow()
	case ActionUpdateService:
		// Rule 3: mutation requires ownership.
		if !owns {
			return deny(ReasonForbidden)
		}

		return allow()
	case ActionDeleteService:
		if !owns {
			return deny(ReasonForbidden)
		}
		// Rule 4: a purchased listing can never be deleted.
		if svc.PurchaseCount > 0 {
			return deny(ReasonInvalidState)
		}

		return allow()
	}

	return deny(ReasonForbidden)
}

func decideReview(actor Actor, rev *ReviewFacts) Decision {
	if rev == nil {
		return deny(ReasonForbidden)
	}

	// Rule 5: only customers with a matching purchase and no prior review.
	if actor.Role != entity.RoleCustomer {
		return deny(ReasonForbidden)
	}
	if !rev.Purchased {
		return deny(ReasonNotPurchased)
	}
	if rev.AlreadyReviewed {
		return deny(ReasonDuplicateReview)
	}

	return allow()
}

// DenialError maps a Deny decision to the typed error the boundary
// reports. Calling it with an Allow decision returns nil.
func DenialError(d Decision) error {
	if d.Allowed {
		return nil
	}

	switch d.Reason {
	case ReasonHidden:
		return domainerrors.ErrServiceNotFound
	case ReasonInvalidState:
		return domainerrors.ErrServiceHasPurchases
	case ReasonNotPurchased:
		return domainerrors.ErrNotPurchased
	case ReasonDuplicateReview:
		return domainerrors.ErrDuplicateReview
	default:
		return domainerrors.ErrForbidden
	}
}
