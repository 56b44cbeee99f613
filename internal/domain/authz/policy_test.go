package authz

import (
	"testing"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func adminActor() Actor {
	return Actor{ID: uuid.New(), Role: entity.RoleAdmin}
}

func providerActor(providerID uuid.UUID) Actor {
	return Actor{ID: uuid.New(), Role: entity.RoleProvider, ProviderID: &providerID}
}

func customerActor() Actor {
	return Actor{ID: uuid.New(), Role: entity.RoleCustomer}
}

func TestDecide_AdminBypassesOwnership(t *testing.T) {
	svc := &ServiceFacts{
		OwnerProviderID: uuid.New(),
		Status:          entity.ServiceStatusDraft,
		PurchaseCount:   0,
	}

	for _, action := range []Action{ActionReadService, ActionUpdateService, ActionDeleteService} {
		decision := Decide(adminActor(), action, Resource{Service: svc})
		assert.True(t, decision.Allowed, "admin should be allowed %s", action)
		assert.Equal(t, ReasonNone, decision.Reason)
	}
}

func TestDecide_AdminCannotDeletePurchasedListing(t *testing.T) {
	svc := &ServiceFacts{
		OwnerProviderID: uuid.New(),
		Status:          entity.ServiceStatusPublished,
		PurchaseCount:   3,
	}

	decision := Decide(adminActor(), ActionDeleteService, Resource{Service: svc})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInvalidState, decision.Reason)
}

func TestDecide_OwnerCanMutateOwnListing(t *testing.T) {
	providerID := uuid.New()
	svc := &ServiceFacts{
		OwnerProviderID: providerID,
		Status:          entity.ServiceStatusDraft,
	}
	actor := providerActor(providerID)

	assert.True(t, Decide(actor, ActionReadService, Resource{Service: svc}).Allowed)
	assert.True(t, Decide(actor, ActionUpdateService, Resource{Service: svc}).Allowed)
	assert.True(t, Decide(actor, ActionDeleteService, Resource{Service: svc}).Allowed)
}

func TestDecide_CrossProviderMutationDenied(t *testing.T) {
	svc := &ServiceFacts{
		OwnerProviderID: uuid.New(),
		Status:          entity.ServiceStatusPublished,
	}
	other := providerActor(uuid.New())

	for _, action := range []Action{ActionUpdateService, ActionDeleteService} {
		decision := Decide(other, action, Resource{Service: svc})
		assert.False(t, decision.Allowed, "non-owner should be denied %s", action)
		assert.Equal(t, ReasonForbidden, decision.Reason)
	}
}

func TestDecide_HiddenListingVisibility(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name    string
		status  entity.ServiceStatus
		actor   Actor
		allowed bool
		reason  Reason
	}{
		{"published visible to customer", entity.ServiceStatusPublished, customerActor(), true, ReasonNone},
		{"published visible to other provider", entity.ServiceStatusPublished, providerActor(uuid.New()), true, ReasonNone},
		{"draft hidden from customer", entity.ServiceStatusDraft, customerActor(), false, ReasonHidden},
		{"draft hidden from other provider", entity.ServiceStatusDraft, providerActor(uuid.New()), false, ReasonHidden},
		{"draft visible to owner", entity.ServiceStatusDraft, providerActor(ownerID), true, ReasonNone},
		{"paused hidden from customer", entity.ServiceStatusPaused, customerActor(), false, ReasonHidden},
		{"paused visible to owner", entity.ServiceStatusPaused, providerActor(ownerID), true, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ServiceFacts{OwnerProviderID: ownerID, Status: tt.status}
			decision := Decide(tt.actor, ActionReadService, Resource{Service: svc})
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestDecide_DeleteGuardedByPurchases(t *testing.T) {
	providerID := uuid.New()
	svc := &ServiceFacts{
		OwnerProviderID: providerID,
		Status:          entity.ServiceStatusPublished,
		PurchaseCount:   1,
	}

	decision := Decide(providerActor(providerID), ActionDeleteService, Resource{Service: svc})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInvalidState, decision.Reason)
}

func TestDecide_ReviewCreation(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		facts   ReviewFacts
		allowed bool
		reason  Reason
	}{
		{"customer with purchase", customerActor(), ReviewFacts{Purchased: true}, true, ReasonNone},
		{"customer without purchase", customerActor(), ReviewFacts{Purchased: false}, false, ReasonNotPurchased},
		{"customer with prior review", customerActor(), ReviewFacts{Purchased: true, AlreadyReviewed: true}, false, ReasonDuplicateReview},
		{"provider cannot review", providerActor(uuid.New()), ReviewFacts{Purchased: true}, false, ReasonForbidden},
		{"admin cannot review", adminActor(), ReviewFacts{Purchased: true}, false, ReasonForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.actor, ActionCreateReview, Resource{Review: &tt.facts})
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestDecide_DefaultDeny(t *testing.T) {
	// Unknown action.
	decision := Decide(adminActor(), Action("service:publish"), Resource{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonForbidden, decision.Reason)

	// Missing facts for a known action.
	decision = Decide(adminActor(), ActionUpdateService, Resource{})
	assert.False(t, decision.Allowed)

	decision = Decide(customerActor(), ActionCreateReview, Resource{})
	assert.False(t, decision.Allowed)

	// Provider without a profile cannot mutate anything.
	noProfile := Actor{ID: uuid.New(), Role: entity.RoleProvider}
	svc := &ServiceFacts{OwnerProviderID: uuid.New(), Status: entity.ServiceStatusPublished}
	decision = Decide(noProfile, ActionUpdateService, Resource{Service: svc})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonForbidden, decision.Reason)
}

func TestDenialError_Mapping(t *testing.T) {
	assert.NoError(t, DenialError(Decision{Allowed: true}))

	tests := []struct {
		reason Reason
		want   error
	}{
		{ReasonHidden, domainerrors.ErrServiceNotFound},
		{ReasonInvalidState, domainerrors.ErrServiceHasPurchases},
		{ReasonNotPurchased, domainerrors.ErrNotPurchased},
		{ReasonDuplicateReview, domainerrors.ErrDuplicateReview},
		{ReasonForbidden, domainerrors.ErrForbidden},
	}

	for _, tt := range tests {
		err := DenialError(Decision{Allowed: false, Reason: tt.reason})
		assert.ErrorIs(t, err, tt.want)
	}
}
