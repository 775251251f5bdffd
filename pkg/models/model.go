package models

import (
	"time"

	"github.com/google/uuid"
)

// Model is implemented by every entity of the ledger.
type Model interface {
	Self() string       // Human readable name of the resource, used in error messages
	Collection() string // Name of the remote collection the resource is stored in
	Key() uuid.UUID     // The ID of the resource
	Version() time.Time // The write timestamp of the resource
	Validate() error    // Validates all user configurable fields
}

// Remote collection names.
const (
	CollectionCategories     = "categories"
	CollectionEnvelopes      = "envelopes"
	CollectionTransactions   = "transactions"
	CollectionIncomeSources  = "income_sources"
	CollectionAllocations    = "allocations"
	CollectionPaymentMethods = "payment_methods"
)

// DefaultModel is the base model for all entities of the ledger.
type DefaultModel struct {
	ID uuid.UUID `json:"id" example:"65392deb-5e92-4268-b114-297faad6cdce"` // UUID for the resource
	Timestamps
}

// Timestamps contains the timestamps of a resource.
//
// UpdatedAt is the write timestamp of the resource. It is strictly increasing
// for every write of the same resource and is used for last-write-wins merges.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt" example:"2022-04-02T19:28:44.491514Z"` // Time the resource was created
	UpdatedAt time.Time `json:"updatedAt" example:"2022-04-17T20:14:01.048145Z"` // Last time the resource was updated
}

// Key returns the ID of the resource.
func (m DefaultModel) Key() uuid.UUID {
	return m.ID
}

// Version returns the write timestamp of the resource.
func (m DefaultModel) Version() time.Time {
	return m.UpdatedAt
}

// Normalize sets the timestamps to use UTC as timezone.
func (m *DefaultModel) Normalize() {
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
}

// Owned is embedded by every entity. The ledger has exactly one owner and
// no resource is shared across ledgers.
type Owned struct {
	OwnerID uuid.UUID `json:"ownerId" example:"0c2fa57b-6a1f-4d46-b7b3-6f1f8bc4e6a9"` // ID of the ledger owner
}
