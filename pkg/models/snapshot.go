package models

import (
	"github.com/google/uuid"
)

// Snapshot is a read-only copy of all resources of a ledger.
//
// Every collection is in display order. Modifying a snapshot never alters
// the ledger it was taken from.
type Snapshot struct {
	Categories     []Category      `json:"categories"`
	Envelopes      []Envelope      `json:"envelopes"`
	Transactions   []Transaction   `json:"transactions"`
	IncomeSources  []IncomeSource  `json:"incomeSources"`
	Allocations    []Allocation    `json:"allocations"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// Envelope returns the envelope with the ID.
func (s Snapshot) Envelope(id uuid.UUID) (Envelope, bool) {
	for _, e := range s.Envelopes {
		if e.ID == id {
			return e, true
		}
	}

	return Envelope{}, false
}

// Category returns the category with the ID.
func (s Snapshot) Category(id uuid.UUID) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}

	return Category{}, false
}

// PaymentMethod returns the payment method with the ID.
func (s Snapshot) PaymentMethod(id uuid.UUID) (PaymentMethod, bool) {
	for _, p := range s.PaymentMethods {
		if p.ID == id {
			return p, true
		}
	}

	return PaymentMethod{}, false
}
