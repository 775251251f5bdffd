package models

import (
	"fmt"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation represents the allocation of money to an Envelope for a specific month.
//
// There is at most one allocation per envelope and month.
type Allocation struct {
	DefaultModel
	Owned
	EnvelopeID uuid.UUID       `json:"envelopeId" example:"a0909e84-e8f9-4cb6-82a5-025dff105ff2"` // ID of the envelope
	Month      types.Month     `json:"month" example:"2026-02"`                                   // Month of the allocation
	Amount     decimal.Decimal `json:"amount" example:"22.01"`                                    // Budgeted amount
}

func (a Allocation) Self() string {
	return "Allocation"
}

func (a Allocation) Collection() string {
	return CollectionAllocations
}

func (a *Allocation) Normalize() {
	a.DefaultModel.Normalize()
}

func (a Allocation) Validate() error {
	if a.EnvelopeID == uuid.Nil {
		return ErrEnvelopeIDEmpty
	}

	if a.Month.IsZero() {
		return ErrMonthEmpty
	}

	if err := ValidateAmount(a.Amount); err != nil {
		return fmt.Errorf("allocation: %w", err)
	}

	return nil
}
