// Package budget implements the zero-based budgeting calculations.
//
// The central figure is the amount available to budget for a month, which is the
// total income of the month minus everything allocated to envelopes in that month.
// A budget is fully allocated when that figure is zero.
package budget

import (
	"fmt"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Epsilon is the largest absolute amount that is still considered zero.
var Epsilon = decimal.New(5, -3)

// IsZero reports if an amount is zero within Epsilon.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}

// TotalIncome returns the sum of all income sources of the month.
func TotalIncome(month types.Month, incomes []models.IncomeSource) decimal.Decimal {
	sum := decimal.Zero

	for _, i := range incomes {
		if i.Month.Equal(month) {
			sum = sum.Add(i.Amount)
		}
	}

	return sum
}

// EffectiveAllocation returns the amount an envelope allocates in a month.
//
// For regular envelopes, this is the amount of the allocation for the month. A
// piggybank allocates its monthly contribution from the month it was created in
// as long as it is not paused. Inactive envelopes allocate nothing.
func EffectiveAllocation(e models.Envelope, month types.Month, allocations []models.Allocation) decimal.Decimal {
	if !e.Active {
		return decimal.Zero
	}

	if e.IsPiggybank() {
		if !e.Contributing() || createdAfter(e, month) {
			return decimal.Zero
		}

		return e.Piggybank.MonthlyContribution
	}

	if a, ok := Find(allocations, e.ID, month); ok {
		return a.Amount
	}

	return decimal.Zero
}

// createdAfter reports if the envelope was created after the month ended.
// Envelopes without a creation date are never created after any month.
func createdAfter(e models.Envelope, month types.Month) bool {
	if e.CreatedAt.IsZero() {
		return false
	}

	return types.MonthOf(e.CreatedAt).After(month)
}

// TotalAllocated returns the sum of the effective allocations of all envelopes
// for the month.
func TotalAllocated(month types.Month, envelopes []models.Envelope, allocations []models.Allocation) decimal.Decimal {
	sum := decimal.Zero

	for _, e := range envelopes {
		sum = sum.Add(EffectiveAllocation(e, month, allocations))
	}

	return sum
}

// AvailableToBudget returns the total income minus the total allocated amount
// for the month.
func AvailableToBudget(month types.Month, envelopes []models.Envelope, incomes []models.IncomeSource, allocations []models.Allocation) decimal.Decimal {
	return TotalIncome(month, incomes).Sub(TotalAllocated(month, envelopes, allocations))
}

// IsFullyAllocated reports if all income of the month has been allocated.
func IsFullyAllocated(month types.Month, envelopes []models.Envelope, incomes []models.IncomeSource, allocations []models.Allocation) bool {
	return IsZero(AvailableToBudget(month, envelopes, incomes, allocations))
}

// Find returns the allocation for the envelope and month.
func Find(allocations []models.Allocation, envelopeID uuid.UUID, month types.Month) (models.Allocation, bool) {
	for _, a := range allocations {
		if a.EnvelopeID == envelopeID && a.Month.Equal(month) {
			return a, true
		}
	}

	return models.Allocation{}, false
}

// Upsert returns the allocation for the envelope and month with its amount set.
//
// If there is no allocation yet, a new one with a new ID is returned and created
// is true. Upsert does not modify the slice, the caller applies the result.
func Upsert(allocations []models.Allocation, envelopeID uuid.UUID, month types.Month, amount decimal.Decimal) (allocation models.Allocation, created bool, err error) {
	allocation, ok := Find(allocations, envelopeID, month)
	if !ok {
		allocation = models.Allocation{
			DefaultModel: models.DefaultModel{ID: uuid.New()},
			EnvelopeID:   envelopeID,
			Month:        month,
		}
	}

	allocation.Amount = amount
	if err := allocation.Validate(); err != nil {
		return models.Allocation{}, false, fmt.Errorf("setting allocation: %w", err)
	}

	return allocation, !ok, nil
}
