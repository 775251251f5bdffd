// Package balance derives envelope balances from transactions.
//
// All functions in this package are pure. They never round, rounding to two
// decimal places only happens at presentation boundaries via Present.
package balance

import (
	"time"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scope is the time window a balance is computed for. It is either a
// single month or the whole lifetime of the envelope.
type Scope struct {
	lifetime bool
	month    types.Month
}

// Lifetime is the scope covering all transactions of an envelope.
var Lifetime = Scope{lifetime: true}

// MonthScope returns the scope for a single month.
func MonthScope(m types.Month) Scope {
	return Scope{month: m}
}

// IsLifetime reports if the scope is the lifetime scope.
func (s Scope) IsLifetime() bool {
	return s.lifetime
}

// Month returns the month of a month scope. It is the zero Month for Lifetime.
func (s Scope) Month() types.Month {
	return s.month
}

func (s Scope) String() string {
	if s.lifetime {
		return "lifetime"
	}

	return s.month.String()
}

// Contains reports if a transaction date is inside the scope.
func (s Scope) Contains(t time.Time) bool {
	return s.lifetime || s.month.Contains(t)
}

// LegacyPolicy decides how piggybanks without a valid creation date are treated.
type LegacyPolicy int

const (
	// IncludeLegacy counts all transactions of legacy piggybanks.
	IncludeLegacy LegacyPolicy = iota

	// ExcludeLegacy treats legacy piggybanks as having no transactions.
	ExcludeLegacy
)

// ParseLegacyPolicy parses "include" or "exclude". Everything else is IncludeLegacy.
func ParseLegacyPolicy(s string) LegacyPolicy {
	if s == "exclude" {
		return ExcludeLegacy
	}

	return IncludeLegacy
}

// ScopeFor returns the scope an envelope is queried with when viewing a month.
//
// Regular envelopes use the viewed month, piggybanks always use their lifetime.
func ScopeFor(e models.Envelope, viewed types.Month) Scope {
	if e.IsPiggybank() {
		return Lifetime
	}

	return MonthScope(viewed)
}

// IsLegacy reports if the envelope is a piggybank without a usable creation date.
func IsLegacy(e models.Envelope) bool {
	return e.IsPiggybank() && e.CreatedAt.IsZero()
}

// counts reports if a transaction counts towards the balance of the envelope.
//
// Piggybanks only count transactions dated on or after the day they were created.
func counts(e models.Envelope, t models.Transaction, policy LegacyPolicy) bool {
	if t.EnvelopeID != e.ID {
		return false
	}

	if !e.IsPiggybank() {
		return true
	}

	if IsLegacy(e) {
		return policy == IncludeLegacy
	}

	return !day(t.Date).Before(day(e.CreatedAt))
}

// day truncates a time to 00:00 UTC of its day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EnvelopeBalance returns the sum of all income minus the sum of all expenses
// of the envelope in the scope.
//
// An envelope without transactions has a balance of zero.
func EnvelopeBalance(e models.Envelope, transactions []models.Transaction, scope Scope, policy LegacyPolicy) decimal.Decimal {
	sum := decimal.Zero

	for _, t := range transactions {
		if !counts(e, t, policy) || !scope.Contains(t.Date) {
			continue
		}

		sum = sum.Add(t.Signed())
	}

	return sum
}

// Spent returns the sum of all expenses of the envelope in the month as a
// positive number.
func Spent(e models.Envelope, transactions []models.Transaction, month types.Month, policy LegacyPolicy) decimal.Decimal {
	spent := decimal.Zero

	for _, t := range transactions {
		if t.Type != models.TransactionTypeExpense || !counts(e, t, policy) || !month.Contains(t.Date) {
			continue
		}

		spent = spent.Add(t.Amount)
	}

	return spent
}

// AggregateBalance returns the sum of the balances of all envelopes. Each envelope
// is queried with the scope returned by ScopeFor.
func AggregateBalance(envelopes []models.Envelope, transactions []models.Transaction, viewed types.Month, policy LegacyPolicy) decimal.Decimal {
	byEnvelope := make(map[uuid.UUID][]models.Transaction, len(envelopes))
	for _, t := range transactions {
		byEnvelope[t.EnvelopeID] = append(byEnvelope[t.EnvelopeID], t)
	}

	sum := decimal.Zero
	for _, e := range envelopes {
		sum = sum.Add(EnvelopeBalance(e, byEnvelope[e.ID], ScopeFor(e, viewed), policy))
	}

	return sum
}

// Present rounds an amount to the precision of the reporting currency.
func Present(d decimal.Decimal) decimal.Decimal {
	return d.Round(models.Precision)
}
