package budget

import (
	"sort"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/balance"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnvelopeMonth contains data about an Envelope for a specific month.
type EnvelopeMonth struct {
	ID         uuid.UUID       `json:"id" example:"10b9705d-3356-459e-9d5a-28d42a6c4547"` // ID of the envelope
	Name       string          `json:"name" example:"Groceries"`                          // Name of the envelope
	Piggybank  bool            `json:"piggybank" example:"false"`                         // Is the envelope a piggybank?
	Active     bool            `json:"active" example:"true"`                             // Is the envelope active?
	Allocation decimal.Decimal `json:"allocation" example:"85.44"`                        // Effective allocation for the month
	Spent      decimal.Decimal `json:"spent" example:"73.12"`                             // Sum of expenses in the month
	Balance    decimal.Decimal `json:"balance" example:"-73.12"`                          // Balance of the envelope. Lifetime balance for piggybanks, month balance otherwise
	Remaining  decimal.Decimal `json:"remaining" example:"12.32"`                         // Amount left to spend
}

// CategoryEnvelopes groups the envelope months of one category.
type CategoryEnvelopes struct {
	ID         uuid.UUID       `json:"id" example:"dafd9a74-6aeb-46b9-9f5a-cfca624fea85"` // ID of the category. Nil for envelopes without category
	Name       string          `json:"name" example:"Rainy Day Funds"`                    // Name of the category
	Envelopes  []EnvelopeMonth `json:"envelopes"`                                         // All envelopes of the category in display order
	Balance    decimal.Decimal `json:"balance" example:"-10.13"`                          // Sum of the balances of the envelopes
	Allocation decimal.Decimal `json:"allocation" example:"90"`                           // Sum of allocations for the envelopes
	Spent      decimal.Decimal `json:"spent" example:"100.13"`                            // Sum spent for all envelopes
}

// Month is the overview of a single month.
type Month struct {
	Month          types.Month         `json:"month" example:"2026-02"`        // The month
	Income         decimal.Decimal     `json:"income" example:"4300"`          // Sum of all income sources of the month
	Allocation     decimal.Decimal     `json:"allocation" example:"1850"`      // Sum of all effective allocations of the month
	Available      decimal.Decimal     `json:"available" example:"2450"`       // The amount available to budget
	Spent          decimal.Decimal     `json:"spent" example:"133.70"`         // Sum of all expenses of the month
	Balance        decimal.Decimal     `json:"balance" example:"5231.37"`      // Sum of all envelope balances
	FullyAllocated bool                `json:"fullyAllocated" example:"false"` // Is all income allocated?
	Categories     []CategoryEnvelopes `json:"categories"`                     // Envelope months grouped by category
}

// EnvelopeOverview calculates the month specific values for an envelope.
func EnvelopeOverview(e models.Envelope, month types.Month, transactions []models.Transaction, allocations []models.Allocation, policy balance.LegacyPolicy) EnvelopeMonth {
	allocation := EffectiveAllocation(e, month, allocations)
	b := balance.EnvelopeBalance(e, transactions, balance.ScopeFor(e, month), policy)

	remaining := b
	if !e.IsPiggybank() {
		remaining = allocation.Add(b)
	}

	return EnvelopeMonth{
		ID:         e.ID,
		Name:       e.Name,
		Piggybank:  e.IsPiggybank(),
		Active:     e.Active,
		Allocation: allocation,
		Spent:      balance.Spent(e, transactions, month, policy),
		Balance:    b,
		Remaining:  remaining,
	}
}

// visible reports if an envelope is shown for the month.
//
// Inactive envelopes are only visible in months in which they have a transaction
// or an allocation.
func visible(e models.Envelope, month types.Month, transactions []models.Transaction, allocations []models.Allocation) bool {
	if e.Active {
		return true
	}

	if _, ok := Find(allocations, e.ID, month); ok {
		return true
	}

	for _, t := range transactions {
		if t.EnvelopeID == e.ID && t.Month.Equal(month) {
			return true
		}
	}

	return false
}

// MonthOverview calculates the overview for a month.
//
// Categories are sorted by their index, envelopes without a category are
// grouped in a last group with a nil ID.
func MonthOverview(s models.Snapshot, month types.Month, policy balance.LegacyPolicy) Month {
	result := Month{
		Month:      month,
		Income:     TotalIncome(month, s.IncomeSources),
		Allocation: TotalAllocated(month, s.Envelopes, s.Allocations),
		Spent:      decimal.Zero,
		Balance:    decimal.Zero,
		Categories: make([]CategoryEnvelopes, 0),
	}
	result.Available = result.Income.Sub(result.Allocation)
	result.FullyAllocated = IsZero(result.Available)

	categories := make([]models.Category, len(s.Categories))
	copy(categories, s.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Index < categories[j].Index
	})

	envelopes := make([]models.Envelope, len(s.Envelopes))
	copy(envelopes, s.Envelopes)
	sort.SliceStable(envelopes, func(i, j int) bool {
		return envelopes[i].Index < envelopes[j].Index
	})

	known := make(map[uuid.UUID]bool, len(categories))
	groups := make([]CategoryEnvelopes, 0, len(categories)+1)
	for _, c := range categories {
		known[c.ID] = true
		groups = append(groups, CategoryEnvelopes{ID: c.ID, Name: c.Name})
	}
	groups = append(groups, CategoryEnvelopes{ID: uuid.Nil})

	position := make(map[uuid.UUID]int, len(groups))
	for i, g := range groups {
		position[g.ID] = i
	}

	for _, e := range envelopes {
		if !visible(e, month, s.Transactions, s.Allocations) {
			continue
		}

		categoryID := uuid.Nil
		if e.CategoryID != nil && known[*e.CategoryID] {
			categoryID = *e.CategoryID
		}

		envelopeMonth := EnvelopeOverview(e, month, s.Transactions, s.Allocations, policy)

		// Update the month's summarized data
		result.Balance = result.Balance.Add(envelopeMonth.Balance)
		result.Spent = result.Spent.Add(envelopeMonth.Spent)

		// Update the category's summarized data
		g := &groups[position[categoryID]]
		g.Balance = g.Balance.Add(envelopeMonth.Balance)
		g.Spent = g.Spent.Add(envelopeMonth.Spent)
		g.Allocation = g.Allocation.Add(envelopeMonth.Allocation)
		g.Envelopes = append(g.Envelopes, envelopeMonth)
	}

	for _, g := range groups {
		if g.ID == uuid.Nil && len(g.Envelopes) == 0 {
			continue
		}

		if g.Envelopes == nil {
			g.Envelopes = make([]EnvelopeMonth, 0)
		}

		result.Categories = append(result.Categories, g)
	}

	return result
}
