package coordinator

import (
	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/balance"
	"github.com/envelope-zero/ledger/pkg/budget"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category returns a category.
func (c *Coordinator) Category(id uuid.UUID) (models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.replica.categories.get(id)
	if !ok {
		return m, notFound(m, id)
	}

	return m, nil
}

// Envelope returns an envelope.
func (c *Coordinator) Envelope(id uuid.UUID) (models.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.replica.envelopes.get(id)
	if !ok {
		return m, notFound(m, id)
	}

	return m, nil
}

// Transaction returns a transaction.
func (c *Coordinator) Transaction(id uuid.UUID) (models.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.replica.transactions.get(id)
	if !ok {
		return m, notFound(m, id)
	}

	return m, nil
}

// IncomeSource returns an income source.
func (c *Coordinator) IncomeSource(id uuid.UUID) (models.IncomeSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.replica.incomeSources.get(id)
	if !ok {
		return m, notFound(m, id)
	}

	return m, nil
}

// Allocation returns an allocation.
func (c *Coordinator) Allocation(id uuid.UUID) (models.Allocation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.replica.allocations.get(id)
	if !ok {
		return m, notFound(m, id)
	}

	return m, nil
}

// PaymentMethod returns a payment method.
func (c *Coordinator) PaymentMethod(id uuid.UUID) (models.PaymentMethod, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.replica.paymentMethods.get(id)
	if !ok {
		return m, notFound(m, id)
	}

	return m, nil
}

// EnvelopeBalance returns the balance of an envelope viewed in a month.
//
// For regular envelopes, this is the balance of the month. For piggybanks, it
// is the lifetime balance.
func (c *Coordinator) EnvelopeBalance(id uuid.UUID, month types.Month) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.replica.envelopes.get(id)
	if !ok {
		return decimal.Zero, notFound(e, id)
	}

	return c.tracker.Balance(id, balance.ScopeFor(e, month)), nil
}

// AvailableToBudget returns the income of a month that is not allocated.
func (c *Coordinator) AvailableToBudget(month types.Month) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return budget.AvailableToBudget(month, c.replica.envelopes.items, c.replica.incomeSources.items, c.replica.allocations.items)
}

// MonthOverview returns the budget overview of a month.
func (c *Coordinator) MonthOverview(month types.Month) budget.Month {
	return budget.MonthOverview(c.Snapshot(), month, c.config.LegacyPolicy)
}
