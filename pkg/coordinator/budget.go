package coordinator

import (
	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/budget"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// StartFreshConfirmation must be passed to StartFresh to confirm it.
const StartFreshConfirmation = "yes-please-start-fresh"

// CreateIncomeSource creates an income source.
func (c *Coordinator) CreateIncomeSource(i models.IncomeSource) (models.IncomeSource, error) {
	i.Normalize()
	if err := i.Validate(); err != nil {
		return models.IncomeSource{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stamp(&i.DefaultModel, &i.Owned); err != nil {
		return models.IncomeSource{}, err
	}

	doc, err := c.encode(i)
	if err != nil {
		return models.IncomeSource{}, err
	}

	c.put(i)
	c.write(doc)

	return i, nil
}

// UpdateIncomeSource replaces an income source.
func (c *Coordinator) UpdateIncomeSource(i models.IncomeSource) (models.IncomeSource, error) {
	i.Normalize()
	if err := i.Validate(); err != nil {
		return models.IncomeSource{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before, ok := c.replica.incomeSources.get(i.ID)
	if !ok {
		return models.IncomeSource{}, notFound(i, i.ID)
	}
	c.restamp(&i.DefaultModel, &i.Owned, before.DefaultModel)

	doc, err := c.encode(i)
	if err != nil {
		return models.IncomeSource{}, err
	}

	c.put(i)
	c.write(doc)

	return i, nil
}

// DeleteIncomeSource deletes an income source.
func (c *Coordinator) DeleteIncomeSource(id uuid.UUID) (Tombstone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.newTombstone(TombstoneIncomeSource)
	if !c.bury(t, models.CollectionIncomeSources, id) {
		return Tombstone{}, notFound(models.IncomeSource{}, id)
	}

	return c.keep(t), nil
}

// SetAllocation sets the allocation of an envelope for a month, creating
// it if it does not exist yet.
func (c *Coordinator) SetAllocation(envelopeID uuid.UUID, month types.Month, amount decimal.Decimal) (models.Allocation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.replica.envelopes.get(envelopeID); !ok {
		return models.Allocation{}, notFound(models.Envelope{}, envelopeID)
	}

	a, created, err := budget.Upsert(c.replica.allocations.items, envelopeID, month, amount)
	if err != nil {
		return models.Allocation{}, err
	}

	if created {
		if err := c.stamp(&a.DefaultModel, &a.Owned); err != nil {
			return models.Allocation{}, err
		}
	} else {
		c.restamp(&a.DefaultModel, &a.Owned, a.DefaultModel)
	}
	a.Normalize()

	doc, err := c.encode(a)
	if err != nil {
		return models.Allocation{}, err
	}

	c.put(a)
	c.write(doc)

	return a, nil
}

// DeleteAllocation deletes an allocation.
func (c *Coordinator) DeleteAllocation(id uuid.UUID) (Tombstone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.newTombstone(TombstoneAllocation)
	if !c.bury(t, models.CollectionAllocations, id) {
		return Tombstone{}, notFound(models.Allocation{}, id)
	}

	return c.keep(t), nil
}

// StartFresh deletes all income sources and allocations of a month. Other
// months and all transactions are kept.
//
// The confirmation must be StartFreshConfirmation.
func (c *Coordinator) StartFresh(month types.Month, confirmation string) (Tombstone, error) {
	if confirmation != StartFreshConfirmation {
		return Tombstone{}, ErrConfirmation
	}

	if month.IsZero() {
		return Tombstone{}, models.ErrMonthEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.newTombstone(TombstoneStartFresh)

	for _, i := range c.replica.incomeSources.all() {
		if i.Month.Equal(month) {
			c.bury(t, models.CollectionIncomeSources, i.ID)
		}
	}

	for _, a := range c.replica.allocations.all() {
		if a.Month.Equal(month) {
			c.bury(t, models.CollectionAllocations, a.ID)
		}
	}

	log.Info().Str("component", "coordinator").Str("month", month.String()).Int("resources", len(t.entries)).Msg("started month fresh")
	return c.keep(t), nil
}
