package coordinator

import (
	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/budget"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// checkCategory verifies that the category of an envelope exists.
func (c *Coordinator) checkCategory(e models.Envelope) error {
	if e.CategoryID == nil {
		return nil
	}

	if _, ok := c.replica.categories.get(*e.CategoryID); !ok {
		return notFound(models.Category{}, *e.CategoryID)
	}

	return nil
}

// CreateEnvelope creates an active envelope at the end of the envelope list.
func (c *Coordinator) CreateEnvelope(e models.Envelope) (models.Envelope, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return models.Envelope{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkCategory(e); err != nil {
		return models.Envelope{}, err
	}

	if err := c.stamp(&e.DefaultModel, &e.Owned); err != nil {
		return models.Envelope{}, err
	}
	e.Active = true
	e.Index = c.replica.nextEnvelopeIndex()

	doc, err := c.encode(e)
	if err != nil {
		return models.Envelope{}, err
	}

	c.put(e)
	c.write(doc)

	return e, nil
}

// UpdateEnvelope replaces an envelope. The display index is kept, it is only
// changed by reordering.
func (c *Coordinator) UpdateEnvelope(e models.Envelope) (models.Envelope, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return models.Envelope{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before, ok := c.replica.envelopes.get(e.ID)
	if !ok {
		return models.Envelope{}, notFound(e, e.ID)
	}

	if err := models.CheckPiggybankTransition(before, e); err != nil {
		return models.Envelope{}, err
	}

	if err := c.checkCategory(e); err != nil {
		return models.Envelope{}, err
	}

	c.restamp(&e.DefaultModel, &e.Owned, before.DefaultModel)
	e.Index = before.Index

	doc, err := c.encode(e)
	if err != nil {
		return models.Envelope{}, err
	}

	c.put(e)
	c.write(doc)

	return e, nil
}

// ArchiveEnvelope deactivates an envelope.
func (c *Coordinator) ArchiveEnvelope(id uuid.UUID) (models.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.replica.envelopes.get(id)
	if !ok {
		return models.Envelope{}, notFound(e, id)
	}

	if !e.Active {
		return e, nil
	}

	e.Active = false
	e.UpdatedAt = c.clock.Next()

	doc, err := c.encode(e)
	if err != nil {
		return models.Envelope{}, err
	}

	c.put(e)
	c.write(doc)

	return e, nil
}

// DeleteEnvelope removes an envelope from a month.
//
// The allocation of the envelope for the month is deleted. If the envelope has
// no other allocations and no transactions, it is deleted too. Otherwise it is
// deactivated. Undoing restores both.
func (c *Coordinator) DeleteEnvelope(id uuid.UUID, month types.Month) (Tombstone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.replica.envelopes.get(id)
	if !ok {
		return Tombstone{}, notFound(e, id)
	}

	allocation, allocated := budget.Find(c.replica.allocations.items, id, month)

	other := false
	for _, a := range c.replica.allocations.items {
		if a.EnvelopeID == id && (!allocated || a.ID != allocation.ID) {
			other = true
			break
		}
	}

	for _, txn := range c.replica.transactions.items {
		if txn.EnvelopeID == id {
			other = true
			break
		}
	}

	// Encode before the replica is changed so that an error leaves it untouched
	var archived *remote.Document
	deactivated := e
	if other && e.Active {
		deactivated.Active = false
		deactivated.UpdatedAt = c.clock.Next()

		doc, err := c.encode(deactivated)
		if err != nil {
			return Tombstone{}, err
		}
		archived = &doc
	}

	t := c.newTombstone(TombstoneEnvelope)
	if allocated {
		c.bury(t, models.CollectionAllocations, allocation.ID)
	}

	if !other {
		c.bury(t, models.CollectionEnvelopes, id)
	} else if archived != nil {
		t.archived = append(t.archived, e)
		c.put(deactivated)
		c.write(*archived)
	}

	log.Debug().Str("component", "coordinator").Str("envelope", id.String()).Str("month", month.String()).Bool("archived", other).Msg("removed envelope from month")
	return c.keep(t), nil
}

// MoveEnvelope moves the envelope at position from in the envelope list to
// position to.
//
// The new order is only applied locally. It is written to the remote store
// with CommitEnvelopeOrder.
func (c *Coordinator) MoveEnvelope(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.replica.envelopes.items
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return ErrPosition
	}

	moved := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = moved

	for i := range items {
		if items[i].Index != i {
			items[i].Index = i
			c.reordered[items[i].ID] = true
		}
	}

	return nil
}

// CommitEnvelopeOrder writes all envelopes that changed position since the
// last commit to the remote store in a single batch. It returns the number
// of envelopes written.
func (c *Coordinator) CommitEnvelopeOrder() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.reordered) == 0 {
		return 0, nil
	}

	changed := make([]int, 0, len(c.reordered))
	docs := make([]remote.Document, 0, len(c.reordered))
	for i, e := range c.replica.envelopes.items {
		if !c.reordered[e.ID] {
			continue
		}

		e.UpdatedAt = c.clock.Next()
		doc, err := c.encode(e)
		if err != nil {
			return 0, err
		}

		changed = append(changed, i)
		docs = append(docs, doc)
	}

	for k, i := range changed {
		e := c.replica.envelopes.items[i]
		e.UpdatedAt = docs[k].UpdatedAt
		c.replica.envelopes.items[i] = e
	}

	c.reordered = make(map[uuid.UUID]bool)
	if len(docs) > 0 {
		c.enqueue(OperationBatch, docs...)
	}

	log.Debug().Str("component", "coordinator").Int("envelopes", len(docs)).Msg("committed envelope order")
	return len(docs), nil
}
