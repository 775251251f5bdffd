package coordinator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// swagger:enum TombstoneKind
type TombstoneKind string

const (
	TombstoneCategory     TombstoneKind = "category"
	TombstoneEnvelope     TombstoneKind = "envelope"
	TombstoneTransaction  TombstoneKind = "transaction"
	TombstoneIncomeSource TombstoneKind = "income_source"
	TombstoneAllocation   TombstoneKind = "allocation"
	TombstoneStartFresh   TombstoneKind = "start_fresh"
)

// Tombstone holds the resources removed by a destructive action until the
// undo window expires.
//
// The resources are removed from the replica at once. They are deleted in
// the remote store when the tombstone is finalized.
type Tombstone struct {
	ID        uuid.UUID     `json:"id" example:"6f3b3c38-81e1-4b68-9d9f-0f33a1c6c2af"` // ID to undo the action with
	Kind      TombstoneKind `json:"kind" example:"transaction"`                        // Action that created the tombstone
	Resources []uuid.UUID   `json:"resources"`                                         // IDs of the removed resources
	CreatedAt time.Time     `json:"createdAt" example:"2026-02-14T08:31:00Z"`          // Time of the action
	ExpiresAt time.Time     `json:"expiresAt" example:"2026-02-14T08:31:30Z"`          // Undo is possible until this time

	entries  []tombstoneEntry
	archived []models.Envelope // Envelopes deactivated by the action, as they were before
}

// tombstoneEntry is a removed resource with the IDs that preceded it in its
// list at removal time, nearest first.
type tombstoneEntry struct {
	collection string
	model      models.Model
	after      []uuid.UUID
}

// newTombstone creates an empty tombstone. The caller must hold the lock.
func (c *Coordinator) newTombstone(kind TombstoneKind) *Tombstone {
	now := c.clock.Now()

	return &Tombstone{
		ID:        uuid.New(),
		Kind:      kind,
		Resources: make([]uuid.UUID, 0),
		CreatedAt: now,
		ExpiresAt: now.Add(c.config.UndoWindow),
	}
}

// bury removes a resource from the replica and adds it to the tombstone.
// The caller must hold the lock.
func (c *Coordinator) bury(t *Tombstone, collection string, id uuid.UUID) bool {
	m, after, ok := c.drop(collection, id)
	if !ok {
		return false
	}

	t.entries = append(t.entries, tombstoneEntry{collection: collection, model: m, after: after})
	t.Resources = append(t.Resources, id)
	return true
}

// keep registers the tombstone and returns a copy of it. The caller must
// hold the lock.
func (c *Coordinator) keep(t *Tombstone) Tombstone {
	c.tombstones[t.ID] = t

	log.Debug().Str("component", "coordinator").Str("tombstone", t.ID.String()).Str("kind", string(t.Kind)).Int("resources", len(t.entries)).Time("expires", t.ExpiresAt).Msg("created tombstone")

	view := *t
	view.Resources = append([]uuid.UUID(nil), t.Resources...)
	return view
}

// tombstoned reports if a resource is held by an active tombstone.
func (c *Coordinator) tombstoned(id uuid.UUID) bool {
	for _, t := range c.tombstones {
		for _, e := range t.entries {
			if e.model.Key() == id {
				return true
			}
		}
	}

	return false
}

// Tombstones returns all active tombstones, oldest first.
func (c *Coordinator) Tombstones() []Tombstone {
	c.mu.Lock()
	defer c.mu.Unlock()

	tombstones := make([]Tombstone, 0, len(c.tombstones))
	for _, t := range c.tombstones {
		view := *t
		view.Resources = append([]uuid.UUID(nil), t.Resources...)
		tombstones = append(tombstones, view)
	}

	sort.Slice(tombstones, func(i, j int) bool {
		return tombstones[i].CreatedAt.Before(tombstones[j].CreatedAt)
	})

	return tombstones
}

// Undo restores all resources of a tombstone at their original list
// position with identical fields.
//
// If the undo window has expired, the tombstone is finalized and
// ErrUndoExpired is returned. If a resource written after the action takes
// the place of a removed one, ErrUndoConflict is returned and the tombstone
// is kept until it expires.
func (c *Coordinator) Undo(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tombstones[id]
	if !ok {
		if c.finalized[id] {
			return ErrUndoExpired
		}

		return fmt.Errorf("%w tombstone with ID %s", models.ErrResourceNotFound, id)
	}

	if !c.clock.Now().Before(t.ExpiresAt) {
		c.finalize(t)
		return ErrUndoExpired
	}

	if err := c.conflict(t); err != nil {
		return err
	}

	// Deactivated envelopes get their previous state back as a new write
	reactivated := make([]models.Envelope, 0, len(t.archived))
	docs := make([]remote.Document, 0, len(t.archived))
	for _, before := range t.archived {
		e, ok := c.replica.envelopes.get(before.ID)
		if !ok {
			continue
		}

		e.Active = before.Active
		e.UpdatedAt = c.clock.Next()

		doc, err := c.encode(e)
		if err != nil {
			return err
		}

		reactivated = append(reactivated, e)
		docs = append(docs, doc)
	}

	delete(c.tombstones, id)

	// Reinsert in reverse order of removal so that every predecessor is back first
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		c.replica.restore(e.model, e.after)
		c.track(e.model)
	}

	for _, e := range reactivated {
		c.put(e)
	}

	if len(docs) > 0 {
		c.write(docs...)
	}

	log.Info().Str("component", "coordinator").Str("tombstone", t.ID.String()).Str("kind", string(t.Kind)).Int("resources", len(t.entries)).Msg("undone")
	return nil
}

// conflict checks that restoring the tombstone keeps every unique key
// unique. The caller must hold the lock.
func (c *Coordinator) conflict(t *Tombstone) error {
	for _, e := range t.entries {
		switch v := e.model.(type) {
		case models.Allocation:
			for _, a := range c.replica.allocations.items {
				if a.EnvelopeID == v.EnvelopeID && a.Month.Equal(v.Month) {
					return fmt.Errorf("%w: envelope %s already has an allocation for %s", ErrUndoConflict, v.EnvelopeID, v.Month)
				}
			}
		case models.Transaction:
			if !v.Automatic || v.Type != models.TransactionTypeIncome {
				continue
			}

			month := types.MonthOf(v.Date)
			for _, txn := range c.replica.transactions.items {
				if txn.EnvelopeID == v.EnvelopeID && txn.Automatic && txn.Type == models.TransactionTypeIncome && types.MonthOf(txn.Date).Equal(month) {
					return fmt.Errorf("%w: envelope %s already has an automatic contribution for %s", ErrUndoConflict, v.EnvelopeID, month)
				}
			}
		}

		if t.Kind != TombstoneStartFresh {
			continue
		}

		var month types.Month
		switch v := e.model.(type) {
		case models.IncomeSource:
			month = v.Month
		case models.Allocation:
			month = v.Month
		}

		for _, i := range c.replica.incomeSources.items {
			if i.Month.Equal(month) {
				return fmt.Errorf("%w: %s has income sources again", ErrUndoConflict, month)
			}
		}

		for _, a := range c.replica.allocations.items {
			if a.Month.Equal(month) {
				return fmt.Errorf("%w: %s has allocations again", ErrUndoConflict, month)
			}
		}
	}

	return nil
}

// FinalizeExpired finalizes all tombstones that are expired at the given
// time and returns how many were finalized.
func (c *Coordinator) FinalizeExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := make([]*Tombstone, 0)
	for _, t := range c.tombstones {
		if !now.Before(t.ExpiresAt) {
			expired = append(expired, t)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].CreatedAt.Before(expired[j].CreatedAt)
	})

	for _, t := range expired {
		c.finalize(t)
	}

	return len(expired)
}

// Sweep finalizes expired tombstones every SweepInterval until the context is done.
func (c *Coordinator) Sweep(ctx context.Context) error {
	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.FinalizeExpired(c.clock.Now()); n > 0 {
				log.Debug().Str("component", "coordinator").Int("tombstones", n).Msg("finalized expired tombstones")
			}
		}
	}
}

// finalize queues the remote deletion of all resources of the tombstone.
// The caller must hold the lock.
func (c *Coordinator) finalize(t *Tombstone) {
	delete(c.tombstones, t.ID)
	c.finalized[t.ID] = true

	for _, e := range t.entries {
		c.enqueue(OperationDelete, remote.Document{
			Owner:      c.config.Owner,
			Collection: e.collection,
			ID:         e.model.Key(),
			UpdatedAt:  c.clock.Next(),
		})

		if e.collection == models.CollectionCategories {
			c.uncategorize(e.model.Key())
		}
	}
}

// uncategorize removes the category from all envelopes in it. The caller
// must hold the lock.
func (c *Coordinator) uncategorize(categoryID uuid.UUID) {
	docs := make([]remote.Document, 0)

	for _, e := range c.replica.envelopes.all() {
		if e.CategoryID == nil || *e.CategoryID != categoryID {
			continue
		}

		e.CategoryID = nil
		e.UpdatedAt = c.clock.Next()

		doc, err := c.encode(e)
		if err != nil {
			log.Error().Str("component", "coordinator").Str("envelope", e.ID.String()).Err(err).Msg("could not remove deleted category")
			continue
		}

		c.put(e)
		docs = append(docs, doc)
	}

	if len(docs) > 0 {
		c.write(docs...)
	}
}

// write queues an upsert for a single document and a batch for multiple.
// The caller must hold the lock.
func (c *Coordinator) write(docs ...remote.Document) *Operation {
	if len(docs) == 1 {
		return c.enqueue(OperationUpsert, docs...)
	}

	return c.enqueue(OperationBatch, docs...)
}
