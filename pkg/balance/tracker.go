package balance

import (
	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tracker maintains envelope balances incrementally.
//
// For the same set of envelopes and transactions, Balance always returns the
// same value as EnvelopeBalance computed from a full replay. Tracker is not
// safe for concurrent use, its owner must serialize access.
type Tracker struct {
	policy    LegacyPolicy
	envelopes map[uuid.UUID]models.Envelope
	removed   map[uuid.UUID]bool
	applied   map[uuid.UUID]models.Transaction
	months    map[uuid.UUID]map[string]decimal.Decimal
	lifetime  map[uuid.UUID]decimal.Decimal
}

// NewTracker returns an empty Tracker.
func NewTracker(policy LegacyPolicy) *Tracker {
	return &Tracker{
		policy:    policy,
		envelopes: make(map[uuid.UUID]models.Envelope),
		removed:   make(map[uuid.UUID]bool),
		applied:   make(map[uuid.UUID]models.Transaction),
		months:    make(map[uuid.UUID]map[string]decimal.Decimal),
		lifetime:  make(map[uuid.UUID]decimal.Decimal),
	}
}

// SetEnvelope registers or updates an envelope. The balances of the
// envelope are recomputed from all applied transactions.
func (t *Tracker) SetEnvelope(e models.Envelope) {
	t.envelopes[e.ID] = e
	delete(t.removed, e.ID)

	delete(t.months, e.ID)
	delete(t.lifetime, e.ID)

	for _, txn := range t.applied {
		if txn.EnvelopeID == e.ID {
			t.apply(txn, 1)
		}
	}
}

// RemoveEnvelope forgets an envelope and clears its balances. Its
// transactions stay applied and count again once the envelope is set.
func (t *Tracker) RemoveEnvelope(id uuid.UUID) {
	delete(t.envelopes, id)
	delete(t.months, id)
	delete(t.lifetime, id)
	t.removed[id] = true
}

// Add applies a new transaction. Adding a transaction that is already
// applied replaces it.
func (t *Tracker) Add(txn models.Transaction) {
	if _, ok := t.applied[txn.ID]; ok {
		t.Remove(txn.ID)
	}

	t.applied[txn.ID] = txn
	t.apply(txn, 1)
}

// Replace replaces an applied transaction with its new version.
func (t *Tracker) Replace(txn models.Transaction) {
	t.Add(txn)
}

// Remove reverts a transaction. Removing an unknown transaction is a no-op.
func (t *Tracker) Remove(id uuid.UUID) {
	txn, ok := t.applied[id]
	if !ok {
		return
	}

	t.apply(txn, -1)
	delete(t.applied, id)
}

// Reset replaces all applied transactions.
func (t *Tracker) Reset(transactions []models.Transaction) {
	t.applied = make(map[uuid.UUID]models.Transaction, len(transactions))
	t.months = make(map[uuid.UUID]map[string]decimal.Decimal)
	t.lifetime = make(map[uuid.UUID]decimal.Decimal)

	for _, txn := range transactions {
		t.Add(txn)
	}
}

// Balance returns the balance of an envelope for the scope.
func (t *Tracker) Balance(envelopeID uuid.UUID, scope Scope) decimal.Decimal {
	if scope.IsLifetime() {
		return t.lifetime[envelopeID]
	}

	return t.months[envelopeID][scope.Month().String()]
}

func (t *Tracker) apply(txn models.Transaction, sign int64) {
	if t.removed[txn.EnvelopeID] {
		return
	}

	e, ok := t.envelopes[txn.EnvelopeID]
	if !ok {
		// Unknown envelopes are treated as regular envelopes
		e = models.Envelope{DefaultModel: models.DefaultModel{ID: txn.EnvelopeID}}
	}

	if !counts(e, txn, t.policy) {
		return
	}

	amount := txn.Signed().Mul(decimal.NewFromInt(sign))

	key := types.MonthOf(txn.Date).String()
	if t.months[e.ID] == nil {
		t.months[e.ID] = make(map[string]decimal.Decimal)
	}
	t.months[e.ID][key] = t.months[e.ID][key].Add(amount)
	t.lifetime[e.ID] = t.lifetime[e.ID].Add(amount)
}
