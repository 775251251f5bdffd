package coordinator

import (
	"sort"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
)

// collection is an ordered list of resources of one kind.
type collection[T models.Model] struct {
	items []T
}

func (c *collection[T]) find(id uuid.UUID) int {
	for i, item := range c.items {
		if item.Key() == id {
			return i
		}
	}

	return -1
}

func (c *collection[T]) get(id uuid.UUID) (T, bool) {
	if i := c.find(id); i >= 0 {
		return c.items[i], true
	}

	var zero T
	return zero, false
}

func (c *collection[T]) all() []T {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

// put replaces the resource in place or appends it if it does not exist yet.
func (c *collection[T]) put(item T) (created bool) {
	if i := c.find(item.Key()); i >= 0 {
		c.items[i] = item
		return false
	}

	c.items = append(c.items, item)
	return true
}

// restore inserts the resource directly after the first of the given IDs
// that is still in the list. If none is, it becomes the first item.
func (c *collection[T]) restore(item T, after []uuid.UUID) {
	index := 0
	for _, id := range after {
		if i := c.find(id); i >= 0 {
			index = i + 1
			break
		}
	}

	c.items = append(c.items, item)
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = item
}

// remove removes the resource. It returns the IDs of the resources that
// preceded it, nearest first.
func (c *collection[T]) remove(id uuid.UUID) (T, []uuid.UUID, bool) {
	i := c.find(id)
	if i < 0 {
		var zero T
		return zero, nil, false
	}

	after := make([]uuid.UUID, 0, i)
	for j := i - 1; j >= 0; j-- {
		after = append(after, c.items[j].Key())
	}

	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return item, after, true
}

// Replica is the local copy of the ledger.
//
// Every collection keeps its resources in list order. The replica is not safe
// for concurrent use, the Coordinator serializes all access.
type Replica struct {
	categories     collection[models.Category]
	envelopes      collection[models.Envelope]
	transactions   collection[models.Transaction]
	incomeSources  collection[models.IncomeSource]
	allocations    collection[models.Allocation]
	paymentMethods collection[models.PaymentMethod]

	// latest is the most recent operation for every resource that is not synced yet
	latest map[uuid.UUID]*Operation
}

func newReplica() *Replica {
	return &Replica{latest: make(map[uuid.UUID]*Operation)}
}

// Snapshot returns a copy of all resources.
func (r *Replica) Snapshot() models.Snapshot {
	return models.Snapshot{
		Categories:     r.categories.all(),
		Envelopes:      r.envelopes.all(),
		Transactions:   r.transactions.all(),
		IncomeSources:  r.incomeSources.all(),
		Allocations:    r.allocations.all(),
		PaymentMethods: r.paymentMethods.all(),
	}
}

// State returns the sync state of a resource.
func (r *Replica) State(id uuid.UUID) models.SyncState {
	op, ok := r.latest[id]
	if !ok {
		return models.Synced()
	}

	switch op.State {
	case StateSynced:
		return models.Synced()
	case StateFailed:
		return models.Failed(op.LastError)
	default:
		return models.PendingWrite()
	}
}

// version returns the write timestamp of a resource.
func (r *Replica) version(collection string, id uuid.UUID) (time.Time, bool) {
	var (
		m  models.Model
		ok bool
	)

	switch collection {
	case models.CollectionCategories:
		m, ok = r.categories.get(id)
	case models.CollectionEnvelopes:
		m, ok = r.envelopes.get(id)
	case models.CollectionTransactions:
		m, ok = r.transactions.get(id)
	case models.CollectionIncomeSources:
		m, ok = r.incomeSources.get(id)
	case models.CollectionAllocations:
		m, ok = r.allocations.get(id)
	case models.CollectionPaymentMethods:
		m, ok = r.paymentMethods.get(id)
	}

	if !ok {
		return time.Time{}, false
	}

	return m.Version(), true
}

// restore reinserts a removed resource after its nearest remaining predecessor.
func (r *Replica) restore(m models.Model, after []uuid.UUID) {
	switch v := m.(type) {
	case models.Category:
		r.categories.restore(v, after)
	case models.Envelope:
		r.envelopes.restore(v, after)
	case models.Transaction:
		r.transactions.restore(v, after)
	case models.IncomeSource:
		r.incomeSources.restore(v, after)
	case models.Allocation:
		r.allocations.restore(v, after)
	case models.PaymentMethod:
		r.paymentMethods.restore(v, after)
	}
}

// remove removes a resource and returns it with the IDs that preceded it.
func (r *Replica) remove(collection string, id uuid.UUID) (models.Model, []uuid.UUID, bool) {
	switch collection {
	case models.CollectionCategories:
		return removeFrom(&r.categories, id)
	case models.CollectionEnvelopes:
		return removeFrom(&r.envelopes, id)
	case models.CollectionTransactions:
		return removeFrom(&r.transactions, id)
	case models.CollectionIncomeSources:
		return removeFrom(&r.incomeSources, id)
	case models.CollectionAllocations:
		return removeFrom(&r.allocations, id)
	case models.CollectionPaymentMethods:
		return removeFrom(&r.paymentMethods, id)
	}

	return nil, nil, false
}

func removeFrom[T models.Model](c *collection[T], id uuid.UUID) (models.Model, []uuid.UUID, bool) {
	item, after, ok := c.remove(id)
	if !ok {
		return nil, nil, false
	}

	return item, after, true
}

// decode decodes a document into the resource type of its collection.
func decode(d remote.Document) (models.Model, error) {
	switch d.Collection {
	case models.CollectionCategories:
		return remote.Decode[models.Category](d)
	case models.CollectionEnvelopes:
		return remote.Decode[models.Envelope](d)
	case models.CollectionTransactions:
		return remote.Decode[models.Transaction](d)
	case models.CollectionIncomeSources:
		return remote.Decode[models.IncomeSource](d)
	case models.CollectionAllocations:
		return remote.Decode[models.Allocation](d)
	case models.CollectionPaymentMethods:
		return remote.Decode[models.PaymentMethod](d)
	}

	return nil, ErrUnknownCollection
}

// sortByIndex restores the display order of envelopes and categories.
func (r *Replica) sortByIndex() {
	sort.SliceStable(r.envelopes.items, func(i, j int) bool {
		return r.envelopes.items[i].Index < r.envelopes.items[j].Index
	})

	sort.SliceStable(r.categories.items, func(i, j int) bool {
		return r.categories.items[i].Index < r.categories.items[j].Index
	})
}

// nextEnvelopeIndex returns the next free display index for envelopes.
func (r *Replica) nextEnvelopeIndex() int {
	next := 0
	for _, e := range r.envelopes.items {
		if e.Index >= next {
			next = e.Index + 1
		}
	}

	return next
}

func (r *Replica) nextCategoryIndex() int {
	next := 0
	for _, c := range r.categories.items {
		if c.Index >= next {
			next = c.Index + 1
		}
	}

	return next
}
