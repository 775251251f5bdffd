// Package coordinator keeps the local replica of a ledger consistent with a
// remote store.
//
// Every mutation is applied to the replica at once and queued for the remote
// store. The queue is flushed in submission order by a worker that tolerates
// the store being unreachable. Deletions are kept as tombstones for an undo
// window before they are written to the store.
package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/envelope-zero/ledger/pkg/balance"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/envelope-zero/ledger/pkg/rollover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Config configures a Coordinator. Zero values are replaced with the
// values of DefaultConfig.
type Config struct {
	// Owner is the ID of the ledger owner
	Owner uuid.UUID

	// UndoWindow is how long deletions can be undone (default: 30s)
	UndoWindow time.Duration

	// MaxAttempts is the number of rejected attempts after which a write is failed (default: 5)
	MaxAttempts int

	// BaseBackoff is the wait time after the first rejected attempt. It doubles for every further attempt (default: 500ms)
	BaseBackoff time.Duration

	// MaxBackoff caps the wait time between attempts (default: 30s)
	MaxBackoff time.Duration

	// WriteTimeout bounds every call to the remote store (default: 10s)
	WriteTimeout time.Duration

	// ProbeInterval is how often the remote store is probed while offline (default: 5s)
	ProbeInterval time.Duration

	// SweepInterval is how often expired tombstones are finalized (default: 1s)
	SweepInterval time.Duration

	// LegacyPolicy decides if piggybanks without creation date count all transactions
	LegacyPolicy balance.LegacyPolicy

	// Now returns the current time. Defaults to time.Now
	Now func() time.Time
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		UndoWindow:    30 * time.Second,
		MaxAttempts:   5,
		BaseBackoff:   500 * time.Millisecond,
		MaxBackoff:    30 * time.Second,
		WriteTimeout:  10 * time.Second,
		ProbeInterval: 5 * time.Second,
		SweepInterval: time.Second,
		LegacyPolicy:  balance.IncludeLegacy,
		Now:           time.Now,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.UndoWindow <= 0 {
		c.UndoWindow = d.UndoWindow
	}

	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}

	if c.BaseBackoff <= 0 {
		c.BaseBackoff = d.BaseBackoff
	}

	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}

	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}

	if c.ProbeInterval <= 0 {
		c.ProbeInterval = d.ProbeInterval
	}

	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}

	if c.Now == nil {
		c.Now = d.Now
	}

	return c
}

// Status is the sync status of the ledger.
type Status struct {
	Online    bool   `json:"online" example:"true"`                                     // Is the remote store reachable?
	Pending   int    `json:"pending" example:"2"`                                       // Number of queued writes, including the one in flight
	Failed    int    `json:"failed" example:"0"`                                        // Number of writes that exhausted their attempts
	LastError string `json:"lastError,omitempty" example:"remote store is unavailable"` // Error of the last failed remote call
}

// Coordinator owns the replica of one ledger.
//
// The exported methods are safe for concurrent use. The replica is only
// mutated through them.
type Coordinator struct {
	mu      sync.Mutex
	store   remote.Store
	config  Config
	clock   *Clock
	replica *Replica
	tracker *balance.Tracker

	queue     []*Operation
	failed    []*Operation
	lastOp    uint64
	online    bool
	lastError string

	tombstones map[uuid.UUID]*Tombstone
	finalized  map[uuid.UUID]bool
	reordered  map[uuid.UUID]bool

	wake    chan struct{}
	metrics *metrics
}

var _ rollover.Ledger = (*Coordinator)(nil)

// New creates a coordinator for a ledger replicated to the store.
func New(store remote.Store, config Config) *Coordinator {
	config = config.withDefaults()

	c := &Coordinator{
		store:      store,
		config:     config,
		clock:      NewClock(config.Now),
		replica:    newReplica(),
		tracker:    balance.NewTracker(config.LegacyPolicy),
		online:     true,
		tombstones: make(map[uuid.UUID]*Tombstone),
		finalized:  make(map[uuid.UUID]bool),
		reordered:  make(map[uuid.UUID]bool),
		wake:       make(chan struct{}, 1),
		metrics:    newMetrics(),
	}
	c.observe()

	return c
}

// Owner returns the ID of the ledger owner.
func (c *Coordinator) Owner() uuid.UUID {
	return c.config.Owner
}

// Config returns the configuration of the coordinator.
func (c *Coordinator) Config() Config {
	return c.config
}

// Collectors returns the prometheus collectors of the coordinator.
func (c *Coordinator) Collectors() []prometheus.Collector {
	return c.metrics.collectors()
}

// Hydrate loads all resources of the owner from the remote store.
//
// Resources that are newer in the replica are kept.
func (c *Coordinator) Hydrate(ctx context.Context) error {
	docs, err := c.store.List(ctx, c.config.Owner)
	if err != nil {
		c.mu.Lock()
		c.recordError(err)
		if remote.Transient(err) {
			c.online = false
		}
		c.observe()
		c.mu.Unlock()

		return fmt.Errorf("loading the ledger: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	loaded := 0
	for _, d := range docs {
		applied, err := c.merge(d)
		if err != nil {
			log.Error().Str("component", "coordinator").Str("document", d.Key().String()).Err(err).Msg("skipping invalid document")
			continue
		}

		if applied {
			loaded++
		}
	}

	c.replica.sortByIndex()
	sort.SliceStable(c.replica.transactions.items, func(i, j int) bool {
		return c.replica.transactions.items[i].Date.Before(c.replica.transactions.items[j].Date)
	})

	log.Info().Str("component", "coordinator").Int("documents", len(docs)).Int("loaded", loaded).Msg("hydrated the ledger")
	return nil
}

// Snapshot returns a copy of all resources.
func (c *Coordinator) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.replica.Snapshot()
}

// SyncState returns the sync state of a resource.
func (c *Coordinator) SyncState(id uuid.UUID) models.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.replica.State(id)
}

// Status returns the sync status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Online:    c.online,
		Pending:   len(c.queue),
		Failed:    len(c.failed),
		LastError: c.lastError,
	}
}

// Operations returns the queued operations in queue order, followed by the
// failed ones.
func (c *Coordinator) Operations() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops := make([]Operation, 0, len(c.queue)+len(c.failed))
	for _, op := range c.queue {
		ops = append(ops, *op)
	}

	for _, op := range c.failed {
		ops = append(ops, *op)
	}

	return ops
}

// encode converts a resource to a document of the owner.
func (c *Coordinator) encode(m models.Model) (remote.Document, error) {
	return remote.Encode(c.config.Owner, m, m.Version())
}

// enqueue queues a remote write. The caller must hold the lock.
func (c *Coordinator) enqueue(kind OperationKind, docs ...remote.Document) *Operation {
	c.lastOp++
	op := &Operation{
		ID:         c.lastOp,
		Kind:       kind,
		Collection: docs[0].Collection,
		Documents:  docs,
		State:      StateQueued,
		CreatedAt:  c.clock.Now(),
	}

	c.queue = append(c.queue, op)
	for _, d := range docs {
		c.replica.latest[d.ID] = op
	}

	c.observe()
	c.notify()

	return op
}

// notify wakes up the worker.
func (c *Coordinator) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// put stores a resource in the replica and updates the balance tracker.
// The caller must hold the lock.
func (c *Coordinator) put(m models.Model) {
	switch v := m.(type) {
	case models.Category:
		c.replica.categories.put(v)
	case models.Envelope:
		c.replica.envelopes.put(v)
		c.tracker.SetEnvelope(v)
	case models.Transaction:
		c.replica.transactions.put(v)
		c.tracker.Add(v)
	case models.IncomeSource:
		c.replica.incomeSources.put(v)
	case models.Allocation:
		c.replica.allocations.put(v)
	case models.PaymentMethod:
		c.replica.paymentMethods.put(v)
	}
}

// track registers a resource reinserted into the replica with the tracker.
func (c *Coordinator) track(m models.Model) {
	switch v := m.(type) {
	case models.Envelope:
		c.tracker.SetEnvelope(v)
	case models.Transaction:
		c.tracker.Add(v)
	}
}

// drop removes a resource from the replica and the balance tracker.
// The caller must hold the lock.
func (c *Coordinator) drop(collection string, id uuid.UUID) (models.Model, []uuid.UUID, bool) {
	m, after, ok := c.replica.remove(collection, id)
	if !ok {
		return nil, nil, false
	}

	switch collection {
	case models.CollectionEnvelopes:
		c.tracker.RemoveEnvelope(id)
	case models.CollectionTransactions:
		c.tracker.Remove(id)
	}

	return m, after, true
}

// merge applies a document to the replica if it is newer than the local
// version. The caller must hold the lock.
func (c *Coordinator) merge(d remote.Document) (bool, error) {
	if c.tombstoned(d.ID) {
		return false, nil
	}

	if v, ok := c.replica.version(d.Collection, d.ID); ok && !d.UpdatedAt.After(v) {
		return false, nil
	}

	m, err := decode(d)
	if err != nil {
		return false, err
	}

	if m.Key() != d.ID {
		return false, fmt.Errorf("document %s contains resource %s: %w", d.Key(), m.Key(), remote.ErrRejected)
	}

	c.clock.Observe(d.UpdatedAt)
	c.put(m)
	return true, nil
}

// recordError stores the error as the last sync error. The caller must hold the lock.
func (c *Coordinator) recordError(err error) {
	c.lastError = err.Error()
}

// observe updates the metrics. The caller must hold the lock.
func (c *Coordinator) observe() {
	c.metrics.queueDepth.Set(float64(len(c.queue)))

	if c.online {
		c.metrics.online.Set(1)
	} else {
		c.metrics.online.Set(0)
	}
}
