package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/rs/zerolog/log"
)

// Run flushes the queue to the remote store until the context is done.
//
// While the store is unreachable, flushing pauses and the store is probed
// every ProbeInterval. Operations that are in the queue when the context is
// done stay queued.
func (c *Coordinator) Run(ctx context.Context) error {
	log.Info().Str("component", "coordinator").Msg("starting sync worker")

	for {
		c.Flush(ctx)

		online := c.Online()
		wait := c.config.ProbeInterval
		if online {
			wait = c.wait()
		}

		if !c.sleep(ctx, wait, online) {
			log.Info().Str("component", "coordinator").Int("pending", c.Status().Pending).Msg("stopping sync worker")
			return nil
		}

		if !online {
			c.probe(ctx)
		}
	}
}

// Flush sends queued operations in order until the queue is empty, the next
// operation waits for a retry or the store is unreachable. It returns the
// number of operations that were synced.
func (c *Coordinator) Flush(ctx context.Context) int {
	synced := 0

	for ctx.Err() == nil && c.Online() {
		op := c.next()
		if op == nil {
			break
		}

		err := c.send(ctx, op)
		if ctx.Err() != nil {
			break
		}

		if c.complete(op, err) {
			synced++
		}
	}

	return synced
}

// Online reports if the remote store is considered reachable.
func (c *Coordinator) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.online
}

// RetryFailed queues all failed operations again and returns how many
// were queued.
func (c *Coordinator) RetryFailed() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.failed)
	for _, op := range c.failed {
		op.State = StateQueued
		op.Attempts = 0
		op.notBefore = time.Time{}
		c.queue = append(c.queue, op)
	}
	c.failed = nil

	if n > 0 {
		log.Info().Str("component", "coordinator").Int("operations", n).Msg("retrying failed operations")
		c.observe()
		c.notify()
	}

	return n
}

// next returns the head of the queue if it is ready to be sent.
func (c *Coordinator) next() *Operation {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return nil
	}

	head := c.queue[0]
	if head.notBefore.After(c.clock.Now()) {
		return nil
	}

	return head
}

// wait returns how long the worker can sleep before the head of the queue
// is ready. Zero means until woken up.
func (c *Coordinator) wait() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return 0
	}

	d := c.queue[0].notBefore.Sub(c.clock.Now())
	if d <= 0 {
		return time.Millisecond
	}

	return d
}

// sleep waits for the duration or until the context is done. If wakeable is
// set, queuing a new operation ends the sleep. It returns false if the
// context is done.
func (c *Coordinator) sleep(ctx context.Context, d time.Duration, wakeable bool) bool {
	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	var wake <-chan struct{}
	if wakeable {
		wake = c.wake
	}

	select {
	case <-ctx.Done():
		return false
	case <-wake:
	case <-timeout:
	}

	return true
}

// probe checks if the store is reachable again.
func (c *Coordinator) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.config.WriteTimeout)
	defer cancel()

	err := c.store.Ping(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Debug().Str("component", "coordinator").Err(err).Msg("remote store is still unreachable")
		return
	}

	c.online = true
	c.observe()
	c.notify()

	log.Info().Str("component", "coordinator").Int("pending", len(c.queue)).Msg("remote store is reachable again")
}

// send executes an operation against the store.
func (c *Coordinator) send(ctx context.Context, op *Operation) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.WriteTimeout)
	defer cancel()

	var err error
	switch op.Kind {
	case OperationUpsert:
		err = c.store.Put(ctx, op.Documents[0])
	case OperationDelete:
		d := op.Documents[0]
		err = c.store.Delete(ctx, d.Key(), d.UpdatedAt)
	case OperationBatch:
		err = c.store.Batch(ctx, op.Documents)
	}

	// The store already holds a newer version, nothing left to write
	if errors.Is(err, remote.ErrStale) {
		log.Debug().Str("component", "coordinator").Uint64("operation", op.ID).Msg("skipping stale write")
		return nil
	}

	return err
}

// complete records the result of sending an operation. It returns true if
// the operation is synced.
func (c *Coordinator) complete(op *Operation, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.observe()

	logger := log.With().Str("component", "coordinator").Uint64("operation", op.ID).Str("kind", string(op.Kind)).Str("collection", op.Collection).Logger()

	if err == nil {
		c.dequeue(op)
		op.State = StateSynced
		op.LastError = ""

		for _, id := range op.Resources() {
			if c.replica.latest[id] == op {
				delete(c.replica.latest, id)
			}
		}

		c.online = true
		c.metrics.synced.Inc()
		logger.Debug().Msg("synced")
		return true
	}

	c.recordError(err)

	if remote.Transient(err) {
		c.online = false
		logger.Warn().Err(err).Int("pending", len(c.queue)).Msg("remote store is unreachable, pausing sync")
		return false
	}

	op.Attempts++
	op.LastError = err.Error()

	if op.Attempts >= c.config.MaxAttempts {
		c.dequeue(op)
		op.State = StateFailed
		c.failed = append(c.failed, op)
		c.metrics.failed.Inc()
		logger.Error().Err(err).Int("attempts", op.Attempts).Msg("giving up on write")
		return false
	}

	wait := backoff(op.Attempts, c.config.BaseBackoff, c.config.MaxBackoff)
	op.State = StateRetrying
	op.notBefore = c.clock.Now().Add(wait)
	logger.Warn().Err(err).Int("attempts", op.Attempts).Dur("backoff", wait).Msg("write rejected, retrying")

	return false
}

// dequeue removes an operation from the queue. The caller must hold the lock.
func (c *Coordinator) dequeue(op *Operation) {
	for i, o := range c.queue {
		if o == op {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// Listen merges changes pushed by the remote store into the replica until
// the context is done. The subscription is renewed if it is lost.
func (c *Coordinator) Listen(ctx context.Context) error {
	for {
		changes, err := c.store.Subscribe(ctx, c.config.Owner)
		if err != nil {
			log.Warn().Str("component", "coordinator").Err(err).Msg("could not subscribe to remote changes")
		} else {
			log.Info().Str("component", "coordinator").Msg("subscribed to remote changes")

			for change := range changes {
				if err := c.ApplyRemote(change); err != nil {
					log.Error().Str("component", "coordinator").Str("document", change.Document.Key().String()).Err(err).Msg("could not apply remote change")
				}
			}
		}

		if !c.sleep(ctx, c.config.ProbeInterval, false) {
			return nil
		}
	}
}

// ApplyRemote merges a change from the remote store into the replica by
// last-write-wins on the resource's write timestamp.
//
// Changes for resources behind an active tombstone are ignored. A deletion
// removes the local resource unless the local version is newer.
func (c *Coordinator) ApplyRemote(change remote.Change) error {
	if change.Document.Owner != c.config.Owner {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d := change.Document

	switch change.Kind {
	case remote.ChangeUpsert:
		applied, err := c.merge(d)
		if err != nil {
			return err
		}

		if applied {
			c.replica.sortByIndex()
			log.Debug().Str("component", "coordinator").Str("document", d.Key().String()).Msg("applied remote change")
		}

	case remote.ChangeDelete:
		if c.tombstoned(d.ID) {
			return nil
		}

		v, ok := c.replica.version(d.Collection, d.ID)
		if !ok || d.UpdatedAt.Before(v) {
			return nil
		}

		c.clock.Observe(d.UpdatedAt)
		c.drop(d.Collection, d.ID)
		log.Debug().Str("component", "coordinator").Str("document", d.Key().String()).Msg("applied remote deletion")

	default:
		return ErrUnknownChange
	}

	return nil
}
