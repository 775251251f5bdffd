// Package memory implements an in-process remote store.
//
// It is used for tests and for running the ledger without a database. Faults
// can be injected to simulate a store that is offline, rejects writes or
// throttles the client.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
)

type entry struct {
	doc     remote.Document
	deleted bool
}

// Store is an in-memory remote.Store.
type Store struct {
	mu      sync.RWMutex
	entries map[remote.Key]entry
	hub     *remote.Hub

	offline bool
	faults  []error
	writes  int
	delay   time.Duration
}

var _ remote.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[remote.Key]entry),
		hub:     remote.NewHub(),
	}
}

// SetOffline sets if the store is reachable. An offline store returns
// remote.ErrUnavailable for every call.
func (s *Store) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offline = offline
}

// FailNext makes the next write calls fail with the errors, in order.
func (s *Store) FailNext(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = append(s.faults, errs...)
}

// SetDelay makes every write wait for the duration or until its context is done.
func (s *Store) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delay = d
}

// Writes returns the number of write calls that reached the store.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes
}

// Get returns a document. Deleted documents are not returned.
func (s *Store) Get(key remote.Key) (remote.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.deleted {
		return remote.Document{}, false
	}

	return e.doc, true
}

// Documents returns all documents of a collection, sorted by ID.
func (s *Store) Documents(owner uuid.UUID, collection string) []remote.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]remote.Document, 0)
	for k, e := range s.entries {
		if k.Owner == owner && k.Collection == collection && !e.deleted {
			docs = append(docs, e.doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID.String() < docs[j].ID.String()
	})

	return docs
}

func (s *Store) Put(ctx context.Context, doc remote.Document) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	err := s.put(doc)
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.hub.Publish(remote.Change{Kind: remote.ChangeUpsert, Document: doc})
	return nil
}

func (s *Store) Delete(ctx context.Context, key remote.Key, at time.Time) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if current, ok := s.entries[key]; ok && !at.After(current.doc.UpdatedAt) {
		s.mu.Unlock()
		return fmt.Errorf("deleting %s: %w", key, remote.ErrStale)
	}

	doc := remote.Document{Owner: key.Owner, Collection: key.Collection, ID: key.ID, UpdatedAt: at.UTC()}
	s.entries[key] = entry{doc: doc, deleted: true}
	s.mu.Unlock()

	s.hub.Publish(remote.Change{Kind: remote.ChangeDelete, Document: doc})
	return nil
}

func (s *Store) Batch(ctx context.Context, docs []remote.Document) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	written := make([]remote.Document, 0, len(docs))

	s.mu.Lock()
	for _, doc := range docs {
		if err := s.put(doc); err == nil {
			written = append(written, doc)
		}
	}
	s.mu.Unlock()

	for _, doc := range written {
		s.hub.Publish(remote.Change{Kind: remote.ChangeUpsert, Document: doc})
	}

	return nil
}

func (s *Store) List(ctx context.Context, owner uuid.UUID) ([]remote.Document, error) {
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]remote.Document, 0)
	for k, e := range s.entries {
		if k.Owner == owner && !e.deleted {
			docs = append(docs, e.doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.Before(docs[j].UpdatedAt)
	})

	return docs, nil
}

func (s *Store) Subscribe(ctx context.Context, owner uuid.UUID) (<-chan remote.Change, error) {
	s.mu.RLock()
	offline := s.offline
	s.mu.RUnlock()

	if offline {
		return nil, remote.ErrUnavailable
	}

	return s.hub.Subscribe(ctx, owner), nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.offline {
		return remote.ErrUnavailable
	}

	return nil
}

// begin simulates the network part of a write call.
func (s *Store) begin(ctx context.Context) error {
	s.mu.Lock()
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", remote.ErrUnavailable, ctx.Err())
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return remote.ErrUnavailable
	}

	if len(s.faults) > 0 {
		err := s.faults[0]
		s.faults = s.faults[1:]
		return err
	}

	s.writes++
	return nil
}

// put stores a document if it is newer than the stored version. The caller
// must hold the write lock.
func (s *Store) put(doc remote.Document) error {
	key := doc.Key()

	if current, ok := s.entries[key]; ok && !doc.UpdatedAt.After(current.doc.UpdatedAt) {
		return fmt.Errorf("writing %s: %w", key, remote.ErrStale)
	}

	doc.UpdatedAt = doc.UpdatedAt.UTC()
	s.entries[key] = entry{doc: doc}
	return nil
}
