// Package remote defines the document store the ledger is replicated to.
//
// The store is organized by owner and collection. Every document carries the
// write timestamp of the resource it holds. A store never accepts a write that is
// not newer than what it already holds for the same key, which makes writes
// idempotent and lets replicas converge by last-write-wins.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrUnavailable is returned when the store can not be reached. The write
	// can be retried unchanged once connectivity is back.
	ErrUnavailable = errors.New("remote store is unavailable")

	// ErrRejected is returned when the store refused a write.
	ErrRejected = errors.New("remote store rejected the write")

	// ErrRateLimited is returned when the store throttles the client.
	ErrRateLimited = errors.New("remote store rate limit exceeded")

	// ErrStale is returned for writes that are not newer than the stored version.
	ErrStale = errors.New("the remote store already holds a newer version")
)

// Key identifies a document.
type Key struct {
	Owner      uuid.UUID `json:"owner"`
	Collection string    `json:"collection"`
	ID         uuid.UUID `json:"id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Owner, k.Collection, k.ID)
}

// Document is a single resource in the store.
type Document struct {
	Owner      uuid.UUID       `json:"owner"`
	Collection string          `json:"collection"`
	ID         uuid.UUID       `json:"id"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Body       json.RawMessage `json:"body"`
}

// Key returns the key of the document.
func (d Document) Key() Key {
	return Key{Owner: d.Owner, Collection: d.Collection, ID: d.ID}
}

// ChangeKind is the kind of a change in the store.
type ChangeKind string

const (
	ChangeUpsert ChangeKind = "upsert"
	ChangeDelete ChangeKind = "delete"
)

// Change is a single change pushed to subscribers.
//
// For deletions, the document has no body and UpdatedAt is the time of the deletion.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Document Document   `json:"document"`
}

// Store is a document store a ledger is replicated to.
//
// All methods must be safe for concurrent use.
type Store interface {
	// Put creates or replaces a document.
	Put(ctx context.Context, doc Document) error

	// Delete deletes a document. The timestamp is the write timestamp of the deletion.
	Delete(ctx context.Context, key Key, at time.Time) error

	// Batch writes multiple documents. Stale documents in a batch are skipped.
	Batch(ctx context.Context, docs []Document) error

	// List returns all documents of the owner that are not deleted.
	List(ctx context.Context, owner uuid.UUID) ([]Document, error)

	// Subscribe returns a channel receiving all changes for the owner. The
	// channel is closed when the context is done.
	Subscribe(ctx context.Context, owner uuid.UUID) (<-chan Change, error)

	// Ping verifies that the store is reachable.
	Ping(ctx context.Context) error
}

// Encode converts a resource to a document.
func Encode(owner uuid.UUID, m models.Model, updatedAt time.Time) (Document, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return Document{}, fmt.Errorf("encoding %s %s: %w", m.Self(), m.Key(), err)
	}

	return Document{
		Owner:      owner,
		Collection: m.Collection(),
		ID:         m.Key(),
		UpdatedAt:  updatedAt.UTC(),
		Body:       body,
	}, nil
}

// Decode decodes the body of a document into a resource.
func Decode[T models.Model](d Document) (T, error) {
	var m T
	if err := json.Unmarshal(d.Body, &m); err != nil {
		return m, fmt.Errorf("decoding %s: %w", d.Key(), err)
	}

	return m, nil
}

// Transient reports if an error is worth retrying without any change, which
// is the case when the store could not be reached at all.
func Transient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
