// Package sqlstore implements the remote store on top of a SQL database.
//
// All documents live in one table. Building on gorm keeps the store portable,
// the default database is SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// document is the database row of a remote.Document.
//
// The write timestamp is stored in nanoseconds so that it can be compared exactly.
type document struct {
	Owner      uuid.UUID `gorm:"primaryKey;type:uuid"`
	Collection string    `gorm:"primaryKey"`
	ID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	Version    int64     `gorm:"not null"`
	Deleted    bool      `gorm:"not null"`
	Body       []byte
}

func (document) TableName() string {
	return "documents"
}

func fromDocument(d remote.Document) document {
	return document{
		Owner:      d.Owner,
		Collection: d.Collection,
		ID:         d.ID,
		Version:    d.UpdatedAt.UnixNano(),
		Body:       d.Body,
	}
}

func (d document) remote() remote.Document {
	return remote.Document{
		Owner:      d.Owner,
		Collection: d.Collection,
		ID:         d.ID,
		UpdatedAt:  time.Unix(0, d.Version).UTC(),
		Body:       d.Body,
	}
}

// Store is a remote.Store persisting documents with gorm.
type Store struct {
	db  *gorm.DB
	hub *remote.Hub
}

var _ remote.Store = (*Store)(nil)

// New creates a store on an open database connection.
func New(db *gorm.DB) *Store {
	return &Store{
		db:  db,
		hub: remote.NewHub(),
	}
}

// Open connects to the database and creates a store.
func Open(dsn string) (*Store, error) {
	db, err := Connect(dsn)
	if err != nil {
		return nil, err
	}

	return New(db), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *Store) Put(ctx context.Context, doc remote.Document) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return write(tx, fromDocument(doc))
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", doc.Key(), translate(err))
	}

	s.hub.Publish(remote.Change{Kind: remote.ChangeUpsert, Document: doc})
	return nil
}

func (s *Store) Delete(ctx context.Context, key remote.Key, at time.Time) error {
	row := document{
		Owner:      key.Owner,
		Collection: key.Collection,
		ID:         key.ID,
		Version:    at.UnixNano(),
		Deleted:    true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return write(tx, row)
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, translate(err))
	}

	s.hub.Publish(remote.Change{Kind: remote.ChangeDelete, Document: row.remote()})
	return nil
}

func (s *Store) Batch(ctx context.Context, docs []remote.Document) error {
	written := make([]remote.Document, 0, len(docs))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		written = written[:0]

		for _, doc := range docs {
			err := write(tx, fromDocument(doc))
			if errors.Is(err, remote.ErrStale) {
				continue
			}

			if err != nil {
				return err
			}

			written = append(written, doc)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("writing batch of %d documents: %w", len(docs), translate(err))
	}

	for _, doc := range written {
		s.hub.Publish(remote.Change{Kind: remote.ChangeUpsert, Document: doc})
	}

	return nil
}

func (s *Store) List(ctx context.Context, owner uuid.UUID) ([]remote.Document, error) {
	var rows []document

	err := s.db.WithContext(ctx).
		Where(&document{Owner: owner}).
		Where("deleted = ?", false).
		Order("version").
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", translate(err))
	}

	docs := make([]remote.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.remote())
	}

	return docs, nil
}

func (s *Store) Subscribe(ctx context.Context, owner uuid.UUID) (<-chan remote.Change, error) {
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}

	return s.hub.Subscribe(ctx, owner), nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", remote.ErrUnavailable, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", remote.ErrUnavailable, err)
	}

	return nil
}

// write stores a row if it is newer than the stored version.
func write(tx *gorm.DB, row document) error {
	var current document

	err := tx.
		Where(&document{Owner: row.Owner, Collection: row.Collection, ID: row.ID}).
		Limit(1).
		Find(&current).
		Error
	if err != nil {
		return err
	}

	if current.ID != uuid.Nil && row.Version <= current.Version {
		return remote.ErrStale
	}

	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}
