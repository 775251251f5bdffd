package sqlstore

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var errNotFound = fmt.Errorf("%w document", models.ErrResourceNotFound)

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{
			Logger: log.Logger.With().Str("component", "sqlstore").Logger(),
		},
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// One connection prevents SQLITE_BUSY errors. For in-memory databases, it
	// also ensures that all queries use the same database.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	callbacks := []struct {
		processor interface {
			Register(string, func(*gorm.DB)) error
		}
		name string
		fn   func(*gorm.DB)
	}{
		{db.Callback().Query().After("*"), "ledger:after_query", queryCallback},
		{db.Callback().Query().After("*"), "ledger:after_query_general", generalCallback},
		{db.Callback().Create().After("*"), "ledger:after_create", createUpdateCallback},
		{db.Callback().Create().After("*"), "ledger:after_create_general", generalCallback},
		{db.Callback().Update().After("*"), "ledger:after_update", createUpdateCallback},
		{db.Callback().Update().After("*"), "ledger:after_update_general", generalCallback},
		{db.Callback().Delete().After("*"), "ledger:after_delete_general", generalCallback},
	}

	for _, c := range callbacks {
		if err := c.processor.Register(c.name, c.fn); err != nil {
			return nil, err
		}
	}

	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("error during DB migration: %w", err)
	}

	return db, nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		db.Error = errNotFound
	}
}

// createUpdateCallback translates constraint violations. The write will never
// succeed unchanged, so it is rejected.
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if strings.Contains(db.Error.Error(), "constraint failed") {
		log.Warn().Str("component", "sqlstore").Err(db.Error).Msg("write rejected")
		db.Error = fmt.Errorf("%w: %w", remote.ErrRejected, db.Error)
	}
}

// generalCallback handles unspecified errors.
//
// The error is logged and replaced with remote.ErrUnavailable so that the
// write is retried.
func generalCallback(db *gorm.DB) {
	db.Error = translate(db.Error)
}

// translate replaces errors of the database that do not carry useful information
// for the caller.
func translate(err error) error {
	if err == nil || errors.Is(err, remote.ErrRejected) || errors.Is(err, remote.ErrUnavailable) {
		return err
	}

	// "sql: database is closed" is hard-coded in the sql module
	if err.Error() == "sql: database is closed" || reflect.TypeOf(err) == reflect.TypeOf(&go_sqlite.Error{}) {
		log.Error().Str("component", "sqlstore").Msgf("%T: %v", err, err.Error())
		return fmt.Errorf("%w: %w", remote.ErrUnavailable, models.ErrGeneral)
	}

	return err
}
