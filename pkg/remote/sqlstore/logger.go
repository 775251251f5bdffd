package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gorm_logger "gorm.io/gorm/logger"
)

// Statements taking longer than this are logged as warnings
const slowStatement = 200 * time.Millisecond

// logger writes gorm logs to zerolog.
//
// Statements are logged at trace level, so they only show up when the
// global level is lowered explicitly.
type logger struct {
	Logger zerolog.Logger
	level  gorm_logger.LogLevel
}

func (l *logger) LogMode(level gorm_logger.LogLevel) gorm_logger.Interface {
	derived := *l
	derived.level = level
	return &derived
}

func (l *logger) silent() bool {
	return l.level == gorm_logger.Silent
}

func (l *logger) Info(_ context.Context, s string, args ...interface{}) {
	if !l.silent() {
		l.Logger.Info().Msgf(s, args...)
	}
}

func (l *logger) Warn(_ context.Context, s string, args ...interface{}) {
	if !l.silent() {
		l.Logger.Warn().Msgf(s, args...)
	}
}

func (l *logger) Error(_ context.Context, s string, args ...interface{}) {
	if !l.silent() {
		l.Logger.Error().Msgf(s, args...)
	}
}

func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.silent() {
		return
	}

	elapsed := time.Since(begin)
	statement, rows := fc()

	var event *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, errNotFound):
		event = l.Logger.Error().Err(err)
	case elapsed > slowStatement:
		event = l.Logger.Warn().Dur("threshold", slowStatement)
	default:
		event = l.Logger.Trace()
	}

	event.Str("sql", statement).Int64("rows", rows).Dur("duration", elapsed).Msg("statement")
}
