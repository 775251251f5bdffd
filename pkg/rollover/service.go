package rollover

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Ledger is the write path rollover uses.
type Ledger interface {
	Snapshot() models.Snapshot
	CreateIncomeSource(models.IncomeSource) (models.IncomeSource, error)
	SetAllocation(envelopeID uuid.UUID, month types.Month, amount decimal.Decimal) (models.Allocation, error)
	CreateTransaction(models.Transaction) (models.Transaction, error)
}

// Service executes rollover plans.
//
// Runs are serialized so that planning and executing a plan is atomic with
// respect to other runs.
type Service struct {
	mu     sync.Mutex
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// CopyForwardResult is the result of copying a month forward.
type CopyForwardResult struct {
	Source        types.Month `json:"source" example:"2026-01"`  // Month the data was copied from
	IncomeSources int         `json:"incomeSources" example:"2"` // Number of income sources created
	Allocations   int         `json:"allocations" example:"12"`  // Number of allocations created
}

// CopyForward copies the most recent prior month's income sources and
// allocations into month.
//
// If the month already has data, nothing is copied and no error is returned.
func (s *Service) CopyForward(ctx context.Context, month types.Month) (CopyForwardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := PlanCopyForward(s.ledger.Snapshot(), month)
	if errors.Is(err, ErrAlreadyPopulated) {
		log.Debug().Str("component", "rollover").Str("month", month.String()).Msg("month already has data, not copying")
		return CopyForwardResult{}, nil
	}
	if err != nil {
		return CopyForwardResult{}, err
	}

	// A month that is partly copied counts as populated, so the whole plan
	// must be valid before the first record is written
	if err := plan.Validate(); err != nil {
		return CopyForwardResult{}, err
	}

	result := CopyForwardResult{Source: plan.Source}

	partial := func(err error) (CopyForwardResult, error) {
		log.Error().
			Str("component", "rollover").
			Str("source", plan.Source.String()).
			Str("target", month.String()).
			Int("income_sources", result.IncomeSources).
			Int("allocations", result.Allocations).
			Err(err).
			Msg("month is only partly copied forward")

		return result, err
	}

	for _, i := range plan.IncomeSources {
		if err := ctx.Err(); err != nil {
			return partial(err)
		}

		if _, err := s.ledger.CreateIncomeSource(i); err != nil {
			return partial(fmt.Errorf("copying income source %s: %w", i.Name, err))
		}
		result.IncomeSources++
	}

	for _, a := range plan.Allocations {
		if err := ctx.Err(); err != nil {
			return partial(err)
		}

		if _, err := s.ledger.SetAllocation(a.EnvelopeID, a.Month, a.Amount); err != nil {
			return partial(fmt.Errorf("copying allocation for envelope %s: %w", a.EnvelopeID, err))
		}
		result.Allocations++
	}

	log.Info().
		Str("component", "rollover").
		Str("source", plan.Source.String()).
		Str("target", month.String()).
		Int("income_sources", result.IncomeSources).
		Int("allocations", result.Allocations).
		Msg("copied month forward")

	return result, nil
}

// MaterializeContributions creates the automatic contribution transactions for
// all piggybanks in the month and returns how many were created.
//
// Piggybanks that already received their contribution for the month are skipped.
func (s *Service) MaterializeContributions(ctx context.Context, month types.Month) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, t := range PlanContributions(s.ledger.Snapshot(), month) {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		if _, err := s.ledger.CreateTransaction(t); err != nil {
			return created, fmt.Errorf("creating contribution for envelope %s: %w", t.EnvelopeID, err)
		}
		created++
	}

	if created > 0 {
		log.Info().Str("component", "rollover").Str("month", month.String()).Int("created", created).Msg("materialized piggybank contributions")
	}

	return created, nil
}
