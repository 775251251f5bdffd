// Package rollover produces the records that carry a budget from one month to the next.
//
// Planning is pure and works on a snapshot. The Service executes plans through
// the Ledger, so rollover has no write path of its own.
package rollover

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
)

// ErrAlreadyPopulated is returned when copying forward into a month that already
// has income or allocations.
var ErrAlreadyPopulated = errors.New("the month already has income sources or allocations")

// CopyPlan contains the records to create for copying a month forward.
type CopyPlan struct {
	Source        types.Month           // Month the records are copied from. Zero if no prior month has data
	Target        types.Month           // Month the records are copied to
	IncomeSources []models.IncomeSource // Income sources to create
	Allocations   []models.Allocation   // Allocations to create
}

// Empty reports if the plan creates no records.
func (p CopyPlan) Empty() bool {
	return len(p.IncomeSources) == 0 && len(p.Allocations) == 0
}

// Validate checks all records of the plan.
func (p CopyPlan) Validate() error {
	for _, i := range p.IncomeSources {
		if err := i.Validate(); err != nil {
			return fmt.Errorf("copying income source %s: %w", i.Name, err)
		}
	}

	for _, a := range p.Allocations {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("copying allocation for envelope %s: %w", a.EnvelopeID, err)
		}
	}

	return nil
}

// populated reports if the month has any income sources or allocations.
func populated(s models.Snapshot, month types.Month) bool {
	for _, i := range s.IncomeSources {
		if i.Month.Equal(month) {
			return true
		}
	}

	for _, a := range s.Allocations {
		if a.Month.Equal(month) {
			return true
		}
	}

	return false
}

// latestBefore returns the most recent month before target that has any data.
func latestBefore(s models.Snapshot, target types.Month) (types.Month, bool) {
	var latest types.Month
	found := false

	consider := func(m types.Month) {
		if m.Before(target) && (!found || m.After(latest)) {
			latest = m
			found = true
		}
	}

	for _, i := range s.IncomeSources {
		consider(i.Month)
	}

	for _, a := range s.Allocations {
		consider(a.Month)
	}

	return latest, found
}

// PlanCopyForward plans copying the income sources and allocations of the most
// recent month before target into target.
//
// Copies get new IDs. Allocations of inactive envelopes and of piggybanks are
// not copied, piggybanks allocate their monthly contribution instead.
func PlanCopyForward(s models.Snapshot, target types.Month) (CopyPlan, error) {
	plan := CopyPlan{Target: target}

	if populated(s, target) {
		return plan, ErrAlreadyPopulated
	}

	source, ok := latestBefore(s, target)
	if !ok {
		return plan, nil
	}
	plan.Source = source

	for _, i := range s.IncomeSources {
		if !i.Month.Equal(source) {
			continue
		}

		plan.IncomeSources = append(plan.IncomeSources, models.IncomeSource{
			DefaultModel: models.DefaultModel{ID: uuid.New()},
			Owned:        i.Owned,
			Name:         i.Name,
			Amount:       i.Amount,
			Month:        target,
		})
	}

	for _, a := range s.Allocations {
		if !a.Month.Equal(source) {
			continue
		}

		e, ok := s.Envelope(a.EnvelopeID)
		if !ok || !e.Active || e.IsPiggybank() {
			continue
		}

		plan.Allocations = append(plan.Allocations, models.Allocation{
			DefaultModel: models.DefaultModel{ID: uuid.New()},
			Owned:        a.Owned,
			EnvelopeID:   a.EnvelopeID,
			Amount:       a.Amount,
			Month:        target,
		})
	}

	return plan, nil
}

// HasContribution reports if the piggybank already has an automatic contribution
// in the month.
func HasContribution(s models.Snapshot, envelopeID uuid.UUID, month types.Month) bool {
	for _, t := range s.Transactions {
		if t.EnvelopeID == envelopeID && t.Automatic && t.Type == models.TransactionTypeIncome && types.MonthOf(t.Date).Equal(month) {
			return true
		}
	}

	return false
}

// ContributionDate returns the first day the piggybank is visible in the month.
func ContributionDate(e models.Envelope, month types.Month) time.Time {
	first := month.FirstDay()
	if e.CreatedAt.IsZero() {
		return first
	}

	y, m, d := e.CreatedAt.UTC().Date()
	created := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if created.After(first) {
		return created
	}

	return first
}

// PlanContributions plans the automatic contribution transactions for all
// piggybanks in the month.
//
// A piggybank receives a contribution if it is active, not paused, has a positive
// monthly contribution, was created before the end of the month and has not
// received an automatic contribution in the month yet. The transactions are
// sorted by envelope index.
func PlanContributions(s models.Snapshot, month types.Month) []models.Transaction {
	envelopes := make([]models.Envelope, len(s.Envelopes))
	copy(envelopes, s.Envelopes)
	sort.SliceStable(envelopes, func(i, j int) bool {
		return envelopes[i].Index < envelopes[j].Index
	})

	transactions := make([]models.Transaction, 0)

	for _, e := range envelopes {
		if !e.Contributing() || !e.Piggybank.MonthlyContribution.IsPositive() {
			continue
		}

		if !e.CreatedAt.IsZero() && types.MonthOf(e.CreatedAt).After(month) {
			continue
		}

		if HasContribution(s, e.ID, month) {
			continue
		}

		t := models.Transaction{
			DefaultModel: models.DefaultModel{ID: uuid.New()},
			Owned:        e.Owned,
			EnvelopeID:   e.ID,
			Amount:       e.Piggybank.MonthlyContribution,
			Type:         models.TransactionTypeIncome,
			Description:  "Monthly contribution",
			Date:         ContributionDate(e, month),
			Automatic:    true,
		}
		t.Normalize()

		transactions = append(transactions, t)
	}

	return transactions
}
