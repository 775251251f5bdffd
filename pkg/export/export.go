// Package export converts ledger snapshots to flat tables.
package export

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrRange = errors.New("the start month must not be after the end month")

// Header is the header row of every export.
var Header = []string{"Date", "Month", "Type", "Amount", "Envelopes", "Description", "Merchant", "Payment Method", "Reconciled", "Automatic"}

// Row is a single exported transaction.
//
// All parts of a split transaction are merged into a single row.
type Row struct {
	Date          time.Time              `json:"date" example:"2026-02-14T00:00:00Z"`
	Month         types.Month            `json:"month" example:"2026-02"`
	Type          models.TransactionType `json:"type" example:"EXPENSE"`
	Amount        decimal.Decimal        `json:"amount" example:"55"`                      // For splits, the combined amount of all parts
	Envelopes     []string               `json:"envelopes" example:"Groceries,Household"` // Names of the envelopes, one per split part
	Description   string                 `json:"description" example:"Weekly shopping"`
	Merchant      string                 `json:"merchant" example:"Tante Emma"`
	PaymentMethod string                 `json:"paymentMethod" example:"Credit Card"`
	Reconciled    bool                   `json:"reconciled" example:"false"`
	Automatic     bool                   `json:"automatic" example:"false"`
	SplitGroupID  *uuid.UUID             `json:"splitGroupId,omitempty"`
}

// Record returns the row as strings in the order of Header.
func (r Row) Record() []string {
	return []string{
		r.Date.Format(time.DateOnly),
		r.Month.String(),
		string(r.Type),
		r.Amount.StringFixed(2),
		strings.Join(r.Envelopes, "; "),
		r.Description,
		r.Merchant,
		r.PaymentMethod,
		boolString(r.Reconciled),
		boolString(r.Automatic),
	}
}

func boolString(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Rows returns the transactions of the snapshot in the months from to to,
// both inclusive, ordered by date.
//
// The parts of a split transaction are merged into one row at the position
// of the first part. Its amount is the sum of the signed part amounts.
func Rows(s models.Snapshot, from, to types.Month) ([]Row, error) {
	if from.After(to) {
		return nil, ErrRange
	}

	transactions := make([]models.Transaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		if t.Month.Before(from) || t.Month.After(to) {
			continue
		}
		transactions = append(transactions, t)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.Before(transactions[j].Date)
		}
		return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
	})

	rows := make([]Row, 0, len(transactions))
	groups := make(map[uuid.UUID]int)
	sums := make(map[uuid.UUID]decimal.Decimal)

	for _, t := range transactions {
		name := ""
		if e, ok := s.Envelope(t.EnvelopeID); ok {
			name = e.Name
		}

		if t.SplitGroupID != nil {
			if i, ok := groups[*t.SplitGroupID]; ok {
				sums[*t.SplitGroupID] = sums[*t.SplitGroupID].Add(t.Signed())
				rows[i].Envelopes = append(rows[i].Envelopes, name)
				continue
			}

			groups[*t.SplitGroupID] = len(rows)
			sums[*t.SplitGroupID] = t.Signed()
		}

		paymentMethod := ""
		if t.PaymentMethodID != nil {
			if p, ok := s.PaymentMethod(*t.PaymentMethodID); ok {
				paymentMethod = p.Name
			}
		}

		rows = append(rows, Row{
			Date:          t.Date,
			Month:         t.Month,
			Type:          t.Type,
			Amount:        t.Amount,
			Envelopes:     []string{name},
			Description:   t.Description,
			Merchant:      t.Merchant,
			PaymentMethod: paymentMethod,
			Reconciled:    t.Reconciled,
			Automatic:     t.Automatic,
			SplitGroupID:  t.SplitGroupID,
		})
	}

	for group, i := range groups {
		sum := sums[group]
		rows[i].Amount = sum.Abs()
		rows[i].Type = models.TransactionTypeExpense
		if sum.IsPositive() {
			rows[i].Type = models.TransactionTypeIncome
		}
	}

	return rows, nil
}
