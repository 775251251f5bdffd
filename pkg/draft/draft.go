// Package draft turns free text into draft transactions.
//
// A draft is a suggestion only. It is never written to the ledger unless the
// caller creates a transaction from it explicitly.
package draft

import (
	"context"
	"errors"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoAmount  = errors.New("the draft does not contain an amount")
	ErrEmptyText = errors.New("the text to draft from must not be empty")

	// ErrExhausted is returned by the Guard when an owner made too many
	// draft requests in the window.
	ErrExhausted = errors.New("the draft request limit is exhausted, try again later")
)

// Drafter creates a best-effort draft transaction from free text.
type Drafter interface {
	// Draft parses the text. envelopes holds the names of the envelopes the
	// draft may be matched to.
	Draft(ctx context.Context, text string, envelopes []string) (Draft, error)
}

// Draft is a best-effort transaction parsed from free text. All fields are
// optional.
type Draft struct {
	Merchant      string                 `json:"merchant,omitempty" example:"Tante Emma"`          // Merchant name
	Amount        *decimal.Decimal       `json:"amount,omitempty" example:"14.03"`                 // Positive magnitude of the transaction
	Envelope      string                 `json:"envelope,omitempty" example:"Groceries"`           // Name of the matched envelope
	Description   string                 `json:"description" example:"Groceries at Tante Emma"`    // Free text
	PaymentMethod string                 `json:"paymentMethod,omitempty" example:"Credit Card"`   // Name of the payment method
	Type          models.TransactionType `json:"type" example:"EXPENSE"`                           // Direction of the transaction
	Date          time.Time              `json:"date" example:"2026-02-14T00:00:00Z"`              // Effective date
	Confidence    float64                `json:"confidence" example:"0.8" minimum:"0" maximum:"1"` // How certain the drafter is. Advisory only
}

// Transaction builds a transaction for the envelope from the draft. The
// transaction is not created.
func (d Draft) Transaction(envelopeID uuid.UUID) (models.Transaction, error) {
	if d.Amount == nil {
		return models.Transaction{}, ErrNoAmount
	}

	transactionType := d.Type
	if transactionType == "" {
		transactionType = models.TransactionTypeExpense
	}

	t := models.Transaction{
		EnvelopeID:  envelopeID,
		Amount:      *d.Amount,
		Type:        transactionType,
		Description: d.Description,
		Merchant:    d.Merchant,
		Date:        d.Date,
	}
	t.Normalize()

	if err := t.Validate(); err != nil {
		return models.Transaction{}, err
	}

	return t, nil
}
