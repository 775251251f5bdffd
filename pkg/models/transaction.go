package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// swagger:enum TransactionType
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Transaction is a single money movement against exactly one envelope.
//
// The amount is always a positive magnitude, the direction is defined by the type.
type Transaction struct {
	DefaultModel
	Owned
	EnvelopeID      uuid.UUID       `json:"envelopeId" example:"a0909e84-e8f9-4cb6-82a5-025dff105ff2"` // ID of the envelope
	Amount          decimal.Decimal `json:"amount" example:"14.03"`                                    // Positive magnitude of the transaction
	Type            TransactionType `json:"type" example:"EXPENSE"`                                    // Direction of the transaction
	Description     string          `json:"description" example:"Weekly groceries"`                    // Free text
	Merchant        string          `json:"merchant,omitempty" example:"Tante Emma"`                   // Merchant name
	PaymentMethodID *uuid.UUID      `json:"paymentMethodId,omitempty"`                                 // Payment method used
	Date            time.Time       `json:"date" example:"2026-02-14T00:00:00Z"`                       // Effective date
	Month           types.Month     `json:"month" example:"2026-02"`                                   // Month of the effective date. Always derived from the date
	Reconciled      bool            `json:"reconciled" example:"false"`                                // Is the transaction reconciled?
	Automatic       bool            `json:"automatic" example:"false"`                                 // Generated by the system, e.g. a scheduled piggybank contribution
	SplitGroupID    *uuid.UUID      `json:"splitGroupId,omitempty"`                                    // Links all parts of a split transaction
	TransferID      *uuid.UUID      `json:"transferId,omitempty"`                                      // Links the two halves of a transfer
}

func (t Transaction) Self() string {
	return "Transaction"
}

func (t Transaction) Collection() string {
	return CollectionTransactions
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}

	return t.Amount
}

// Normalize
//   - sets the timezone for the Date to UTC
//   - derives the month from the date
//   - trims whitespace from string fields
func (t *Transaction) Normalize() {
	t.DefaultModel.Normalize()
	t.Description = strings.TrimSpace(t.Description)
	t.Merchant = strings.TrimSpace(t.Merchant)
	t.Date = t.Date.UTC()
	t.Month = types.MonthOf(t.Date)

	for _, id := range []**uuid.UUID{&t.PaymentMethodID, &t.SplitGroupID, &t.TransferID} {
		if *id != nil && **id == uuid.Nil {
			*id = nil
		}
	}
}

func (t Transaction) Validate() error {
	if t.EnvelopeID == uuid.Nil {
		return ErrEnvelopeIDEmpty
	}

	if t.Type != TransactionTypeIncome && t.Type != TransactionTypeExpense {
		return fmt.Errorf("%w, got '%s'", ErrTransactionTypeInvalid, t.Type)
	}

	if err := ValidatePositiveAmount(t.Amount); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}

	return nil
}
