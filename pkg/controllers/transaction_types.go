package controllers

import (
	"time"

	ez_uuid "github.com/envelope-zero/ledger/internal/uuid"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionEditable represents all user configurable parameters
type TransactionEditable struct {
	EnvelopeID      uuid.UUID              `json:"envelopeId" example:"a0909e84-e8f9-4cb6-82a5-025dff105ff2"`      // ID of the envelope
	Amount          decimal.Decimal        `json:"amount" example:"14.03"`                                         // Positive magnitude of the transaction
	Type            models.TransactionType `json:"type" example:"EXPENSE"`                                         // Direction of the transaction
	Description     string                 `json:"description" example:"Weekly groceries"`                         // Free text
	Merchant        string                 `json:"merchant" example:"Tante Emma"`                                  // Merchant name
	PaymentMethodID *uuid.UUID             `json:"paymentMethodId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // Payment method used
	Date            time.Time              `json:"date" example:"2026-02-14T00:00:00Z"`                            // Effective date. Defaults to now
	Reconciled      bool                   `json:"reconciled" example:"false"`                                     // Is the transaction reconciled?
}

// model transforms the API representation into the model representation
func (e TransactionEditable) model() models.Transaction {
	return models.Transaction{
		EnvelopeID:      e.EnvelopeID,
		Amount:          e.Amount,
		Type:            e.Type,
		Description:     e.Description,
		Merchant:        e.Merchant,
		PaymentMethodID: e.PaymentMethodID,
		Date:            e.Date,
		Reconciled:      e.Reconciled,
	}
}

// newTransactionEditable returns the editable fields of a transaction. The
// payment method ID is copied so that binding a request to it does not
// modify the transaction.
func newTransactionEditable(t models.Transaction) TransactionEditable {
	editable := TransactionEditable{
		EnvelopeID:  t.EnvelopeID,
		Amount:      t.Amount,
		Type:        t.Type,
		Description: t.Description,
		Merchant:    t.Merchant,
		Date:        t.Date,
		Reconciled:  t.Reconciled,
	}

	if t.PaymentMethodID != nil {
		id := *t.PaymentMethodID
		editable.PaymentMethodID = &id
	}

	return editable
}

type TransactionLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"`  // The transaction itself
	Envelope string `json:"envelope" example:"https://example.com/api/v1/envelopes/a0909e84-e8f9-4cb6-82a5-025dff105ff2"` // The envelope of the transaction
}

type Transaction struct {
	models.Transaction
	Sync  models.SyncState `json:"sync"`  // Sync state of the transaction
	Links TransactionLinks `json:"links"` // Links to related resources
}

func (co Controller) newTransaction(c *gin.Context, model models.Transaction) Transaction {
	return Transaction{
		Transaction: model,
		Sync:        co.Ledger.SyncState(model.ID),
		Links: TransactionLinks{
			Self:     link(c, "transactions/%s", model.ID),
			Envelope: link(c, "envelopes/%s", model.EnvelopeID),
		},
	}
}

type TransactionListResponse struct {
	Data []Transaction `json:"data"` // List of transactions
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionCreateResponse struct {
	Data []TransactionResponse `json:"data"` // Data for the transactions
}

// appendError appends a TransactionResponse with the error and returns the updated HTTP status
func (r *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, TransactionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransactionQueryFilter struct {
	Envelope      ez_uuid.UUID           `form:"envelope"`      // By ID of the envelope
	PaymentMethod ez_uuid.UUID           `form:"paymentMethod"` // By ID of the payment method
	SplitGroup    ez_uuid.UUID           `form:"splitGroup"`    // By ID of the split group
	Month         string                 `form:"month"`         // By month of the date, in YYYY-MM format
	Type          models.TransactionType `form:"type"`          // By type of the transaction
	Reconciled    *bool                  `form:"reconciled"`    // Reconcilation state
	Search        string                 `form:"search"`        // By string in description or merchant
}

// SplitPart is one part of a split transaction.
type SplitPart struct {
	EnvelopeID uuid.UUID              `json:"envelopeId" example:"a0909e84-e8f9-4cb6-82a5-025dff105ff2"` // ID of the envelope
	Amount     decimal.Decimal        `json:"amount" example:"40"`                                       // Positive magnitude of the part
	Type       models.TransactionType `json:"type" example:"EXPENSE"`                                    // Direction of the part
}

// SplitCreate is a transaction split into parts against different envelopes.
type SplitCreate struct {
	Description     string      `json:"description" example:"Drugstore"`                                // Free text for all parts
	Merchant        string      `json:"merchant" example:"Tante Emma"`                                  // Merchant name for all parts
	PaymentMethodID *uuid.UUID  `json:"paymentMethodId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // Payment method used
	Date            time.Time   `json:"date" example:"2026-02-14T00:00:00Z"`                            // Effective date of all parts. Defaults to now
	Parts           []SplitPart `json:"parts" binding:"required"`                                       // The parts, at least two
}

func (s SplitCreate) models(date time.Time) []models.Transaction {
	parts := make([]models.Transaction, 0, len(s.Parts))
	for _, p := range s.Parts {
		parts = append(parts, models.Transaction{
			EnvelopeID:      p.EnvelopeID,
			Amount:          p.Amount,
			Type:            p.Type,
			Description:     s.Description,
			Merchant:        s.Merchant,
			PaymentMethodID: s.PaymentMethodID,
			Date:            date,
		})
	}

	return parts
}

// TransferCreate moves money from one envelope to another.
type TransferCreate struct {
	From        uuid.UUID       `json:"from" binding:"required" example:"a0909e84-e8f9-4cb6-82a5-025dff105ff2"` // ID of the source envelope
	To          uuid.UUID       `json:"to" binding:"required" example:"10b9705d-3356-459e-9d5a-28d42a6c4547"`   // ID of the destination envelope
	Amount      decimal.Decimal `json:"amount" example:"25"`                                                    // Amount to move
	Date        time.Time       `json:"date" example:"2026-02-14T00:00:00Z"`                                    // Effective date. Defaults to now
	Description string          `json:"description" example:"Cover overspending"`                               // Free text
}
