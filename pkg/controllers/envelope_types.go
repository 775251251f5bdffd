package controllers

import (
	"github.com/envelope-zero/ledger/pkg/budget"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnvelopeEditable represents all user configurable parameters
type EnvelopeEditable struct {
	Name       string            `json:"name" example:"Groceries"`                                  // Name of the envelope
	CategoryID *uuid.UUID        `json:"categoryId" example:"878c831f-af99-4a71-b3ca-80deb7d793c1"` // ID of the category the envelope belongs to
	Active     bool              `json:"active" example:"true"`                                     // Is the envelope active? New envelopes are always active
	Piggybank  *models.Piggybank `json:"piggybank,omitempty"`                                       // Savings goal configuration. Can only be set on creation
}

// model transforms the API representation into the model representation
func (e EnvelopeEditable) model() models.Envelope {
	return models.Envelope{
		Name:       e.Name,
		CategoryID: e.CategoryID,
		Active:     e.Active,
		Piggybank:  e.Piggybank,
	}
}

// newEnvelopeEditable returns the editable fields of an envelope. Pointer
// fields are copied so that binding a request to them does not modify the
// envelope.
func newEnvelopeEditable(e models.Envelope) EnvelopeEditable {
	editable := EnvelopeEditable{
		Name:   e.Name,
		Active: e.Active,
	}

	if e.CategoryID != nil {
		id := *e.CategoryID
		editable.CategoryID = &id
	}

	if e.Piggybank != nil {
		p := *e.Piggybank
		if p.TargetAmount != nil {
			target := *p.TargetAmount
			p.TargetAmount = &target
		}
		editable.Piggybank = &p
	}

	return editable
}

type EnvelopeLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/envelopes/45b6b5b9-f746-4ae9-b77b-7688b91f8166"`                     // The envelope itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?envelope=45b6b5b9-f746-4ae9-b77b-7688b91f8166"` // The envelope's transactions
	Month        string `json:"month" example:"https://example.com/api/v1/envelopes/45b6b5b9-f746-4ae9-b77b-7688b91f8166/months/YYYY-MM"`     // The envelope's data for a month
	Archive      string `json:"archive" example:"https://example.com/api/v1/envelopes/45b6b5b9-f746-4ae9-b77b-7688b91f8166/archive"`          // POST to archive the envelope
}

type Envelope struct {
	models.Envelope
	Sync  models.SyncState `json:"sync"`  // Sync state of the envelope
	Links EnvelopeLinks    `json:"links"` // Links to related resources
}

func (co Controller) newEnvelope(c *gin.Context, model models.Envelope) Envelope {
	return Envelope{
		Envelope: model,
		Sync:     co.Ledger.SyncState(model.ID),
		Links: EnvelopeLinks{
			Self:         link(c, "envelopes/%s", model.ID),
			Transactions: link(c, "transactions?envelope=%s", model.ID),
			Month:        link(c, "envelopes/%s/months/YYYY-MM", model.ID),
			Archive:      link(c, "envelopes/%s/archive", model.ID),
		},
	}
}

type EnvelopeListResponse struct {
	Data []Envelope `json:"data"` // List of envelopes
}

type EnvelopeResponse struct {
	Data  *Envelope `json:"data"`                                                          // Data for the envelope
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type EnvelopeCreateResponse struct {
	Data []EnvelopeResponse `json:"data"` // Data for the envelopes
}

// appendError appends an EnvelopeResponse with the error and returns the updated HTTP status
func (r *EnvelopeCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, EnvelopeResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type EnvelopeQueryFilter struct {
	Active   *bool  `form:"active"`   // Is the envelope active?
	Category string `form:"category"` // By the ID of the category
}

type EnvelopeMonthResponse struct {
	Data budget.EnvelopeMonth `json:"data"` // Data for the envelope in the month
}

type EnvelopeMove struct {
	From int `json:"from" example:"4"` // Current position of the envelope
	To   int `json:"to" example:"0"`   // New position of the envelope
}

type EnvelopeOrderResponse struct {
	Data []uuid.UUID `json:"data"` // IDs of all envelopes in display order
}

type EnvelopeOrderCommitResponse struct {
	Committed int `json:"committed" example:"3"` // Number of envelopes written
}
