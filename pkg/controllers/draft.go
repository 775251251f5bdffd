package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/draft"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DraftRequest is the free text to draft a transaction from.
type DraftRequest struct {
	Text   string `json:"text" binding:"required" example:"14.03 for groceries at tante emma"` // Free text describing the transaction
	Create bool   `json:"create" example:"false"`                                              // Create the drafted transaction
}

type DraftResponse struct {
	Data        draft.Draft  `json:"data"`                   // The drafted transaction
	Remaining   int          `json:"remaining" example:"19"` // Number of draft requests left in the current window
	Transaction *Transaction `json:"transaction,omitempty"`  // The created transaction, if requested
}

// RegisterDraftRoutes registers the routes for drafts with
// the RouterGroup that is passed.
func (co Controller) RegisterDraftRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsDraft)
	r.POST("", co.CreateDraft)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Drafts
// @Success		204
// @Router			/v1/drafts [options]
func (co Controller) OptionsDraft(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Draft transaction
// @Description	Drafts a transaction from free text. The draft is matched against the active envelopes. If create is set, the transaction is created.
// @Tags			Drafts
// @Accept			json
// @Produce		json
// @Success		200		{object}	DraftResponse
// @Success		201		{object}	DraftResponse
// @Failure		400		{object}	httpError
// @Failure		429		{object}	httpError
// @Param			draft	body		controllers.DraftRequest	true	"Draft"
// @Router			/v1/drafts [post]
func (co Controller) CreateDraft(c *gin.Context) {
	var request DraftRequest
	if err := httputil.BindData(c, &request); err != nil {
		abort(c, err)
		return
	}

	s := co.Ledger.Snapshot()
	names := make([]string, 0, len(s.Envelopes))
	for _, e := range s.Envelopes {
		if e.Active {
			names = append(names, e.Name)
		}
	}

	owner := co.Ledger.Owner()
	d, err := co.Drafts.Draft(c.Request.Context(), owner, request.Text, names)
	if err != nil {
		abort(c, err)
		return
	}

	r := DraftResponse{Data: d}
	if !request.Create {
		r.Remaining = co.Drafts.Remaining(owner)
		c.JSON(http.StatusOK, r)
		return
	}

	envelopeID := uuid.Nil
	for _, e := range s.Envelopes {
		if e.Active && d.Envelope != "" && e.Name == d.Envelope {
			envelopeID = e.ID
			break
		}
	}

	if envelopeID == uuid.Nil {
		abort(c, errDraftEnvelope)
		return
	}

	t, err := d.Transaction(envelopeID)
	if err != nil {
		abort(c, err)
		return
	}

	for _, p := range s.PaymentMethods {
		if d.PaymentMethod != "" && p.Name == d.PaymentMethod {
			id := p.ID
			t.PaymentMethodID = &id
			break
		}
	}

	if t.Date.IsZero() {
		t.Date = co.Ledger.Config().Now()
	}

	created, err := co.Ledger.CreateTransaction(t)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newTransaction(c, created)
	r.Transaction = &data
	r.Remaining = co.Drafts.Remaining(owner)
	c.JSON(http.StatusCreated, r)
}
