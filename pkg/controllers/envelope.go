package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/budget"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterEnvelopeRoutes registers the routes for envelopes with
// the RouterGroup that is passed.
func (co Controller) RegisterEnvelopeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsEnvelopeList)
		r.GET("", co.GetEnvelopes)
		r.POST("", co.CreateEnvelopes)
	}

	// Envelope with ID
	{
		r.OPTIONS("/:id", co.OptionsEnvelopeDetail)
		r.GET("/:id", co.GetEnvelope)
		r.PATCH("/:id", co.UpdateEnvelope)
		r.DELETE("/:id", co.DeleteEnvelope)
		r.OPTIONS("/:id/archive", co.OptionsEnvelopeArchive)
		r.POST("/:id/archive", co.ArchiveEnvelope)
		r.OPTIONS("/:id/months/:month", co.OptionsEnvelopeMonth)
		r.GET("/:id/months/:month", co.GetEnvelopeMonth)
	}
}

// RegisterEnvelopeOrderRoutes registers the routes for the envelope order
// with the RouterGroup that is passed.
func (co Controller) RegisterEnvelopeOrderRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsEnvelopeOrder)
		r.GET("", co.GetEnvelopeOrder)
		r.OPTIONS("/move", co.OptionsEnvelopeOrderAction)
		r.POST("/move", co.MoveEnvelope)
		r.OPTIONS("/commit", co.OptionsEnvelopeOrderAction)
		r.POST("/commit", co.CommitEnvelopeOrder)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Router			/v1/envelopes [options]
func (co Controller) OptionsEnvelopeList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/envelopes/{id} [options]
func (co Controller) OptionsEnvelopeDetail(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err := co.Ledger.Envelope(id); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/envelopes/{id}/archive [options]
func (co Controller) OptionsEnvelopeArchive(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Param			id		path	string	true	"ID formatted as string"
// @Param			month	path	string	true	"The month in YYYY-MM format"
// @Router			/v1/envelopes/{id}/months/{month} [options]
func (co Controller) OptionsEnvelopeMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Create envelopes
// @Description	Creates new envelopes. New envelopes are active and added at the end of the envelope order.
// @Tags			Envelopes
// @Produce		json
// @Success		201			{object}	EnvelopeCreateResponse
// @Failure		400			{object}	EnvelopeCreateResponse
// @Failure		404			{object}	EnvelopeCreateResponse
// @Param			envelopes	body		[]controllers.EnvelopeEditable	true	"Envelopes"
// @Router			/v1/envelopes [post]
func (co Controller) CreateEnvelopes(c *gin.Context) {
	var envelopes []EnvelopeEditable

	if err := httputil.BindData(c, &envelopes); err != nil {
		abort(c, err)
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := EnvelopeCreateResponse{}

	for _, editable := range envelopes {
		envelope, err := co.Ledger.CreateEnvelope(editable.model())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := co.newEnvelope(c, envelope)
		r.Data = append(r.Data, EnvelopeResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get envelopes
// @Description	Returns all envelopes in display order
// @Tags			Envelopes
// @Produce		json
// @Success		200			{object}	EnvelopeListResponse
// @Failure		400			{object}	httpError
// @Param			active		query		bool	false	"Is the envelope active?"
// @Param			category	query		string	false	"Filter by category ID"
// @Router			/v1/envelopes [get]
func (co Controller) GetEnvelopes(c *gin.Context) {
	var filter EnvelopeQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abort(c, httputil.ErrInvalidQuery)
		return
	}

	categoryID, err := httputil.UUIDFromString(filter.Category)
	if err != nil {
		abort(c, err)
		return
	}

	envelopes := co.Ledger.Snapshot().Envelopes
	data := make([]Envelope, 0, len(envelopes))
	for _, envelope := range envelopes {
		if filter.Active != nil && envelope.Active != *filter.Active {
			continue
		}

		if filter.Category != "" && (envelope.CategoryID == nil || *envelope.CategoryID != categoryID) {
			continue
		}

		data = append(data, co.newEnvelope(c, envelope))
	}

	c.JSON(http.StatusOK, EnvelopeListResponse{Data: data})
}

// @Summary		Get envelope
// @Description	Returns a specific envelope
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/envelopes/{id} [get]
func (co Controller) GetEnvelope(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	envelope, err := co.Ledger.Envelope(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newEnvelope(c, envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &data})
}

// @Summary		Get envelope month
// @Description	Returns the allocation, spending and balance of an envelope for a month
// @Tags			Envelopes
// @Produce		json
// @Success		200		{object}	EnvelopeMonthResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			id		path		string	true	"ID formatted as string"
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/envelopes/{id}/months/{month} [get]
func (co Controller) GetEnvelopeMonth(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	month, err := paramMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	envelope, err := co.Ledger.Envelope(id)
	if err != nil {
		abort(c, err)
		return
	}

	s := co.Ledger.Snapshot()
	data := budget.EnvelopeOverview(envelope, month, s.Transactions, s.Allocations, co.Ledger.Config().LegacyPolicy)

	c.JSON(http.StatusOK, EnvelopeMonthResponse{Data: data})
}

// @Summary		Update envelope
// @Description	Updates an existing envelope. Only values to be updated need to be specified.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		200			{object}	EnvelopeResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			id			path		string						true	"ID formatted as string"
// @Param			envelope	body		controllers.EnvelopeEditable	true	"Envelope"
// @Router			/v1/envelopes/{id} [patch]
func (co Controller) UpdateEnvelope(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	envelope, err := co.Ledger.Envelope(id)
	if err != nil {
		abort(c, err)
		return
	}

	// Fields not in the body keep their current value
	data := newEnvelopeEditable(envelope)
	if err := httputil.BindData(c, &data); err != nil {
		abort(c, err)
		return
	}

	update := data.model()
	update.DefaultModel = envelope.DefaultModel
	envelope, err = co.Ledger.UpdateEnvelope(update)
	if err != nil {
		abort(c, err)
		return
	}

	apiResource := co.newEnvelope(c, envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &apiResource})
}

// @Summary		Archive envelope
// @Description	Deactivates an envelope. Archived envelopes keep their history.
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/envelopes/{id}/archive [post]
func (co Controller) ArchiveEnvelope(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	envelope, err := co.Ledger.ArchiveEnvelope(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newEnvelope(c, envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &data})
}

// @Summary		Delete envelope from month
// @Description	Removes an envelope from a month. The allocation for the month is deleted. Envelopes without any other allocations or transactions are deleted, all others are archived.
// @Tags			Envelopes
// @Produce		json
// @Success		200		{object}	TombstoneResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			id		path		string	true	"ID formatted as string"
// @Param			month	query		string	true	"The month in YYYY-MM format"
// @Router			/v1/envelopes/{id} [delete]
func (co Controller) DeleteEnvelope(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	month, err := queryMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	if month.IsZero() {
		abort(c, errMonthNotSetInQuery)
		return
	}

	tombstone, err := co.Ledger.DeleteEnvelope(id, month)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newTombstoneResponse(c, tombstone))
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Router			/v1/envelope-order [options]
func (co Controller) OptionsEnvelopeOrder(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Router			/v1/envelope-order/move [options]
// @Router			/v1/envelope-order/commit [options]
func (co Controller) OptionsEnvelopeOrderAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get envelope order
// @Description	Returns the IDs of all envelopes in display order, including moves that are not committed yet
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeOrderResponse
// @Router			/v1/envelope-order [get]
func (co Controller) GetEnvelopeOrder(c *gin.Context) {
	envelopes := co.Ledger.Snapshot().Envelopes

	ids := make([]uuid.UUID, 0, len(envelopes))
	for _, e := range envelopes {
		ids = append(ids, e.ID)
	}

	c.JSON(http.StatusOK, EnvelopeOrderResponse{Data: ids})
}

// @Summary		Move envelope
// @Description	Moves an envelope to a new position. The order is only changed locally until it is committed.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		200		{object}	EnvelopeOrderResponse
// @Failure		400		{object}	httpError
// @Param			move	body		controllers.EnvelopeMove	true	"Move"
// @Router			/v1/envelope-order/move [post]
func (co Controller) MoveEnvelope(c *gin.Context) {
	var move EnvelopeMove
	if err := httputil.BindData(c, &move); err != nil {
		abort(c, err)
		return
	}

	if err := co.Ledger.MoveEnvelope(move.From, move.To); err != nil {
		abort(c, err)
		return
	}

	co.GetEnvelopeOrder(c)
}

// @Summary		Commit envelope order
// @Description	Writes all envelopes that changed position since the last commit in a single batch
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeOrderCommitResponse
// @Router			/v1/envelope-order/commit [post]
func (co Controller) CommitEnvelopeOrder(c *gin.Context) {
	committed, err := co.Ledger.CommitEnvelopeOrder()
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, EnvelopeOrderCommitResponse{Committed: committed})
}
