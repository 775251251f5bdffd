package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IncomeSourceEditable represents all user configurable parameters
type IncomeSourceEditable struct {
	Name   string          `json:"name" example:"Salary"`   // Name of the income source
	Amount decimal.Decimal `json:"amount" example:"3500"`   // Amount of income
	Month  types.Month     `json:"month" example:"2026-02"` // Month the income is available for budgeting in
}

func (e IncomeSourceEditable) model() models.IncomeSource {
	return models.IncomeSource{
		Name:   e.Name,
		Amount: e.Amount,
		Month:  e.Month,
	}
}

type IncomeSourceLinks struct {
	Self  string `json:"self" example:"https://example.com/api/v1/income-sources/5f2ad8b4-26a8-4e3c-a5cd-b7f7fe0a7d43"` // The income source itself
	Month string `json:"month" example:"https://example.com/api/v1/months/2026-02"`                                     // The month of the income source
}

type IncomeSource struct {
	models.IncomeSource
	Sync  models.SyncState  `json:"sync"`  // Sync state of the income source
	Links IncomeSourceLinks `json:"links"` // Links to related resources
}

func (co Controller) newIncomeSource(c *gin.Context, model models.IncomeSource) IncomeSource {
	return IncomeSource{
		IncomeSource: model,
		Sync:         co.Ledger.SyncState(model.ID),
		Links: IncomeSourceLinks{
			Self:  link(c, "income-sources/%s", model.ID),
			Month: link(c, "months/%s", model.Month),
		},
	}
}

type IncomeSourceListResponse struct {
	Data []IncomeSource `json:"data"` // List of income sources
}

type IncomeSourceResponse struct {
	Data  *IncomeSource `json:"data"`                                                          // Data for the income source
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type IncomeSourceCreateResponse struct {
	Data []IncomeSourceResponse `json:"data"` // Data for the income sources
}

// appendError appends an IncomeSourceResponse with the error and returns the updated HTTP status
func (r *IncomeSourceCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, IncomeSourceResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

// RegisterIncomeSourceRoutes registers the routes for income sources with
// the RouterGroup that is passed.
func (co Controller) RegisterIncomeSourceRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsIncomeSourceList)
		r.GET("", co.GetIncomeSources)
		r.POST("", co.CreateIncomeSources)
	}

	// Income source with ID
	{
		r.OPTIONS("/:id", co.OptionsIncomeSourceDetail)
		r.GET("/:id", co.GetIncomeSource)
		r.PATCH("/:id", co.UpdateIncomeSource)
		r.DELETE("/:id", co.DeleteIncomeSource)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Income Sources
// @Success		204
// @Router			/v1/income-sources [options]
func (co Controller) OptionsIncomeSourceList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Income Sources
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/income-sources/{id} [options]
func (co Controller) OptionsIncomeSourceDetail(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err := co.Ledger.IncomeSource(id); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create income sources
// @Description	Creates new income sources
// @Tags			Income Sources
// @Produce		json
// @Success		201				{object}	IncomeSourceCreateResponse
// @Failure		400				{object}	IncomeSourceCreateResponse
// @Param			incomeSources	body		[]controllers.IncomeSourceEditable	true	"Income sources"
// @Router			/v1/income-sources [post]
func (co Controller) CreateIncomeSources(c *gin.Context) {
	var sources []IncomeSourceEditable

	if err := httputil.BindData(c, &sources); err != nil {
		abort(c, err)
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := IncomeSourceCreateResponse{}

	for _, editable := range sources {
		source, err := co.Ledger.CreateIncomeSource(editable.model())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := co.newIncomeSource(c, source)
		r.Data = append(r.Data, IncomeSourceResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get income sources
// @Description	Returns all income sources, optionally only for one month
// @Tags			Income Sources
// @Produce		json
// @Success		200		{object}	IncomeSourceListResponse
// @Failure		400		{object}	httpError
// @Param			month	query		string	false	"Filter by month in YYYY-MM format"
// @Router			/v1/income-sources [get]
func (co Controller) GetIncomeSources(c *gin.Context) {
	month, err := queryMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	sources := co.Ledger.Snapshot().IncomeSources
	data := make([]IncomeSource, 0, len(sources))
	for _, source := range sources {
		if !month.IsZero() && !source.Month.Equal(month) {
			continue
		}

		data = append(data, co.newIncomeSource(c, source))
	}

	c.JSON(http.StatusOK, IncomeSourceListResponse{Data: data})
}

// @Summary		Get income source
// @Description	Returns a specific income source
// @Tags			Income Sources
// @Produce		json
// @Success		200	{object}	IncomeSourceResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/income-sources/{id} [get]
func (co Controller) GetIncomeSource(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	source, err := co.Ledger.IncomeSource(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newIncomeSource(c, source)
	c.JSON(http.StatusOK, IncomeSourceResponse{Data: &data})
}

// @Summary		Update income source
// @Description	Updates an existing income source. Only values to be updated need to be specified.
// @Tags			Income Sources
// @Accept			json
// @Produce		json
// @Success		200				{object}	IncomeSourceResponse
// @Failure		400				{object}	httpError
// @Failure		404				{object}	httpError
// @Param			id				path		string							true	"ID formatted as string"
// @Param			incomeSource	body		controllers.IncomeSourceEditable	true	"Income source"
// @Router			/v1/income-sources/{id} [patch]
func (co Controller) UpdateIncomeSource(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	source, err := co.Ledger.IncomeSource(id)
	if err != nil {
		abort(c, err)
		return
	}

	// Fields not in the body keep their current value
	data := IncomeSourceEditable{
		Name:   source.Name,
		Amount: source.Amount,
		Month:  source.Month,
	}
	if err := httputil.BindData(c, &data); err != nil {
		abort(c, err)
		return
	}

	update := data.model()
	update.DefaultModel = source.DefaultModel
	source, err = co.Ledger.UpdateIncomeSource(update)
	if err != nil {
		abort(c, err)
		return
	}

	apiResource := co.newIncomeSource(c, source)
	c.JSON(http.StatusOK, IncomeSourceResponse{Data: &apiResource})
}

// @Summary		Delete income source
// @Description	Deletes an income source
// @Tags			Income Sources
// @Produce		json
// @Success		200	{object}	TombstoneResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/income-sources/{id} [delete]
func (co Controller) DeleteIncomeSource(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	tombstone, err := co.Ledger.DeleteIncomeSource(id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newTombstoneResponse(c, tombstone))
}
