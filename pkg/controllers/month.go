package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/budget"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/rollover"
	"github.com/gin-gonic/gin"
)

type MonthResponse struct {
	Data  budget.Month `json:"data"`  // Overview of the month
	Links MonthLinks   `json:"links"` // Links to related resources
}

type MonthLinks struct {
	Self          string `json:"self" example:"https://example.com/api/v1/months/2026-02"`                              // The month itself
	CopyForward   string `json:"copyForward" example:"https://example.com/api/v1/months/2026-02/copy-forward"`          // POST to copy the previous month's budget
	Contributions string `json:"contributions" example:"https://example.com/api/v1/months/2026-02/contributions"`       // POST to create the piggybank contributions
	Transactions  string `json:"transactions" example:"https://example.com/api/v1/transactions?month=2026-02"`          // Transactions of the month
	IncomeSources string `json:"incomeSources" example:"https://example.com/api/v1/income-sources?month=2026-02"`       // Income sources of the month
	Allocations   string `json:"allocations" example:"https://example.com/api/v1/allocations?month=2026-02"`            // Allocations of the month
	Export        string `json:"export" example:"https://example.com/api/v1/export?from=2026-02&to=2026-02&format=csv"` // Transactions of the month as CSV
}

type QueryConfirm struct {
	Confirm string `form:"confirm" example:"yes-please-start-fresh"` // Confirmation for destructive actions
}

type CopyForwardResponse struct {
	Data rollover.CopyForwardResult `json:"data"` // What was copied
}

type ContributionsResponse struct {
	Created int `json:"created" example:"2"` // Number of contribution transactions created
}

// RegisterMonthRoutes registers the routes for months with
// the RouterGroup that is passed.
func (co Controller) RegisterMonthRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/:month", co.OptionsMonth)
		r.GET("/:month", co.GetMonth)
		r.DELETE("/:month", co.StartFresh)
		r.OPTIONS("/:month/copy-forward", co.OptionsMonthAction)
		r.POST("/:month/copy-forward", co.CopyForward)
		r.OPTIONS("/:month/contributions", co.OptionsMonthAction)
		r.POST("/:month/contributions", co.MaterializeContributions)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Failure		400		{object}	httpError
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/months/{month} [options]
func (co Controller) OptionsMonth(c *gin.Context) {
	if _, err := paramMonth(c); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Param			month	path	string	true	"The month in YYYY-MM format"
// @Router			/v1/months/{month}/copy-forward [options]
// @Router			/v1/months/{month}/contributions [options]
func (co Controller) OptionsMonthAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get month
// @Description	Returns income, allocations, spending and the available amount for a month, with all visible envelopes grouped by category
// @Tags			Months
// @Produce		json
// @Success		200		{object}	MonthResponse
// @Failure		400		{object}	httpError
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/months/{month} [get]
func (co Controller) GetMonth(c *gin.Context) {
	month, err := paramMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, MonthResponse{
		Data: co.Ledger.MonthOverview(month),
		Links: MonthLinks{
			Self:          link(c, "months/%s", month),
			CopyForward:   link(c, "months/%s/copy-forward", month),
			Contributions: link(c, "months/%s/contributions", month),
			Transactions:  link(c, "transactions?month=%s", month),
			IncomeSources: link(c, "income-sources?month=%s", month),
			Allocations:   link(c, "allocations?month=%s", month),
			Export:        link(c, "export?from=%s&to=%s&format=csv", month, month),
		},
	})
}

// @Summary		Start fresh
// @Description	Deletes all income sources and allocations of the month. Transactions and other months are kept.
// @Tags			Months
// @Produce		json
// @Success		200		{object}	TombstoneResponse
// @Failure		400		{object}	httpError
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Param			confirm	query		string	true	"Must be 'yes-please-start-fresh'"
// @Router			/v1/months/{month} [delete]
func (co Controller) StartFresh(c *gin.Context) {
	month, err := paramMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	var q QueryConfirm
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, httputil.ErrInvalidQuery)
		return
	}

	tombstone, err := co.Ledger.StartFresh(month, q.Confirm)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newTombstoneResponse(c, tombstone))
}

// @Summary		Copy month forward
// @Description	Copies the income sources and allocations of the most recent month with data into this month. Months that already have data are not modified.
// @Tags			Months
// @Produce		json
// @Success		200		{object}	CopyForwardResponse
// @Failure		400		{object}	httpError
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/months/{month}/copy-forward [post]
func (co Controller) CopyForward(c *gin.Context) {
	month, err := paramMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	result, err := co.Rollover.CopyForward(c.Request.Context(), month)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, CopyForwardResponse{Data: result})
}

// @Summary		Create piggybank contributions
// @Description	Creates the monthly contribution transactions of all piggybanks for the month. Contributions that already exist are skipped.
// @Tags			Months
// @Produce		json
// @Success		200		{object}	ContributionsResponse
// @Failure		400		{object}	httpError
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/months/{month}/contributions [post]
func (co Controller) MaterializeContributions(c *gin.Context) {
	month, err := paramMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	created, err := co.Rollover.MaterializeContributions(c.Request.Context(), month)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, ContributionsResponse{Created: created})
}
