package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/export"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportQuery struct {
	From   string `form:"from" example:"2026-01"` // First month to export, in YYYY-MM format. Defaults to the first month with transactions
	To     string `form:"to" example:"2026-02"`   // Last month to export, in YYYY-MM format. Defaults to the last month with transactions
	Format string `form:"format" example:"csv"`   // csv or xlsx. Defaults to csv
}

// RegisterExportRoutes registers the routes for exports with
// the RouterGroup that is passed.
func (co Controller) RegisterExportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsExport)
	r.GET("", co.Export)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Export
// @Success		204
// @Router			/v1/export [options]
func (co Controller) OptionsExport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Export transactions
// @Description	Exports the transactions of a range of months as CSV or XLSX. The parts of a split transaction are exported as one row.
// @Tags			Export
// @Produce		text/csv
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success		200
// @Failure		400		{object}	httpError
// @Param			from	query		string	false	"First month in YYYY-MM format"
// @Param			to		query		string	false	"Last month in YYYY-MM format"
// @Param			format	query		string	false	"csv or xlsx"
// @Router			/v1/export [get]
func (co Controller) Export(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, httputil.ErrInvalidQuery)
		return
	}

	if q.Format == "" {
		q.Format = "csv"
	}

	if q.Format != "csv" && q.Format != "xlsx" {
		abort(c, errExportFormat)
		return
	}

	s := co.Ledger.Snapshot()

	// Without bounds, the range spans all transactions
	var from, to types.Month
	for _, t := range s.Transactions {
		if from.IsZero() || t.Month.Before(from) {
			from = t.Month
		}

		if t.Month.After(to) {
			to = t.Month
		}
	}

	if q.From != "" {
		m, err := httputil.MonthFromString(q.From)
		if err != nil {
			abort(c, err)
			return
		}
		from = m
	}

	if q.To != "" {
		m, err := httputil.MonthFromString(q.To)
		if err != nil {
			abort(c, err)
			return
		}
		to = m
	}

	// A single bound must not be contradicted by the default of the other
	if q.To == "" && to.Before(from) {
		to = from
	}

	if q.From == "" && from.After(to) {
		from = to
	}

	rows, err := export.Rows(s, from, to)
	if err != nil {
		abort(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeCSV
	if q.Format == "xlsx" {
		contentType = contentTypeXLSX
		err = export.WriteXLSX(&buf, rows)
	} else {
		err = export.WriteCSV(&buf, rows)
	}

	if err != nil {
		abort(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s-%s.%s"`, from, to, q.Format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
