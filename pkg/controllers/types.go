package controllers

import (
	"fmt"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QueryMonth struct {
	Month string `form:"month" example:"2026-02"` // Year and month
}

// TombstoneResponse is returned by all destructive actions. The ID of the
// tombstone undoes the action until it expires.
type TombstoneResponse struct {
	Data  coordinator.Tombstone `json:"data"`
	Links TombstoneLinks        `json:"links"`
}

type TombstoneLinks struct {
	Undo string `json:"undo" example:"https://example.com/api/v1/tombstones/6f3b3c38-81e1-4b68-9d9f-0f33a1c6c2af/undo"` // POST to undo the action
}

func newTombstoneResponse(c *gin.Context, t coordinator.Tombstone) TombstoneResponse {
	return TombstoneResponse{
		Data: t,
		Links: TombstoneLinks{
			Undo: link(c, "tombstones/%s/undo", t.ID),
		},
	}
}

// link returns the absolute URL of a path below /v1.
func link(c *gin.Context, format string, args ...any) string {
	return fmt.Sprintf("%s/v1/%s", httputil.URL(c), fmt.Sprintf(format, args...))
}

// paramID parses the ID path parameter.
func paramID(c *gin.Context) (uuid.UUID, error) {
	return httputil.UUIDFromString(c.Param("id"))
}

// paramMonth parses the month path parameter.
func paramMonth(c *gin.Context) (types.Month, error) {
	return httputil.MonthFromString(c.Param("month"))
}

// queryMonth parses the month query parameter. If it is not set, the zero
// month is returned.
func queryMonth(c *gin.Context) (types.Month, error) {
	var q QueryMonth
	if err := c.ShouldBindQuery(&q); err != nil {
		return types.Month{}, httputil.ErrInvalidQuery
	}

	if q.Month == "" {
		return types.Month{}, nil
	}

	return httputil.MonthFromString(q.Month)
}
