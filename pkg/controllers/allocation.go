package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationEditable sets the allocation of an envelope for a month
type AllocationEditable struct {
	EnvelopeID uuid.UUID       `json:"envelopeId" binding:"required" example:"a0909e84-e8f9-4cb6-82a5-025dff105ff2"` // ID of the envelope
	Month      types.Month     `json:"month" example:"2026-02"`                                                      // Month of the allocation
	Amount     decimal.Decimal `json:"amount" example:"22.01"`                                                       // Budgeted amount
}

type AllocationLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/allocations/902cd93c-3724-4e46-8540-d014131282fc"`                  // The allocation itself
	Envelope string `json:"envelope" example:"https://example.com/api/v1/envelopes/a0909e84-e8f9-4cb6-82a5-025dff105ff2/months/2026-02"` // The envelope's data for the month
}

type Allocation struct {
	models.Allocation
	Sync  models.SyncState `json:"sync"`  // Sync state of the allocation
	Links AllocationLinks  `json:"links"` // Links to related resources
}

func (co Controller) newAllocation(c *gin.Context, model models.Allocation) Allocation {
	return Allocation{
		Allocation: model,
		Sync:       co.Ledger.SyncState(model.ID),
		Links: AllocationLinks{
			Self:     link(c, "allocations/%s", model.ID),
			Envelope: link(c, "envelopes/%s/months/%s", model.EnvelopeID, model.Month),
		},
	}
}

type AllocationListResponse struct {
	Data []Allocation `json:"data"` // List of allocations
}

type AllocationResponse struct {
	Data *Allocation `json:"data"` // Data for the allocation
}

// RegisterAllocationRoutes registers the routes for allocations with
// the RouterGroup that is passed.
func (co Controller) RegisterAllocationRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsAllocationList)
		r.GET("", co.GetAllocations)
		r.PUT("", co.SetAllocation)
	}

	// Allocation with ID
	{
		r.OPTIONS("/:id", co.OptionsAllocationDetail)
		r.GET("/:id", co.GetAllocation)
		r.DELETE("/:id", co.DeleteAllocation)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func (co Controller) OptionsAllocationList(c *gin.Context) {
	httputil.OptionsGetPut(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/allocations/{id} [options]
func (co Controller) OptionsAllocationDetail(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err := co.Ledger.Allocation(id); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Get allocations
// @Description	Returns all allocations, optionally only for one month
// @Tags			Allocations
// @Produce		json
// @Success		200		{object}	AllocationListResponse
// @Failure		400		{object}	httpError
// @Param			month	query		string	false	"Filter by month in YYYY-MM format"
// @Router			/v1/allocations [get]
func (co Controller) GetAllocations(c *gin.Context) {
	month, err := queryMonth(c)
	if err != nil {
		abort(c, err)
		return
	}

	allocations := co.Ledger.Snapshot().Allocations
	data := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		if !month.IsZero() && !allocation.Month.Equal(month) {
			continue
		}

		data = append(data, co.newAllocation(c, allocation))
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: data})
}

// @Summary		Set allocation
// @Description	Sets the allocation of an envelope for a month. It is created if it does not exist.
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		200			{object}	AllocationResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			allocation	body		controllers.AllocationEditable	true	"Allocation"
// @Router			/v1/allocations [put]
func (co Controller) SetAllocation(c *gin.Context) {
	var editable AllocationEditable
	if err := httputil.BindData(c, &editable); err != nil {
		abort(c, err)
		return
	}

	allocation, err := co.Ledger.SetAllocation(editable.EnvelopeID, editable.Month, editable.Amount)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &data})
}

// @Summary		Get allocation
// @Description	Returns a specific allocation
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/allocations/{id} [get]
func (co Controller) GetAllocation(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	allocation, err := co.Ledger.Allocation(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &data})
}

// @Summary		Delete allocation
// @Description	Deletes an allocation
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	TombstoneResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/allocations/{id} [delete]
func (co Controller) DeleteAllocation(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	tombstone, err := co.Ledger.DeleteAllocation(id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newTombstoneResponse(c, tombstone))
}
