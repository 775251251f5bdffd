package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
)

type TombstoneListResponse struct {
	Data []TombstoneResponse `json:"data"` // Tombstones that can still be undone, oldest first
}

// RegisterTombstoneRoutes registers the routes for tombstones with
// the RouterGroup that is passed.
func (co Controller) RegisterTombstoneRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsTombstoneList)
		r.GET("", co.GetTombstones)
		r.OPTIONS("/:id/undo", co.OptionsTombstoneUndo)
		r.POST("/:id/undo", co.Undo)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Tombstones
// @Success		204
// @Router			/v1/tombstones [options]
func (co Controller) OptionsTombstoneList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Tombstones
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/tombstones/{id}/undo [options]
func (co Controller) OptionsTombstoneUndo(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get tombstones
// @Description	Returns all destructive actions that can still be undone
// @Tags			Tombstones
// @Produce		json
// @Success		200	{object}	TombstoneListResponse
// @Router			/v1/tombstones [get]
func (co Controller) GetTombstones(c *gin.Context) {
	tombstones := co.Ledger.Tombstones()

	data := make([]TombstoneResponse, 0, len(tombstones))
	for _, t := range tombstones {
		data = append(data, newTombstoneResponse(c, t))
	}

	c.JSON(http.StatusOK, TombstoneListResponse{Data: data})
}

// @Summary		Undo
// @Description	Restores all resources removed by a destructive action
// @Tags			Tombstones
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError	"The undo window has expired or a later change conflicts with it"
// @Param			id	path		string		true	"ID formatted as string"
// @Router			/v1/tombstones/{id}/undo [post]
func (co Controller) Undo(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if err := co.Ledger.Undo(id); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
