package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
)

type SyncStatusResponse struct {
	Data  coordinator.Status `json:"data"`  // Sync status of the ledger
	Links SyncLinks          `json:"links"` // Links to related resources
}

type SyncLinks struct {
	Operations string `json:"operations" example:"https://example.com/api/v1/sync/operations"` // Pending and failed writes
	Retry      string `json:"retry" example:"https://example.com/api/v1/sync/retry"`           // POST to retry all failed writes
	Flush      string `json:"flush" example:"https://example.com/api/v1/sync/flush"`           // POST to send all queued writes now
}

type OperationListResponse struct {
	Data []coordinator.Operation `json:"data"` // Pending writes in queue order, followed by failed writes
}

type RetryResponse struct {
	Retried int `json:"retried" example:"2"` // Number of failed writes queued again
}

type FlushResponse struct {
	Synced int `json:"synced" example:"4"` // Number of writes that were synced
}

// RegisterSyncRoutes registers the routes for the sync state with
// the RouterGroup that is passed.
func (co Controller) RegisterSyncRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsSync)
		r.GET("", co.GetSyncStatus)
		r.OPTIONS("/operations", co.OptionsSync)
		r.GET("/operations", co.GetOperations)
		r.OPTIONS("/retry", co.OptionsSyncAction)
		r.POST("/retry", co.RetryFailed)
		r.OPTIONS("/flush", co.OptionsSyncAction)
		r.POST("/flush", co.Flush)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Sync
// @Success		204
// @Router			/v1/sync [options]
// @Router			/v1/sync/operations [options]
func (co Controller) OptionsSync(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Sync
// @Success		204
// @Router			/v1/sync/retry [options]
// @Router			/v1/sync/flush [options]
func (co Controller) OptionsSyncAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get sync status
// @Description	Returns if the remote store is reachable and how many writes are pending or failed
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	SyncStatusResponse
// @Router			/v1/sync [get]
func (co Controller) GetSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, SyncStatusResponse{
		Data: co.Ledger.Status(),
		Links: SyncLinks{
			Operations: link(c, "sync/operations"),
			Retry:      link(c, "sync/retry"),
			Flush:      link(c, "sync/flush"),
		},
	})
}

// @Summary		Get operations
// @Description	Returns all writes that are not synced yet
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	OperationListResponse
// @Router			/v1/sync/operations [get]
func (co Controller) GetOperations(c *gin.Context) {
	c.JSON(http.StatusOK, OperationListResponse{Data: co.Ledger.Operations()})
}

// @Summary		Retry failed writes
// @Description	Queues all writes that exhausted their attempts again
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	RetryResponse
// @Router			/v1/sync/retry [post]
func (co Controller) RetryFailed(c *gin.Context) {
	c.JSON(http.StatusOK, RetryResponse{Retried: co.Ledger.RetryFailed()})
}

// @Summary		Flush writes
// @Description	Sends queued writes until the queue is empty, a write waits for its retry or the remote store is unreachable
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	FlushResponse
// @Router			/v1/sync/flush [post]
func (co Controller) Flush(c *gin.Context) {
	c.JSON(http.StatusOK, FlushResponse{Synced: co.Ledger.Flush(c.Request.Context())})
}
