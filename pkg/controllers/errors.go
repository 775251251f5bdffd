package controllers

import (
	"errors"
	"net/http"

	"github.com/envelope-zero/ledger/internal/uuid"
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/draft"
	"github.com/envelope-zero/ledger/pkg/export"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

var (
	errMonthNotSetInQuery = errors.New("the month query parameter must be set")
	errExportFormat       = errors.New("the format must be one of 'csv' or 'xlsx'")
	errDraftEnvelope      = errors.New("the drafted envelope does not exist")
)

// badRequest are the errors caused by invalid input.
var badRequest = []error{
	httputil.ErrInvalidBody,
	httputil.ErrRequestBodyEmpty,
	httputil.ErrInvalidUUID,
	httputil.ErrInvalidMonth,
	httputil.ErrInvalidQuery,
	uuid.ErrInvalid,

	models.ErrNameEmpty,
	models.ErrAmountNegative,
	models.ErrAmountNotPositive,
	models.ErrAmountNotFinite,
	models.ErrAmountPrecision,
	models.ErrTransactionTypeInvalid,
	models.ErrEnvelopeIDEmpty,
	models.ErrMonthEmpty,
	models.ErrPiggybankImmutable,
	models.ErrPiggybankColor,

	coordinator.ErrConfirmation,
	coordinator.ErrDuplicateID,
	coordinator.ErrSplitParts,
	coordinator.ErrSplitDate,
	coordinator.ErrTransferSelf,
	coordinator.ErrPosition,

	draft.ErrEmptyText,
	draft.ErrNoAmount,
	export.ErrRange,

	errMonthNotSetInQuery,
	errExportFormat,
	errDraftEnvelope,
}

// status returns the appropriate HTTP status for an error
func status(err error) int {
	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, coordinator.ErrUndoExpired) || errors.Is(err, coordinator.ErrUndoConflict) {
		return http.StatusConflict
	}

	if errors.Is(err, draft.ErrExhausted) {
		return http.StatusTooManyRequests
	}

	for _, e := range badRequest {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// abort writes the error response for err. Server side errors are logged
// with the request ID.
func abort(c *gin.Context, err error) {
	code := status(err)
	if code == http.StatusInternalServerError {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
	}

	c.JSON(code, httpError{
		Error: err.Error(),
	})
}
