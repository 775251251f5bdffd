package coordinator

import (
	"errors"
	"fmt"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrUndoExpired  = errors.New("the undo window has expired")
	ErrUndoConflict = errors.New("the undo conflicts with a later change")
	ErrConfirmation = errors.New("the confirmation token is invalid")
	ErrDuplicateID  = errors.New("a resource with this ID already exists")
	ErrSplitParts   = errors.New("a split transaction needs at least two parts")
	ErrSplitDate    = errors.New("all parts of a split transaction must have the same date")
	ErrTransferSelf = errors.New("source and destination of a transfer must be different envelopes")
	ErrPosition     = errors.New("the position is out of range")

	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownChange     = errors.New("unknown change kind")
)

// notFound returns the error for a resource that does not exist in the replica.
func notFound(m models.Model, id uuid.UUID) error {
	return fmt.Errorf("%w %s with ID %s", models.ErrResourceNotFound, m.Self(), id)
}
