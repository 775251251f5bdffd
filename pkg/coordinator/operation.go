package coordinator

import (
	"time"

	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
)

// swagger:enum OperationKind
type OperationKind string

const (
	OperationUpsert OperationKind = "upsert"
	OperationDelete OperationKind = "delete"
	OperationBatch  OperationKind = "batch"
)

// OperationState is the state of a remote write.
//
// An operation moves Requested → AppliedLocally → Queued → Synced. A rejected
// write moves to Retrying until it is Synced or its attempts are exhausted and
// it is Failed. Requested and AppliedLocally are only passed while the entry
// point that created the operation holds the coordinator lock.
//
// swagger:enum OperationState
type OperationState string

const (
	StateRequested      OperationState = "REQUESTED"
	StateAppliedLocally OperationState = "APPLIED_LOCALLY"
	StateQueued         OperationState = "QUEUED"
	StateRetrying       OperationState = "RETRYING"
	StateSynced         OperationState = "SYNCED"
	StateFailed         OperationState = "FAILED"
)

// Operation is a remote write of one or more resources.
type Operation struct {
	ID         uint64            `json:"id" example:"17"`
	Kind       OperationKind     `json:"kind" example:"upsert"`
	Collection string            `json:"collection" example:"transactions"`        // Collection of the first document. Batches can span collections
	Documents  []remote.Document `json:"-"`
	State      OperationState    `json:"state" example:"QUEUED"`
	Attempts   int               `json:"attempts" example:"0"`                     // Number of rejected attempts
	LastError  string            `json:"lastError,omitempty" example:""`           // Error of the last attempt
	CreatedAt  time.Time         `json:"createdAt" example:"2026-02-14T08:31:00Z"`

	notBefore time.Time // earliest time of the next attempt
}

// Resources returns the IDs of all resources written by the operation.
func (o *Operation) Resources() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Documents))
	for _, d := range o.Documents {
		ids = append(ids, d.ID)
	}

	return ids
}

// backoff returns the wait time after the attempt.
func backoff(attempt int, base, ceiling time.Duration) time.Duration {
	d := base
	for i := 1; i < attempt && d < ceiling; i++ {
		d *= 2
	}

	if d > ceiling {
		return ceiling
	}

	return d
}
