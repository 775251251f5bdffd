package models

// swagger:enum SyncStatus
type SyncStatus string

const (
	SyncStatusSynced       SyncStatus = "SYNCED"
	SyncStatusPendingWrite SyncStatus = "PENDING_WRITE"
	SyncStatusFailed       SyncStatus = "FAILED"
)

// SyncState is the replication state of a single resource.
//
// Reason is only set when the status is SyncStatusFailed.
type SyncState struct {
	Status SyncStatus `json:"status" example:"PENDING_WRITE"`
	Reason string     `json:"reason,omitempty" example:"remote store is unavailable"`
}

func Synced() SyncState {
	return SyncState{Status: SyncStatusSynced}
}

func PendingWrite() SyncState {
	return SyncState{Status: SyncStatusPendingWrite}
}

func Failed(reason string) SyncState {
	return SyncState{Status: SyncStatusFailed, Reason: reason}
}

func (s SyncState) IsPending() bool {
	return s.Status == SyncStatusPendingWrite
}
