package port

import (
	"errors"

	"textsum/internal/domain"
)

// HistoryStore persists summaries on behalf of callers.
type HistoryStore interface {
	// Put stores rec and returns its ID, assigning one when rec.ID is empty.
	Put(rec domain.SummaryRecord) (string, error)

	Get(id string) (domain.SummaryRecord, error)

	// List returns records newest first. limit <= 0 returns all.
	List(limit int) ([]domain.SummaryRecord, error)

	Delete(id string) error

	// Clear removes every record.
	Clear() error

	Close() error
}

// ErrRecordNotFound is returned by Get and Delete for unknown IDs.
var ErrRecordNotFound = errors.New("record not found")
