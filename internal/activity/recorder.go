// Package activity implements the append-only activity log: collection,
// listing, fan-out and archiving.
package activity

import (
	"context"
	"fmt"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// LogStore defines the interface for log persistence. InsertLog assigns the
// id and timestamp on the entry it is given.
type LogStore interface {
	InsertLog(ctx context.Context, e *models.LogEntry) (string, error)
	ListLogs(ctx context.Context) ([]models.LogEntry, error)
}

// Publisher receives every stored entry. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, e models.LogEntry) error
}

// Recorder stores entries and forwards them to an optional Publisher.
type Recorder struct {
	store     LogStore
	publisher Publisher
	logger    logging.Logger
}

// NewRecorder returns a Recorder. publisher may be nil.
func NewRecorder(store LogStore, publisher Publisher, logger logging.Logger) *Recorder {
	return &Recorder{store: store, publisher: publisher, logger: logger}
}

// Record appends e and returns its id. A publisher failure is logged and
// does not fail the call.
func (r *Recorder) Record(ctx context.Context, e models.LogEntry) (string, error) {
	id, err := r.store.InsertLog(ctx, &e)
	if err != nil {
		return "", fmt.Errorf("record activity: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.logger.Warn(ctx, "activity publish failed", "log_id", id, "error", err)
		}
	}
	return id, nil
}

// List returns all entries in insertion order.
func (r *Recorder) List(ctx context.Context) ([]models.LogEntry, error) {
	logs, err := r.store.ListLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return logs, nil
}
