package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is where archives are written.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Archiver snapshots the whole log into a single JSON object.
type Archiver struct {
	recorder *Recorder
	objects  ObjectStore
	now      func() time.Time
}

func NewArchiver(recorder *Recorder, objects ObjectStore) *Archiver {
	return &Archiver{recorder: recorder, objects: objects, now: time.Now}
}

// Archive uploads the current log and returns the object key and the number
// of entries written.
func (a *Archiver) Archive(ctx context.Context) (string, int, error) {
	logs, err := a.recorder.List(ctx)
	if err != nil {
		return "", 0, err
	}

	data, err := json.Marshal(logs)
	if err != nil {
		return "", 0, fmt.Errorf("encode archive: %w", err)
	}

	key := fmt.Sprintf("logs/%s-%s.json", a.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	if err := a.objects.Upload(ctx, key, data, "application/json"); err != nil {
		return "", 0, fmt.Errorf("upload archive: %w", err)
	}
	return key, len(logs), nil
}
