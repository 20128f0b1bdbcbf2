// Package queue carries deferred image batches over RabbitMQ. A batch is
// serialized as JSON, published persistent, and delivered at-least-once; the
// processing side is idempotent at the file-move step so redeliveries are
// safe.
package queue

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

const ImageQueueName = "images.process"

type BatchKind string

const (
	BatchSave   BatchKind = "save"
	BatchUpdate BatchKind = "update"
)

// ImageItem is one staged file inside a batch. TempKey is where the upload
// was durably staged; StoreKey is its permanent destination. ImageID is set
// only for update batches, where the existing row keeps its identity.
type ImageItem struct {
	ImageID  *uuid.UUID `json:"image_id,omitempty"`
	TempKey  string     `json:"temp_key"`
	StoreKey string     `json:"store_key"`
}

type ImageBatchJob struct {
	Kind           BatchKind         `json:"kind"`
	Owner          domain.ImageOwner `json:"owner"`
	Images         []ImageItem       `json:"images"`
	IdempotencyKey string            `json:"idempotency_key"`
	EnqueuedAt     time.Time         `json:"enqueued_at"`
}

// BatchIdempotencyKey derives a stable key from the staged temp paths, so a
// redelivered job identifies the same batch.
func BatchIdempotencyKey(items []ImageItem) string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.TempKey)
	}
	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:16])
}
