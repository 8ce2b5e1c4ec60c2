// Package producer publishes eventlog.recorded notifications to a message broker.
package producer

import (
	"context"

	"github.com/shahwaiz14/event-tracker/internal/telemetry/domain"
)

// Producer is a broker-backed telemetry.EventEmitter that owns a connection.
type Producer interface {
	// Emit publishes one notification and may block up to its write timeout.
	Emit(ctx context.Context, event *domain.Recorded) error
	// Close flushes and releases the connection. Repeated calls return nil.
	Close() error
}

var _ Producer = (*KafkaProducer)(nil)
