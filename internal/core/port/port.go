package port

import (
	"context"

	"lorasoil2mqtt/internal/core/device"
	"lorasoil2mqtt/internal/snapshot"
)

// MeasurementSink receives channel announcements and decoded values from the
// router. EnsureChannel is idempotent; the sink owns how values become
// externally observable.
type MeasurementSink interface {
	EnsureChannel(dev device.Device, ch *device.Channel)
	PublishValue(dev device.Device, ch *device.Channel, value float64)
}

// SnapshotStore persists the recent-message snapshot between runs. Eventual
// persistence is enough; the router batches saves.
type SnapshotStore interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
	Save(ctx context.Context, snap snapshot.Snapshot) error
	Close() error
}
