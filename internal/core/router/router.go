package router

import (
	"fmt"
	"sort"

	"lorasoil2mqtt/internal/core/device"
	"lorasoil2mqtt/internal/core/port"
	"lorasoil2mqtt/internal/snapshot"

	"go.uber.org/zap"
)

// Router turns the raw message stream of one gateway topic into measurement
// updates on a sink. It is purely sequential: the caller must deliver one
// message at a time, and Restore must complete before the first Receive.
type Router struct {
	topic     string
	registry  *device.Registry
	sink      port.MeasurementSink
	snap      snapshot.Snapshot
	announced map[string]struct{}
	received  uint64
	dirty     bool
	logger    *zap.Logger
}

func New(topic string, descriptors []device.Descriptor, sink port.MeasurementSink, logger *zap.Logger) *Router {
	scoped := logger.With(zap.String("topic", topic))
	return &Router{
		topic:     topic,
		registry:  device.NewRegistry(descriptors, scoped),
		sink:      sink,
		snap:      snapshot.Empty(),
		announced: make(map[string]struct{}),
		logger:    scoped,
	}
}

// Restore replays a persisted snapshot through the same resolve/decode path
// as live traffic, recreating devices and channels and republishing their
// values. The replayed message is the one that produced the last published
// value, so recomputing from it restores exactly that value. The live counter
// is not touched; entries that are dropped or re-keyed mark the snapshot
// dirty so the pruned state reaches the store.
func (r *Router) Restore(snap snapshot.Snapshot) {
	ids := make([]string, 0, len(snap.RecentMessages))
	for id := range snap.RecentMessages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		raw := snap.RecentMessages[id]
		dev, ok := r.registry.ResolveOrCreate(raw)
		if !ok {
			r.logger.Warn("dropping snapshot entry no device type matches", zap.String("device", id))
			r.dirty = true
			continue
		}
		if dev.FullId() != id {
			r.logger.Warn("snapshot entry resolved to a different device",
				zap.String("stored", id), zap.String("resolved", dev.FullId()))
			r.dirty = true
		}
		measurements, err := dev.Decode(raw)
		if err != nil {
			r.logger.Warn("dropping undecodable snapshot entry",
				zap.String("device", id), zap.Error(err))
			r.dirty = true
			continue
		}
		r.snap.RecentMessages[dev.FullId()] = raw
		r.publish(dev, measurements)
	}
	r.snap.LastMessage = snap.LastMessage
	if len(ids) > 0 {
		r.logger.Info("replayed snapshot",
			zap.Int("messages", len(ids)), zap.Int("devices", r.registry.Size()))
	}
}

// Receive routes one live message: resolve the owning device, record the
// message for replay, decode, and publish. Every live payload becomes the
// last message, matched or not; unmatched and malformed messages are
// otherwise logged and dropped.
func (r *Router) Receive(raw string) {
	r.received++
	r.snap.LastMessage = raw
	r.dirty = true
	dev, ok := r.registry.ResolveOrCreate(raw)
	if !ok {
		r.logger.Info("unable to deal with this message for now, submit a PR to support it",
			zap.String("payload", raw))
		return
	}
	measurements, err := dev.Decode(raw)
	if err != nil {
		// matched during classification but failed the device's own
		// grammar: skip this message, keep the device and its channels
		r.logger.Warn("malformed payload for matched device",
			zap.String("device", dev.FullId()), zap.Error(err))
		return
	}
	r.snap.RecentMessages[dev.FullId()] = raw
	r.publish(dev, measurements)
}

func (r *Router) publish(dev device.Device, measurements []device.Measurement) {
	for _, m := range measurements {
		ch, ok := dev.Channel(m.Key)
		if !ok {
			panic(fmt.Sprintf("decoder %s returned a measurement for unknown channel %q", dev.FullId(), m.Key))
		}
		ch.SetValue(m.Value)
		key := dev.FullId() + "/" + m.Key
		if _, seen := r.announced[key]; !seen {
			r.sink.EnsureChannel(dev, ch)
			r.announced[key] = struct{}{}
		}
		r.sink.PublishValue(dev, ch, m.Value)
	}
}

func (r *Router) Topic() string {
	return r.topic
}

// Snapshot returns a copy of the current recent-message state for persisting.
func (r *Router) Snapshot() snapshot.Snapshot {
	return r.snap.Clone()
}

// Dirty reports whether the snapshot changed since the last MarkClean.
func (r *Router) Dirty() bool {
	return r.dirty
}

func (r *Router) MarkClean() {
	r.dirty = false
}

// Devices returns the discovered devices in discovery order.
func (r *Router) Devices() []device.Device {
	return r.registry.Devices()
}

// MessagesReceived counts live messages only; replay does not increment it.
func (r *Router) MessagesReceived() uint64 {
	return r.received
}

// LastMessage is the raw payload of the most recent live message, matched or
// not, or the restored one after replay.
func (r *Router) LastMessage() string {
	return r.snap.LastMessage
}
