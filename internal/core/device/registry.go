package device

import (
	"go.uber.org/zap"
)

// ResolvedTarget is the outcome of classifying one raw payload: an already
// known device, a new (type, id) pair, or nothing.
type ResolvedTarget struct {
	Existing Device
	TypeName string
	NewId    string
}

func (t ResolvedTarget) Matched() bool {
	return t.Existing != nil || t.TypeName != ""
}

// Classify resolves a raw payload against the known devices first, then the
// descriptor priority list. Known devices are re-matched through their own
// descriptor rather than compared against a cached id, because some encodings
// must be reparsed to confirm identity. Classification is total: malformed
// payloads are non-matches, never errors.
func Classify(raw string, known []Device, descriptors []Descriptor) ResolvedTarget {
	byType := make(map[string]Descriptor, len(descriptors))
	for _, desc := range descriptors {
		byType[desc.TypeName] = desc
	}
	for _, dev := range known {
		desc, ok := byType[dev.TypeName()]
		if !ok {
			continue
		}
		if id, ok := desc.Match(raw); ok && id == dev.Id() {
			return ResolvedTarget{Existing: dev}
		}
	}
	for _, desc := range descriptors {
		if id, ok := desc.Match(raw); ok {
			return ResolvedTarget{TypeName: desc.TypeName, NewId: id}
		}
	}
	return ResolvedTarget{}
}

// Registry holds every device discovered over the lifetime of one router.
// Devices are appended in discovery order and never evicted.
type Registry struct {
	descriptors []Descriptor
	byType      map[string]Descriptor
	devices     []Device
	logger      *zap.Logger
}

func NewRegistry(descriptors []Descriptor, logger *zap.Logger) *Registry {
	byType := make(map[string]Descriptor, len(descriptors))
	for _, desc := range descriptors {
		byType[desc.TypeName] = desc
	}
	return &Registry{
		descriptors: descriptors,
		byType:      byType,
		logger:      logger,
	}
}

// ResolveOrCreate returns the device owning a raw payload, creating and
// registering it on first sight. The second return value is false when no
// device family matches; the caller drops the message.
func (r *Registry) ResolveOrCreate(raw string) (Device, bool) {
	target := Classify(raw, r.devices, r.descriptors)
	switch {
	case target.Existing != nil:
		r.logger.Debug("recognized device",
			zap.String("type", target.Existing.TypeName()),
			zap.String("id", target.Existing.Id()))
		return target.Existing, true
	case target.TypeName != "":
		dev := r.byType[target.TypeName].Create(raw)
		r.devices = append(r.devices, dev)
		r.logger.Info("discovered device",
			zap.String("type", dev.TypeName()),
			zap.String("id", dev.Id()))
		return dev, true
	}
	return nil, false
}

// Devices returns the known devices in discovery order.
func (r *Registry) Devices() []Device {
	return r.devices
}

func (r *Registry) Size() int {
	return len(r.devices)
}
