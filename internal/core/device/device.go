package device

import (
	"encoding/json"
	"fmt"
)

const (
	DEVICE_CLASS_HUMIDITY    = "humidity"
	DEVICE_CLASS_TEMPERATURE = "temperature"
	DEVICE_CLASS_VOLTAGE     = "voltage"
	DEVICE_CLASS_MOISTURE    = "moisture"
	ENTITY_CLASS_DIAGNOSTIC  = "diagnostic"
)

// Envelope is the outer JSON wrapper OpenMQTTGateway puts around every LoRa
// frame. The inner message is an opaque string: each device type knows how to
// take it apart.
type Envelope struct {
	Message string `json:"message"`
}

// ParseEnvelope extracts the inner message from a raw MQTT payload. Anything
// that is not a JSON object with a "message" key is reported as a non-match,
// never as an error.
func ParseEnvelope(raw string) (string, bool) {
	var env struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", false
	}
	if env.Message == nil {
		return "", false
	}
	return *env.Message, true
}

// ChannelMeta is the static identity of one measurement channel: everything a
// downstream sink needs to announce the channel before any value arrives.
type ChannelMeta struct {
	Key               string
	Name              string
	UnitOfMeasurement string
	DeviceClass       string
	EntityCategory    string
	DisplayPrecision  *uint
}

// Channel is one published scalar value of a device. A channel is created the
// first time a message produces it and lives as long as its device. Only the
// owning device's decode step mutates the value.
type Channel struct {
	ChannelMeta
	value *float64
}

func (c *Channel) Value() (float64, bool) {
	if c.value == nil {
		return 0, false
	}
	return *c.value, true
}

func (c *Channel) SetValue(value float64) {
	c.value = &value
}

// Measurement is one decoded (channel, value) pair. Decode returns these in a
// stable order so publishing is deterministic.
type Measurement struct {
	Key   string
	Value float64
}

// Device is one physically distinct remote sensor, identified by its type
// name plus the identifier embedded in its payloads.
type Device interface {
	TypeName() string
	Id() string
	FullId() string
	// Channels returns the channels created so far, in creation order.
	Channels() []*Channel
	Channel(key string) (*Channel, bool)
	// Decode parses a raw payload, creates any channels it produces that do
	// not exist yet, and returns the decoded measurements. A payload that
	// matched classification but fails the device's own grammar returns an
	// error; the caller skips that message and keeps routing.
	Decode(raw string) ([]Measurement, error)
}

// Descriptor pairs the matcher and the factory for one device family.
// Descriptors are tried in the fixed order returned by Descriptors; the
// first Match that yields an identifier wins.
type Descriptor struct {
	TypeName string
	// Match extracts the device identifier from a raw payload, or reports
	// a non-match. It must be total over arbitrary input.
	Match func(raw string) (string, bool)
	// Create builds a device from its first payload. Calling it with a
	// payload that does not match is a classifier/decoder contract breach
	// and panics.
	Create func(raw string) Device
}

// Descriptors returns the compiled-in device families in priority order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			TypeName: TYPE_MAKERFABS_SOIL_V3,
			Match:    MatchMakerFabsSoilV3,
			Create:   NewMakerFabsSoilV3,
		},
		{
			TypeName: TYPE_MAKERFABS_SOIL_V3_JSON,
			Match:    MatchMakerFabsSoilV3JSON,
			Create:   NewMakerFabsSoilV3JSON,
		},
	}
}

// FullId builds the composite device key, unique within a registry.
func FullId(typeName, id string) string {
	return fmt.Sprintf("%s_%s", typeName, id)
}

// channelSet implements the lazy create-if-absent channel storage shared by
// all device implementations.
type channelSet struct {
	channels []*Channel
	byKey    map[string]*Channel
}

func newChannelSet() channelSet {
	return channelSet{byKey: make(map[string]*Channel)}
}

func (s *channelSet) ensure(meta ChannelMeta) *Channel {
	if ch, ok := s.byKey[meta.Key]; ok {
		return ch
	}
	ch := &Channel{ChannelMeta: meta}
	s.channels = append(s.channels, ch)
	s.byKey[meta.Key] = ch
	return ch
}

func (s *channelSet) Channels() []*Channel {
	return s.channels
}

func (s *channelSet) Channel(key string) (*Channel, bool) {
	ch, ok := s.byKey[key]
	return ch, ok
}

func displayPrecision(value uint) *uint {
	return &value
}
