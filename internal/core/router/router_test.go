package router

import (
	"testing"

	"lorasoil2mqtt/internal/core/device"
	"lorasoil2mqtt/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	testTopic     = "home/OMG_ESP32_LORA/LORAtoMQTT"
	v3Payload     = `{"message":"ID7 REPLY : SOIL INEDX:1 H:55.2 T:21.0 ADC:640 BAT:800"}`
	v3JSONPayload = `{"message":"{\"node_id\":\"42\",\"hum\":50,\"temp\":20,\"bat\":3.1,\"adc\":10}"}`
)

type sinkCall struct {
	fullId string
	key    string
	value  float64
}

// recordingSink records every announcement and publish in call order.
type recordingSink struct {
	ensured   []string
	published []sinkCall
}

func (s *recordingSink) EnsureChannel(dev device.Device, ch *device.Channel) {
	s.ensured = append(s.ensured, dev.FullId()+"/"+ch.Key)
}

func (s *recordingSink) PublishValue(dev device.Device, ch *device.Channel, value float64) {
	s.published = append(s.published, sinkCall{
		fullId: dev.FullId(),
		key:    ch.Key,
		value:  value,
	})
}

func (s *recordingSink) values(fullId string) map[string]float64 {
	values := map[string]float64{}
	for _, call := range s.published {
		if call.fullId == fullId {
			values[call.key] = call.value
		}
	}
	return values
}

func testRouter(sink *recordingSink) *Router {
	return New(testTopic, device.Descriptors(), sink, zap.Must(zap.NewDevelopment()))
}

func TestRouterReceivePlainText(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(v3Payload)

	devices := r.Devices()
	assert.Len(t, devices, 1)
	assert.Equal(t, "MakerFabsSoilSensorV3_7", devices[0].FullId())

	values := sink.values("MakerFabsSoilSensorV3_7")
	assert.Equal(t, 55.2, values[device.CHANNEL_HUMIDITY])
	assert.Equal(t, 21.0, values[device.CHANNEL_TEMPERATURE])
	assert.Equal(t, 640.0, values[device.CHANNEL_ADC])
	assert.InDelta(t, 2.578125, values[device.CHANNEL_BATTERY], 1e-9)
	assert.InDelta(t, 94.171875, values[device.CHANNEL_MOISTURE], 1e-9)

	assert.Equal(t, uint64(1), r.MessagesReceived())
	assert.Equal(t, v3Payload, r.LastMessage())
	assert.True(t, r.Dirty())
}

func TestRouterReceiveJSON(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(v3JSONPayload)

	devices := r.Devices()
	assert.Len(t, devices, 1)
	assert.Equal(t, "MakerFabsSoilSensorV3JSON_42", devices[0].FullId())

	values := sink.values("MakerFabsSoilSensorV3JSON_42")
	assert.Equal(t, 50.0, values[device.CHANNEL_HUMIDITY])
	assert.Equal(t, 20.0, values[device.CHANNEL_TEMPERATURE])
	assert.Equal(t, 3.1, values[device.CHANNEL_BATTERY])
	assert.Equal(t, 10.0, values[device.CHANNEL_MOISTURE])
}

func TestRouterReceiveUnmatched(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(`{"foo":"bar"}`)

	assert.Empty(t, r.Devices())
	assert.Empty(t, sink.ensured)
	assert.Empty(t, sink.published)
	assert.Empty(t, r.Snapshot().RecentMessages)
	// the live counter and the last message still record the attempt
	assert.Equal(t, uint64(1), r.MessagesReceived())
	assert.Equal(t, `{"foo":"bar"}`, r.LastMessage())
	assert.True(t, r.Dirty())
}

func TestRouterReceiveIdempotentDevice(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(v3Payload)
	r.Receive(v3Payload)

	assert.Len(t, r.Devices(), 1)
	// channels are announced once, values published per message
	assert.Len(t, sink.ensured, 5)
	assert.Len(t, sink.published, 10)
	assert.Equal(t, uint64(2), r.MessagesReceived())
}

func TestRouterSnapshotRoundTrip(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(v3Payload)
	r.Receive(v3JSONPayload)

	snap := r.Snapshot()
	assert.Equal(t, v3JSONPayload, snap.LastMessage)
	assert.Equal(t, v3Payload, snap.RecentMessages["MakerFabsSoilSensorV3_7"])
	assert.Equal(t, v3JSONPayload, snap.RecentMessages["MakerFabsSoilSensorV3JSON_42"])

	// replaying the snapshot reproduces the same devices and values
	restoredSink := &recordingSink{}
	restored := testRouter(restoredSink)
	restored.Restore(snap)

	fullIds := make([]string, 0)
	for _, dev := range restored.Devices() {
		fullIds = append(fullIds, dev.FullId())
	}
	assert.ElementsMatch(t, []string{"MakerFabsSoilSensorV3_7", "MakerFabsSoilSensorV3JSON_42"}, fullIds)
	assert.Equal(t, sink.values("MakerFabsSoilSensorV3_7"), restoredSink.values("MakerFabsSoilSensorV3_7"))
	assert.Equal(t, sink.values("MakerFabsSoilSensorV3JSON_42"), restoredSink.values("MakerFabsSoilSensorV3JSON_42"))
}

func TestRouterRestoreDoesNotCountMessages(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Restore(snapshot.Snapshot{
		LastMessage: v3Payload,
		RecentMessages: map[string]string{
			"MakerFabsSoilSensorV3_7": v3Payload,
		},
	})

	assert.Len(t, r.Devices(), 1)
	assert.Equal(t, "MakerFabsSoilSensorV3_7", r.Devices()[0].FullId())
	assert.Len(t, r.Devices()[0].Channels(), 5)
	assert.Equal(t, uint64(0), r.MessagesReceived())
	assert.False(t, r.Dirty())
	assert.Equal(t, v3Payload, r.LastMessage())
}

func TestRouterRestoreDropsCorruptEntries(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Restore(snapshot.Snapshot{
		RecentMessages: map[string]string{
			"MakerFabsSoilSensorV3_7": v3Payload,
			"Unknown_1":               `{"foo":"bar"}`,
		},
	})

	assert.Len(t, r.Devices(), 1)
	assert.NotContains(t, r.Snapshot().RecentMessages, "Unknown_1")
	// pruning an entry must reach the store on the next flush
	assert.True(t, r.Dirty())
}

func TestRouterMalformedPayloadKeepsDevice(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(v3Payload)
	published := len(sink.published)

	// matches the V3 grammar for classification but fails field parsing
	r.Receive(`{"message":"ID7 REPLY : SOIL INEDX:1 H:oops T:21.0 ADC:640 BAT:800"}`)

	assert.Len(t, r.Devices(), 1)
	// nothing extra published, snapshot keeps the last good message
	assert.Len(t, sink.published, published)
	assert.Equal(t, v3Payload, r.Snapshot().RecentMessages["MakerFabsSoilSensorV3_7"])
}

func TestRouterMarkClean(t *testing.T) {

	sink := &recordingSink{}
	r := testRouter(sink)

	r.Receive(v3Payload)
	assert.True(t, r.Dirty())

	r.MarkClean()
	assert.False(t, r.Dirty())

	r.Receive(v3JSONPayload)
	assert.True(t, r.Dirty())
}
