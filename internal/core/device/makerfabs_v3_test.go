package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const v3Payload = `{"message":"ID7 REPLY : SOIL INEDX:1 H:55.2 T:21.0 ADC:640 BAT:800"}`

func TestMatchMakerFabsSoilV3(t *testing.T) {

	id, ok := MatchMakerFabsSoilV3(v3Payload)
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	// repeated classification is deterministic
	id2, ok := MatchMakerFabsSoilV3(v3Payload)
	assert.True(t, ok)
	assert.Equal(t, id, id2)

	_, ok = MatchMakerFabsSoilV3(`{"foo":"bar"}`)
	assert.False(t, ok)

	_, ok = MatchMakerFabsSoilV3(`not json at all`)
	assert.False(t, ok)

	_, ok = MatchMakerFabsSoilV3(`{"message":"ID7 HELLO"}`)
	assert.False(t, ok)

	// the firmware typo is part of the grammar
	_, ok = MatchMakerFabsSoilV3(`{"message":"ID7 REPLY : SOIL INDEX:1 H:55.2 T:21.0 ADC:640 BAT:800"}`)
	assert.False(t, ok)
}

func TestMakerFabsSoilV3Decode(t *testing.T) {

	dev := NewMakerFabsSoilV3(v3Payload)
	assert.Equal(t, "MakerFabsSoilSensorV3_7", dev.FullId())
	assert.Equal(t, "7", dev.Id())

	measurements, err := dev.Decode(v3Payload)
	assert.NoError(t, err)
	assert.Len(t, measurements, 5)

	values := map[string]float64{}
	for _, m := range measurements {
		values[m.Key] = m.Value
	}
	assert.Equal(t, 55.2, values[CHANNEL_HUMIDITY])
	assert.Equal(t, 21.0, values[CHANNEL_TEMPERATURE])
	assert.Equal(t, 640.0, values[CHANNEL_ADC])
	assert.InDelta(t, 2.578125, values[CHANNEL_BATTERY], 1e-9)

	// adjusted = 640 - 43*2.578125 = 529.140625 => 100 - 29.140625/5
	assert.InDelta(t, 94.171875, values[CHANNEL_MOISTURE], 1e-9)

	// all five channels exist and carry the decoded values
	assert.Len(t, dev.Channels(), 5)
	battery, ok := dev.Channel(CHANNEL_BATTERY)
	assert.True(t, ok)
	assert.Equal(t, "V", battery.UnitOfMeasurement)
}

func TestMakerFabsSoilV3MoistureCalibration(t *testing.T) {

	payload := `{"message":"ID3 REPLY : SOIL INEDX:1 H:50 T:20 ADC:600 BAT:300"}`
	dev := NewMakerFabsSoilV3(payload)

	measurements, err := dev.Decode(payload)
	assert.NoError(t, err)

	values := map[string]float64{}
	for _, m := range measurements {
		values[m.Key] = m.Value
	}
	assert.InDelta(t, 0.966796875, values[CHANNEL_BATTERY], 1e-9)
	assert.InDelta(t, 88.314453125, values[CHANNEL_MOISTURE], 1e-9)
}

func TestMakerFabsSoilV3BatteryBounds(t *testing.T) {

	zero := `{"message":"ID1 REPLY : SOIL INEDX:1 H:50 T:20 ADC:600 BAT:0"}`
	dev := NewMakerFabsSoilV3(zero)
	measurements, err := dev.Decode(zero)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, measurementValue(t, measurements, CHANNEL_BATTERY))

	full := `{"message":"ID1 REPLY : SOIL INEDX:1 H:50 T:20 ADC:600 BAT:1024"}`
	measurements, err = dev.Decode(full)
	assert.NoError(t, err)
	assert.Equal(t, 3.3, measurementValue(t, measurements, CHANNEL_BATTERY))
}

func TestMakerFabsSoilV3MoistureFloor(t *testing.T) {

	// adjusted reading below the dry floor clamps to 100%
	payload := `{"message":"ID1 REPLY : SOIL INEDX:1 H:50 T:20 ADC:400 BAT:1024"}`
	dev := NewMakerFabsSoilV3(payload)
	measurements, err := dev.Decode(payload)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, measurementValue(t, measurements, CHANNEL_MOISTURE))
}

func TestMakerFabsSoilV3DecodeRepeatedIdempotentChannels(t *testing.T) {

	dev := NewMakerFabsSoilV3(v3Payload)

	_, err := dev.Decode(v3Payload)
	assert.NoError(t, err)
	first := dev.Channels()

	_, err = dev.Decode(v3Payload)
	assert.NoError(t, err)
	second := dev.Channels()

	assert.Len(t, second, 5)
	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}

func TestMakerFabsSoilV3ConstructorContract(t *testing.T) {

	assert.Panics(t, func() {
		NewMakerFabsSoilV3(`{"foo":"bar"}`)
	})
}

func TestMakerFabsSoilV3DecodeMalformed(t *testing.T) {

	dev := NewMakerFabsSoilV3(v3Payload)
	_, err := dev.Decode(`{"message":"ID7 garbage"}`)
	assert.Error(t, err)

	_, err = dev.Decode(`not an envelope`)
	assert.Error(t, err)

	// non-numeric humidity matches the envelope but fails the field parse
	_, err = dev.Decode(`{"message":"ID7 REPLY : SOIL INEDX:1 H:oops T:21.0 ADC:640 BAT:800"}`)
	assert.Error(t, err)
}

func measurementValue(t *testing.T, measurements []Measurement, key string) float64 {
	t.Helper()
	for _, m := range measurements {
		if m.Key == key {
			return m.Value
		}
	}
	t.Fatalf("no measurement for channel %q", key)
	return 0
}
