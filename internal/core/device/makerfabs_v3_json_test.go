package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const v3JSONPayload = `{"message":"{\"node_id\":\"42\",\"hum\":50,\"temp\":20,\"bat\":3.1,\"adc\":10}"}`

func TestMatchMakerFabsSoilV3JSON(t *testing.T) {

	id, ok := MatchMakerFabsSoilV3JSON(v3JSONPayload)
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	// unquoted node_id is produced by some gateway firmwares
	id, ok = MatchMakerFabsSoilV3JSON(`{"message":"{\"node_id\":42,\"hum\":50,\"temp\":20,\"bat\":3.1,\"adc\":10}"}`)
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = MatchMakerFabsSoilV3JSON(`{"foo":"bar"}`)
	assert.False(t, ok)

	// a missing field is a non-match, not an error
	_, ok = MatchMakerFabsSoilV3JSON(`{"message":"{\"node_id\":\"42\",\"hum\":50,\"temp\":20,\"bat\":3.1}"}`)
	assert.False(t, ok)

	// the plain-text format must not be claimed by the JSON decoder
	_, ok = MatchMakerFabsSoilV3JSON(v3Payload)
	assert.False(t, ok)
}

func TestMakerFabsSoilV3JSONDecode(t *testing.T) {

	dev := NewMakerFabsSoilV3JSON(v3JSONPayload)
	assert.Equal(t, "MakerFabsSoilSensorV3JSON_42", dev.FullId())

	measurements, err := dev.Decode(v3JSONPayload)
	assert.NoError(t, err)
	assert.Len(t, measurements, 4)

	values := map[string]float64{}
	for _, m := range measurements {
		values[m.Key] = m.Value
	}
	// raw passthrough, no calibration
	assert.Equal(t, 50.0, values[CHANNEL_HUMIDITY])
	assert.Equal(t, 20.0, values[CHANNEL_TEMPERATURE])
	assert.Equal(t, 3.1, values[CHANNEL_BATTERY])
	assert.Equal(t, 10.0, values[CHANNEL_MOISTURE])

	assert.Len(t, dev.Channels(), 4)
	_, ok := dev.Channel(CHANNEL_ADC)
	assert.False(t, ok)
}

func TestMakerFabsSoilV3JSONConstructorContract(t *testing.T) {

	assert.Panics(t, func() {
		NewMakerFabsSoilV3JSON(`{"message":"hello"}`)
	})
}
