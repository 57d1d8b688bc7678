package events

import (
	"testing"

	"lorasoil2mqtt/internal/core/device"
	"lorasoil2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

const v3Payload = `{"message":"ID7 REPLY : SOIL INEDX:1 H:55.2 T:21.0 ADC:640 BAT:800"}`

func TestBridgeDeviceStableId(t *testing.T) {

	a := BridgeDevice("home/OMG_ESP32_LORA/LORAtoMQTT")
	b := BridgeDevice("home/OMG_ESP32_LORA/LORAtoMQTT")
	c := BridgeDevice("home/other/LORAtoMQTT")

	assert.Equal(t, a.Id, b.Id)
	assert.NotEqual(t, a.Id, c.Id)
}

func TestBridgeSensors(t *testing.T) {

	bridge := BridgeDevice("home/OMG_ESP32_LORA/LORAtoMQTT")
	sensors := BridgeSensors(bridge)

	assert.Len(t, sensors, 3)
	assert.Equal(t, SENSOR_ID_BRIDGE_STATE, sensors[0].Id)
	assert.Equal(t, domain.SENSOR_TYPE_BINARY, sensors[0].SensorType)
	assert.Equal(t, SENSOR_ID_LAST_MESSAGE, sensors[1].Id)
	assert.Equal(t, SENSOR_ID_MESSAGES_RECEIVED, sensors[2].Id)
	assert.Equal(t, domain.STATE_CLASS_TOTAL_INCREASING, sensors[2].StateClass)
}

func TestMeasurementToUpdateEvent(t *testing.T) {

	dev := device.NewMakerFabsSoilV3(v3Payload)
	_, err := dev.Decode(v3Payload)
	assert.NoError(t, err)

	battery, ok := dev.Channel(device.CHANNEL_BATTERY)
	assert.True(t, ok)

	event := MeasurementToUpdateEvent(dev, battery, 2.578125)
	assert.Equal(t, "makerfabssoilsensorv3_7_battery", event.Id)
	assert.Equal(t, 2.578125, event.Value)
	assert.Equal(t, uint(2), event.Decimals)

	// channels without a display precision default to two decimals
	humidity, ok := dev.Channel(device.CHANNEL_HUMIDITY)
	assert.True(t, ok)
	event = MeasurementToUpdateEvent(dev, humidity, 55.2)
	assert.Equal(t, uint(2), event.Decimals)
}
