package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"lorasoil2mqtt/internal/core/device"
	"lorasoil2mqtt/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE      = "bridge"
	SENSOR_ID_LAST_MESSAGE      = "last_message"
	SENSOR_ID_MESSAGES_RECEIVED = "messages_received"
)

// BridgeDevice is the Home Assistant device representing this bridge
// instance, one per subscribed gateway topic.
func BridgeDevice(gatewayTopic string) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("lorasoil_bridge_%s", md5HashShort(gatewayTopic)),
		Manufacturer: "lorasoil2mqtt",
		Model:        "Lorasoil",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Lorasoil %s", md5HashShort(gatewayTopic)),
	}
}

func BridgeSensors(bridgeDevice domain.Device) []domain.GenericSensor {

	var sensors []domain.GenericSensor

	// Connection state
	sensors = append(sensors, domain.GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     domain.SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    domain.DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: domain.ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	// Last raw gateway message
	sensors = append(sensors, domain.GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_LAST_MESSAGE,
		SensorType:     domain.SENSOR_TYPE_SENSOR,
		Name:           "Last message",
		EntityCategory: domain.ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_LAST_MESSAGE),
	})

	// Live message counter. Not incremented during snapshot replay.
	sensors = append(sensors, domain.GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_MESSAGES_RECEIVED,
		SensorType:     domain.SENSOR_TYPE_SENSOR,
		Name:           "Messages received",
		StateClass:     domain.STATE_CLASS_TOTAL_INCREASING,
		EntityCategory: domain.ENTITY_CLASS_DIAGNOSTIC,
		Icon:           "mdi:counter",
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_MESSAGES_RECEIVED),
	})

	return sensors
}

// SensorDevice is the Home Assistant device block for one discovered soil
// sensor, linked to the bridge via_device.
func SensorDevice(dev device.Device, bridgeDevice domain.Device) domain.Device {
	return domain.Device{
		Id:           strings.ToLower(dev.FullId()),
		Manufacturer: "MakerFabs",
		Model:        dev.TypeName(),
		Name:         fmt.Sprintf("Soil Sensor %s", dev.Id()),
		ViaDevice:    bridgeDevice.Id,
	}
}

// SensorId is the state-topic identifier for one device channel.
func SensorId(dev device.Device, channelKey string) string {
	return strings.ToLower(fmt.Sprintf("%s_%s", dev.FullId(), channelKey))
}

func ChannelToGenericSensor(bridgeDevice domain.Device, dev device.Device, ch *device.Channel) domain.GenericSensor {
	return domain.GenericSensor{
		Device:                    SensorDevice(dev, bridgeDevice),
		Id:                        SensorId(dev, ch.Key),
		SensorType:                domain.SENSOR_TYPE_SENSOR,
		Name:                      ch.Name,
		StateClass:                domain.STATE_CLASS_MEASUREMENT,
		DeviceClass:               ch.DeviceClass,
		UnitOfMeasurement:         ch.UnitOfMeasurement,
		EntityCategory:            ch.EntityCategory,
		SuggestedDisplayPrecision: ch.DisplayPrecision,
		UniqueId:                  uniqueId(strings.ToLower(dev.FullId()), ch.Key),
	}
}

func MeasurementToUpdateEvent(dev device.Device, ch *device.Channel, value float64) domain.FloatSensorUpdateEvent {
	decimals := uint(2)
	if ch.DisplayPrecision != nil {
		decimals = *ch.DisplayPrecision
	}
	return domain.FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: SensorId(dev, ch.Key),
		},
		Value:    value,
		Decimals: decimals,
	}
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	return md5Hash(text)[0:8]
}
