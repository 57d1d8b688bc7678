package mqtt

import (
	"fmt"

	"lorasoil2mqtt/internal/core/domain"
	"lorasoil2mqtt/internal/core/events"
)

type HADiscoveryConfig struct {
	Device                    HADiscoveryDevice `json:"device"`
	StateTopic                string            `json:"state_topic"`
	StateClass                string            `json:"state_class,omitempty"`
	DeviceClass               string            `json:"device_class,omitempty"`
	UnitOfMeasurement         string            `json:"unit_of_measurement,omitempty"`
	AvTopic                   string            `json:"availability_topic,omitempty"`
	EntityCategory            string            `json:"entity_category,omitempty"`
	Name                      string            `json:"name"`
	UniqueId                  string            `json:"unique_id"`
	Platform                  string            `json:"platform"`
	EnabledByDefault          *bool             `json:"enabled_by_default,omitempty"`
	SuggestedDisplayPrecision *uint             `json:"suggested_display_precision,omitempty"`
	PayloadOn                 string            `json:"payload_on,omitempty"`
	PayloadOff                string            `json:"payload_off,omitempty"`
	Icon                      string            `json:"icon,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

func HADiscoverySensorTopic(haTopic string, sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", haTopic, sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := toHADiscoveryDevice(sensor.Device)
	var topic string
	switch {
	case sensor.Id == events.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.SensorType == domain.SENSOR_TYPE_SENSOR:
		topic = client.SensorStateTopic(sensor.Id)
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:                    dev,
		StateTopic:                topic,
		StateClass:                sensor.StateClass,
		DeviceClass:               sensor.DeviceClass,
		UnitOfMeasurement:         sensor.UnitOfMeasurement,
		AvTopic:                   client.BridgeStateTopic(),
		EntityCategory:            sensor.EntityCategory,
		Name:                      sensor.Name,
		UniqueId:                  sensor.UniqueId,
		Icon:                      sensor.Icon,
		EnabledByDefault:          sensor.EnabledByDefault,
		SuggestedDisplayPrecision: sensor.SuggestedDisplayPrecision,
		Platform:                  "mqtt",
	}
	if sensor.Id == events.SENSOR_ID_BRIDGE_STATE {
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	} else if sensor.SensorType == domain.SENSOR_TYPE_BINARY {
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func toHADiscoveryDevice(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
