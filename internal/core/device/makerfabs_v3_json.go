package device

import (
	"encoding/json"
	"fmt"
)

const TYPE_MAKERFABS_SOIL_V3_JSON = "MakerFabsSoilSensorV3JSON"

// flexId accepts both "42" and 42: gateway firmwares differ on whether
// node_id is quoted.
type flexId string

func (f *flexId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexId(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexId(n.String())
	return nil
}

type soilV3JSONPayload struct {
	NodeId      flexId   `json:"node_id"`
	Humidity    *float64 `json:"hum"`
	Temperature *float64 `json:"temp"`
	Battery     *float64 `json:"bat"`
	ADC         *float64 `json:"adc"`
}

func parseSoilV3JSON(raw string) (*soilV3JSONPayload, bool) {
	message, ok := ParseEnvelope(raw)
	if !ok {
		return nil, false
	}
	var p soilV3JSONPayload
	if err := json.Unmarshal([]byte(message), &p); err != nil {
		return nil, false
	}
	if p.NodeId == "" || p.Humidity == nil || p.Temperature == nil || p.Battery == nil || p.ADC == nil {
		return nil, false
	}
	return &p, true
}

// MakerFabsSoilSensorV3JSON decodes the JSON firmware variant of the soil
// sensor. All fields come pre-computed from the node, so values pass through
// without calibration.
type MakerFabsSoilSensorV3JSON struct {
	channelSet
	id string
}

func MatchMakerFabsSoilV3JSON(raw string) (string, bool) {
	p, ok := parseSoilV3JSON(raw)
	if !ok {
		return "", false
	}
	return string(p.NodeId), true
}

func NewMakerFabsSoilV3JSON(raw string) Device {
	id, ok := MatchMakerFabsSoilV3JSON(raw)
	if !ok {
		panic(fmt.Sprintf("%s created from a payload that does not match: %q", TYPE_MAKERFABS_SOIL_V3_JSON, raw))
	}
	return &MakerFabsSoilSensorV3JSON{
		channelSet: newChannelSet(),
		id:         id,
	}
}

func (d *MakerFabsSoilSensorV3JSON) TypeName() string {
	return TYPE_MAKERFABS_SOIL_V3_JSON
}

func (d *MakerFabsSoilSensorV3JSON) Id() string {
	return d.id
}

func (d *MakerFabsSoilSensorV3JSON) FullId() string {
	return FullId(d.TypeName(), d.id)
}

func (d *MakerFabsSoilSensorV3JSON) Decode(raw string) ([]Measurement, error) {
	p, ok := parseSoilV3JSON(raw)
	if !ok {
		return nil, fmt.Errorf("%s: message does not match the JSON grammar", d.FullId())
	}

	d.ensure(ChannelMeta{
		Key:               CHANNEL_HUMIDITY,
		Name:              "Humidity",
		UnitOfMeasurement: "%",
		DeviceClass:       DEVICE_CLASS_HUMIDITY,
	})
	d.ensure(ChannelMeta{
		Key:               CHANNEL_TEMPERATURE,
		Name:              "Temperature",
		UnitOfMeasurement: "°C",
		DeviceClass:       DEVICE_CLASS_TEMPERATURE,
	})
	d.ensure(ChannelMeta{
		Key:               CHANNEL_BATTERY,
		Name:              "Battery Level",
		UnitOfMeasurement: "V",
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		DisplayPrecision:  displayPrecision(2),
	})
	d.ensure(ChannelMeta{
		Key:               CHANNEL_MOISTURE,
		Name:              "Moisture",
		UnitOfMeasurement: "%",
		DeviceClass:       DEVICE_CLASS_MOISTURE,
		DisplayPrecision:  displayPrecision(0),
	})

	return []Measurement{
		{Key: CHANNEL_HUMIDITY, Value: *p.Humidity},
		{Key: CHANNEL_TEMPERATURE, Value: *p.Temperature},
		{Key: CHANNEL_BATTERY, Value: *p.Battery},
		{Key: CHANNEL_MOISTURE, Value: *p.ADC},
	}, nil
}
