package device

import (
	"fmt"
	"regexp"
	"strconv"
)

const TYPE_MAKERFABS_SOIL_V3 = "MakerFabsSoilSensorV3"

const (
	CHANNEL_HUMIDITY    = "humidity"
	CHANNEL_TEMPERATURE = "temperature"
	CHANNEL_ADC         = "adc"
	CHANNEL_BATTERY     = "battery"
	CHANNEL_MOISTURE    = "moisture"
)

// The reply line as the V3 firmware prints it, typo included.
var soilV3Matcher = regexp.MustCompile(`ID(\d+) REPLY : SOIL INEDX:(\d+) H:(.+) T:(.+) ADC:(\d+) BAT:(\d+)`)

const (
	batteryFullScaleVolts = 3.3
	batteryADCSteps       = 1024
)

// SoilV3Calibration holds the battery compensation applied to the raw soil
// ADC reading before it is mapped to a moisture percentage.
type SoilV3Calibration struct {
	// BatteryAdjust scales how much battery voltage is subtracted from the
	// raw reading. Observed firmware disagrees on 45*2.0 vs 45-2.0; this
	// build uses 45-2.0.
	BatteryAdjust float64
	// ADCDry is the reading floor corresponding to 100% moisture.
	ADCDry float64
	// ADCPerPercent is the reading delta per moisture percentage point.
	ADCPerPercent float64
}

func DefaultSoilV3Calibration() SoilV3Calibration {
	return SoilV3Calibration{
		BatteryAdjust: 45 - 2.0,
		ADCDry:        500,
		ADCPerPercent: 5,
	}
}

// MakerFabsSoilSensorV3 decodes the plain-text reply line of the MakerFabs
// LoRa soil sensor V3.
type MakerFabsSoilSensorV3 struct {
	channelSet
	id  string
	cal SoilV3Calibration
}

// MatchMakerFabsSoilV3 reports the device identifier if the payload is a V3
// reply line inside an OpenMQTTGateway envelope.
func MatchMakerFabsSoilV3(raw string) (string, bool) {
	message, ok := ParseEnvelope(raw)
	if !ok {
		return "", false
	}
	m := soilV3Matcher.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func NewMakerFabsSoilV3(raw string) Device {
	id, ok := MatchMakerFabsSoilV3(raw)
	if !ok {
		panic(fmt.Sprintf("%s created from a payload that does not match: %q", TYPE_MAKERFABS_SOIL_V3, raw))
	}
	return &MakerFabsSoilSensorV3{
		channelSet: newChannelSet(),
		id:         id,
		cal:        DefaultSoilV3Calibration(),
	}
}

func (d *MakerFabsSoilSensorV3) TypeName() string {
	return TYPE_MAKERFABS_SOIL_V3
}

func (d *MakerFabsSoilSensorV3) Id() string {
	return d.id
}

func (d *MakerFabsSoilSensorV3) FullId() string {
	return FullId(d.TypeName(), d.id)
}

func (d *MakerFabsSoilSensorV3) Decode(raw string) ([]Measurement, error) {
	message, ok := ParseEnvelope(raw)
	if !ok {
		return nil, fmt.Errorf("%s: payload is not an envelope", d.FullId())
	}
	m := soilV3Matcher.FindStringSubmatch(message)
	if m == nil {
		return nil, fmt.Errorf("%s: message does not match the reply grammar", d.FullId())
	}

	humidity, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return nil, fmt.Errorf("%s: humidity field: %w", d.FullId(), err)
	}
	temperature, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return nil, fmt.Errorf("%s: temperature field: %w", d.FullId(), err)
	}
	adc, err := strconv.ParseFloat(m[5], 64)
	if err != nil {
		return nil, fmt.Errorf("%s: adc field: %w", d.FullId(), err)
	}
	batteryRaw, err := strconv.ParseFloat(m[6], 64)
	if err != nil {
		return nil, fmt.Errorf("%s: battery field: %w", d.FullId(), err)
	}

	battery := batteryRaw * batteryFullScaleVolts / batteryADCSteps
	adjusted := adc - d.cal.BatteryAdjust*battery
	if adjusted < d.cal.ADCDry {
		adjusted = d.cal.ADCDry
	}
	moisture := 100 - (adjusted-d.cal.ADCDry)/d.cal.ADCPerPercent

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
		Key:            CHANNEL_ADC,
		Name:           "ADC",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
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
		{Key: CHANNEL_HUMIDITY, Value: humidity},
		{Key: CHANNEL_TEMPERATURE, Value: temperature},
		{Key: CHANNEL_ADC, Value: adc},
		{Key: CHANNEL_BATTERY, Value: battery},
		{Key: CHANNEL_MOISTURE, Value: moisture},
	}, nil
}
