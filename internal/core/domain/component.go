package domain

// Sensor model published through MQTT discovery.

const (
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_HUMIDITY        = "humidity"
	DEVICE_CLASS_TEMPERATURE     = "temperature"
	DEVICE_CLASS_VOLTAGE         = "voltage"
	DEVICE_CLASS_MOISTURE        = "moisture"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"
	SENSOR_TYPE_SENSOR           = "sensor"
	SENSOR_TYPE_BINARY           = "binary_sensor"
)

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device                    Device
	Id                        string
	SensorType                string
	Name                      string
	UniqueId                  string
	UnitOfMeasurement         string
	StateClass                string // measurement, total_increasing (for counters)
	DeviceClass               string // humidity, temperature, voltage, moisture
	EntityCategory            string // diagnostic or empty
	SuggestedDisplayPrecision *uint
	EnabledByDefault          *bool
	Icon                      string
}
