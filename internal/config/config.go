package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Port     uint           `mapstructure:"port"`
	HttpLog  bool           `mapstructure:"http_log"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

// GatewayConfig identifies the OpenMQTTGateway topic this bridge listens on,
// e.g. "home/OMG_ESP32_LORA/LORAtoMQTT".
type GatewayConfig struct {
	Topic string `mapstructure:"topic"`
}

type SnapshotConfig struct {
	Path                string `mapstructure:"path"`
	FlushIntervalMillis uint32 `mapstructure:"flush_interval_millis"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// CheckGatewayTopic validates the subscribed topic. A concrete topic path is
// expected; subscription wildcards would make the per-topic snapshot key
// ambiguous.
func CheckGatewayTopic(topic string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(topic), "/")
	if trimmed == "" {
		return "", errors.New("gateway topic is required")
	}
	if strings.ContainsAny(trimmed, "+#") {
		return "", errors.New("gateway topic cannot contain wildcards")
	}
	return trimmed, nil
}
