package util

import (
	"lorasoil2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "lorasoil",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		Gateway: config.GatewayConfig{
			Topic: "home/OMG_ESP32_LORA/LORAtoMQTT",
		},
		Snapshot: config.SnapshotConfig{
			Path:                ":memory:",
			FlushIntervalMillis: 1000,
		},
		Port: 8080,
	}
}
