// Package config loads runtime settings from an optional config.yaml with
// CHATBFF_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	DebugRoutes bool   `mapstructure:"debug_routes"`
}

type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type GatewayConfig struct {
	URL string `mapstructure:"url"`
}

type SessionConfig struct {
	CookieTTL time.Duration `mapstructure:"cookie_ttl"`
}

type AMQPConfig struct {
	URL             string `mapstructure:"url"`
	Exchange        string `mapstructure:"exchange"`
	AuditRoutingKey string `mapstructure:"audit_routing_key"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Session   SessionConfig   `mapstructure:"session"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Load reads configuration from the given file path. An empty path falls
// back to config.yaml in the working directory; a missing file is fine,
// defaults and environment variables still apply (e.g. CHATBFF_SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.debug_routes", false)
	v.SetDefault("upstream.base_url", "http://localhost:8080")
	v.SetDefault("gateway.url", "ws://localhost:8080/ws")
	v.SetDefault("session.cookie_ttl", time.Hour)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "chat_bff_events")
	v.SetDefault("amqp.audit_routing_key", "audit.chat_bff")
	v.SetDefault("telemetry.otlp_endpoint", "")

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CHATBFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
