package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	TrainBox TrainBoxConfig `yaml:"trainbox"`
}

type UpstreamConfig struct {
	BaseURL            string `yaml:"base_url" validate:"omitempty,url"`
	Mode               string `yaml:"mode" validate:"omitempty,oneof=viaggiatreno fake"`
	TimeoutSeconds     int    `yaml:"timeout_seconds" validate:"gte=0"`
	RetryAttempts      int    `yaml:"retry_attempts" validate:"gte=0,lte=3"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" validate:"gte=0"`
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port" validate:"gte=0"`
	TrainResolvedTopicName string `yaml:"train_resolved_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=0"`
}

type TrainBoxConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// IANA name, e.g. "Europe/Rome". Empty keeps the process local zone.
	Timezone string `yaml:"timezone"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
