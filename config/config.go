package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Transdom TransdomConfig `yaml:"transdom"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type KafkaConfig struct {
	Host                 string `yaml:"host"`
	Port                 int    `yaml:"port"`
	OrderEventsTopicName string `yaml:"order_events_topic_name"`
}

type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	SenderName  string `yaml:"sender_name"`
	FrontendURL string `yaml:"frontend_url"`
}

type TransdomConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	APIKey             string `yaml:"api_key"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	OrderNoPrefix string `yaml:"order_no_prefix"`

	SessionTTLSeconds       int   `yaml:"session_ttl_seconds"`
	LoginRateLimitPerMinute int64 `yaml:"login_rate_limit_per_minute"`
	RatesCacheTTLSeconds    int   `yaml:"rates_cache_ttl_seconds"`

	// "bracket" or "percent". There is no default: the two formulas disagree,
	// so the operator has to pick one explicitly.
	InsurancePolicy      string `yaml:"insurance_policy"`
	InsuranceRatePercent string `yaml:"insurance_rate_percent"`
	InsuranceMinFee      string `yaml:"insurance_min_fee"`
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

	return &config, nil
}
