package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting the application needs. Values are read
// from a .env file when present and overridden by environment variables.
type Config struct {
	Environment      string `mapstructure:"ENVIRONMENT"`
	ServerPort       string `mapstructure:"SERVER_PORT"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	ClientOrigin     string `mapstructure:"CLIENT_ORIGIN"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	StripeSecretKey  string `mapstructure:"STRIPE_SECRET_KEY"`
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic  string `mapstructure:"KAFKA_ORDER_TOPIC"`
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
	AWSRegion        string `mapstructure:"AWS_REGION"`
	EmailSender      string `mapstructure:"EMAIL_SENDER"`
}

// LoadConfig reads configuration from the given directory.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "order-events")

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env file is fine; everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in production mode. Error
// responses only include diagnostic detail outside production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// BrokerList splits the comma-separated Kafka broker setting.
func (c *Config) BrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
