package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger   `mapstructure:"logger"`
	DB       Database `mapstructure:"database"`
	API      API      `mapstructure:"api"`
	Mail     Mail     `mapstructure:"mail"`
	Cache    Cache    `mapstructure:"cache"`
	Dispatch Dispatch `mapstructure:"dispatch"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Path     string `mapstructure:"path"`
	LogLevel string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

// Mail selects the active SMTP transport. Gmail app-password credentials win
// over a SendGrid API key when both are set.
type Mail struct {
	GmailUser        string `mapstructure:"gmail_user"`
	GmailAppPassword string `mapstructure:"gmail_app_password"`
	SendgridAPIKey   string `mapstructure:"sendgrid_api_key"`
	From             string `mapstructure:"from"`
	MaxSendPerSecond int    `mapstructure:"max_send_per_second"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Dispatch struct {
	// CronSpec drives the in-process trigger in serve mode. The matcher only
	// has top-of-hour granularity, so anything finer is wasted work.
	CronSpec      string `mapstructure:"cron_spec"`
	MaxPeriodDays int    `mapstructure:"max_period_days"`
}

func Load() (*Config, error) {
	// .env is optional, used for local development only.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("database.path", "data/gercomercial.db")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("mail.from", "sistema@germani.com")
	viper.SetDefault("mail.max_send_per_second", 2)
	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("dispatch.cron_spec", "0 * * * *")
	viper.SetDefault("dispatch.max_period_days", 100)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
