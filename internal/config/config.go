package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Retention RetentionConfig `mapstructure:"retention"`
	Alerts    AlertConfig     `mapstructure:"alerts"`
	Email     EmailConfig
	SMS       SMSConfig
	Token     TokenConfig
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type SchedulerConfig struct {
	ReminderInterval time.Duration `mapstructure:"reminder_interval"`
	HealthInterval   time.Duration `mapstructure:"health_interval"`
	MaintenanceHour  int           `mapstructure:"maintenance_hour"`
	TickLease        time.Duration `mapstructure:"tick_lease"`
}

type RetentionConfig struct {
	AppointmentDays int `mapstructure:"appointment_days"`
	DeliveryLogDays int `mapstructure:"delivery_log_days"`
}

type AlertConfig struct {
	EmailFailureThreshold int           `mapstructure:"email_failure_threshold"`
	CronMissedThreshold   time.Duration `mapstructure:"cron_missed_threshold"`
	LivenessInterval      time.Duration `mapstructure:"liveness_interval"`
}

// EmailConfig comes from the environment only; SMTP credentials never live in
// the config file.
type EmailConfig struct {
	Host      string  `envconfig:"EMAIL_HOST" default:"smtp.gmail.com"`
	Port      int     `envconfig:"EMAIL_PORT" default:"587"`
	User      string  `envconfig:"EMAIL_USER"`
	Password  string  `envconfig:"EMAIL_PASS"`
	FromName  string  `envconfig:"EMAIL_FROM_NAME" default:"MedVault Health"`
	RateLimit float64 `envconfig:"EMAIL_RATE_LIMIT" default:"5"`
	RateBurst int     `envconfig:"EMAIL_RATE_BURST" default:"10"`
}

func (c EmailConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

type SMSConfig struct {
	AccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	FromNumber string `envconfig:"TWILIO_PHONE_NUMBER"`
}

func (c SMSConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

type TokenConfig struct {
	UnsubscribeSecret string `envconfig:"UNSUBSCRIBE_SECRET" default:"change-me"`
	AdminEmails       string `envconfig:"ADMIN_EMAILS"`
}

// AdminEmailList splits the comma-separated operator address list.
func (c TokenConfig) AdminEmailList() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Email); err != nil {
		return nil, fmt.Errorf("failed to process email env config: %w", err)
	}
	if err := envconfig.Process("", &config.SMS); err != nil {
		return nil, fmt.Errorf("failed to process sms env config: %w", err)
	}
	if err := envconfig.Process("", &config.Token); err != nil {
		return nil, fmt.Errorf("failed to process token env config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("scheduler.reminder_interval", time.Hour)
	viper.SetDefault("scheduler.health_interval", 5*time.Minute)
	viper.SetDefault("scheduler.maintenance_hour", 3)
	viper.SetDefault("scheduler.tick_lease", 10*time.Minute)
	viper.SetDefault("retention.appointment_days", 7)
	viper.SetDefault("retention.delivery_log_days", 30)
	viper.SetDefault("alerts.email_failure_threshold", 5)
	viper.SetDefault("alerts.cron_missed_threshold", 2*time.Hour)
	viper.SetDefault("alerts.liveness_interval", 30*time.Minute)
}
