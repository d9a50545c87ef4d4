package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	TelegramToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramDebug   bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`
	BaseAdminChatID int64  `env:"BASE_ADMIN_CHAT_ID"`
	ManagerChatID   int64  `env:"MANAGER_CHAT_ID"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"hotel.db"`

	HotelTimezone    string        `env:"HOTEL_TIMEZONE" envDefault:"Local"`
	DefaultHotelID   uint          `env:"DEFAULT_HOTEL_ID" envDefault:"1"`
	HolidaysFile     string        `env:"HOLIDAYS_FILE"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"10s"`

	Server struct {
		Port            string        `env:"PORT" envDefault:"3000"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	} `envPrefix:"SERVER_"`

	JWT struct {
		Secret string `env:"SECRET"`
	} `envPrefix:"JWT_"`

	RabbitMQ struct {
		DSN            string        `env:"DSN"`
		Queue          string        `env:"QUEUE" envDefault:"schedule_events"`
		PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"10s"`
	} `envPrefix:"RABBITMQ_"`

	Redis struct {
		Addr     string `env:"ADDR"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	} `envPrefix:"REDIS_"`
	SelectionTTL time.Duration `env:"SELECTION_TTL" envDefault:"15m"`

	SMTP struct {
		Host        string        `env:"HOST"`
		Port        int           `env:"PORT" envDefault:"465"`
		Username    string        `env:"USERNAME"`
		Password    string        `env:"PASSWORD"`
		From        string        `env:"FROM"`
		DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"10s"`
	} `envPrefix:"SMTP_"`
	ManagerEmail string `env:"MANAGER_EMAIL"`
}

var instance *Config
var once sync.Once

// GetConfig loads the configuration once per process and exits on failure.
func GetConfig() *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads .env (if present) and binds the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location is the hotel's time zone; every calendar date is read in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.HotelTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid HOTEL_TIMEZONE %q: %w", c.HotelTimezone, err)
	}
	return loc, nil
}

// RequireBot checks the settings the Telegram bot cannot start without.
func (c *Config) RequireBot() error {
	if c.TelegramToken == "" {
		return errors.New("could not get bot token: TELEGRAM_BOT_TOKEN is empty")
	}
	if c.BaseAdminChatID == 0 {
		return errors.New("could not get admin chat id: BASE_ADMIN_CHAT_ID is empty")
	}
	return nil
}

func (c *Config) RequireAPI() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required for the HTTP API")
	}
	return nil
}

func (c *Config) RequireNotifier() error {
	switch {
	case c.RabbitMQ.DSN == "":
		return errors.New("RABBITMQ_DSN is required for the notifier")
	case c.SMTP.Host == "":
		return errors.New("SMTP_HOST is required for the notifier")
	case c.ManagerEmail == "":
		return errors.New("MANAGER_EMAIL is required for the notifier")
	}
	return nil
}
