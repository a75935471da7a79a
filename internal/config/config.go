package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"scheduler:scheduler"`
		BasicClients       []ConfigBasicClient
	}

	Clinic struct {
		OpenTime               string `env:"CLINIC_OPEN_TIME" envDefault:"08:00"`
		CloseTime              string `env:"CLINIC_CLOSE_TIME" envDefault:"18:00"`
		CloseInclusive         bool   `env:"CLINIC_CLOSE_INCLUSIVE" envDefault:"true"`
		SlotGranularityMinutes int    `env:"CLINIC_SLOT_GRANULARITY_MINUTES" envDefault:"30"`
		MaxDaysInAdvance       int    `env:"CLINIC_MAX_DAYS_IN_ADVANCE" envDefault:"90"`
		MinHoursNotice         int    `env:"CLINIC_MIN_HOURS_NOTICE" envDefault:"24"`
	}

	Booking struct {
		LockTimeout time.Duration `env:"BOOKING_LOCK_TIMEOUT" envDefault:"3s"`
	}

	Storage struct {
		Driver      StorageDriver `env:"STORAGE_DRIVER" envDefault:"memory"`
		PostgresURL string        `env:"STORAGE_POSTGRES_URL"`
	}

	RabbitMq struct {
		Enabled          bool   `env:"RABBITMQ_ENABLED"`
		AmqpUri          string `env:"RABBITMQ_URL"`
		Exchange         string `env:"RABBITMQ_EXCHANGE" envDefault:"clinic.events"`
		RoutingKeyPrefix string `env:"RABBITMQ_ROUTING_KEY_PREFIX" envDefault:"clinic.scheduler"`
	}

	Cache struct {
		Enabled       bool `env:"CACHE_ENABLED" envDefault:"true"`
		CalendarsSize int  `env:"CACHE_CALENDARS_SIZE" envDefault:"1000"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Разделение клиентов basic-авторизации
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	// Валидация часов работы клиники
	open, err := cfg.OpenMinutes()
	if err != nil {
		return nil, err
	}
	close_, err := cfg.CloseMinutes()
	if err != nil {
		return nil, err
	}
	if close_ <= open {
		return nil, fmt.Errorf("clinic close time %q must be after open time %q", cfg.Clinic.CloseTime, cfg.Clinic.OpenTime)
	}

	if cfg.Storage.Driver != StorageDriverMemory && cfg.Storage.Driver != StorageDriverPostgres {
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	return cfg, nil
}

// OpenMinutes возвращает время открытия клиники в минутах от полуночи.
func (c *Config) OpenMinutes() (int, error) {
	return parseClockMinutes(c.Clinic.OpenTime)
}

// CloseMinutes возвращает время закрытия клиники в минутах от полуночи.
func (c *Config) CloseMinutes() (int, error) {
	return parseClockMinutes(c.Clinic.CloseTime)
}

func parseClockMinutes(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse clock time %q: %v", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
