package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/LWENA27/sms-getway/pkg/database"
	"github.com/LWENA27/sms-getway/pkg/modem"
	"github.com/LWENA27/sms-getway/pkg/procedure"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "SMSGW"

type Config struct {
	API       API              `mapstructure:"api"`
	Ops       Ops              `mapstructure:"ops"`
	Procedure procedure.Config `mapstructure:"procedure"`
	Database  database.Config  `mapstructure:"database"`
	Bridge    Bridge           `mapstructure:"bridge"`
	Modem     modem.Config     `mapstructure:"modem"`
	Log       Log              `mapstructure:"log"`
}

type API struct {
	Port     string `mapstructure:"port" validate:"required"`
	BasePath string `mapstructure:"base_path" validate:"omitempty,startswith=/"`
}

type Ops struct {
	Port string `mapstructure:"port" validate:"required"`
}

type Bridge struct {
	Address    string `mapstructure:"address" validate:"required,hostname_port"`
	OpsAddress string `mapstructure:"ops_address" validate:"omitempty,hostname_port"`
}

type Log struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]any{
	"api.port":                   ":8080",
	"api.base_path":              "/sms-api",
	"ops.port":                   ":9090",
	"procedure.driver":           procedure.DriverPostgREST,
	"procedure.url":              "",
	"procedure.service_key":      "",
	"procedure.timeout":          10 * time.Second,
	"procedure.targets":          []string{"sms_gateway", ""},
	"database.driver":            database.DriverPostgres,
	"database.host":              "",
	"database.port":              "5432",
	"database.user":              "",
	"database.password":          "",
	"database.name":              "postgres",
	"database.ssl_mode":          "require",
	"database.max_open_conns":    10,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": 30 * time.Minute,
	"database.slow_threshold":    time.Second,
	"bridge.address":             "127.0.0.1:8765",
	"bridge.ops_address":         "127.0.0.1:9091",
	"modem.device":               "/dev/ttyUSB0",
	"modem.baud_rate":            115200,
	"modem.timeout":              30 * time.Second,
	"log.level":                  "info",
	"log.development":            false,
}

// Load reads config.yml from ./config, or the file named by CONFIG_PATH, and
// applies SMSGW_* environment overrides (SMSGW_PROCEDURE_SERVICE_KEY, ...).
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// LoadAPI loads and validates what the relay API needs.
func LoadAPI() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAPI(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBridge loads and validates what the SMS bridge needs.
func LoadBridge() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateBridge(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ValidateAPI() error {
	validate := validator.New()
	if err := validate.Struct(c.API); err != nil {
		return fmt.Errorf("invalid api config: %w", err)
	}
	if err := validate.Struct(c.Ops); err != nil {
		return fmt.Errorf("invalid ops config: %w", err)
	}
	if err := validate.Struct(c.Log); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}

	if len(c.Procedure.Targets) == 0 {
		return errors.New("invalid procedure config: at least one target is required")
	}

	switch c.Procedure.Driver {
	case procedure.DriverPostgREST:
		if c.Procedure.URL == "" {
			return errors.New("invalid procedure config: url is required for the postgrest driver")
		}
		if c.Procedure.ServiceKey == "" {
			return errors.New("invalid procedure config: service_key is required for the postgrest driver")
		}
	case procedure.DriverSQL:
		if c.Database.Host == "" {
			return errors.New("invalid database config: host is required for the sql driver")
		}
		if _, err := database.Dialector(c.Database); err != nil {
			return fmt.Errorf("invalid database config: %w", err)
		}
	default:
		return fmt.Errorf("invalid procedure config: unknown driver %q", c.Procedure.Driver)
	}

	return nil
}

func (c *Config) ValidateBridge() error {
	validate := validator.New()
	if err := validate.Struct(c.Bridge); err != nil {
		return fmt.Errorf("invalid bridge config: %w", err)
	}
	if err := validate.Struct(c.Log); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}

	if !isLoopback(c.Bridge.Address) {
		return fmt.Errorf("invalid bridge config: address %q is not a loopback address", c.Bridge.Address)
	}
	if c.Bridge.OpsAddress != "" && !isLoopback(c.Bridge.OpsAddress) {
		return fmt.Errorf("invalid bridge config: ops address %q is not a loopback address", c.Bridge.OpsAddress)
	}

	if c.Modem.Device == "" {
		return errors.New("invalid modem config: device is required")
	}

	return nil
}

func isLoopback(address string) bool {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
