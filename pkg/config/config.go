package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

type TierConfig struct {
	ID              string  `mapstructure:"ID"`
	Name            string  `mapstructure:"NAME"`
	MinPoints       int64   `mapstructure:"MIN_POINTS"`
	PointMultiplier float64 `mapstructure:"POINT_MULTIPLIER"`
}

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Otel     struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"`
	} `mapstructure:"OTEL"`
	Storage struct {
		Backend   string `mapstructure:"BACKEND"`
		Namespace string `mapstructure:"NAMESPACE"`
	} `mapstructure:"STORAGE"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		ConnectionPool struct {
			MaxIdleConns    int           `mapstructure:"MAX_IDLE_CONNS"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Snowflake struct {
		Node int64 `mapstructure:"NODE"`
	} `mapstructure:"SNOWFLAKE"`
	Tiers []TierConfig `mapstructure:"TIERS"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

// DefaultTiers mirrors the program's published tier table.
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{ID: "bronze", Name: "Bronze", MinPoints: 0},
		{ID: "silver", Name: "Silver", MinPoints: 500, PointMultiplier: 1.1},
		{ID: "gold", Name: "Gold", MinPoints: 1500, PointMultiplier: 1.25},
		{ID: "platinum", Name: "Platinum", MinPoints: 5000, PointMultiplier: 1.5},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "loyalty")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL.PROTOCOL", "grpc")
	v.SetDefault("STORAGE.BACKEND", BackendDatabase)
	v.SetDefault("STORAGE.NAMESPACE", "loyalty")
	v.SetDefault("DATABASE.TYPE", "sqlite")
	v.SetDefault("DATABASE.DBNAME", "loyalty.db")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("DATABASE.TIMEZONE", "UTC")
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("REDIS.ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS.POOL_SIZE", 10)
	v.SetDefault("REDIS.POOL_TIMEOUT", 5*time.Second)
	v.SetDefault("SNOWFLAKE.NODE", 1)
}

// LoadConfig reads config.yaml from the working directory (or the file named
// by CONFIG_PATH) and applies environment overrides. A missing file is not an
// error; defaults and the environment still apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path, ok := os.LookupEnv("CONFIG_PATH"); ok && path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.Tiers) == 0 {
		cfg.Tiers = DefaultTiers()
	}

	switch cfg.Storage.Backend {
	case BackendMemory, BackendDatabase, BackendRedis:
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}

	return &cfg, nil
}
