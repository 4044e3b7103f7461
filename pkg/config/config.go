package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	RoundingHalfUp   = "half_up"
	RoundingHalfEven = "half_even"
)

type Config struct {
	App      App      `mapstructure:",squash"`
	Costing  Costing  `mapstructure:",squash"`
	Sales    Sales    `mapstructure:",squash"`
	Database Database `mapstructure:",squash"`
	Metrics  Metrics  `mapstructure:",squash"`
}

type App struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type Costing struct {
	// FallbackCostRatio estimates a product cost as a share of its sales when no BOM cost is known
	FallbackCostRatio decimal.Decimal `mapstructure:"costing_fallback_cost_ratio"`
}

type Sales struct {
	AmountPlaces    int32           `mapstructure:"sales_amount_places"`
	RoundingMode    string          `mapstructure:"sales_rounding_mode"`
	AmountTolerance decimal.Decimal `mapstructure:"sales_amount_tolerance"`
	DefaultCurrency string          `mapstructure:"sales_default_currency"`
	ChunkSize       int             `mapstructure:"sales_chunk_size"`
	Workers         int             `mapstructure:"sales_workers"`
}

type Database struct {
	DSN string `mapstructure:"database_dsn"`
}

type Metrics struct {
	Prefix string `mapstructure:"metrics_prefix"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("COSTING_FALLBACK_COST_RATIO", "0.65")

	v.SetDefault("SALES_AMOUNT_PLACES", 2)
	v.SetDefault("SALES_ROUNDING_MODE", RoundingHalfUp)
	v.SetDefault("SALES_AMOUNT_TOLERANCE", "0.01")
	v.SetDefault("SALES_DEFAULT_CURRENCY", "USD")
	v.SetDefault("SALES_CHUNK_SIZE", 500)
	v.SetDefault("SALES_WORKERS", 4)

	// empty DSN keeps the CLI in CSV mode
	v.SetDefault("DATABASE_DSN", "")

	v.SetDefault("METRICS_PREFIX", "bomcost")
}

// NewConfig loads configuration from defaults, an optional .env file and the environment
func NewConfig() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	SetDefaults(v)

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logrus.Debug("no .env read by viper, using environment: ", err)
	}

	config := &Config{}
	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			stringToDecimalHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges that the decoder cannot enforce
func (c *Config) Validate() error {
	c.Sales.RoundingMode = strings.ToLower(strings.TrimSpace(c.Sales.RoundingMode))
	switch c.Sales.RoundingMode {
	case RoundingHalfUp, RoundingHalfEven:
	default:
		return fmt.Errorf("invalid rounding mode: %s (expected: %s, %s)", c.Sales.RoundingMode, RoundingHalfUp, RoundingHalfEven)
	}
	if c.Sales.AmountPlaces < 0 {
		return fmt.Errorf("sales amount places cannot be negative, got %d", c.Sales.AmountPlaces)
	}
	if c.Sales.AmountTolerance.IsNegative() {
		return fmt.Errorf("sales amount tolerance cannot be negative, got %s", c.Sales.AmountTolerance)
	}
	if c.Costing.FallbackCostRatio.IsNegative() || c.Costing.FallbackCostRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("fallback cost ratio must be between 0 and 1, got %s", c.Costing.FallbackCostRatio)
	}
	if c.Sales.ChunkSize <= 0 {
		return fmt.Errorf("sales chunk size must be positive, got %d", c.Sales.ChunkSize)
	}
	if c.Sales.Workers <= 0 {
		c.Sales.Workers = 1
	}
	c.Sales.DefaultCurrency = strings.ToUpper(c.Sales.DefaultCurrency)
	return nil
}

func stringToDecimalHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch value := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(value))
		case float64:
			return decimal.NewFromFloat(value), nil
		case int:
			return decimal.NewFromInt(int64(value)), nil
		default:
			return data, nil
		}
	}
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("could not resolve working directory: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug(".env loaded from ", location)
			return
		}
	}
}
