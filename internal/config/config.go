package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var cfg *Config
var loadErr error
var once sync.Once

// Config is the static process-wide configuration. Values are loaded once
// at startup; a missing required value is a fatal error, never a runtime
// condition.
type Config struct {
	Server
	PostgreSQL
	Telegram
	Pricing
}

// Server is the configuration for the ops HTTP surface.
type Server struct {
	Port string `env:"OPS_PORT" envDefault:"8080"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

// PostgreSQL is the configuration for the database.
type PostgreSQL struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	Database        string `env:"DB_DATABASE" envDefault:"remit_bot"`
	Username        string `env:"DB_USERNAME" envDefault:"remit_bot"`
	Password        string `env:"DB_PASSWORD" envDefault:"remit_bot"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts string `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
	MigrationsPath  string `env:"DB_MIGRATIONS_PATH" envDefault:"migrations"`
}

// DSN returns the DSN for the database.
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// Telegram is the transport credential plus the authorized operator set.
type Telegram struct {
	Token       string `env:"BOT_TOKEN" required:"true"`
	OperatorIDs string `env:"OPERATOR_IDS" required:"true"`
}

// Operators parses the comma-separated operator identity list.
func (t Telegram) Operators() ([]int64, error) {
	parts := strings.Split(t.OperatorIDs, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPERATOR_IDS entry %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("OPERATOR_IDS contains no operator ids")
	}
	return ids, nil
}

// Pricing holds the static quote constants and the advertised day rates.
// All are fixed configuration, never derived at runtime.
type Pricing struct {
	ExchangeRate     string `env:"EXCHANGE_RATE" envDefault:"132000"`
	FeeThreshold     string `env:"FEE_THRESHOLD" envDefault:"500"`
	FeeAmount        string `env:"FEE_AMOUNT" envDefault:"10"`
	CashBuyRate      string `env:"RATE_CASH_BUY" envDefault:"130000"`
	CashSellRate     string `env:"RATE_CASH_SELL" envDefault:"135000"`
	TransferBuyRate  string `env:"RATE_TRANSFER_BUY" envDefault:"132000"`
	TransferSellRate string `env:"RATE_TRANSFER_SELL" envDefault:"137000"`
}

func (p Pricing) Rate() (decimal.Decimal, error) {
	return decimal.NewFromString(p.ExchangeRate)
}

func (p Pricing) Threshold() (decimal.Decimal, error) {
	return decimal.NewFromString(p.FeeThreshold)
}

func (p Pricing) Surcharge() (decimal.Decimal, error) {
	return decimal.NewFromString(p.FeeAmount)
}

// Load loads the configuration from config.env and the environment. The
// error is sticky: required values missing on first load stay missing.
func Load() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load("config.env")

		cfg = &Config{}
		cfgType := reflect.TypeOf(*cfg)
		cfgValue := reflect.ValueOf(cfg).Elem()

		for i := 0; i < cfgType.NumField(); i++ {
			field := cfgType.Field(i)
			fieldValue := cfgValue.Field(i)
			for j := 0; j < field.Type.NumField(); j++ {
				subField := field.Type.Field(j)
				envVar := subField.Tag.Get("env")
				value, exists := os.LookupEnv(envVar)
				if !exists {
					if subField.Tag.Get("required") == "true" {
						loadErr = fmt.Errorf("required environment variable %s is not set", envVar)
						return
					}
					value = subField.Tag.Get("envDefault")
				}

				fieldValue.Field(j).SetString(value)
			}
		}

		loadErr = cfg.validate()
	})

	return cfg, loadErr
}

// validate fails fast on values that would otherwise only break at the
// first quote or the first operator action.
func (c *Config) validate() error {
	if _, err := c.Telegram.Operators(); err != nil {
		return err
	}
	for name, f := range map[string]func() (decimal.Decimal, error){
		"EXCHANGE_RATE": c.Pricing.Rate,
		"FEE_THRESHOLD": c.Pricing.Threshold,
		"FEE_AMOUNT":    c.Pricing.Surcharge,
	} {
		if _, err := f(); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
