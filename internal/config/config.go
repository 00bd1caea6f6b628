package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

type Auth struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	AdminEmails []string      `mapstructure:"admin_emails"`
}

type Checkout struct {
	TaxRate          string `mapstructure:"tax_rate"`
	ShippingFlat     string `mapstructure:"shipping_flat"`
	FreeShippingOver string `mapstructure:"free_shipping_over"`
	Currency         string `mapstructure:"currency"`
	SuccessURL       string `mapstructure:"success_url"`
	CancelURL        string `mapstructure:"cancel_url"`
}

type Stripe struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type Shipping struct {
	APIURL   string        `mapstructure:"api_url"`
	APIToken string        `mapstructure:"api_token"`
	Carrier  string        `mapstructure:"carrier"`
	Timeout  time.Duration `mapstructure:"timeout"`
	FromName string        `mapstructure:"from_name"`
	FromLine string        `mapstructure:"from_line"`
	FromCity string        `mapstructure:"from_city"`
	FromZip  string        `mapstructure:"from_zip"`
	FromCtry string        `mapstructure:"from_country"`
}

type Email struct {
	APIURL  string        `mapstructure:"api_url"`
	APIKey  string        `mapstructure:"api_key"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Broker struct {
	SeedBrokers      []string `mapstructure:"seed_brokers"`
	OrderEventsTopic string   `mapstructure:"order_events_topic"`
}

type RateLimit struct {
	Enabled bool          `mapstructure:"enabled"`
	Max     int           `mapstructure:"max"`
	Window  time.Duration `mapstructure:"window"`
}

type Config struct {
	LogLevel    string    `mapstructure:"log_level"`
	HTTPAddr    string    `mapstructure:"http_addr"`
	DatabaseURL string    `mapstructure:"database_url"`
	AllowOrigin string    `mapstructure:"allow_origin"`
	Auth        Auth      `mapstructure:"auth"`
	Checkout    Checkout  `mapstructure:"checkout"`
	Stripe      Stripe    `mapstructure:"stripe"`
	Shipping    Shipping  `mapstructure:"shipping"`
	Email       Email     `mapstructure:"email"`
	Broker      Broker    `mapstructure:"broker"`
	RateLimit   RateLimit `mapstructure:"rate_limit"`
}

var defaults = map[string]any{
	"log_level":                   "info",
	"http_addr":                   ":8080",
	"database_url":                "",
	"allow_origin":                "*",
	"auth.jwt_secret":             "",
	"auth.token_ttl":              72 * time.Hour,
	"auth.admin_emails":           []string{},
	"checkout.tax_rate":           "0.08",
	"checkout.shipping_flat":      "5.99",
	"checkout.free_shipping_over": "50",
	"checkout.currency":           "usd",
	"checkout.success_url":        "http://localhost:3000/checkout/success?order={ORDER_ID}",
	"checkout.cancel_url":         "http://localhost:3000/cart",
	"stripe.secret_key":           "",
	"stripe.webhook_secret":       "",
	"shipping.api_url":            "",
	"shipping.api_token":          "",
	"shipping.carrier":            "usps",
	"shipping.timeout":            10 * time.Second,
	"shipping.from_name":          "",
	"shipping.from_line":          "",
	"shipping.from_city":          "",
	"shipping.from_zip":           "",
	"shipping.from_country":       "US",
	"email.api_url":               "",
	"email.api_key":               "",
	"email.from":                  "",
	"email.timeout":               5 * time.Second,
	"broker.seed_brokers":         []string{},
	"broker.order_events_topic":   "order-events",
	"rate_limit.enabled":          false,
	"rate_limit.max":              10,
	"rate_limit.window":           10 * time.Second,
}

// Load reads .env, then the optional config file, then STOREFRONT_* env vars.
func Load() Config {
	_ = godotenv.Load()

	cfg, err := load(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func load(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c Config) Print() {
	slog.Info("loaded config",
		"logLevel", c.LogLevel,
		"httpAddr", c.HTTPAddr,
		"databaseURL", mask(c.DatabaseURL),
		"adminEmails", c.Auth.AdminEmails,
		"taxRate", c.Checkout.TaxRate,
		"currency", c.Checkout.Currency,
		"stripe", c.Stripe.SecretKey != "",
		"shippingProvider", c.Shipping.APIURL,
		"emailProvider", c.Email.APIURL,
		"seedBrokers", c.Broker.SeedBrokers,
		"orderEventsTopic", c.Broker.OrderEventsTopic,
		"rateLimit", c.RateLimit.Enabled,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
