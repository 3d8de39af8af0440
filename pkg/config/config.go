package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	Redis    RedisConfig
	Register RegisterConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(cfg.Redis); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REGISTER_APP_ENV" required:"true"`
	Port         string `envconfig:"REGISTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REGISTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REGISTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points the gateway at the school server that owns pricing,
// invoices, and check-in state.
type UpstreamConfig struct {
	BaseURL            string        `envconfig:"REGISTER_UPSTREAM_BASE_URL" required:"true"`
	RegisterPath       string        `envconfig:"REGISTER_UPSTREAM_REGISTER_PATH" default:"/registration/json/"`
	CustomerLookupPath string        `envconfig:"REGISTER_UPSTREAM_CUSTOMER_LOOKUP_PATH" default:"/registration/customers/lookup/"`
	GuestLookupPath    string        `envconfig:"REGISTER_UPSTREAM_GUEST_LOOKUP_PATH" default:"/guestlist/lookup/"`
	CheckInPath        string        `envconfig:"REGISTER_UPSTREAM_CHECKIN_PATH" default:"/registration/checkin/"`
	CSRFCookieName     string        `envconfig:"REGISTER_UPSTREAM_CSRF_COOKIE" default:"csrftoken"`
	CSRFHeaderName     string        `envconfig:"REGISTER_UPSTREAM_CSRF_HEADER" default:"X-CSRFToken"`
	Timeout            time.Duration `envconfig:"REGISTER_UPSTREAM_TIMEOUT" default:"30s"`
}

func (u *UpstreamConfig) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing upstream base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("upstream base url must be absolute, got %q", u.BaseURL)
	}
	return nil
}

// SessionConfig controls where per-terminal drafts live and for how long.
type SessionConfig struct {
	Backend string        `envconfig:"REGISTER_SESSION_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"REGISTER_SESSION_TTL" default:"4h"`
}

func (s SessionConfig) UsesRedis() bool {
	return strings.EqualFold(s.Backend, SessionBackendRedis)
}

func (s *SessionConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(s.Backend) {
	case SessionBackendMemory:
		return nil
	case SessionBackendRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("session backend %q requires %s or %s", s.Backend, EnvRedisURL, EnvRedisAddr)
		}
		return nil
	}
	return fmt.Errorf("unknown session backend %q", s.Backend)
}

type RedisConfig struct {
	URL          string        `envconfig:"REGISTER_REDIS_URL"`
	Address      string        `envconfig:"REGISTER_REDIS_ADDR"`
	Password     string        `envconfig:"REGISTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"REGISTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REGISTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REGISTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REGISTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REGISTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REGISTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RegisterConfig carries the display configuration the register pages used
// to read from page-embedded globals: the currency symbol, the localized
// strings, and the at-the-door pricing flag.
type RegisterConfig struct {
	PayAtDoor      bool   `envconfig:"REGISTER_PAY_AT_DOOR" default:"true"`
	CurrencySymbol string `envconfig:"REGISTER_CURRENCY_SYMBOL" default:"$"`

	DropInLabel     string `envconfig:"REGISTER_LABEL_DROP_IN" default:"Drop-in"`
	DiscountLabel   string `envconfig:"REGISTER_LABEL_DISCOUNT" default:"Discount"`
	VoucherLabel    string `envconfig:"REGISTER_LABEL_VOUCHER" default:"Voucher"`
	AddonLabel      string `envconfig:"REGISTER_LABEL_ADDON" default:"Add-on"`
	SubtotalLabel   string `envconfig:"REGISTER_LABEL_SUBTOTAL" default:"Subtotal"`
	TaxesLabel      string `envconfig:"REGISTER_LABEL_TAXES" default:"Taxes"`
	ItemSingular    string `envconfig:"REGISTER_LABEL_ITEM" default:"item"`
	ItemPlural      string `envconfig:"REGISTER_LABEL_ITEMS" default:"items"`
	OutstandingText string `envconfig:"REGISTER_LABEL_OUTSTANDING" default:"Outstanding balance"`

	MultipleVoucherMessage  string `envconfig:"REGISTER_MSG_MULTIPLE_VOUCHER" default:"Only one voucher may be applied at a time. Remove the existing voucher first."`
	EmptyCartVoucherMessage string `envconfig:"REGISTER_MSG_EMPTY_CART_VOUCHER" default:"Add an item to the cart before applying a voucher."`
	TransportErrorMessage   string `envconfig:"REGISTER_MSG_TRANSPORT_ERROR" default:"The register could not reach the server. The cart was not changed; please try again."`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"REGISTER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
