package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	Ledger   LedgerConfig
	Boosts   BoostConfig
	Pricing  PricingConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// StoreConfig selects the persistence backend. "memory" is for local runs only.
type StoreConfig struct {
	Driver       string
	MemoryAdmins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
}

type LogConfig struct {
	Level  string
	Format string
}

type LedgerConfig struct {
	StoreTimeout time.Duration
	HistoryLimit int
	BalanceLimit int
}

type BoostConfig struct {
	DefaultDurationDays  int
	MaxDurationDays      int
	SweepInterval        time.Duration
	SweepLockTTL         time.Duration
	CompensationTimeout  time.Duration
	CompensationAttempts int
	CronSecret           string
}

type PricingConfig struct {
	BoostTiers  map[int]int64
	BoostPerDay int64
}

const maxBoostDurationDays = 30

var envBindings = map[string]string{
	"server.port":                  "PORT",
	"server.allowed_origins":       "CORS_ALLOWED_ORIGINS",
	"server.request_timeout":       "SERVER_REQUEST_TIMEOUT",
	"store.driver":                 "STORE_DRIVER",
	"store.memory_admins":          "STORE_MEMORY_ADMINS",
	"database.host":                "DATABASE_HOST",
	"database.port":                "DATABASE_PORT",
	"database.user":                "DATABASE_USER",
	"database.password":            "DATABASE_PASSWORD",
	"database.name":                "DATABASE_NAME",
	"database.ssl_mode":            "DATABASE_SSL_MODE",
	"database.auto_migrate":        "DATABASE_AUTO_MIGRATE",
	"redis.host":                   "REDIS_HOST",
	"redis.port":                   "REDIS_PORT",
	"redis.password":               "REDIS_PASSWORD",
	"redis.db":                     "REDIS_DB",
	"jwt.secret_key":               "JWT_SECRET_KEY",
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
	"ledger.store_timeout":         "LEDGER_STORE_TIMEOUT",
	"ledger.history_limit":         "LEDGER_HISTORY_LIMIT",
	"ledger.balance_limit":         "LEDGER_BALANCE_LIMIT",
	"boosts.default_duration_days": "BOOSTS_DEFAULT_DURATION_DAYS",
	"boosts.max_duration_days":     "BOOSTS_MAX_DURATION_DAYS",
	"boosts.sweep_interval":        "BOOSTS_SWEEP_INTERVAL",
	"boosts.sweep_lock_ttl":        "BOOSTS_SWEEP_LOCK_TTL",
	"boosts.compensation_timeout":  "BOOSTS_COMPENSATION_TIMEOUT",
	"boosts.compensation_attempts": "BOOSTS_COMPENSATION_ATTEMPTS",
	"boosts.cron_secret":           "BOOSTS_CRON_SECRET",
	"pricing.boost_tiers":          "PRICING_BOOST_TIERS",
	"pricing.boost_per_day":        "PRICING_BOOST_PER_DAY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "https://*,http://*")
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.memory_admins", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "placements")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ledger.store_timeout", 5*time.Second)
	v.SetDefault("ledger.history_limit", 50)
	v.SetDefault("ledger.balance_limit", 100)

	v.SetDefault("boosts.default_duration_days", 7)
	v.SetDefault("boosts.max_duration_days", 30)
	v.SetDefault("boosts.sweep_interval", 0)
	v.SetDefault("boosts.sweep_lock_ttl", 2*time.Minute)
	v.SetDefault("boosts.compensation_timeout", 10*time.Second)
	v.SetDefault("boosts.compensation_attempts", 3)
	v.SetDefault("boosts.cron_secret", "")

	v.SetDefault("pricing.boost_tiers", "1:15,7:80,14:150,30:300")
	v.SetDefault("pricing.boost_per_day", 12)
}

// Load reads .env (when present) into the environment and resolves every key
// from the environment, falling back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	setDefaults(v)

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	tiers, err := ParseTiers(v.GetString("pricing.boost_tiers"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
			RequestTimeout: v.GetDuration("server.request_timeout"),
		},
		Store: StoreConfig{
			Driver:       v.GetString("store.driver"),
			MemoryAdmins: splitList(v.GetString("store.memory_admins")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{SecretKey: v.GetString("jwt.secret_key")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Ledger: LedgerConfig{
			StoreTimeout: v.GetDuration("ledger.store_timeout"),
			HistoryLimit: v.GetInt("ledger.history_limit"),
			BalanceLimit: v.GetInt("ledger.balance_limit"),
		},
		Boosts: BoostConfig{
			DefaultDurationDays:  v.GetInt("boosts.default_duration_days"),
			MaxDurationDays:      v.GetInt("boosts.max_duration_days"),
			SweepInterval:        v.GetDuration("boosts.sweep_interval"),
			SweepLockTTL:         v.GetDuration("boosts.sweep_lock_ttl"),
			CompensationTimeout:  v.GetDuration("boosts.compensation_timeout"),
			CompensationAttempts: v.GetInt("boosts.compensation_attempts"),
			CronSecret:           v.GetString("boosts.cron_secret"),
		},
		Pricing: PricingConfig{
			BoostTiers:  tiers,
			BoostPerDay: v.GetInt64("pricing.boost_per_day"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("config: jwt.secret_key is required")
	}
	if c.Ledger.StoreTimeout <= 0 {
		return fmt.Errorf("config: ledger.store_timeout must be positive")
	}
	if c.Boosts.MaxDurationDays < 1 || c.Boosts.DefaultDurationDays < 1 ||
		c.Boosts.DefaultDurationDays > c.Boosts.MaxDurationDays {
		return fmt.Errorf("config: boost durations must satisfy 1 <= default <= max")
	}
	if c.Boosts.MaxDurationDays > maxBoostDurationDays {
		return fmt.Errorf("config: boosts.max_duration_days must be at most %d", maxBoostDurationDays)
	}
	if c.Boosts.CompensationAttempts < 1 {
		return fmt.Errorf("config: boosts.compensation_attempts must be at least 1")
	}
	if c.Pricing.BoostPerDay <= 0 && len(c.Pricing.BoostTiers) == 0 {
		return fmt.Errorf("config: boost pricing is not configured")
	}
	return nil
}

// RedisAddr returns "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}

// ParseTiers parses "days:price" pairs such as "1:15,7:80".
func ParseTiers(raw string) (map[int]int64, error) {
	tiers := make(map[int]int64)
	for _, pair := range splitList(raw) {
		daysRaw, priceRaw, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("config: invalid pricing tier %q", pair)
		}
		days, err := strconv.Atoi(strings.TrimSpace(daysRaw))
		if err != nil || days < 1 {
			return nil, fmt.Errorf("config: invalid pricing tier days %q", daysRaw)
		}
		price, err := strconv.ParseInt(strings.TrimSpace(priceRaw), 10, 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("config: invalid pricing tier price %q", priceRaw)
		}
		tiers[days] = price
	}
	return tiers, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
