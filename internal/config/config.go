package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process-wide configuration, loaded once at startup and
// passed by injection. There are no module-scope globals and no hot reload.
type Config struct {
	Server Server
	Auth   Auth
	Data   Data
}

// Server holds HTTP/gRPC listener settings.
type Server struct {
	Addr            string
	GRPCAddr        string // empty disables the gRPC health listener
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateBurst       int
	RatePerSecond   int
	MaxBodyBytes    int64
}

// Auth holds the token signing secret and lifetime.
type Auth struct {
	Secret   string
	TokenTTL time.Duration
}

// Data holds connection settings for every backing data source.
type Data struct {
	LoginDSN   string // credential store (PostgreSQL)
	ERPDSN     string // production/shipping/invoicing (PostgreSQL)
	PayrollDSN string // payroll warehouse (PostgreSQL, separate pool)
	CRMPath    string // legacy CRM snapshot (SQLite file)
	BIBaseURL  string // plant-floor BI API
	PlannixURL string // Plannix production API
}

// Load reads configuration from PAINEL_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: Server{
			Addr:            getEnv("PAINEL_ADDR", ":8080"),
			GRPCAddr:        getEnv("PAINEL_GRPC_ADDR", ""),
			ReadTimeout:     getEnvDuration("PAINEL_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("PAINEL_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("PAINEL_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PAINEL_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateBurst:       getEnvInt("PAINEL_RATE_BURST", 20),
			RatePerSecond:   getEnvInt("PAINEL_RATE_PER_SECOND", 10),
			MaxBodyBytes:    int64(getEnvInt("PAINEL_MAX_BODY_BYTES", 1<<20)),
		},
		Auth: Auth{
			Secret:   strings.TrimSpace(os.Getenv("PAINEL_AUTH_SECRET")),
			TokenTTL: getEnvDuration("PAINEL_TOKEN_TTL", time.Hour),
		},
		Data: Data{
			LoginDSN:   os.Getenv("PAINEL_LOGIN_DSN"),
			ERPDSN:     os.Getenv("PAINEL_ERP_DSN"),
			PayrollDSN: os.Getenv("PAINEL_PAYROLL_DSN"),
			CRMPath:    os.Getenv("PAINEL_CRM_PATH"),
			BIBaseURL:  os.Getenv("PAINEL_BI_URL"),
			PlannixURL: os.Getenv("PAINEL_PLANNIX_URL"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the process must not serve traffic with.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("config: PAINEL_AUTH_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: PAINEL_TOKEN_TTL must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("config: PAINEL_ADDR must not be empty")
	}
	if c.Server.RateBurst <= 0 || c.Server.RatePerSecond <= 0 {
		return errors.New("config: rate limit values must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	// Accept either a Go duration ("30m") or bare seconds ("3600").
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// String renders the config with secrets elided, for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s grpc=%q ttl=%s login_db=%t erp_db=%t payroll_db=%t crm=%t bi=%t plannix=%t",
		c.Server.Addr, c.Server.GRPCAddr, c.Auth.TokenTTL,
		c.Data.LoginDSN != "", c.Data.ERPDSN != "", c.Data.PayrollDSN != "",
		c.Data.CRMPath != "", c.Data.BIBaseURL != "", c.Data.PlannixURL != "")
}
