package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/mailjohn/internal/security/secretbox"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
		Timeout            string `yaml:"timeout"`
		MaxSessions        int    `yaml:"max_sessions"` // tope global de sesiones SMTP concurrentes
	} `yaml:"smtp"`

	Token struct {
		TTL       string `yaml:"ttl"`
		MaxRepeat int    `yaml:"max_repeat"`
	} `yaml:"token"`

	Store struct {
		Kind  string `yaml:"kind"` // memory | redis | postgres
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Postgres struct {
			DSN string `yaml:"dsn"`
		} `yaml:"postgres"`
	} `yaml:"store"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Auth    struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"auth"`
		Send struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"send"`
	} `yaml:"rate"`

	Security struct {
		MasterKey string `yaml:"master_key"` // base64(32 bytes), cifra credenciales en reposo
	} `yaml:"security"`
}

// Load lee el YAML (opcional), aplica defaults y pisa con el entorno.
// Un path vacío arranca sólo con defaults + entorno.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.SMTP.Host == "" {
		c.SMTP.Host = "smtp.gmail.com"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 465
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "ssl"
	}
	if c.SMTP.Timeout == "" {
		c.SMTP.Timeout = "30s"
	}
	if c.SMTP.MaxSessions == 0 {
		c.SMTP.MaxSessions = 8
	}
	if c.Token.TTL == "" {
		c.Token.TTL = "1h"
	}
	if c.Token.MaxRepeat == 0 {
		c.Token.MaxRepeat = 25
	}
	if c.Store.Kind == "" {
		c.Store.Kind = "memory"
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = "mj:"
	}
	if c.Rate.Auth.Limit == 0 {
		c.Rate.Auth.Limit = 10
	}
	if c.Rate.Auth.Window == "" {
		c.Rate.Auth.Window = "1m"
	}
	if c.Rate.Send.Limit == 0 {
		c.Rate.Send.Limit = 60
	}
	if c.Rate.Send.Window == "" {
		c.Rate.Send.Window = "1m"
	}

	c.applyEnvOverrides()
	return &c, nil
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = v
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}
	if v, ok := getEnvStr("SMTP_TIMEOUT"); ok {
		c.SMTP.Timeout = v
	}
	if v, ok := getEnvInt("SMTP_MAX_SESSIONS"); ok {
		c.SMTP.MaxSessions = v
	}

	// TOKEN
	if v, ok := getEnvStr("TOKEN_TTL"); ok {
		c.Token.TTL = v
	}
	if v, ok := getEnvInt("TOKEN_MAX_REPEAT"); ok {
		c.Token.MaxRepeat = v
	}

	// STORE
	if v, ok := getEnvStr("STORE_KIND"); ok {
		c.Store.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Store.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Store.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Store.Redis.Prefix = v
	}
	if v, ok := getEnvStr("POSTGRES_DSN"); ok {
		c.Store.Postgres.DSN = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_AUTH_LIMIT"); ok {
		c.Rate.Auth.Limit = v
	}
	if v, ok := getEnvStr("RATE_AUTH_WINDOW"); ok {
		c.Rate.Auth.Window = v
	}
	if v, ok := getEnvInt("RATE_SEND_LIMIT"); ok {
		c.Rate.Send.Limit = v
	}
	if v, ok := getEnvStr("RATE_SEND_WINDOW"); ok {
		c.Rate.Send.Window = v
	}

	// SECURITY
	if v, ok := getEnvStr("MAILJOHN_MASTER_KEY"); ok {
		c.Security.MasterKey = v
	}
}

// Validate chequea lo que es fatal al arranque: sin clave maestra válida
// no hay servicio.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Security.MasterKey) == "" {
		return fmt.Errorf("security.master_key (o MAILJOHN_MASTER_KEY) requerida; genere una con: mailjohn keygen")
	}
	if _, err := secretbox.ParseKey(c.Security.MasterKey); err != nil {
		return fmt.Errorf("security.master_key: %w", err)
	}
	if _, err := c.TokenTTL(); err != nil {
		return fmt.Errorf("token.ttl: %w", err)
	}
	if _, err := c.SMTPTimeout(); err != nil {
		return fmt.Errorf("smtp.timeout: %w", err)
	}
	switch c.Store.Kind {
	case "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr requerida con store.kind=redis")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn requerida con store.kind=postgres")
		}
	default:
		return fmt.Errorf("store.kind inválido: %q (memory|redis|postgres)", c.Store.Kind)
	}
	return nil
}

// TokenTTL parsea la TTL de tokens.
func (c *Config) TokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.Token.TTL)
}

// SMTPTimeout parsea el timeout de envío.
func (c *Config) SMTPTimeout() (time.Duration, error) {
	return time.ParseDuration(c.SMTP.Timeout)
}

// RateWindow parsea una ventana de rate limit, con fallback a 1m.
func RateWindow(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
