package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/you/hostelauth/domain"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
	TTL    string `yaml:"ttl"`
}

type TokenConfig struct {
	OTPTTL   string `yaml:"otp_ttl"`
	ResetTTL string `yaml:"reset_ttl"`
}

type AuthConfig struct {
	EmailDomain string   `yaml:"email_domain"`
	Hostels     []string `yaml:"hostels"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	From     string `yaml:"from"`
	Password string `yaml:"password"`
}

type ConfigFile struct {
	App      AppConfig   `yaml:"app"`
	Mongo    MongoConfig `yaml:"mongo"`
	JWT      JWTConfig   `yaml:"jwt"`
	Tokens   TokenConfig `yaml:"tokens"`
	Auth     AuthConfig  `yaml:"auth"`
	SMTP     SMTPConfig  `yaml:"smtp"`
	Frontend string      `yaml:"frontend_url"`
}

type Config struct {
	Port         string
	GinMode      string
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	JWTIssuer    string
	SessionTTL   time.Duration
	OTPTTL       time.Duration
	ResetTTL     time.Duration
	EmailDomain  string
	Hostels      []string
	FrontendURL  string
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml when present and applies environment
// overrides on top. Every secret can be supplied by environment alone so
// the file never has to carry credentials.
func Load() (*Config, error) {
	file := &ConfigFile{}
	if raw, err := os.ReadFile(env("CONFIG_PATH", "config/config.yml")); err == nil {
		if err := yaml.Unmarshal(raw, file); err != nil {
			return nil, fmt.Errorf("could not parse config yaml: %w", err)
		}
	}

	port := file.App.Port
	if port == 0 {
		port = 8080
	}

	cfg := &Config{
		Port:         env("PORT", fmt.Sprintf("%d", port)),
		GinMode:      env("GIN_MODE", defaultStr(file.App.GinMode, "release")),
		MongoURI:     env("MONGO_URI", defaultStr(file.Mongo.URI, "mongodb://localhost:27017")),
		MongoDB:      env("MONGO_DB", defaultStr(file.Mongo.Database, "hostel")),
		JWTSecret:    env("JWT_SECRET", file.JWT.Secret),
		JWTIssuer:    env("JWT_ISSUER", defaultStr(file.JWT.Issuer, "hostelauth")),
		EmailDomain:  env("EMAIL_DOMAIN", defaultStr(file.Auth.EmailDomain, "nitm.ac.in")),
		Hostels:      file.Auth.Hostels,
		FrontendURL:  env("FRONTEND_URL", defaultStr(file.Frontend, "http://localhost:3000")),
		SMTPHost:     env("SMTP_HOST", defaultStr(file.SMTP.Host, "smtp.gmail.com")),
		SMTPPort:     env("SMTP_PORT", defaultStr(file.SMTP.Port, "587")),
		SMTPFrom:     env("SMTP_FROM", file.SMTP.From),
		SMTPPassword: env("EMAIL_PASSWORD", file.SMTP.Password),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}

	var err error
	if cfg.SessionTTL, err = parseTTL(env("JWT_TTL", file.JWT.TTL), 72*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}
	if cfg.OTPTTL, err = parseTTL(env("OTP_TTL", file.Tokens.OTPTTL), 15*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}
	if cfg.ResetTTL, err = parseTTL(env("RESET_TTL", file.Tokens.ResetTTL), 15*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid reset token TTL: %w", err)
	}

	if len(cfg.Hostels) == 0 {
		cfg.Hostels = domain.DefaultHostels
	}

	return cfg, nil
}

// ValidationRules derives the closed sets used by the registration
// validation pass.
func (c *Config) ValidationRules() domain.ValidationRules {
	return domain.ValidationRules{
		EmailDomain: c.EmailDomain,
		Hostels:     c.Hostels,
	}
}

func parseTTL(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func defaultStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
