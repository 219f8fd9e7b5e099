package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nameserver", isNameserver)
	return v
}

// isNameserver accepts an IP ("8.8.8.8", "2606:4700::1111") or an IP or
// hostname with a port ("1.1.1.1:53", "[2606:4700::1111]:53", "ns1.example.net:53").
func isNameserver(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if net.ParseIP(s) != nil {
		return true
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return false
	}
	return net.ParseIP(host) != nil || hostnamePattern.MatchString(host)
}

var hostnamePattern = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?\.)*[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?$`)

// Config holds all configuration for the mailprobe command
type Config struct {
	Workers  int            `yaml:"workers" validate:"gte=0"`
	Log      LogConfig      `yaml:"log"`
	DNS      DNSConfig      `yaml:"dns"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	CatchAll CatchAllConfig `yaml:"catch_all"`
	Output   OutputConfig   `yaml:"output"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=panic fatal error warn warning info debug trace"`
	Format string `yaml:"format" validate:"oneof=text json"`
	File   string `yaml:"file"`   // empty logs to stderr
}

// DNSConfig holds MX lookup settings
type DNSConfig struct {
	Nameservers    []string `yaml:"nameservers" validate:"dive,nameserver"`
	TimeoutSeconds int      `yaml:"timeout_seconds" validate:"gte=1"`
	MaxAttempts    int      `yaml:"max_attempts" validate:"gte=1"`
	BackoffMillis  int      `yaml:"backoff_ms" validate:"gte=1"`
	SuggestTypos   bool     `yaml:"suggest_typos"`
}

// Timeout returns the per-attempt lookup timeout as a duration
func (c DNSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the base retry backoff as a duration
func (c DNSConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMillis) * time.Millisecond
}

// SMTPConfig holds RCPT probe settings
type SMTPConfig struct {
	Enabled               bool    `yaml:"enabled"`
	HeloDomain            string  `yaml:"helo_domain" validate:"required,hostname"`
	MailFrom              string  `yaml:"mail_from" validate:"required,email"`
	Port                  string  `yaml:"port" validate:"numeric"`
	ConnectTimeoutSeconds int     `yaml:"connect_timeout_seconds" validate:"gte=1"`
	SessionTimeoutSeconds int     `yaml:"session_timeout_seconds" validate:"gte=1"`
	ProxyURL              string  `yaml:"proxy_url" validate:"omitempty,url"`
	RateLimit             float64 `yaml:"rate_limit" validate:"gte=0"` // sessions per second, 0 = unlimited
	Burst                 int     `yaml:"burst" validate:"gte=0"`
}

// ConnectTimeout returns the TCP connect timeout as a duration
func (c SMTPConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// SessionTimeout returns the whole-session timeout as a duration
func (c SMTPConfig) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSeconds) * time.Second
}

// CatchAllConfig holds catch-all detection settings
type CatchAllConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MailFrom  string `yaml:"mail_from" validate:"omitempty,email"`
	GmailFrom string `yaml:"gmail_from" validate:"omitempty,email"`
}

// OutputConfig holds report settings
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	ValidFile   string `yaml:"valid_file" validate:"required"`
	InvalidFile string `yaml:"invalid_file" validate:"required"`
	CSVFile     string `yaml:"csv_file"` // optional, all outcomes
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers: 50,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "email_validation.log",
		},
		DNS: DNSConfig{
			TimeoutSeconds: 5,
			MaxAttempts:    3,
			BackoffMillis:  1000,
			SuggestTypos:   true,
		},
		SMTP: SMTPConfig{
			Enabled:               true,
			HeloDomain:            "localhost",
			MailFrom:              "your-email@example.com",
			Port:                  "25",
			ConnectTimeoutSeconds: 5,
			SessionTimeoutSeconds: 10,
			Burst:                 1,
		},
		CatchAll: CatchAllConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Dir:         "outputs",
			ValidFile:   "valid_emails.xlsx",
			InvalidFile: "invalid_emails.xlsx",
		},
	}
}

// Load reads and parses the configuration file. Keys missing from the
// file keep their Default values; keys present are validated as written.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints such as non-negative workers and a
// well-formed sender address.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MAILPROBE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("MAILPROBE_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("MAILPROBE_NAMESERVERS"); v != "" {
		cfg.DNS.Nameservers = splitList(v)
	}
	if v := os.Getenv("MAILPROBE_HELO_DOMAIN"); v != "" {
		cfg.SMTP.HeloDomain = v
	}
	if v := os.Getenv("MAILPROBE_MAIL_FROM"); v != "" {
		cfg.SMTP.MailFrom = v
	}
	if v := os.Getenv("MAILPROBE_SMTP_PORT"); v != "" {
		cfg.SMTP.Port = v
	}
	if v := os.Getenv("MAILPROBE_PROXY_URL"); v != "" {
		cfg.SMTP.ProxyURL = v
	}
	if v := os.Getenv("MAILPROBE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MAILPROBE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("MAILPROBE_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
