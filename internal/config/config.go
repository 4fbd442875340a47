package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SIGDASH"

// Source kinds.
const (
	SourceSheets = "sheets"
	SourceCSV    = "csv"
	SourceXLSX   = "xlsx"
)

// Config is the complete application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Source        SourceConfig        `yaml:"source" envconfig:"SOURCE"`
	Sheets        SheetsConfig        `yaml:"sheets" envconfig:"SHEETS"`
	Dashboard     DashboardConfig     `yaml:"dashboard" envconfig:"DASHBOARD"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains CORS and rate limiting settings.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// SourceConfig selects where rows are read from.
type SourceConfig struct {
	Kind      string `yaml:"kind" envconfig:"KIND"`
	File      string `yaml:"file" envconfig:"FILE"`
	XLSXSheet string `yaml:"xlsx_sheet" envconfig:"XLSX_SHEET"`
}

// SheetsConfig identifies the Google worksheet and how to authenticate to it.
type SheetsConfig struct {
	SpreadsheetID   string               `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	SheetName       string               `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	CredentialsJSON string               `yaml:"credentials_json" envconfig:"CREDENTIALS_JSON"`
	CredentialsEnv  string               `yaml:"credentials_env" envconfig:"CREDENTIALS_ENV"`
	SecretFiles     []string             `yaml:"secret_files" envconfig:"SECRET_FILES"`
	ServiceAccount  ServiceAccountConfig `yaml:"service_account" envconfig:"SA"`
}

// ServiceAccountConfig is a service account key supplied field by field.
type ServiceAccountConfig struct {
	Type                    string `yaml:"type" envconfig:"TYPE"`
	ProjectID               string `yaml:"project_id" envconfig:"PROJECT_ID"`
	PrivateKeyID            string `yaml:"private_key_id" envconfig:"PRIVATE_KEY_ID"`
	PrivateKey              string `yaml:"private_key" envconfig:"PRIVATE_KEY"`
	ClientEmail             string `yaml:"client_email" envconfig:"CLIENT_EMAIL"`
	ClientID                string `yaml:"client_id" envconfig:"CLIENT_ID"`
	AuthURI                 string `yaml:"auth_uri" envconfig:"AUTH_URI"`
	TokenURI                string `yaml:"token_uri" envconfig:"TOKEN_URI"`
	AuthProviderX509CertURL string `yaml:"auth_provider_x509_cert_url" envconfig:"AUTH_PROVIDER_X509_CERT_URL"`
	ClientX509CertURL       string `yaml:"client_x509_cert_url" envconfig:"CLIENT_X509_CERT_URL"`
	UniverseDomain          string `yaml:"universe_domain" envconfig:"UNIVERSE_DOMAIN"`
}

// DashboardConfig contains dashboard behaviour settings.
type DashboardConfig struct {
	DefaultPeriod string        `yaml:"default_period" envconfig:"DEFAULT_PERIOD"`
	Timezone      string        `yaml:"timezone" envconfig:"TIMEZONE"`
	LoadTimeout   time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT"`
}

// ObservabilityConfig contains tracing and metrics settings.
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load reads configuration from defaults, then the config file named by
// SIGDASH_CONFIG_FILE or found in a standard location, then the environment.
// A .env file in the working directory is loaded into the environment first.
// Overrides run last, before validation.
func Load(overrides ...func(*Config)) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Getenv(EnvPrefix+"_CONFIG_FILE"), overrides...)
}

// LoadFrom is Load with an explicit config file. An empty path searches the
// standard locations.
func LoadFrom(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; absent keys keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Location returns the dashboard time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	switch c.Source.Kind {
	case SourceSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets.spreadsheet_id is required for the sheets source")
		}
	case SourceCSV, SourceXLSX:
		if c.Source.File == "" {
			return fmt.Errorf("source.file is required for the %s source", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	switch strings.ToLower(c.Dashboard.DefaultPeriod) {
	case "week", "month", "all":
	default:
		return fmt.Errorf("invalid default period %q", c.Dashboard.DefaultPeriod)
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("invalid dashboard timezone %q: %w", c.Dashboard.Timezone, err)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/signaldash.log"
	}
	return nil
}

func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/signaldash.log",
		},
		Source: SourceConfig{
			Kind: SourceSheets,
		},
		Sheets: SheetsConfig{
			SheetName:      "Sheet1",
			CredentialsEnv: "CREDENTIALS_JSON",
			SecretFiles: []string{
				"/etc/secrets/google_credentials.json",
				"/etc/secrets/credentials.json",
				"/etc/secrets/service_account.json",
			},
		},
		Dashboard: DashboardConfig{
			DefaultPeriod: "week",
			Timezone:      "UTC",
			LoadTimeout:   30 * time.Second,
		},
		Observability: ObservabilityConfig{
			ServiceName:    "signaldash",
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
