package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderCLI       = "cli"

	IdentityFirebase = "firebase"
	IdentityLocal    = "local"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultFirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Identity IdentityConfig `mapstructure:"identity"`
	Database DatabaseConfig `mapstructure:"database"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type OracleConfig struct {
	Provider        string `mapstructure:"provider"`
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	GeminiModel     string `mapstructure:"gemini_model"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	AnthropicModel  string `mapstructure:"anthropic_model"`
	CLIPath         string `mapstructure:"cli_path"`
}

type IdentityConfig struct {
	Mode                string `mapstructure:"mode"`
	FirebaseProjectID   string `mapstructure:"firebase_project_id"`
	FirebaseClientEmail string `mapstructure:"firebase_client_email"`
	FirebasePrivateKey  string `mapstructure:"firebase_private_key"`
	FirebaseCertsURL    string `mapstructure:"firebase_certs_url"`
	JWTSecret           string `mapstructure:"jwt_secret"`
	JWTTTLHours         int    `mapstructure:"jwt_ttl_hours"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type FeedbackConfig struct {
	Persist bool `mapstructure:"persist"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

var envBindings = map[string]string{
	"server.port":                    "PORT",
	"server.allowed_origins":         "CORS_ALLOWED_ORIGINS",
	"oracle.provider":                "ORACLE_PROVIDER",
	"oracle.google_api_key":          "GOOGLE_API_KEY",
	"oracle.gemini_model":            "GEMINI_MODEL",
	"oracle.anthropic_api_key":       "ANTHROPIC_API_KEY",
	"oracle.anthropic_model":         "ANTHROPIC_MODEL",
	"oracle.cli_path":                "ORACLE_CLI_PATH",
	"identity.mode":                  "IDENTITY_MODE",
	"identity.firebase_project_id":   "FIREBASE_PROJECT_ID",
	"identity.firebase_client_email": "FIREBASE_CLIENT_EMAIL",
	"identity.firebase_private_key":  "FIREBASE_PRIVATE_KEY",
	"identity.firebase_certs_url":    "FIREBASE_CERTS_URL",
	"identity.jwt_secret":            "JWT_SECRET",
	"identity.jwt_ttl_hours":         "JWT_TTL_HOURS",
	"database.driver":                "DATABASE_DRIVER",
	"database.url":                   "DATABASE_URL",
	"feedback.persist":               "FEEDBACK_PERSIST",
	"log.level":                      "LOG_LEVEL",
	"log.format":                     "LOG_FORMAT",
	"log.file":                       "LOG_FILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("oracle.provider", ProviderGemini)
	v.SetDefault("oracle.gemini_model", "gemini-1.5-flash-latest")
	v.SetDefault("oracle.anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("identity.mode", IdentityFirebase)
	v.SetDefault("identity.firebase_certs_url", DefaultFirebaseCertsURL)
	v.SetDefault("identity.jwt_ttl_hours", 72)
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("feedback.persist", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from the environment and, when present, a
// config.yaml in path.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Identity.FirebasePrivateKey = strings.ReplaceAll(cfg.Identity.FirebasePrivateKey, `\n`, "\n")
	trimAll(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid PORT %q", c.Server.Port)
	}
	switch c.Oracle.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderCLI:
	default:
		return fmt.Errorf("unknown ORACLE_PROVIDER %q", c.Oracle.Provider)
	}
	switch c.Identity.Mode {
	case IdentityFirebase, IdentityLocal:
	default:
		return fmt.Errorf("unknown IDENTITY_MODE %q", c.Identity.Mode)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Identity.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.Identity.JWTTTLHours)
	}
	return nil
}

// OracleConfigured reports whether the selected provider has a credential.
func (c *Config) OracleConfigured() bool {
	switch c.Oracle.Provider {
	case ProviderGemini:
		return c.Oracle.GoogleAPIKey != ""
	case ProviderAnthropic:
		return c.Oracle.AnthropicAPIKey != ""
	case ProviderCLI:
		return c.Oracle.CLIPath != ""
	}
	return false
}

func (c *Config) FirebaseConfigured() bool {
	return c.Identity.FirebaseProjectID != "" &&
		c.Identity.FirebaseClientEmail != "" &&
		c.Identity.FirebasePrivateKey != ""
}

func (c *Config) LocalIdentityConfigured() bool {
	return c.Identity.JWTSecret != ""
}

func (c *Config) StoreConfigured() bool {
	return c.Database.URL != ""
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func trimAll(c *Config) {
	for _, s := range []*string{
		&c.Server.Port,
		&c.Oracle.Provider, &c.Oracle.GoogleAPIKey, &c.Oracle.GeminiModel,
		&c.Oracle.AnthropicAPIKey, &c.Oracle.AnthropicModel, &c.Oracle.CLIPath,
		&c.Identity.Mode, &c.Identity.FirebaseProjectID, &c.Identity.FirebaseClientEmail,
		&c.Identity.FirebaseCertsURL, &c.Identity.JWTSecret,
		&c.Database.Driver, &c.Database.URL,
		&c.Log.Level, &c.Log.Format, &c.Log.File,
	} {
		*s = strings.TrimSpace(*s)
	}
	c.Oracle.Provider = strings.ToLower(c.Oracle.Provider)
	c.Identity.Mode = strings.ToLower(c.Identity.Mode)
	c.Database.Driver = strings.ToLower(c.Database.Driver)
}
