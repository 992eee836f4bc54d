package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Parser     ParserConfig
	Extraction ExtractionConfig
	Export     ExportConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM provider used for escalation.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// Enabled reports whether the provider is named and has credentials.
func (p *ParserProviderConfig) Enabled() bool {
	return p != nil && p.Provider != "" && p.APIKey != ""
}

// ParserConfig holds LLM escalation settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ExtractionConfig tunes the extraction engine and the batch runner.
type ExtractionConfig struct {
	CoverageThreshold float64       `mapstructure:"coverage_threshold"`
	Window            int           `mapstructure:"window"`
	ExcerptLength     int           `mapstructure:"excerpt_length"`
	MaxYears          int           `mapstructure:"max_years"`
	Concurrency       int           `mapstructure:"concurrency"`
	EscalationTimeout time.Duration `mapstructure:"escalation_timeout"`
	Persist           bool          `mapstructure:"persist"`
}

// ExportConfig holds report rendering defaults.
type ExportConfig struct {
	Format    string `mapstructure:"format"`
	SheetName string `mapstructure:"sheet_name"`
	FileName  string `mapstructure:"file_name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FINX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FINX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 50)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "finextract")
	v.SetDefault("db.password", "finextract_secret")
	v.SetDefault("db.name", "finextract_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "finextract-reports")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "openai")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gpt-4o-mini")
	v.SetDefault("parser.timeout_secs", 60)

	// Parser primary/secondary/tertiary defaults
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+slot+".provider", "")
		v.SetDefault("parser."+slot+".api_key", "")
		v.SetDefault("parser."+slot+".default_model", "")
		v.SetDefault("parser."+slot+".timeout_secs", 60)
	}

	// Extraction defaults
	v.SetDefault("extraction.coverage_threshold", 0.2)
	v.SetDefault("extraction.window", 250)
	v.SetDefault("extraction.excerpt_length", 3000)
	v.SetDefault("extraction.max_years", 6)
	v.SetDefault("extraction.concurrency", 4)
	v.SetDefault("extraction.escalation_timeout", "60s")
	v.SetDefault("extraction.persist", false)

	// Export defaults
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("export.sheet_name", "Extraction")
	v.SetDefault("export.file_name", "financial_extraction")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "FINX_SERVER_PORT",
		"server.read_timeout":            "FINX_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "FINX_SERVER_WRITE_TIMEOUT",
		"server.environment":             "FINX_SERVER_ENVIRONMENT",
		"server.max_upload_mb":           "FINX_SERVER_MAX_UPLOAD_MB",
		"db.host":                        "FINX_DB_HOST",
		"db.port":                        "FINX_DB_PORT",
		"db.user":                        "FINX_DB_USER",
		"db.password":                    "FINX_DB_PASSWORD",
		"db.name":                        "FINX_DB_NAME",
		"db.sslmode":                     "FINX_DB_SSLMODE",
		"db.max_open":                    "FINX_DB_MAX_OPEN",
		"db.max_idle":                    "FINX_DB_MAX_IDLE",
		"s3.region":                      "FINX_S3_REGION",
		"s3.bucket":                      "FINX_S3_BUCKET",
		"s3.endpoint":                    "FINX_S3_ENDPOINT",
		"s3.access_key":                  "FINX_S3_ACCESS_KEY",
		"s3.secret_key":                  "FINX_S3_SECRET_KEY",
		"log.level":                      "FINX_LOG_LEVEL",
		"log.format":                     "FINX_LOG_FORMAT",
		"cors.allowed_origins":           "FINX_CORS_ALLOWED_ORIGINS",
		"parser.provider":                "FINX_PARSER_PROVIDER",
		"parser.api_key":                 "FINX_PARSER_API_KEY",
		"parser.default_model":           "FINX_PARSER_DEFAULT_MODEL",
		"parser.timeout_secs":            "FINX_PARSER_TIMEOUT_SECS",
		"parser.primary.provider":        "FINX_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "FINX_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "FINX_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.timeout_secs":    "FINX_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "FINX_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "FINX_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "FINX_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.timeout_secs":  "FINX_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.tertiary.provider":       "FINX_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":        "FINX_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model":  "FINX_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.timeout_secs":   "FINX_PARSER_TERTIARY_TIMEOUT_SECS",
		"extraction.coverage_threshold":  "FINX_EXTRACTION_COVERAGE_THRESHOLD",
		"extraction.window":              "FINX_EXTRACTION_WINDOW",
		"extraction.excerpt_length":      "FINX_EXTRACTION_EXCERPT_LENGTH",
		"extraction.max_years":           "FINX_EXTRACTION_MAX_YEARS",
		"extraction.concurrency":         "FINX_EXTRACTION_CONCURRENCY",
		"extraction.escalation_timeout":  "FINX_EXTRACTION_ESCALATION_TIMEOUT",
		"extraction.persist":             "FINX_EXTRACTION_PERSIST",
		"export.format":                  "FINX_EXPORT_FORMAT",
		"export.sheet_name":              "FINX_EXPORT_SHEET_NAME",
		"export.file_name":               "FINX_EXPORT_FILE_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FINX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FINX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Extraction = ExtractionConfig{
		CoverageThreshold: v.GetFloat64("extraction.coverage_threshold"),
		Window:            v.GetInt("extraction.window"),
		ExcerptLength:     v.GetInt("extraction.excerpt_length"),
		MaxYears:          v.GetInt("extraction.max_years"),
		Concurrency:       v.GetInt("extraction.concurrency"),
		EscalationTimeout: v.GetDuration("extraction.escalation_timeout"),
		Persist:           v.GetBool("extraction.persist"),
	}
	if t := cfg.Extraction.CoverageThreshold; t < 0 || t > 1 {
		return nil, fmt.Errorf("extraction.coverage_threshold must be within [0, 1], got %v", t)
	}

	cfg.Export = ExportConfig{
		Format:    v.GetString("export.format"),
		SheetName: v.GetString("export.sheet_name"),
		FileName:  v.GetString("export.file_name"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, slot string) ParserProviderConfig {
	prefix := "parser." + slot + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}
