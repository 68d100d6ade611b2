// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the HTTP
// front door, the chat bot loop, the durable store, the model backends and
// observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and addresses the durable store.
type DBConfig struct {
	Driver   string // sqlite|mysql
	Path     string // SQLite file path
	DSN      string // explicit DSN, wins over the discrete fields below
	Host     string
	User     string
	Password string
	Name     string
}

// DataSource returns the DSN for the configured driver.
func (d DBConfig) DataSource() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
			d.User, d.Password, hostPort(d.Host), d.Name)
	}
	return d.Path
}

func hostPort(h string) string {
	if strings.Contains(h, ":") {
		return h
	}
	return h + ":3306"
}

// ModelConfig configures the upstream model backends.
type ModelConfig struct {
	APIKey       string        // AIZA_API_KEY, bearer credential of the aggregator
	BaseURL      string        // AIZA_BASE_URL
	GeminiAPIKey string        // GEMINI_API_KEY, optional second backend
	DefaultModel string        // DEFAULT_MODEL
	Timeout      time.Duration // MODEL_TIMEOUT
	Temperature  float64
	MaxTokens    int
}

// AdminConfig names where support escalations go.
type AdminConfig struct {
	GroupID int64 // ADMIN_GROUP_ID, chat receiving new tickets
	UserID  int64 // ADMIN_USER_ID, allowed to reply to and close tickets
}

// TelegramConfig configures the long-poll chat front door.
type TelegramConfig struct {
	Token       string
	APIBase     string
	PollTimeout time.Duration
	SendRPS     float64
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // model calls can take up to MODEL_TIMEOUT
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Conversation
	MaxHistory int    // MAX_HISTORY_MESSAGES, prior turns replayed into a prompt
	FAQPath    string // FAQ_PATH, optional Markdown file with extra FAQ entries

	DB       DBConfig
	Model    ModelConfig
	Admin    AdminConfig
	Telegram TelegramConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 75*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 120*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		MaxHistory: getint("MAX_HISTORY_MESSAGES", 20),
		FAQPath:    strings.TrimSpace(getenv("FAQ_PATH", "")),

		DB: DBConfig{
			Driver:   strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:     getenv("DB_PATH", "assistant.db"),
			DSN:      getenv("DB_DSN", ""),
			Host:     getenv("DB_HOST", "localhost"),
			User:     getenv("DB_USER", "root"),
			Password: getenv("DB_PASSWORD", ""),
			Name:     getenv("DB_NAME", "tg_bot"),
		},
		Model: ModelConfig{
			APIKey:       strings.TrimSpace(getenv("AIZA_API_KEY", "")),
			BaseURL:      strings.TrimRight(getenv("AIZA_BASE_URL", "https://api.aiza-ai.ru/v1"), "/"),
			GeminiAPIKey: strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
			DefaultModel: getenv("DEFAULT_MODEL", "yandexgpt"),
			Timeout:      getdur("MODEL_TIMEOUT", 60*time.Second),
			Temperature:  getfloat("MODEL_TEMPERATURE", 0.7),
			MaxTokens:    getint("MODEL_MAX_TOKENS", 1000),
		},
		Admin: AdminConfig{
			GroupID: getint64("ADMIN_GROUP_ID", 0),
			UserID:  getint64("ADMIN_USER_ID", 0),
		},
		Telegram: TelegramConfig{
			Token:       strings.TrimSpace(getenv("TELEGRAM_TOKEN", "")),
			APIBase:     strings.TrimRight(getenv("TELEGRAM_API_BASE", "https://api.telegram.org"), "/"),
			PollTimeout: getdur("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
			SendRPS:     getfloat("TELEGRAM_SEND_RPS", 20),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 2.0),
		RateBurst: getint("RATE_BURST", 5),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-assistant-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "sqlite3" {
		cfg.DB.Driver = "sqlite"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.DataSource()) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "mysql":
		if cfg.DB.DSN == "" && strings.TrimSpace(cfg.DB.Name) == "" {
			return cfg, errors.New("DB_NAME must not be empty")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, mysql")
	}
	if cfg.MaxHistory < 0 {
		return cfg, errors.New("MAX_HISTORY_MESSAGES must be >= 0")
	}
	if strings.TrimSpace(cfg.Model.DefaultModel) == "" {
		return cfg, errors.New("DEFAULT_MODEL must not be empty")
	}
	if cfg.Model.Timeout <= 0 {
		return cfg, errors.New("MODEL_TIMEOUT must be > 0")
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 2 {
		return cfg, errors.New("MODEL_TEMPERATURE must be between 0 and 2")
	}
	if cfg.Model.MaxTokens <= 0 {
		return cfg, errors.New("MODEL_MAX_TOKENS must be > 0")
	}
	if cfg.Telegram.PollTimeout < 0 {
		return cfg, errors.New("TELEGRAM_POLL_TIMEOUT must be >= 0")
	}
	if cfg.Telegram.SendRPS <= 0 {
		return cfg, errors.New("TELEGRAM_SEND_RPS must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
