package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath != "/api" {
		t.Fatalf("API_BASE_PATH default expected '/api', got %q", cfg.APIBasePath)
	}
}

// --- Load defaults ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxHistory != 20 {
		t.Fatalf("MaxHistory default = %d, want 20", cfg.MaxHistory)
	}
	if cfg.Model.DefaultModel != "yandexgpt" || cfg.Model.Timeout != 60*time.Second {
		t.Fatalf("model defaults unexpected: %+v", cfg.Model)
	}
	if cfg.Model.Temperature != 0.7 || cfg.Model.MaxTokens != 1000 {
		t.Fatalf("model shaping defaults unexpected: %+v", cfg.Model)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DataSource() != "assistant.db" {
		t.Fatalf("db defaults unexpected: %+v", cfg.DB)
	}
	if cfg.Telegram.APIBase != "https://api.telegram.org" || cfg.Telegram.PollTimeout != 30*time.Second {
		t.Fatalf("telegram defaults unexpected: %+v", cfg.Telegram)
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_Overrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // normalizes to "release"

	t.Setenv("LOG_LEVEL", "warning") // normalizes to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/") // -> "/api"

	t.Setenv("MAX_HISTORY_MESSAGES", "8")
	t.Setenv("FAQ_PATH", " /etc/assistant/faq.md ")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_USER", "bot")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "assistant")

	t.Setenv("AIZA_API_KEY", "  k-123  ")
	t.Setenv("AIZA_BASE_URL", "http://upstream/v1/")
	t.Setenv("GEMINI_API_KEY", "g-1")
	t.Setenv("DEFAULT_MODEL", "deepseek-reasoner")
	t.Setenv("MODEL_TIMEOUT", "5s")

	t.Setenv("ADMIN_GROUP_ID", "-100200")
	t.Setenv("ADMIN_USER_ID", "42")
	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("TELEGRAM_API_BASE", "http://tg/")
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "0s")

	t.Setenv("RATE_RPS", "x")      // -> default 2.0
	t.Setenv("RATE_BURST", "nope") // -> default 5

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.MaxHistory != 8 || cfg.FAQPath != "/etc/assistant/faq.md" {
		t.Fatalf("conversation fields unexpected: %d %q", cfg.MaxHistory, cfg.FAQPath)
	}

	if cfg.DB.Driver != "mysql" {
		t.Fatalf("db driver = %q", cfg.DB.Driver)
	}
	wantDSN := "bot:pw@tcp(db.local:3306)/assistant?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true"
	if got := cfg.DB.DataSource(); got != wantDSN {
		t.Fatalf("DataSource = %q, want %q", got, wantDSN)
	}

	if cfg.Model.APIKey != "k-123" || cfg.Model.BaseURL != "http://upstream/v1" ||
		cfg.Model.GeminiAPIKey != "g-1" || cfg.Model.DefaultModel != "deepseek-reasoner" ||
		cfg.Model.Timeout != 5*time.Second {
		t.Fatalf("model unexpected: %+v", cfg.Model)
	}
	if cfg.Admin.GroupID != -100200 || cfg.Admin.UserID != 42 {
		t.Fatalf("admin unexpected: %+v", cfg.Admin)
	}
	if cfg.Telegram.Token != "tok" || cfg.Telegram.APIBase != "http://tg" || cfg.Telegram.PollTimeout != 0 {
		t.Fatalf("telegram unexpected: %+v", cfg.Telegram)
	}

	if cfg.RateRPS != 2.0 || cfg.RateBurst != 5 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestDBConfig_DataSource(t *testing.T) {
	if got := (DBConfig{Driver: "mysql", DSN: "explicit"}).DataSource(); got != "explicit" {
		t.Fatalf("explicit DSN should win, got %q", got)
	}
	got := (DBConfig{Driver: "mysql", Host: "h:3307", User: "u", Name: "n"}).DataSource()
	if !strings.HasPrefix(got, "u:@tcp(h:3307)/n?") {
		t.Fatalf("host with port should be kept, got %q", got)
	}
	if got := (DBConfig{Driver: "sqlite", Path: "x.db"}).DataSource(); got != "x.db" {
		t.Fatalf("sqlite DataSource = %q", got)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"empty PORT via spaces", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"non-positive timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"max header bytes <= 0", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"empty DB_PATH", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"unknown DB_DRIVER", map[string]string{"DB_DRIVER": "oracle"}, "DB_DRIVER"},
		{"mysql without name", map[string]string{"DB_DRIVER": "mysql", "DB_NAME": " "}, "DB_NAME"},
		{"negative history", map[string]string{"MAX_HISTORY_MESSAGES": "-1"}, "MAX_HISTORY_MESSAGES"},
		{"blank default model", map[string]string{"DEFAULT_MODEL": " "}, "DEFAULT_MODEL"},
		{"model timeout", map[string]string{"MODEL_TIMEOUT": "0s"}, "MODEL_TIMEOUT"},
		{"temperature", map[string]string{"MODEL_TEMPERATURE": "3"}, "MODEL_TEMPERATURE"},
		{"max tokens", map[string]string{"MODEL_MAX_TOKENS": "0"}, "MODEL_MAX_TOKENS"},
		{"poll timeout", map[string]string{"TELEGRAM_POLL_TIMEOUT": "-1s"}, "TELEGRAM_POLL_TIMEOUT"},
		{"send rps", map[string]string{"TELEGRAM_SEND_RPS": "0"}, "TELEGRAM_SEND_RPS"},
		{"rate rps negative", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"rate burst < 1", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts max age negative", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"otel sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected %q validation error, got: %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_numbersAndDurations(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}
	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I64_VALID", " -1002983110493 ")
	if getint64("I64_VALID", 0) != -1002983110493 {
		t.Fatalf("getint64 parse failed")
	}
	t.Setenv("I64_BAD", "x")
	if getint64("I64_BAD", 7) != 7 {
		t.Fatalf("getint64 default on bad parse failed")
	}
	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on"} {
		k := "B_T_" + string(rune('a'+i))
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off"} {
		k := "B_F_" + string(rune('a'+i))
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: got %#v", got)
	}
	for in, want := range map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "AIZA_API_KEY", "GEMINI_API_KEY", "TELEGRAM_TOKEN"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
