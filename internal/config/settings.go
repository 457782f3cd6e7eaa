package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-assistant/internal/common"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Settings is the resolved configuration for every spice command.
type Settings struct {
	Classifier ClassifierSettings
	Session    SessionSettings
	Database   DatabaseSettings
	User       UserSettings
	Server     ServerSettings
	Logging    LoggingSettings
	LLM        LLMSettings
	Sheets     SheetsSettings
}

// DatabaseSettings locates the ledger database.
type DatabaseSettings struct {
	Path string
}

// UserSettings identifies the local user for terminal sessions.
type UserSettings struct {
	Name string
}

// ClassifierSettings configures the external intent classifier.
type ClassifierSettings struct {
	Path    string
	Dir     string
	Args    []string
	Timeout time.Duration
}

// SessionSettings configures conversation state.
type SessionSettings struct {
	Backend     string
	IdleTimeout time.Duration
}

// ServerSettings configures the HTTP transport.
type ServerSettings struct {
	Addr    string
	CertDir string
	TLS     bool
}

// LoggingSettings configures slog output.
type LoggingSettings struct {
	Level  string
	Format string
}

// LLMSettings configures the suggestion provider.
type LLMSettings struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	ClaudeCodePath string
	Temperature    float64
	MaxTokens      int
	MaxRetries     int
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	RateLimit      int
}

// SheetsSettings configures the Google Sheets export.
type SheetsSettings struct {
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("classifier.path", "predict")
	v.SetDefault("classifier.timeout", 15*time.Second)
	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cert_dir", "~/.config/spice/certs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 2*time.Second)
	v.SetDefault("llm.cache_ttl", 15*time.Minute)
	v.SetDefault("llm.rate_limit", 20)
}

// Load reads Settings from v, applying defaults for anything unset.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		Database: DatabaseSettings{Path: ExpandPath(v.GetString("database.path"))},
		User:     UserSettings{Name: strings.TrimSpace(v.GetString("user.name"))},
		Classifier: ClassifierSettings{
			Path:    ExpandPath(v.GetString("classifier.path")),
			Dir:     ExpandPath(v.GetString("classifier.dir")),
			Args:    v.GetStringSlice("classifier.args"),
			Timeout: v.GetDuration("classifier.timeout"),
		},
		Session: SessionSettings{
			Backend:     strings.ToLower(v.GetString("session.backend")),
			IdleTimeout: v.GetDuration("session.idle_timeout"),
		},
		Server: ServerSettings{
			Addr:    v.GetString("server.addr"),
			CertDir: ExpandPath(v.GetString("server.cert_dir")),
			TLS:     v.GetBool("server.tls"),
		},
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		LLM: LLMSettings{
			Provider:       strings.ToLower(v.GetString("llm.provider")),
			Model:          v.GetString("llm.model"),
			BaseURL:        v.GetString("llm.base_url"),
			ClaudeCodePath: ExpandPath(v.GetString("llm.claude_code_path")),
			Temperature:    v.GetFloat64("llm.temperature"),
			MaxTokens:      v.GetInt("llm.max_tokens"),
			MaxRetries:     v.GetInt("llm.max_retries"),
			RetryDelay:     v.GetDuration("llm.retry_delay"),
			CacheTTL:       v.GetDuration("llm.cache_ttl"),
			RateLimit:      v.GetInt("llm.rate_limit"),
		},
	}
	s.LLM.APIKey = apiKey(v, s.LLM.Provider)
	s.Sheets = loadSheets(v)

	if s.User.Name == "" {
		s.User.Name = os.Getenv("USER")
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// apiKey prefers the provider-specific viper key, then the provider's usual
// environment variable.
func apiKey(v *viper.Viper, provider string) string {
	if key := v.GetString("llm.api_key"); key != "" {
		return key
	}
	switch provider {
	case "openai":
		if key := v.GetString("llm.openai_api_key"); key != "" {
			return key
		}
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		if key := v.GetString("llm.anthropic_api_key"); key != "" {
			return key
		}
		return os.Getenv("ANTHROPIC_API_KEY")
	case "deepseek":
		if key := v.GetString("llm.deepseek_api_key"); key != "" {
			return key
		}
		return os.Getenv("DEEPSEEK_API_KEY")
	default:
		return ""
	}
}

// loadSheets reads sheets.* keys, falling back to GOOGLE_SHEETS_* variables.
func loadSheets(v *viper.Viper) SheetsSettings {
	get := func(key, env string) string {
		if val := v.GetString("sheets." + key); val != "" {
			return val
		}
		return os.Getenv(env)
	}
	return SheetsSettings{
		ServiceAccountPath: ExpandPath(get("service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")),
		ClientID:           get("client_id", "GOOGLE_SHEETS_CLIENT_ID"),
		ClientSecret:       get("client_secret", "GOOGLE_SHEETS_CLIENT_SECRET"),
		RefreshToken:       get("refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN"),
		SpreadsheetID:      get("spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID"),
		SpreadsheetName:    get("spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"),
		TimeZone:           v.GetString("sheets.time_zone"),
	}
}

// Validate checks settings that would otherwise fail late.
func (s Settings) Validate() error {
	switch s.Session.Backend {
	case SessionBackendMemory, SessionBackendSQLite:
	default:
		return fmt.Errorf("%w: session.backend %q (want memory or sqlite)", common.ErrInvalidConfig, s.Session.Backend)
	}
	if s.Session.IdleTimeout < 0 {
		return fmt.Errorf("%w: session.idle_timeout must not be negative", common.ErrInvalidConfig)
	}
	if s.Classifier.Timeout <= 0 {
		return fmt.Errorf("%w: classifier.timeout must be positive", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	switch s.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, s.Logging.Format)
	}
	return nil
}
