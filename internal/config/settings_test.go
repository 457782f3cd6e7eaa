package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/common"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("USER", "alice")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	s, err := Load(viper.New())
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/spice/spice.db"), s.Database.Path)
	assert.Equal(t, "alice", s.User.Name)
	assert.Equal(t, "predict", s.Classifier.Path)
	assert.Equal(t, 15*time.Second, s.Classifier.Timeout)
	assert.Equal(t, SessionBackendMemory, s.Session.Backend)
	assert.Equal(t, 30*time.Minute, s.Session.IdleTimeout)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, "openai", s.LLM.Provider)
	assert.Equal(t, "sk-env", s.LLM.APIKey)
	assert.InDelta(t, 0.3, s.LLM.Temperature, 0.0001)
	assert.Equal(t, 512, s.LLM.MaxTokens)
	assert.Equal(t, 15*time.Minute, s.LLM.CacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("database.path", "/tmp/ledger.db")
	v.Set("user.name", "  bob ")
	v.Set("classifier.path", "/opt/nlu/predict")
	v.Set("classifier.args", []string{"--model", "small"})
	v.Set("classifier.timeout", "5s")
	v.Set("session.backend", "SQLite")
	v.Set("session.idle_timeout", "0s")
	v.Set("llm.provider", "deepseek")
	v.Set("llm.deepseek_api_key", "ds-key")

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ledger.db", s.Database.Path)
	assert.Equal(t, "bob", s.User.Name)
	assert.Equal(t, []string{"--model", "small"}, s.Classifier.Args)
	assert.Equal(t, 5*time.Second, s.Classifier.Timeout)
	assert.Equal(t, SessionBackendSQLite, s.Session.Backend)
	assert.Zero(t, s.Session.IdleTimeout)
	assert.Equal(t, "ds-key", s.LLM.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown session backend", key: "session.backend", value: "redis"},
		{name: "negative idle timeout", key: "session.idle_timeout", value: "-1m"},
		{name: "zero classifier timeout", key: "classifier.timeout", value: "0s"},
		{name: "bad log level", key: "logging.level", value: "loud"},
		{name: "bad log format", key: "logging.format", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPICE_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/spice.db", want: filepath.Join(home, "spice.db")},
		{in: "$SPICE_TEST_DIR/spice.db", want: "/data/spice.db"},
		{in: "/abs/path.db", want: "/abs/path.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, EnsureParentDir(filepath.Join(dir, "spice.db")))
	assert.DirExists(t, dir)

	assert.NoError(t, EnsureParentDir(":memory:"))
}

func TestLoad_SheetsFallsBackToEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-sheet")
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-client")

	v := viper.New()
	v.Set("sheets.client_id", "cfg-client")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "env-sheet", s.Sheets.SpreadsheetID)
	assert.Equal(t, "cfg-client", s.Sheets.ClientID)
}
