package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "lostfound.db", cfg.DB)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 10, cfg.LoginRate)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := "addr: \":9000\"\ndb: campus.db\nai:\n  provider: openai\n  model: gpt-4o\n  timeout: 10s\npoll_interval: 1m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lostfound.yaml"), []byte(file), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOSTFOUND_ADMIN_USER=desk\nLOSTFOUND_DB=fromdotenv.db\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOSTFOUND_ADMIN_USER")
	})

	// The real environment beats .env, which beats the file.
	t.Setenv("LOSTFOUND_DB", "fromenv.db")
	t.Setenv("LOSTFOUND_AI_API_KEY", "sk-test")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "fromenv.db", cfg.DB)
	assert.Equal(t, "desk", cfg.AdminUser)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, time.Minute, cfg.PollInterval)

	a := cfg.Assistant()
	assert.Equal(t, "sk-test", a.APIKey)
	assert.Equal(t, "gpt-4o", a.Model)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(viper.New(), "missing.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOSTFOUND_AI_PROVIDER", "oracle")

	_, err := Load(viper.New(), "")
	assert.ErrorContains(t, err, "oracle")
}

func TestYAMLMasksKey(t *testing.T) {
	cfg := Config{Addr: ":8080", AI: AI{Provider: "openai", APIKey: "sk-secret"}}

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.Equal(t, "sk-secret", cfg.AI.APIKey)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, ":8080", back["addr"])
}
