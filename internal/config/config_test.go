package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 15, cfg.ChatContextWindowSize)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 90*time.Second, cfg.AITimeout)
	assert.Equal(t, "chat_jobs", cfg.RabbitQueue)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_CONTEXT_WINDOW_SIZE", "7")
	t.Setenv("AI_PROVIDER", "Ollama")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("WORKER_CONCURRENCY", "500")
	t.Setenv("API_BASE_URL", "http://example.test/")

	cfg := Load()

	assert.Equal(t, 7, cfg.ChatContextWindowSize)
	assert.Equal(t, "ollama", cfg.AIProvider)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, 50, cfg.WorkerConcurrency)
	assert.Equal(t, "http://example.test", cfg.APIBaseURL)
}

func TestLoad_ConfigFileUnderEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notechat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL: gemini-file\nRABBIT_QUEUE: from_file\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RABBIT_QUEUE", "from_env")

	cfg := Load()

	assert.Equal(t, "gemini-file", cfg.GeminiModel)
	assert.Equal(t, "from_env", cfg.RabbitQueue)
}
