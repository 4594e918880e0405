// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ADVITH_HOME", dir)
	for _, k := range []string{"ADVITH_API_URL", "ADVITH_API_TIMEOUT", "ADVITH_FEEDBACK_DELAY", "ADVITH_THEME", "ADVITH_LOG_LEVEL", "ADVITH_ENCRYPT_TOKENS"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20*time.Second, cfg.Chat.FeedbackDelay())
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
}

func TestLoad_TOMLThenEnv(t *testing.T) {
	dir := isolate(t)
	toml := "[api]\nbase_url = \"https://support.example.com/\"\n[chat]\nfeedback_delay_secs = 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0600))
	t.Setenv("ADVITH_THEME", "light")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://support.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Chat.FeedbackDelaySecs)
	assert.Equal(t, "light", cfg.UI.Theme)
	// Untouched sections keep their defaults.
	assert.Equal(t, 30, cfg.API.TimeoutSecs)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"ui":{"theme":"dark"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api\nbroken"), 0600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADVITH_FEEDBACK_DELAY=7\n"), 0600))
	// godotenv does not override variables that are already set, even empty.
	require.NoError(t, os.Unsetenv("ADVITH_FEEDBACK_DELAY"))
	t.Cleanup(func() { os.Unsetenv("ADVITH_FEEDBACK_DELAY") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Chat.FeedbackDelaySecs)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "ftp://nope"
	cfg.UI.Theme = "neon"
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 3)
	assert.Equal(t, "api.base_url", verrs[0].Field)
	assert.Equal(t, "ui.theme", verrs[1].Field)
	assert.Equal(t, "logging.level", verrs[2].Field)
}

func TestGetSet_DotNotation(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("api.base_url", "http://10.0.0.5:9000"))
	require.NoError(t, cfg.Set("chat.feedback_delay_secs", "45"))
	require.NoError(t, cfg.Set("ui.render_markdown", "false"))
	require.NoError(t, cfg.Set("api.requests_per_second", "2.5"))

	v, err := cfg.Get("chat.feedback_delay_secs")
	require.NoError(t, err)
	assert.Equal(t, 45, v)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.API.BaseURL)
	assert.False(t, cfg.UI.RenderMarkdown)
	assert.InDelta(t, 2.5, cfg.API.RequestsPerSecond, 0.0001)

	_, err = cfg.Get("api")
	assert.Error(t, err)
	_, err = cfg.Get("api.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("chat.feedback_delay_secs", "soon"))
}

func TestAllKeys(t *testing.T) {
	keys := AllKeys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "logging.compress")
	assert.NotContains(t, keys, "api")
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.UI.Theme = "dark"

	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.API.BaseURL = "http://other:1"
	assert.NotEqual(t, cfg.API.BaseURL, clone.API.BaseURL)
}

// TestConfig_ConcurrentAccess checks Global and SetGlobal under the race
// detector.
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_ConcurrentReload(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)
	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	w, err := NewWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case r := <-w.Changes():
		require.NoError(t, r.Err)
		assert.Equal(t, "light", r.Config.UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}
