// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"OLLAMA_HOST", "TUTOR_ENDPOINT", "TUTOR_MODEL", "TUTOR_TIMEOUT_SECS",
	"TUTOR_MODE", "TUTOR_ADDR", "TUTOR_LOG_LEVEL", "TUTOR_LOG_FILE",
}

// clearEnv unsets every variable the package reads for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:11434/api/generate", cfg.Inference.Endpoint)
	assert.Equal(t, "llama3.2", cfg.Inference.Model)
	assert.Equal(t, 60*time.Second, cfg.Inference.Timeout())
	assert.Equal(t, ModeTUI, cfg.UI.Mode)
	assert.True(t, cfg.UI.Markdown)
	assert.False(t, cfg.UI.HelpExpanded)
	assert.NoError(t, cfg.Validate())
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[inference]
model = "phi3"
timeout_secs = 15

[ui]
markdown = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "phi3", cfg.Inference.Model)
	assert.Equal(t, 15, cfg.Inference.TimeoutSecs)
	assert.False(t, cfg.UI.Markdown)
	// Untouched keys keep defaults.
	assert.Equal(t, Default().Inference.Endpoint, cfg.Inference.Endpoint)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[inference]
model = "phi3"
`)
	t.Setenv("TUTOR_MODEL", "mistral")
	t.Setenv("TUTOR_TIMEOUT_SECS", "5")
	t.Setenv("TUTOR_MODE", "WEB")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Inference.Model)
	assert.Equal(t, 5, cfg.Inference.TimeoutSecs)
	assert.Equal(t, ModeWeb, cfg.UI.Mode)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", "[inference\nmodel = ")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValuesReported(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[inference]
endpoint = "localhost:11434"
timeout_secs = -1

[ui]
mode = "gui"
`)

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["inference.endpoint"])
	assert.True(t, fields["inference.timeout_secs"])
	assert.True(t, fields["ui.mode"])
}

func TestLoadTOML_RecordsUndecodedKeys(t *testing.T) {
	path := writeFile(t, "config.toml", `
[inference]
model = "phi3"
temperature = 0.2
`)
	cfg := Default()
	require.NoError(t, LoadTOML(cfg, path))
	assert.Equal(t, []string{"inference.temperature"}, cfg.UndecodedKeys())
}

func TestLoadFromPath_IgnoresEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TUTOR_MODEL", "from-env")
	path := writeFile(t, "config.toml", "[inference]\nmodel = \"from-file\"\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Inference.Model)
}

// =============================================================================
// DOTENV TESTS
// =============================================================================

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	clearEnv(t)
	t.Setenv("TUTOR_MODEL", "already-set")
	path := writeFile(t, ".env", "TUTOR_MODEL=from-dotenv\nTUTOR_ADDR=127.0.0.1:9000\n")
	t.Cleanup(func() { os.Unsetenv("TUTOR_ADDR") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "already-set", os.Getenv("TUTOR_MODEL"))
	assert.Equal(t, "127.0.0.1:9000", os.Getenv("TUTOR_ADDR"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

// =============================================================================
// OLLAMA_HOST TESTS
// =============================================================================

func TestApplyEnvOverrides_OllamaHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"127.0.0.1:11500", "http://127.0.0.1:11500/api/generate"},
		{"gpu-box", "http://gpu-box:11434/api/generate"},
		{"https://ollama.lan:443", "https://ollama.lan:443/api/generate"},
	}

	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OLLAMA_HOST", tc.host)

			cfg := Default()
			cfg.ApplyEnvOverrides()
			assert.Equal(t, tc.want, cfg.Inference.Endpoint)
		})
	}
}

func TestApplyEnvOverrides_EndpointWinsOverOllamaHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_HOST", "gpu-box")
	t.Setenv("TUTOR_ENDPOINT", "http://10.0.0.2:11434/api/generate")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "http://10.0.0.2:11434/api/generate", cfg.Inference.Endpoint)
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Inference.Model = "qwen2.5"
	cfg.UI.HelpExpanded = true
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# tutor configuration file")

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", loaded.Inference.Model)
	assert.True(t, loaded.UI.HelpExpanded)
}

func TestEncode_WritesHeaderAndSections(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = "127.0.0.1:9000"

	data, err := cfg.Encode()
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# tutor configuration file\n"))
	for _, section := range []string{"[inference]", "[ui]", "[server]", "[log]"} {
		assert.Contains(t, text, section)
	}
	assert.Equal(t, 1, strings.Count(text, "# tutor configuration file"))

	decoded := Default()
	decoded.Server.Addr = ""
	_, err = toml.Decode(text, decoded)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", decoded.Server.Addr)
}

// =============================================================================
// GET/SET TESTS
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("inference.model", "phi3"))
	require.NoError(t, cfg.Set("inference.timeout_secs", "30"))
	require.NoError(t, cfg.Set("ui.markdown", "false"))

	v, err := cfg.Get("inference.model")
	require.NoError(t, err)
	assert.Equal(t, "phi3", v)
	assert.Equal(t, 30, cfg.Inference.TimeoutSecs)
	assert.False(t, cfg.UI.Markdown)

	assert.Error(t, cfg.Set("inference.timeout_secs", "soon"))
	assert.Error(t, cfg.Set("ui.markdown", "maybe"))
	_, err = cfg.Get("inference")
	assert.Error(t, err)
	_, err = cfg.Get("nope.key")
	assert.Error(t, err)
}

func TestAllKeys(t *testing.T) {
	keys := AllKeys()
	assert.Contains(t, keys, "inference.endpoint")
	assert.Contains(t, keys, "ui.help_expanded")
	assert.Contains(t, keys, "log.file")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestValidateErrors_Error(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	assert.Equal(t, "a: bad; b: worse", errs.Error())
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
}
