package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	cfg, err := ReadConfig(configPath)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.NotEmpty(t, cfg.DB.Host)
	assert.NotEmpty(t, cfg.Auth.TokenSecret)

	// defaults filled by validate
	assert.NotZero(t, cfg.Webserver.ShutDownTime)
	assert.NotZero(t, cfg.Auth.TokenTTL)
	assert.NotZero(t, cfg.Timeouts.DB)
	assert.NotZero(t, cfg.Timeouts.Collaborator)
}

func TestReadConfigEnvOverride(t *testing.T) {
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	t.Setenv(EnvConfigJSON, `{"Title":"overridden","Webserver":{"Port":9999}}`)

	cfg, err := ReadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "overridden", cfg.Title)
	assert.Equal(t, 9999, cfg.Webserver.Port)
}

func TestReadConfigBadEnvJSON(t *testing.T) {
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	t.Setenv(EnvConfigJSON, `{not json`)

	_, err = ReadConfig(configPath)
	assert.Error(t, err)
}

func TestReadConfigMissingFile(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)

	_, err := ReadConfig(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			Auth:      Auth{TokenSecret: "secret"},
		}
	}

	testCases := []struct {
		name          string
		mutate        func(*Config)
		expectedError error
	}{
		{
			name:   "valid config passes",
			mutate: func(*Config) {},
		},
		{
			name:          "zero port",
			mutate:        func(c *Config) { c.Webserver.Port = 0 },
			expectedError: ErrWebServerPortCanNotBeZero,
		},
		{
			name:          "empty url",
			mutate:        func(c *Config) { c.Webserver.URL = "" },
			expectedError: ErrEmptyURL,
		},
		{
			name:          "empty token secret",
			mutate:        func(c *Config) { c.Auth.TokenSecret = "" },
			expectedError: ErrEmptyTokenSecret,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)

			err := validate(&cfg)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 5, cfg.Webserver.ShutDownTime)
			assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
			assert.Equal(t, 5*time.Second, cfg.Timeouts.DB)
			assert.Equal(t, 10*time.Second, cfg.Timeouts.Collaborator)
		})
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{Title: "CareerDesk"}

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `Title = "CareerDesk"`)
}
