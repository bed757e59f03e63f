package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/uniprot-idmapping/pkg/idmapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://rest.uniprot.org", cfg.BaseURL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Empty(t, cfg.RedisURL)

	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, idmapping.DefaultOptions(), opts)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("UNIPROT_POLL_INTERVAL", "2")
	t.Setenv("UNIPROT_MAX_WAIT", "10m")
	t.Setenv("UNIPROT_MODE", "concurrent")
	t.Setenv("UNIPROT_INCLUDE_ISOFORM", "false")
	t.Setenv("UNIPROT_SEGMENT_SIZE", "500")
	t.Setenv("UNIPROT_ON_JOB_FAILURE", "continue")
	t.Setenv("UNIPROT_RATE_LIMIT", "2.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimit)

	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, opts.PollInterval)
	assert.Equal(t, 10*time.Minute, opts.MaxWait)
	assert.Equal(t, idmapping.ModeConcurrent, opts.Mode)
	assert.False(t, opts.IncludeIsoform)
	assert.Equal(t, 500, opts.SegmentSize)
	assert.Equal(t, idmapping.ContinueRun, opts.OnJobFailure)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("UNIPROT_TO=UniProtKB-Swiss-Prot\nUNIPROT_PAGE_SIZE=100\n"), 0o600))
	t.Setenv("UNIPROT_TO", "")
	t.Setenv("UNIPROT_PAGE_SIZE", "")
	os.Unsetenv("UNIPROT_TO")
	os.Unsetenv("UNIPROT_PAGE_SIZE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UniProtKB-Swiss-Prot", cfg.Run.To)
	assert.Equal(t, 100, cfg.Run.PageSize)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("UNIPROT_SEGMENT_SIZE", "many")
	t.Setenv("UNIPROT_POLL_INTERVAL", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIPROT_SEGMENT_SIZE")
	assert.Contains(t, err.Error(), "UNIPROT_POLL_INTERVAL")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load("")
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Run.Mode = "parallel" }},
		{"unknown policy", func(c *Config) { c.Run.OnJobFailure = "ignore" }},
		{"zero segment size", func(c *Config) { c.Run.SegmentSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.modify(cfg)

			_, err = cfg.Options(nil)
			assert.Error(t, err)
		})
	}
}

func TestClientConfig(t *testing.T) {
	t.Setenv("UNIPROT_BASE_URL", "http://localhost:8080")
	t.Setenv("UNIPROT_MAX_RETRIES", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	cc := cfg.ClientConfig(nil)
	assert.Equal(t, "http://localhost:8080", cc.BaseURL)
	assert.Equal(t, 3, cc.MaxRetries)
	assert.Nil(t, cc.Redis)
}

func TestNewRedisClient(t *testing.T) {
	cfg := &Config{}
	rdb, err := cfg.NewRedisClient()
	require.NoError(t, err)
	assert.Nil(t, rdb)

	cfg.RedisURL = "redis://localhost:6379/2"
	rdb, err = cfg.NewRedisClient()
	require.NoError(t, err)
	defer rdb.Close()
	assert.Equal(t, 2, rdb.Options().DB)

	cfg.RedisURL = "://bad"
	_, err = cfg.NewRedisClient()
	assert.Error(t, err)
}
