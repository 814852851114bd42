package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	sampler "github.com/l0rem1psum/sampler"
	"github.com/l0rem1psum/sampler/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sampler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
label: bench
rate_hz: 50
output_queue_size: 256
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bench", cfg.Label)
	assert.Equal(t, 50.0, cfg.RateHz)
	assert.Equal(t, 256, cfg.OutputQueueSize)
	assert.Equal(t, sampler.DefaultCommandQueueSize, cfg.CommandQueueSize)
	assert.Equal(t, sampler.DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, sampler.DefaultSmoothing, cfg.Smoothing)
	assert.Equal(t, 50*time.Millisecond, cfg.PollPeriod())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "rate_hz: [1, 2\n")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate_ReportsEveryInvalidField(t *testing.T) {
	cfg := config.Default()
	cfg.RateHz = 0
	cfg.CommandQueueSize = 0
	cfg.BatchSize = -1
	cfg.Smoothing = 1.5

	err := config.Validate(&cfg)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 4)
}

func TestValidate_Default(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, config.Validate(&cfg))
}

func TestOptions_SpawnsWithConfiguredQueues(t *testing.T) {
	cfg := config.Default()
	cfg.OutputQueueSize = 7

	controller, outputs, err := sampler.Spawn(t.Context(), &constSource{}, cfg.Options()...)
	require.NoError(t, err)
	defer controller.Wait()
	defer controller.Shutdown()

	assert.Equal(t, 7, outputs.Cap())
}

type constSource struct{}

func (constSource) Init() error            { return nil }
func (constSource) Read() (float64, error) { return 0.5, nil }
func (constSource) Close() error           { return nil }
