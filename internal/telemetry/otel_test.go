package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskroom/taskroom/internal/config"
)

func TestSetupTracing_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryCfg
	}{
		{"off", config.TelemetryCfg{Enabled: false, OtlpEndpoint: "collector:4317"}},
		{"no endpoint", config.TelemetryCfg{Enabled: true, OtlpEndpoint: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := SetupTracing(context.Background(), &config.Config{Telemetry: tt.cfg})
			require.NoError(t, err)
			assert.Nil(t, tp)
		})
	}
}

func TestSetupTracing_Enabled(t *testing.T) {
	cfg := &config.Config{
		App:       config.AppCfg{Name: "taskroom-test", Env: "test"},
		Telemetry: config.TelemetryCfg{Enabled: true, OtlpEndpoint: "http://127.0.0.1:4317", SampleRatio: 0.5},
	}

	tp, err := SetupTracing(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = tp.Shutdown(ctx)
}

func TestCollectorAddr(t *testing.T) {
	assert.Equal(t, "collector:4317", collectorAddr("http://collector:4317/"))
	assert.Equal(t, "collector:4317", collectorAddr("https://collector:4317"))
	assert.Equal(t, "collector:4317", collectorAddr(" collector:4317 "))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(1.5).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
