package apidoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceConfigExporter(t *testing.T) {
	_, err := TraceConfig{Type: "kafka"}.Exporter()
	assert.Error(t, err)
	_, err = TraceConfig{Type: "http"}.Exporter()
	assert.Error(t, err)
	_, err = TraceConfig{Ratio: 2}.Exporter()
	assert.Error(t, err)

	export, err := TraceConfig{}.Exporter()
	require.NoError(t, err)
	exp, err := export(context.Background())
	require.NoError(t, err)
	assert.NoError(t, exp.ExportSpans(context.Background(), nil))

	_, err = TraceConfig{Type: "grpc", Endpoint: "127.0.0.1:4317"}.Exporter()
	assert.NoError(t, err)
}

func TestTraceConfigSampler(t *testing.T) {
	assert.Contains(t, TraceConfig{}.sampler().Description(), "AlwaysOn")
	assert.Contains(t, TraceConfig{Ratio: 0.5}.sampler().Description(), "TraceIDRatioBased")
}

func TestNewTraceProvider(t *testing.T) {
	tp, err := newTraceProvider(AppInfo{Name: "demo", Version: "1.0"}, TraceConfig{})
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
