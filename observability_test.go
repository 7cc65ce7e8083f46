package bbecs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleSummary() FrameSummary {
	return FrameSummary{
		WorldID:  uuid.MustParse("6f1c0a52-3b0e-4a8e-9a43-0d3c2b1f4e55"),
		Frame:    42,
		Duration: 5 * time.Millisecond,
		Deleted:  []EntityID{1, 4},
		Live:     10,
		Free:     2,
		Capacity: 1024,
	}
}

func TestPrometheusFrameCollectorWritesMetrics(t *testing.T) {
	collector := NewPrometheusFrameCollector(&PrometheusCollectorOptions{
		DurationBuckets: []time.Duration{time.Millisecond, 10 * time.Millisecond},
	})
	cimpl, ok := collector.(*PrometheusFrameCollector)
	require.True(t, ok, "expected PrometheusFrameCollector implementation")

	collector.ObserveFrame(sampleSummary())
	collector.ObserveFrame(sampleSummary())

	var buf bytes.Buffer
	require.NoError(t, cimpl.WriteMetrics(&buf))
	metrics := buf.String()

	labels := `world_id="6f1c0a52-3b0e-4a8e-9a43-0d3c2b1f4e55"`
	assert.Contains(t, metrics, "bbecs_frame_commit_duration_seconds_count{"+labels+"} 2.000000")
	assert.Contains(t, metrics, "bbecs_frame_commit_duration_seconds_bucket{"+labels+`,le="0.001000"} 0.000000`)
	assert.Contains(t, metrics, "bbecs_frame_commit_duration_seconds_bucket{"+labels+`,le="0.010000"} 2.000000`)
	assert.Contains(t, metrics, "bbecs_entities_deleted_total{"+labels+"} 4.000000")
	assert.Contains(t, metrics, "bbecs_entities_live{"+labels+"} 10.000000")
	assert.Contains(t, metrics, "# TYPE bbecs_column_capacity gauge")
}

func TestPrometheusFrameCollectorStreamsToWriter(t *testing.T) {
	var buf bytes.Buffer
	collector := NewPrometheusFrameCollector(&PrometheusCollectorOptions{Writer: &buf})
	collector.ObserveFrame(sampleSummary())
	assert.True(t, strings.HasPrefix(buf.String(), "# HELP bbecs_frame_commit_duration_seconds"))
}

func TestSigNozSpanExporterWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewSigNozSpanExporter(&SigNozOptions{Writer: &buf, ServiceName: "bbecs-test"})
	exporter.ExportFrame(sampleSummary())

	require.NotZero(t, buf.Len(), "expected exporter to write output")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "bbecs-test", payload["service_name"])
	assert.Equal(t, "commit:42", payload["name"])

	attrs, ok := payload["attributes"].(map[string]any)
	require.True(t, ok, "attributes missing in payload: %v", payload)
	assert.Equal(t, "6f1c0a52-3b0e-4a8e-9a43-0d3c2b1f4e55", attrs["world_id"])
	assert.Equal(t, []any{float64(1), float64(4)}, attrs["deleted_ids"])
}

func TestSigNozSpanExporterWithoutWriter(t *testing.T) {
	exporter := NewSigNozSpanExporter(nil)
	assert.NotPanics(t, func() { exporter.ExportFrame(sampleSummary()) })
}

func TestLoggingObserverFormats(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(core))

	newLoggingObserver(logger, ObservationLogFormatJSON).FrameCommitted(sampleSummary())
	newLoggingObserver(logger, ObservationLogFormatKeyValue).FrameCommitted(sampleSummary())

	entries := logs.All()
	require.Len(t, entries, 2)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[0].Message), &payload))
	assert.Equal(t, float64(42), payload["frame"])
	assert.Equal(t, float64(2), payload["deleted"])

	assert.Equal(t, "frame committed", entries[1].Message)
	fields := entries[1].ContextMap()
	assert.EqualValues(t, 42, fields["frame"])
	assert.EqualValues(t, 2, fields["deleted"])
}

func TestBuildObserverChain(t *testing.T) {
	obs, collector := buildObserverChain(nil, nil, nil)
	assert.IsType(t, noopObserver{}, obs)
	assert.Nil(t, collector)

	var spans bytes.Buffer
	obs, collector = buildObserverChain(NewZapLogger(nil), nil, &ObservationSettings{
		EnableStructuredLogging: true,
		EnablePrometheus:        true,
		EnableSigNoz:            true,
		SigNozOptions:           &SigNozOptions{Writer: &spans},
	})
	require.IsType(t, compositeObserver{}, obs)
	assert.Len(t, obs.(compositeObserver).observers, 3)
	require.NotNil(t, collector)

	obs.FrameCommitted(sampleSummary())
	assert.NotZero(t, spans.Len())
}

func TestWorldExposesPrometheusMetrics(t *testing.T) {
	w := NewWorld(WithObservation(ObservationSettings{EnablePrometheus: true}))
	w.Spawn()
	require.NoError(t, w.DeleteByID(0))
	require.NoError(t, w.Commit())

	var buf bytes.Buffer
	require.NoError(t, w.WriteMetrics(&buf))
	assert.Contains(t, buf.String(), "bbecs_entities_deleted_total{world_id=\""+w.ID().String()+"\"} 1.000000")

	plain := NewWorld()
	buf.Reset()
	require.NoError(t, plain.WriteMetrics(&buf))
	assert.Zero(t, buf.Len())
}
