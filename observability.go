package bbecs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

type noopObserver struct{}

func (noopObserver) FrameCommitted(FrameSummary) {}

type compositeObserver struct {
	observers []FrameObserver
}

func (c compositeObserver) FrameCommitted(summary FrameSummary) {
	for _, observer := range c.observers {
		observer.FrameCommitted(summary)
	}
}

type loggingObserver struct {
	logger Logger
	format ObservationLogFormat
}

func newLoggingObserver(logger Logger, format ObservationLogFormat) FrameObserver {
	if logger == nil {
		return noopObserver{}
	}
	if format != ObservationLogFormatKeyValue {
		format = ObservationLogFormatJSON
	}
	return loggingObserver{logger: logger, format: format}
}

func (o loggingObserver) FrameCommitted(summary FrameSummary) {
	switch o.format {
	case ObservationLogFormatKeyValue:
		o.logKeyValue(summary)
	default:
		o.logJSON(summary)
	}
}

func (o loggingObserver) logJSON(summary FrameSummary) {
	payload := map[string]any{
		"world_id":    summary.WorldID.String(),
		"frame":       summary.Frame,
		"duration_ms": float64(summary.Duration) / float64(time.Millisecond),
		"deleted":     len(summary.Deleted),
		"live":        summary.Live,
		"free":        summary.Free,
		"capacity":    summary.Capacity,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		o.logger.With("frame", summary.Frame).Error("frame summary marshal error", "err", err)
		return
	}
	o.logger.Info(string(data))
}

func (o loggingObserver) logKeyValue(summary FrameSummary) {
	o.logger.With("frame", summary.Frame).Info("frame committed",
		"duration", summary.Duration,
		"deleted", len(summary.Deleted),
		"live", summary.Live,
		"free", summary.Free,
		"capacity", summary.Capacity,
	)
}

type prometheusObserver struct {
	collector PrometheusCollector
}

func newPrometheusObserver(collector PrometheusCollector) FrameObserver {
	if collector == nil {
		return noopObserver{}
	}
	return prometheusObserver{collector: collector}
}

func (o prometheusObserver) FrameCommitted(summary FrameSummary) {
	o.collector.ObserveFrame(summary)
}

type sigNozObserver struct {
	exporter SigNozExporter
}

func newSigNozObserver(exporter SigNozExporter) FrameObserver {
	if exporter == nil {
		return noopObserver{}
	}
	return sigNozObserver{exporter: exporter}
}

func (o sigNozObserver) FrameCommitted(summary FrameSummary) {
	o.exporter.ExportFrame(summary)
}

// buildObserverChain combines the explicit observers with the built-in ones
// enabled in obs. The Prometheus collector is returned so the world can expose it.
func buildObserverChain(logger Logger, explicit []FrameObserver, obs *ObservationSettings) (FrameObserver, PrometheusCollector) {
	observers := append([]FrameObserver(nil), explicit...)
	var collector PrometheusCollector

	if obs != nil {
		if obs.EnableStructuredLogging {
			structuredLogger := obs.StructuredLogger
			if structuredLogger == nil {
				structuredLogger = logger
			}
			observers = append(observers, newLoggingObserver(structuredLogger, obs.LoggingFormat))
		}

		if obs.EnablePrometheus {
			collector = obs.PrometheusCollector
			if collector == nil {
				collector = NewPrometheusFrameCollector(obs.PrometheusOptions)
			}
			observers = append(observers, newPrometheusObserver(collector))
		}

		if obs.EnableSigNoz {
			exporter := obs.SigNozExporter
			if exporter == nil {
				exporter = NewSigNozSpanExporter(obs.SigNozOptions)
			}
			observers = append(observers, newSigNozObserver(exporter))
		}
	}

	switch len(observers) {
	case 0:
		return noopObserver{}, collector
	case 1:
		return observers[0], collector
	default:
		return compositeObserver{observers: observers}, collector
	}
}

func (w *World) buildObserver() FrameObserver {
	observer, collector := buildObserverChain(w.logger, w.observers, w.observation)
	w.metrics = collector
	return observer
}

// PrometheusFrameCollector accumulates commit metrics per world and renders
// them in the Prometheus text exposition format.
type PrometheusFrameCollector struct {
	options *PrometheusCollectorOptions
	mu      sync.Mutex
	samples map[string]*prometheusSample
}

type prometheusSample struct {
	durationSum   float64
	durationCount float64
	buckets       []float64
	deleted       float64
	live          float64
	free          float64
	capacity      float64
}

func NewPrometheusFrameCollector(opts *PrometheusCollectorOptions) PrometheusCollector {
	if opts == nil {
		opts = &PrometheusCollectorOptions{}
	}
	return &PrometheusFrameCollector{
		options: opts,
		samples: make(map[string]*prometheusSample),
	}
}

func (c *PrometheusFrameCollector) ObserveFrame(summary FrameSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := summary.WorldID.String()
	sample, ok := c.samples[key]
	if !ok {
		sample = &prometheusSample{}
		if buckets := c.options.DurationBuckets; len(buckets) > 0 {
			sample.buckets = make([]float64, len(buckets))
		}
		c.samples[key] = sample
	}
	durSeconds := summary.Duration.Seconds()
	sample.durationSum += durSeconds
	sample.durationCount++
	for i := range sample.buckets {
		if durSeconds <= c.options.DurationBuckets[i].Seconds() {
			sample.buckets[i]++
		}
	}
	sample.deleted += float64(len(summary.Deleted))
	sample.live = float64(summary.Live)
	sample.free = float64(summary.Free)
	sample.capacity = float64(summary.Capacity)

	if writer := c.options.Writer; writer != nil {
		_ = c.writeMetricsLocked(writer)
	}
}

func (c *PrometheusFrameCollector) WriteMetrics(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeMetricsLocked(w)
}

func (c *PrometheusFrameCollector) writeMetricsLocked(w io.Writer) error {
	if w == nil {
		return nil
	}
	keys := make([]string, 0, len(c.samples))
	for key := range c.samples {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("# HELP bbecs_frame_commit_duration_seconds Commit duration.\n")
	buf.WriteString("# TYPE bbecs_frame_commit_duration_seconds summary\n")
	for _, key := range keys {
		sample := c.samples[key]
		labels := fmt.Sprintf("world_id=\"%s\"", key)
		fmt.Fprintf(&buf, "bbecs_frame_commit_duration_seconds_sum{%s} %f\n", labels, sample.durationSum)
		fmt.Fprintf(&buf, "bbecs_frame_commit_duration_seconds_count{%s} %f\n", labels, sample.durationCount)
		for i, bucket := range sample.buckets {
			le := c.options.DurationBuckets[i].Seconds()
			fmt.Fprintf(&buf, "bbecs_frame_commit_duration_seconds_bucket{%s,le=\"%.6f\"} %f\n", labels, le, bucket)
		}
	}

	c.writeFamily(&buf, keys, "bbecs_entities_deleted_total", "Entities removed by commit.", "counter",
		func(s *prometheusSample) float64 { return s.deleted })
	c.writeFamily(&buf, keys, "bbecs_entities_live", "Live entities after the last commit.", "gauge",
		func(s *prometheusSample) float64 { return s.live })
	c.writeFamily(&buf, keys, "bbecs_entity_ids_free", "Ids waiting for reuse.", "gauge",
		func(s *prometheusSample) float64 { return s.free })
	c.writeFamily(&buf, keys, "bbecs_column_capacity", "Slots per column.", "gauge",
		func(s *prometheusSample) float64 { return s.capacity })

	_, err := w.Write(buf.Bytes())
	return err
}

func (c *PrometheusFrameCollector) writeFamily(buf *bytes.Buffer, keys []string, name, help, kind string, value func(*prometheusSample) float64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s %s\n", name, kind)
	for _, key := range keys {
		fmt.Fprintf(buf, "%s{world_id=\"%s\"} %f\n", name, key, value(c.samples[key]))
	}
}

// SigNozSpanExporter writes one JSON span per commit to the configured writer.
type SigNozSpanExporter struct {
	opts *SigNozOptions
	mu   sync.Mutex
}

func NewSigNozSpanExporter(opts *SigNozOptions) SigNozExporter {
	if opts == nil {
		opts = &SigNozOptions{}
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "bbecs"
	}
	return &SigNozSpanExporter{opts: opts}
}

func (e *SigNozSpanExporter) ExportFrame(summary FrameSummary) {
	if e.opts.Writer == nil {
		return
	}
	deleted := make([]uint32, len(summary.Deleted))
	for i, id := range summary.Deleted {
		deleted[i] = uint32(id)
	}
	span := map[string]any{
		"service_name": e.opts.ServiceName,
		"name":         fmt.Sprintf("commit:%d", summary.Frame),
		"timestamp":    time.Now().UnixNano(),
		"duration_ms":  float64(summary.Duration) / float64(time.Millisecond),
		"attributes": map[string]any{
			"world_id":    summary.WorldID.String(),
			"frame":       summary.Frame,
			"deleted_ids": deleted,
			"live":        summary.Live,
			"free":        summary.Free,
			"capacity":    summary.Capacity,
		},
	}
	payload, err := json.Marshal(span)
	if err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, _ = e.opts.Writer.Write(append(payload, '\n'))
}
