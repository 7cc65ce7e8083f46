// Package bbecs is an in-memory entity-component store.
//
// Component types are registered by name. Entities are integer ids carrying a
// set of named component values. Each frame a host queries the entities that
// hold a given set of component types, flags entities for deletion and calls
// Commit once to remove them and recycle their ids.
package bbecs

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/DangerosoDavo/bbecs/component"
)

// Reserved component names. Both are registered by every World.
const (
	// IdentityComponent holds each entity's own id as a component.Usize.
	IdentityComponent = "__entity_id"
	// DeletionComponent is attached to entities awaiting Commit.
	DeletionComponent = "__pending_deletion"
)

// ComponentValue pairs a component name with a value.
type ComponentValue struct {
	Name  string
	Value component.Value
}

// Command represents a deferred mutation applied outside query iteration.
type Command interface {
	Apply(world *World) error
}

// Logger captures structured log output from the store.
type Logger interface {
	With(key string, value any) Logger
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ResourceContainer holds singleton values that are not bound to an entity.
type ResourceContainer interface {
	Get(name string) (component.Value, bool)
	Set(name string, value component.Value)
	Delete(name string)
	Range(func(string, component.Value) bool)
}

// FrameObserver receives a summary after every Commit.
type FrameObserver interface {
	FrameCommitted(summary FrameSummary)
}

// FrameSummary captures the outcome of one Commit.
type FrameSummary struct {
	WorldID  uuid.UUID
	Frame    uint64
	Duration time.Duration
	Deleted  []EntityID
	Live     int
	Free     int
	Capacity int
}

// ObservationSettings toggles built-in observer integrations.
type ObservationSettings struct {
	EnableStructuredLogging bool
	LoggingFormat           ObservationLogFormat
	StructuredLogger        Logger
	EnablePrometheus        bool
	PrometheusCollector     PrometheusCollector
	PrometheusOptions       *PrometheusCollectorOptions
	EnableSigNoz            bool
	SigNozExporter          SigNozExporter
	SigNozOptions           *SigNozOptions
}

// ObservationLogFormat controls structured logging encoding.
type ObservationLogFormat uint8

const (
	ObservationLogFormatJSON ObservationLogFormat = iota
	ObservationLogFormatKeyValue
)

// PrometheusCollector handles frame summaries for Prometheus-style metrics.
type PrometheusCollector interface {
	ObserveFrame(summary FrameSummary)
}

type PrometheusCollectorOptions struct {
	Writer          io.Writer
	DurationBuckets []time.Duration
}

// SigNozExporter handles frame summaries for SigNoz platforms.
type SigNozExporter interface {
	ExportFrame(summary FrameSummary)
}

type SigNozOptions struct {
	Writer      io.Writer
	ServiceName string
}
