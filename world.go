package bbecs

import (
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DangerosoDavo/bbecs/component"
	"github.com/DangerosoDavo/bbecs/config"
	"github.com/DangerosoDavo/bbecs/internal/bitmap"
	"github.com/DangerosoDavo/bbecs/internal/storage"
)

// MaxComponentTypes bounds the number of registered names, the two reserved ones included.
const MaxComponentTypes = bitmap.MaxComponentTypes

// World owns the membership index, the column store, entity ids and resources.
// Only World mutates the two storage layers, and every write touches both.
//
// A World is not safe for concurrent use; see SyncWorld.
type World struct {
	id        uuid.UUID
	registry  *EntityRegistry
	index     *bitmap.Index
	store     *storage.Store
	resources ResourceContainer
	logger    Logger

	observers   []FrameObserver
	observation *ObservationSettings
	observer    FrameObserver
	metrics     PrometheusCollector

	blockSize int
	epoch     uint64
	frame     uint64
	last      EntityID
	spawned   bool
}

type WorldOption func(*World)

// NewWorld constructs a world with the reserved components registered.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		id:        uuid.New(),
		registry:  NewEntityRegistry(),
		resources: newResourceContainer(),
		logger:    NewZapLogger(zap.NewNop()),
		blockSize: storage.DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.index = bitmap.New()
	w.store = storage.New(w.blockSize)
	w.logger = w.logger.With("world", w.id.String())
	w.observer = w.buildObserver()

	for _, name := range []string{IdentityComponent, DeletionComponent} {
		if err := w.register(name); err != nil {
			panic(errors.NewAssertionErrorWithWrappedErrf(err, "register reserved component %q", name))
		}
	}
	return w
}

// NewWorldFromConfig builds the logger and observers described by cfg.
// Options are applied after the configured ones.
func NewWorldFromConfig(cfg *config.Config, opts ...WorldOption) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zl, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	obs := cfg.Observability
	format := ObservationLogFormatJSON
	if obs.LogFormat == "kv" {
		format = ObservationLogFormatKeyValue
	}
	settings := ObservationSettings{
		EnableStructuredLogging: obs.StructuredLogging,
		LoggingFormat:           format,
		EnablePrometheus:        obs.Prometheus,
		EnableSigNoz:            obs.SigNoz,
		SigNozOptions:           &SigNozOptions{Writer: os.Stdout, ServiceName: obs.ServiceName},
	}

	base := []WorldOption{
		WithBlockSize(cfg.Store.BlockSize),
		WithLogger(NewZapLogger(zl)),
		WithObservation(settings),
	}
	return NewWorld(append(base, opts...)...), nil
}

// WithBlockSize sets how many slots each column grows by.
func WithBlockSize(n int) WorldOption {
	return func(w *World) {
		if n > 0 {
			w.blockSize = n
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(logger Logger) WorldOption {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithObserver adds an observer notified after every Commit.
func WithObserver(observer FrameObserver) WorldOption {
	return func(w *World) {
		if observer != nil {
			w.observers = append(w.observers, observer)
		}
	}
}

// WithObservation enables the built-in observers.
func WithObservation(settings ObservationSettings) WorldOption {
	return func(w *World) {
		w.observation = &settings
	}
}

// WithResourceContainer overrides the default resource container.
func WithResourceContainer(container ResourceContainer) WorldOption {
	return func(w *World) {
		if container != nil {
			w.resources = container
		}
	}
}

// ID returns the instance identifier used in logs and frame summaries.
func (w *World) ID() uuid.UUID {
	return w.id
}

// RegisterComponentType registers name in both storage layers or in neither.
// Duplicate and reserved names fail with ErrAlreadyRegistered.
func (w *World) RegisterComponentType(name string) error {
	if err := w.register(name); err != nil {
		if name == IdentityComponent || name == DeletionComponent {
			return errors.WithHintf(err, "%q is reserved by the store", name)
		}
		return err
	}
	bit, _ := w.index.Bit(name)
	w.logger.Debug("component registered", "component", name, "bit", bit)
	return nil
}

func (w *World) register(name string) error {
	if _, ok := w.index.Bit(name); ok || w.store.Has(name) {
		return errors.Wrapf(ErrAlreadyRegistered, "register %q", name)
	}
	if _, err := w.index.Register(name); err != nil {
		return err
	}
	if err := w.store.Register(name); err != nil {
		return errors.NewAssertionErrorWithWrappedErrf(err, "column for %q registered out of band", name)
	}
	return nil
}

// ComponentTypes lists the registered names in bit order, reserved names first.
func (w *World) ComponentTypes() []string {
	return w.index.Names()
}

// Spawn allocates an id, reusing committed ones first, and stamps its identity component.
func (w *World) Spawn() *EntityBuilder {
	id := w.registry.Create()
	index := id.Index()

	w.index.EnsureSlot(index)
	if w.store.GrowIfNeeded(index) {
		w.logger.Debug("columns grown", "capacity", w.store.Capacity(), "block_size", w.store.BlockSize())
	}
	if err := w.write(index, IdentityComponent, component.Usize(id)); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "stamp identity of %v", id))
	}

	w.last, w.spawned = id, true
	w.epoch++
	return &EntityBuilder{world: w, id: id}
}

// AttachComponent attaches a value to the most recently spawned entity.
func (w *World) AttachComponent(name string, value component.Value) error {
	if !w.spawned {
		return errors.Wrapf(ErrNoSpawnedEntity, "attach %q", name)
	}
	return w.Attach(w.last, name, value)
}

// Attach sets component name on id, replacing any previous value.
func (w *World) Attach(id EntityID, name string, value component.Value) error {
	if err := w.checkAttach(id, name, value); err != nil {
		return err
	}
	if err := w.write(id.Index(), name, value); err != nil {
		return err
	}
	w.epoch++
	return nil
}

func (w *World) checkAttach(id EntityID, name string, value component.Value) error {
	if name == IdentityComponent || name == DeletionComponent {
		return errors.WithHint(errors.Wrapf(ErrReservedComponent, "attach %q", name),
			"the store manages reserved components through Spawn and DeleteByID")
	}
	if component.IsEmpty(value) {
		return errors.Wrapf(ErrEmptyValue, "attach %q", name)
	}
	if !w.store.Has(name) {
		return errors.WithHint(errors.Wrapf(ErrNeedToRegister, "attach %q", name),
			"call RegisterComponentType before attaching")
	}
	if !w.registry.IsAlive(id) {
		return errors.Wrapf(ErrEntityNotFound, "attach %q to %v", name, id)
	}
	return nil
}

// write stores value in the column first and then sets the membership bit,
// undoing the column write if the bit cannot be set.
func (w *World) write(index int, name string, value component.Value) error {
	prev, err := w.store.Get(name, index)
	if err != nil {
		return errors.Wrapf(ErrNeedToRegister, "write %q", name)
	}
	if err := w.store.Set(name, index, value); err != nil {
		return err
	}
	if err := w.index.Set(index, name); err != nil {
		_ = w.store.Set(name, index, prev)
		return err
	}
	return nil
}

// Query returns a lease over every entity holding all of names. Pending
// deletions are included until Commit.
func (w *World) Query(names ...string) (*QueryResult, error) {
	if len(names) == 0 {
		return nil, errors.WithStack(ErrEmptyQuery)
	}
	for _, name := range names {
		if !w.store.Has(name) {
			return nil, errors.Wrapf(ErrComponentNotFound, "query %q", name)
		}
	}

	indices, err := w.index.Query(names)
	if err != nil {
		return nil, errors.CombineErrors(errors.Wrap(ErrComponentNotFound, "query"), err)
	}
	columns, err := w.store.Query(names, indices)
	if err != nil {
		return nil, err
	}
	return newQueryResult(w, indices, columns), nil
}

// Component returns the value of name on id.
func (w *World) Component(id EntityID, name string) (component.Value, error) {
	if !w.store.Has(name) {
		return nil, errors.Wrapf(ErrComponentNotFound, "get %q", name)
	}
	if !w.registry.IsAlive(id) {
		return nil, errors.Wrapf(ErrEntityNotFound, "get %q from %v", name, id)
	}
	if !w.index.Has(id.Index(), name) {
		return nil, errors.Wrapf(ErrComponentNotFound, "%v has no %q", id, name)
	}
	return w.store.Get(name, id.Index())
}

// Has reports whether id is alive and carries name.
func (w *World) Has(id EntityID, name string) bool {
	return w.registry.IsAlive(id) && w.index.Has(id.Index(), name)
}

// DeleteByID flags id for removal at the next Commit. Deleting a pending id
// again is a no-op; an unused id fails with ErrEntityNotFound.
func (w *World) DeleteByID(id EntityID) error {
	return w.DeleteIDs([]EntityID{id})
}

// DeleteIDs flags every id for removal. All ids are validated before any is flagged.
func (w *World) DeleteIDs(ids []EntityID) error {
	for _, id := range ids {
		if !w.registry.IsAlive(id) {
			return errors.Wrapf(ErrEntityNotFound, "delete %v", id)
		}
	}

	flagged := make([]int, 0, len(ids))
	for _, id := range ids {
		changed, err := w.registry.MarkPending(id)
		if err != nil {
			return err
		}
		if changed {
			flagged = append(flagged, id.Index())
		}
	}
	for _, index := range flagged {
		if err := w.store.Set(DeletionComponent, index, component.Bool(true)); err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "flag slot %d", index)
		}
	}
	if err := w.index.SetMany(flagged, DeletionComponent); err != nil {
		return errors.NewAssertionErrorWithWrappedErrf(err, "flag %d slots", len(flagged))
	}
	return nil
}

// Commit removes every entity flagged for deletion from both storage layers and
// queues their ids for reuse. Call it once per frame.
func (w *World) Commit() error {
	start := time.Now()

	indices, err := w.index.Query([]string{DeletionComponent})
	if err != nil {
		return errors.NewAssertionErrorWithWrappedErrf(err, "collect pending deletions")
	}
	ids := make([]EntityID, len(indices))
	for i, index := range indices {
		ids[i] = EntityID(index)
	}

	w.index.Clear(indices)
	w.store.Reset(indices)
	if err := w.registry.Release(ids); err != nil {
		return err
	}

	w.frame++
	w.epoch++
	w.observer.FrameCommitted(FrameSummary{
		WorldID:  w.id,
		Frame:    w.frame,
		Duration: time.Since(start),
		Deleted:  ids,
		Live:     w.registry.Count(),
		Free:     w.registry.Free(),
		Capacity: w.store.Capacity(),
	})
	return nil
}

// Apply executes deferred commands in order, stopping at the first failure.
func (w *World) Apply(commands []Command) error {
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := cmd.Apply(w); err != nil {
			return err
		}
	}
	return nil
}

// State reports the lifecycle state of id.
func (w *World) State(id EntityID) EntityState {
	return w.registry.State(id)
}

// Len returns the number of live entities, pending deletions included.
func (w *World) Len() int {
	return w.registry.Count()
}

// Pending returns the number of entities awaiting Commit.
func (w *World) Pending() int {
	return w.registry.Pending()
}

// Capacity returns the slot count shared by every column.
func (w *World) Capacity() int {
	return w.store.Capacity()
}

// Frame returns how many times Commit has run.
func (w *World) Frame() uint64 {
	return w.frame
}

// WriteMetrics writes the Prometheus text exposition when a collector is enabled.
func (w *World) WriteMetrics(out io.Writer) error {
	c, ok := w.metrics.(interface{ WriteMetrics(io.Writer) error })
	if !ok {
		return nil
	}
	return c.WriteMetrics(out)
}

// EntityBuilder chains component attachment onto a freshly spawned entity.
// The first failure is kept and later calls become no-ops.
type EntityBuilder struct {
	world *World
	id    EntityID
	err   error
}

// With attaches a component to the spawned entity.
func (b *EntityBuilder) With(name string, value component.Value) *EntityBuilder {
	if b.err != nil {
		return b
	}
	b.err = b.world.Attach(b.id, name, value)
	return b
}

// ID returns the spawned entity.
func (b *EntityBuilder) ID() EntityID {
	return b.id
}

// Err returns the first attachment failure.
func (b *EntityBuilder) Err() error {
	return b.err
}

// Result returns the entity and the first attachment failure.
func (b *EntityBuilder) Result() (EntityID, error) {
	return b.id, b.err
}
