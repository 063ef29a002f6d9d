package wtf

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/evilaliv3/tracing-framework/pkg/atomicfs"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/platform"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

// threadState is the runtime's record of one registered trace thread. The
// buffer is owned by the thread; the runtime only enumerates it.
type threadState struct {
	id      uint32
	name    string
	nameID  uint32
	goid    int64
	zoneID  uint16
	buf     *buffer.EventBuffer
	enabled bool
}

// Runtime is the process-wide singleton that tracks registered thread
// buffers and serializes them, together with the event registry, into a
// trace artifact.
type Runtime struct {
	mu sync.Mutex

	log     *zap.Logger
	conf    *Config
	traceID uuid.UUID

	threads []*threadState
	byGoid  map[int64]*threadState
	zones   uint16
}

var (
	runtimeOnce sync.Once
	runtimeInst *Runtime
)

// GetRuntime returns the singleton, initializing it lazily.
func GetRuntime() *Runtime {
	runtimeOnce.Do(func() {
		conf := &Config{}
		conf.FillDefault()
		runtimeInst = &Runtime{
			log:     zap.NewNop(),
			conf:    conf,
			traceID: uuid.Must(uuid.NewV4()),
			byGoid:  make(map[int64]*threadState),
		}
	})
	return runtimeInst
}

// Option configures the Runtime.
type Option func(r *Runtime)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		r.log = l.Named("wtf")
	}
}

func WithConfig(c *Config) Option {
	return func(r *Runtime) {
		c.FillDefault()
		r.conf = c
	}
}

// Configure applies options. Buffer sizing options affect threads enabled
// after the call.
func (r *Runtime) Configure(opts ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, opt := range opts {
		opt(r)
	}
}

// TraceID identifies this recording in logs and artifact names.
func (r *Runtime) TraceID() uuid.UUID {
	return r.traceID
}

// EnableCurrentThread registers the calling thread under name, binds a
// buffer to it and emits the thread's zone metadata, so that an enabled
// thread is never empty. Re-enabling a known thread rebinds its existing
// buffer without emitting metadata again.
func (r *Runtime) EnableCurrentThread(name string) {
	if !masterEnable {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	gid := platform.ThreadID()
	if ts, ok := r.byGoid[gid]; ok {
		ts.enabled = true
		platform.BindThreadBuffer(ts.buf)
		return
	}

	buf := buffer.New(
		buffer.WithSoftLimit(r.conf.BufferSoftLimit),
		buffer.WithChunkSize(r.conf.BufferChunkSize),
	)
	r.zones++
	ts := &threadState{
		id:      uint32(len(r.threads) + 1),
		name:    name,
		nameID:  buf.StringTable().Intern(name),
		goid:    gid,
		zoneID:  r.zones,
		buf:     buf,
		enabled: true,
	}
	r.threads = append(r.threads, ts)
	r.byGoid[gid] = ts
	platform.BindThreadBuffer(buf)

	event.CreateZone(buf, ts.zoneID, name, "script", "")
	event.SetZone(buf, ts.zoneID)

	r.log.Debug("Enabled trace thread",
		zap.String("thread", name),
		zap.Uint32("id", ts.id),
	)
}

// DisableCurrentThread stops emissions from the calling thread. The
// thread's buffer stays registered so already recorded events survive into
// the next save.
func (r *Runtime) DisableCurrentThread() {
	r.mu.Lock()
	defer r.mu.Unlock()

	gid := platform.ThreadID()
	if ts, ok := r.byGoid[gid]; ok {
		ts.enabled = false
	}
	platform.UnbindThreadBuffer()
}

// snapshot assembles the serializer's view under the runtime lock. Thread
// buffers are referenced, not copied; the quiescence contract in
// Save applies.
func (r *Runtime) snapshot() *wire.Snapshot {
	s := &wire.Snapshot{
		Definitions: event.GetRegistry().Snapshot(),
	}
	for _, ts := range r.threads {
		s.Threads = append(s.Threads, wire.ThreadChunk{
			ID:       ts.id,
			NameID:   ts.nameID,
			Overflow: ts.buf.Overflowed(),
			Buffer:   ts.buf,
		})
	}
	return s
}

// Save serializes the registry and all registered thread buffers into w.
// The caller must ensure no enabled thread is emitting for the duration,
// either by disabling the threads or by quiescing them; the runtime lock
// only shields registration state.
func (r *Runtime) Save(w io.Writer, opts ...wire.WriteOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return wire.Write(w, r.snapshot(), opts...)
}

// SaveToFile writes the trace to path, replacing any existing file. Paths
// ending in .zst are zstd-compressed, as is any path when the config asks
// for compression.
func (r *Runtime) SaveToFile(path string) error {
	f, err := atomicfs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer func() {
		_ = f.Discard()
	}()

	var opts []wire.WriteOption
	if r.conf.Output.Compress || strings.HasSuffix(path, ".zst") {
		opts = append(opts, wire.WithZstd())
	}
	if err := r.Save(f, opts...); err != nil {
		return fmt.Errorf("failed to serialize trace: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to commit trace file: %w", err)
	}

	r.log.Info("Saved trace",
		zap.String("path", path),
		zap.String("trace_id", r.traceID.String()),
		zap.Int("threads", len(r.threads)),
	)
	return nil
}

// ResetForTesting drops all registered threads and bindings, resets the
// event registry and rolls a fresh trace id. Events created before the
// reset must not be invoked afterwards.
func (r *Runtime) ResetForTesting() {
	r.mu.Lock()
	defer r.mu.Unlock()

	platform.ResetBindingsForTesting()
	event.ResetForTesting()
	r.threads = nil
	r.byGoid = make(map[int64]*threadState)
	r.zones = 0
	r.traceID = uuid.Must(uuid.NewV4())
}
