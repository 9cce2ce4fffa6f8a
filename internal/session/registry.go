package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pixelforge/internal/apperr"
	"pixelforge/internal/common/fsutil"
	"pixelforge/internal/events"
)

// Config wires a Registry to its collaborators.
type Config struct {
	Resolver  PathResolver
	Factory   EngineFactory
	Publisher events.Publisher
	Logger    zerolog.Logger
}

// Registry maps model ids to engines behind one mutex.
type Registry struct {
	mu       sync.Mutex
	engines  map[string]Engine
	poisoned bool

	resolver  PathResolver
	factory   EngineFactory
	publisher events.Publisher
	log       zerolog.Logger
}

func New(cfg Config) *Registry {
	return &Registry{
		engines:   make(map[string]Engine),
		resolver:  cfg.Resolver,
		factory:   cfg.Factory,
		publisher: events.OrNoop(cfg.Publisher),
		log:       cfg.Logger,
	}
}

var errPoisoned = apperr.General("session lock poisoned")

// lock acquires the registry mutex. The returned release marks the registry
// poisoned unless done was called first, which happens only when the guarded
// section returns normally.
func (r *Registry) lock() (done func(), release func(), err error) {
	r.mu.Lock()
	if r.poisoned {
		r.mu.Unlock()
		return nil, nil, errPoisoned
	}
	ok := false
	done = func() { ok = true }
	release = func() {
		if !ok {
			r.poisoned = true
			r.log.Error().Str("event", "session_poisoned").Msg("panic while holding session lock")
		}
		r.mu.Unlock()
	}
	return done, release, nil
}

// Ensure builds the engine for modelID if it is not loaded yet. Concurrent
// callers for the same id construct it exactly once.
func (r *Registry) Ensure(ctx context.Context, modelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done, release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()
	_, err = r.ensureLocked(modelID)
	done()
	return err
}

// With runs fn with the engine for modelID while holding the registry lock,
// loading the engine first if needed.
func (r *Registry) With(ctx context.Context, modelID string, fn func(Engine) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done, release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()
	eng, err := r.ensureLocked(modelID)
	if err != nil {
		done()
		return err
	}
	start := time.Now()
	err = fn(eng)
	inferenceSeconds.WithLabelValues(modelID).Observe(time.Since(start).Seconds())
	done()
	return err
}

func (r *Registry) ensureLocked(modelID string) (Engine, error) {
	if eng, ok := r.engines[modelID]; ok {
		return eng, nil
	}
	if r.resolver == nil || r.factory == nil {
		return nil, apperr.General("session registry not configured")
	}
	start := time.Now()
	r.log.Info().Str("event", "session_load_start").Str("model", modelID).Msg("")
	r.publisher.Publish(events.Event{Name: "session_load_start", ModelID: modelID})

	path, err := r.resolver.Path(modelID)
	if err != nil {
		if !apperr.IsModelNotFound(err) {
			err = apperr.ModelNotFound("%s: %v", modelID, err)
		}
		return nil, r.loadFailed(modelID, err)
	}
	if !fsutil.FileExists(path) {
		return nil, r.loadFailed(modelID, apperr.ModelNotFound("%s: file missing at %s", modelID, path))
	}
	eng, err := r.factory.New(path)
	if err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			err = &apperr.Error{Kind: apperr.KindInferenceFailed, Msg: err.Error(), Err: err}
		}
		return nil, r.loadFailed(modelID, err)
	}
	r.engines[modelID] = eng
	loadsTotal.WithLabelValues(modelID, "ok").Inc()
	dur := time.Since(start)
	r.log.Info().Str("event", "session_loaded").Str("model", modelID).Dur("took", dur).Msg("")
	r.publisher.Publish(events.Event{Name: "session_loaded", ModelID: modelID, Fields: map[string]any{"ms": dur.Milliseconds()}})
	return eng, nil
}

func (r *Registry) loadFailed(modelID string, err error) error {
	loadsTotal.WithLabelValues(modelID, "error").Inc()
	r.log.Warn().Str("event", "session_load_failed").Str("model", modelID).Err(err).Msg("")
	r.publisher.Publish(events.Event{Name: "session_load_failed", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
	return err
}

// Loaded returns the ids of constructed engines, sorted.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.engines))
	for id := range r.engines {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Poisoned reports whether a panic escaped a guarded section.
func (r *Registry) Poisoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poisoned
}

// Unload closes and forgets the engine for modelID, if loaded.
func (r *Registry) Unload(modelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eng, ok := r.engines[modelID]
	if !ok {
		return nil
	}
	delete(r.engines, modelID)
	r.log.Info().Str("event", "session_unloaded").Str("model", modelID).Msg("")
	r.publisher.Publish(events.Event{Name: "session_unloaded", ModelID: modelID})
	return eng.Close()
}

// Close destroys every engine. The registry stays usable and will reload
// engines on demand.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for id, eng := range r.engines {
		if err := eng.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.engines, id)
	}
	return errors.Join(errs...)
}
