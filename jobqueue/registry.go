package jobqueue

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/theleeeo/pgjobq/model"
)

// Registry maps job names to handlers. It is safe for concurrent use, though
// in practice everything is registered before the worker starts.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h. Registering the same name twice is a
// configuration error and returns ErrDuplicateHandler.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("%w: empty handler name", ErrInvalidJob)
	}
	if h == nil {
		return fmt.Errorf("pgjobq: nil handler for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateHandler, name)
	}
	r.handlers[name] = h
	return nil
}

// MustRegister is Register for program setup; it panics on error.
func (r *Registry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Typed adapts a handler taking decoded args. Args that do not decode into T
// can never succeed, so the failure is permanent.
func Typed[T any](fn func(ctx context.Context, args T) error) Handler {
	return func(ctx context.Context, job model.Job) error {
		var args T
		if err := job.DecodeArgs(&args); err != nil {
			return Permanent(err)
		}
		return fn(ctx, args)
	}
}
