package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/xmlrpc/logger"
)

const defaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse order.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	names   map[string]bool
	log     *logger.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{names: make(map[string]bool), log: log.WithComponent("registry")}
}

// Register adds a component. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if r.names[name] {
		return fmt.Errorf("component %s already registered", name)
	}
	r.names[name] = true
	r.entries = append(r.entries, &entry{component: c})
	return nil
}

// StartAll starts every component. On failure the components already
// started are stopped again before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			_ = r.stopStarted(ctx)
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		r.log.Info("component started", r.describe(e.component))
	}
	return nil
}

// StopAll stops every started component in reverse order.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, defaultStopTimeout)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
		} else {
			r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		cancel()
		e.started = false
	}
	return errors.Join(errs...)
}

// HealthAll returns the health of every registered component.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.component.Health(ctx))
	}
	return out
}

func (r *Registry) describe(c Component) map[string]any {
	fields := logger.Fields(logger.FieldComponent, c.Name())
	if d, ok := c.(Describable); ok {
		desc := d.Describe()
		fields["type"] = desc.Type
		fields["details"] = desc.Details
	}
	return fields
}
