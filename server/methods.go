package server

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/xmlrpc/errors"
)

// HandlerFunc implements one XML-RPC method. params are the decoded call
// parameters; the result is encoded as the method response.
type HandlerFunc func(ctx context.Context, params []any) (any, error)

// Methods is a concurrency-safe method registry.
type Methods struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewMethods creates an empty registry.
func NewMethods() *Methods {
	return &Methods{handlers: make(map[string]HandlerFunc)}
}

// Register adds a method. Names must be unique.
func (m *Methods) Register(name string, h HandlerFunc) error {
	if name == "" || h == nil {
		return fmt.Errorf("server: method name and handler are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handlers[name]; exists {
		return fmt.Errorf("server: method %q already registered", name)
	}
	m.handlers[name] = h
	return nil
}

// Lookup returns the handler for name.
func (m *Methods) Lookup(name string) (HandlerFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handlers[name]
	return h, ok
}

// Names returns the registered method names in sorted order.
func (m *Methods) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.handlers))
}

// Arg returns params[i] as T, or an INVALID_PARAMS error when it is missing
// or has another type.
func Arg[T any](params []any, i int) (T, error) {
	var zero T
	if i >= len(params) {
		return zero, errors.InvalidParams(fmt.Sprintf("missing parameter %d", i+1))
	}
	v, ok := params[i].(T)
	if !ok {
		return zero, errors.InvalidParams(fmt.Sprintf("parameter %d must be %T, got %T", i+1, zero, params[i]))
	}
	return v, nil
}

// ExpectArgs returns an INVALID_PARAMS error unless there are exactly n
// parameters.
func ExpectArgs(params []any, n int) error {
	if len(params) != n {
		return errors.InvalidParams(fmt.Sprintf("expected %d parameters, got %d", n, len(params)))
	}
	return nil
}
