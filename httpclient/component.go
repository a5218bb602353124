package httpclient

import (
	"context"

	"github.com/kbukum/xmlrpc/component"
)

var (
	_ component.Component   = (*Adapter)(nil)
	_ component.Describable = (*Adapter)(nil)
)

// Name returns the component name.
func (a *Adapter) Name() string { return a.config.Name }

// Start is a no-op; connections are opened on demand.
func (a *Adapter) Start(context.Context) error {
	a.stopped.Store(false)
	return nil
}

// Stop closes idle connections.
func (a *Adapter) Stop(context.Context) error {
	a.stopped.Store(true)
	a.httpClient.CloseIdleConnections()
	return nil
}

// Health reports unhealthy once the adapter has been stopped.
func (a *Adapter) Health(context.Context) component.Health {
	h := component.Health{Name: a.Name(), Status: component.StatusHealthy}
	if a.stopped.Load() {
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	}
	return h
}

// Describe returns the component description.
func (a *Adapter) Describe() component.Description {
	return component.Description{
		Name:    a.Name(),
		Type:    "http-transport",
		Details: a.scheme + " timeout=" + a.config.Timeout.String(),
	}
}
