package xmlrpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/xmlrpc/component"
	"github.com/kbukum/xmlrpc/logger"
)

// Component manages a Client's lifecycle inside a component.Registry.
type Component struct {
	cfg  Config
	log  *logger.Logger
	opts []Option

	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a client component. The client is built on Start.
func NewComponent(cfg Config, log *logger.Logger, opts ...Option) *Component {
	return &Component{cfg: cfg, log: log, opts: opts}
}

// Client returns the client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Name returns the component name.
func (c *Component) Name() string { return "xmlrpc-client" }

// Start validates the configuration and builds the client.
func (c *Component) Start(context.Context) error {
	c.cfg.ApplyDefaults()
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	opts := c.opts
	if c.log != nil {
		opts = append([]Option{WithLogger(c.log)}, opts...)
	}
	client, err := NewFromConfig(c.cfg, opts...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	client.log.Info("xmlrpc client ready", logger.Fields(logger.FieldURL, client.URL()))
	return nil
}

// Stop closes idle connections.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close(ctx)
}

// Health reports unhealthy until the client has been started.
func (c *Component) Health(context.Context) component.Health {
	if c.Client() == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the component description.
func (c *Component) Describe() component.Description {
	details := c.cfg.URL
	if details == "" {
		details = fmt.Sprintf("%s:%d%s", c.cfg.Host, c.cfg.Port, c.cfg.Path)
	}
	return component.Description{Name: c.Name(), Type: "xmlrpc-client", Details: details, Port: c.cfg.Port}
}
