package server

import (
	"context"
	"fmt"

	"github.com/kbukum/xmlrpc/component"
)

const componentName = "xmlrpc-server"

var (
	_ component.Component   = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// Name returns the component name used for registration.
func (s *Server) Name() string { return componentName }

// Health reports healthy while the server is listening.
func (s *Server) Health(context.Context) component.Health {
	s.mu.RLock()
	listening := s.listener != nil
	s.mu.RUnlock()
	if !listening {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe returns a one-line summary.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "XML-RPC Server",
		Type:    "server",
		Details: fmt.Sprintf("%s%s auth=%s methods=%d", s.config.Addr(), s.config.Path, s.config.Auth.Mode, len(s.methods.Names())),
		Port:    s.config.Port,
	}
}
