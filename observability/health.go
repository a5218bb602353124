package observability

import (
	"context"

	"github.com/kbukum/xmlrpc/component"
)

// ServiceHealth is the overall health of a process and its components.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// NewServiceHealth creates a healthy ServiceHealth.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: component.StatusHealthy, Version: version}
}

// AddComponent records a component and degrades the overall status if needed.
// Unhealthy always wins over degraded.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)
	switch h.Status {
	case component.StatusUnhealthy:
		sh.Status = component.StatusUnhealthy
	case component.StatusDegraded:
		if sh.Status != component.StatusUnhealthy {
			sh.Status = component.StatusDegraded
		}
	}
}

// CheckAll builds a ServiceHealth from every component.
func CheckAll(ctx context.Context, service, version string, components ...component.Component) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, c := range components {
		sh.AddComponent(c.Health(ctx))
	}
	return sh
}
