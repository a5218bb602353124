package bootstrap

import (
	"github.com/kbukum/xmlrpc/config"
)

// Config is the constraint for command configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
