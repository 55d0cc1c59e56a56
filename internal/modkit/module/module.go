// Package module defines the module contract and cross module port lookup
package module

import (
	phttp "toxlens/internal/platform/net/http"
)

// Module is mounted by the composition root and may export ports to its siblings
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
