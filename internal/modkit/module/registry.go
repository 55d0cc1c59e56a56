package module

import "sync"

// registry holds port sets by module name for lookups after bootstrap
var registry sync.Map

// Register stores ports under name, a later call replaces the earlier one
func Register(name string, ports any) { registry.Store(name, ports) }

// PortsAs loads the port set stored for name as a T
func PortsAs[T any](name string) (T, bool) {
	var zero T
	v, ok := registry.Load(name)
	if !ok {
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset forgets every registered port set
func Reset() { registry.Clear() }
