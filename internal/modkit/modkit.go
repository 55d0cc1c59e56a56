// Package modkit provides module wiring and core deps
//
// A module is built from Deps plus Options. Build folds the options into a
// Built value the module keeps; nothing here touches a router until the
// composition root calls MountRoutes.
package modkit

import (
	"net/http"

	"toxlens/internal/modkit/module"
)

// Module is the surface the composition root mounts
type Module = module.Module

// Option mutates build configuration for a module
type Option func(*Built)

// Built is what a module reads back after its options are applied
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	// Ports carries what other modules hand in, the concrete type is owned by the receiver
	Ports any
}

// Build applies opts in order, later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}

// WithName sets a module name used in logs and the port registry
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects ports exported by another module
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }
