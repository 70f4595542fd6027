// Package module wires the generator worker service and exposes its ports
package module

import (
	"callog/internal/adapters/notify"
	celcore "callog/internal/core/cel"
	"callog/internal/modkit"
	"callog/internal/modkit/httpkit"
	"callog/internal/services/generator/service"
)

// Module defines the generator worker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the generator worker module with its ports
func New(deps modkit.Deps, dir celcore.DirectoryPort, pub notify.Publisher, overrides Options) *Module {
	// Load defaults, then apply non-zero overrides
	opts := FromConfig(deps.Cfg)

	if overrides.Interval != 0 {
		opts.Interval = overrides.Interval
	}
	if overrides.Concurrency != 0 {
		opts.Concurrency = overrides.Concurrency
	}
	if overrides.BatchSize != 0 {
		opts.BatchSize = overrides.BatchSize
	}

	svc := service.New(deps, dir, pub, service.Config{
		Interval:    opts.Interval,
		Concurrency: opts.Concurrency,
		BatchSize:   opts.BatchSize,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Worker:    svc,
		Generator: svc,
	}
	return m
}

// Ports returns the module ports (Worker, Generator)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "generator" }

// Prefix returns the module route prefix (none for worker-only service)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
