package module

import (
	"context"

	cdrdom "callog/internal/services/cdr/domain"
	cdrsvc "callog/internal/services/cdr/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptReadPort adapts the cdr service to the domain port interface
type adaptReadPort struct{ svc cdrsvc.Service }

// List implements the domain ReadPort interface
func (a adaptReadPort) List(ctx context.Context, in cdrdom.ListInput) ([]cdrdom.CDR, int, error) {
	return a.svc.List(ctx, in)
}

// Get implements the domain ReadPort interface
func (a adaptReadPort) Get(ctx context.Context, id string) (cdrdom.CDR, error) {
	return a.svc.Get(ctx, id)
}
