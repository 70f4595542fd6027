// Package domain holds the generator module ports
package domain

import "context"

// WorkerPort runs the generation loop until ctx ends
type WorkerPort interface {
	Run(ctx context.Context) error
}

// GeneratePort interprets a single finished call on demand
type GeneratePort interface {
	Generate(ctx context.Context, linkedID string) error
}
