package module

import (
	dom "callog/internal/services/generator/domain"
)

// Ports exposes the generator service ports for cross wiring
type Ports struct {
	Worker    dom.WorkerPort
	Generator dom.GeneratePort
}
