package domain

import "context"

// ReadPort is what other modules may consume from cdr
type ReadPort interface {
	// List returns a page of call detail records plus the unpaged total
	List(ctx context.Context, in ListInput) ([]CDR, int, error)

	// Get returns one call detail record by id
	Get(ctx context.Context, id string) (CDR, error)
}
