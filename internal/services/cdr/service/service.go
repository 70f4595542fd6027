// Package service implements read operations over stored call logs
package service

import (
	"context"
	"time"

	"callog/internal/modkit/repokit"
	perr "callog/internal/platform/errors"
	"callog/internal/services/cdr/domain"
	"callog/internal/services/cdr/repo"
)

// Service is the cdr read surface
type Service interface {
	List(ctx context.Context, in domain.ListInput) ([]domain.CDR, int, error)
	Get(ctx context.Context, id string) (domain.CDR, error)
}

// Svc implements Service over a bound repo
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
}

// New constructs the cdr service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("cdr service requires a db TxRunner")
	}
	if binder == nil {
		panic("cdr service requires a repo binder")
	}
	return &Svc{db: db, binder: binder}
}

// DefaultLimit caps unbounded list requests
const DefaultLimit = 50

// List returns one page of call detail records and the unpaged total
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.CDR, int, error) {
	f := repo.Filter{
		Order:  in.Order,
		Desc:   in.Direction == "desc",
		Limit:  in.Limit,
		Offset: in.Offset,
		Search: in.Search,
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	var err error
	if f.From, err = parseTime(in.From); err != nil {
		return nil, 0, err
	}
	if f.Until, err = parseTime(in.Until); err != nil {
		return nil, 0, err
	}

	rows, total, err := s.binder.Bind(s.db).List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.CDR, 0, len(rows))
	for _, r := range rows {
		out = append(out, toWire(r))
	}
	return out, total, nil
}

// Get returns one call detail record by id
func (s *Svc) Get(ctx context.Context, id string) (domain.CDR, error) {
	if id == "" {
		return domain.CDR{}, perr.InvalidArgf("id is required")
	}
	row, err := s.binder.Bind(s.db).Get(ctx, id)
	if err != nil {
		return domain.CDR{}, err
	}
	return toWire(row), nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, perr.Validationf("invalid timestamp %q", s)
	}
	return t, nil
}

func toWire(r repo.Row) domain.CDR {
	c := domain.CDR{
		ID:                   r.ID,
		Start:                r.Date,
		Answer:               r.DateAnswer,
		End:                  r.DateEnd,
		SourceName:           r.SourceName,
		SourceExtension:      r.SourceExten,
		DestinationName:      r.DestinationName,
		DestinationExtension: r.DestinationExten,
		Direction:            r.Direction,
		Answered:             r.DateAnswer != nil,
		Tags:                 r.Tags,
	}
	if r.DateAnswer != nil && r.DateEnd != nil {
		c.Duration = int64(r.DateEnd.Sub(*r.DateAnswer) / time.Second)
	}
	return c
}
