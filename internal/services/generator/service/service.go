// Package service implements call log generation from raw channel events
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"callog/internal/adapters/notify"
	celcore "callog/internal/core/cel"
	"callog/internal/modkit"
	"callog/internal/modkit/repokit"
	perr "callog/internal/platform/errors"
	"callog/internal/platform/logger"
	grepo "callog/internal/services/generator/repo"
)

// Config controls the worker loop
type Config struct {
	Interval    time.Duration
	Concurrency int
	BatchSize   int
}

// Svc interprets finished calls and persists the results
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[grepo.Repo]
	repo   grepo.Repo
	disp   *celcore.Dispatcher
	pub    notify.Publisher
	cfg    Config

	// a ready linkedid stays listed until its transaction commits, so the
	// worker must not pick the same call up twice while it is in flight
	mu       sync.Mutex
	inflight map[string]struct{}
}

// begin claims linkedID for interpretation; false when already claimed
func (s *Svc) begin(linkedID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]struct{})
	}
	if _, busy := s.inflight[linkedID]; busy {
		return false
	}
	s.inflight[linkedID] = struct{}{}
	return true
}

// end releases a claim taken by begin
func (s *Svc) end(linkedID string) {
	s.mu.Lock()
	delete(s.inflight, linkedID)
	s.mu.Unlock()
}

// New constructs the generator service
func New(deps modkit.Deps, dir celcore.DirectoryPort, pub notify.Publisher, cfg Config) *Svc {
	if deps.PG == nil {
		panic("generator service requires a db TxRunner")
	}
	if dir == nil {
		panic("generator service requires a directory port")
	}
	if pub == nil {
		panic("generator service requires a publisher")
	}
	b := grepo.NewPG()
	return &Svc{
		db:     deps.PG,
		binder: b,
		repo:   b.Bind(deps.PG),
		disp:   celcore.NewDispatcher(dir),
		pub:    pub,
		cfg:    cfg,
	}
}

// Generate interprets one finished call and persists the result.
// The insert and the cel attribution share a transaction so a crash never
// leaves half a call behind
func (s *Svc) Generate(ctx context.Context, linkedID string) error {
	events, err := s.repo.FetchByLinkedID(ctx, linkedID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return perr.NotFoundf("no events for linkedid %s", linkedID)
	}

	raw, err := s.disp.InterpretCall(ctx, events)
	if err != nil {
		return err
	}
	cdr := raw.ToCDR()

	// stamp only what was interpreted; cels that arrive between the fetch
	// and the commit stay unattributed for the next pass
	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}

	var id string
	err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		var err error
		id, err = s.binder.Bind(q).WriteCallLog(ctx, cdr, linkedID, ids)
		return err
	})
	if err != nil {
		return err
	}

	s.publishCreated(ctx, id, cdr)
	return nil
}

// createdWire is the payload published per created call log
type createdWire struct {
	ID                   string    `json:"id"`
	Start                time.Time `json:"start"`
	SourceName           string    `json:"source_name"`
	SourceExtension      string    `json:"source_extension"`
	DestinationExtension string    `json:"destination_extension"`
	Direction            string    `json:"direction"`
	Duration             int64     `json:"duration"`
	Answered             bool      `json:"answered"`
	Tags                 []string  `json:"tags"`
}

// publishCreated notifies listeners; the call log is already committed so
// a broker failure is logged and swallowed
func (s *Svc) publishCreated(ctx context.Context, id string, cdr celcore.CDR) {
	log := logger.Named("generator")
	payload, err := json.Marshal(createdWire{
		ID:                   id,
		Start:                cdr.Date,
		SourceName:           cdr.SourceName,
		SourceExtension:      cdr.SourceExten,
		DestinationExtension: cdr.DestinationExten,
		Direction:            cdr.Direction,
		Duration:             int64(cdr.Duration / time.Second),
		Answered:             cdr.Answered,
		Tags:                 cdr.Tags,
	})
	if err != nil {
		log.Error().Err(err).Str("call_log_id", id).Msg("marshal created payload failed")
		return
	}
	if err := s.pub.Publish(ctx, notify.TopicCDRCreated, payload); err != nil {
		log.Warn().Err(err).Str("call_log_id", id).Msg("publish created failed")
	}
}
