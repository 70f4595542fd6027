// Package repo implements postgres access for raw channel events and
// finished call log writes
package repo

import (
	"context"

	"github.com/google/uuid"

	celcore "callog/internal/core/cel"
	"callog/internal/modkit/repokit"
	perr "callog/internal/platform/errors"
	ptime "callog/internal/platform/time"
)

// Repo is the generator storage port
type Repo interface {
	// ListReadyLinkedIDs returns linkedids whose LINKEDID_END has arrived
	// and whose events are not yet attributed to a call log
	ListReadyLinkedIDs(ctx context.Context, limit int) ([]string, error)

	// FetchByLinkedID returns one call's events in arrival order
	FetchByLinkedID(ctx context.Context, linkedID string) ([]celcore.Event, error)

	// WriteCallLog inserts the finished record and stamps call_log_id on
	// exactly the fetched events, so rows arriving mid-interpretation stay
	// unattributed; bind inside a transaction to keep both atomic.
	// Returns the new call log id
	WriteCallLog(ctx context.Context, cdr celcore.CDR, linkedID string, eventIDs []int64) (string, error)
}

// PG binds a postgres backed Repo
type PG struct{}

// NewPG returns a binder for the postgres repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &pgRepo{q: q} }

type pgRepo struct{ q repokit.Queryer }

func (r *pgRepo) ListReadyLinkedIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 64
	}
	// the end marker itself must be unattributed: a straggler cel landing
	// after a call was written does not make the call ready again
	rows, err := r.q.Query(ctx, `
		select distinct c.linkedid
		from cel c
		where c.call_log_id is null
		  and exists (
			select 1 from cel e
			where e.linkedid = c.linkedid
			  and e.eventtype = $1
			  and e.call_log_id is null
		  )
		limit $2`,
		string(celcore.EventTypeLinkedIDEnd), limit)
	if err != nil {
		return nil, perr.FromPG(err, "generator list ready")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, perr.FromPG(err, "generator list ready scan")
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPG(err, "generator list ready rows")
	}
	return out, nil
}

func (r *pgRepo) FetchByLinkedID(ctx context.Context, linkedID string) ([]celcore.Event, error) {
	rows, err := r.q.Query(ctx, `
		select id, eventtype, eventtime, uniqueid, linkedid,
		       channame, cid_name, cid_num, exten, userfield
		from cel
		where linkedid = $1
		order by eventtime, id`,
		linkedID)
	if err != nil {
		return nil, perr.FromPG(err, "generator fetch")
	}
	defer rows.Close()

	var out []celcore.Event
	for rows.Next() {
		var ev celcore.Event
		var typ string
		if err := rows.Scan(
			&ev.ID, &typ, &ev.EventTime, &ev.UniqueID, &ev.LinkedID,
			&ev.ChanName, &ev.CIDName, &ev.CIDNum, &ev.Exten, &ev.UserField,
		); err != nil {
			return nil, perr.FromPG(err, "generator fetch scan")
		}
		ev.EventType = celcore.EventType(typ)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPG(err, "generator fetch rows")
	}
	return out, nil
}

func (r *pgRepo) WriteCallLog(ctx context.Context, cdr celcore.CDR, linkedID string, eventIDs []int64) (string, error) {
	id := uuid.NewString()
	if err := store(ctx, r.q, id, cdr); err != nil {
		return "", err
	}
	tag, err := r.q.Exec(ctx,
		`update cel set call_log_id = $1 where linkedid = $2 and id = any($3)`,
		id, linkedID, eventIDs)
	if err != nil {
		return "", perr.FromPG(err, "generator attribute cels")
	}
	if tag.RowsAffected() == 0 {
		return "", perr.DBf("no cel rows attributed for linkedid %s", linkedID)
	}
	return id, nil
}

func store(ctx context.Context, q repokit.Queryer, id string, cdr celcore.CDR) error {
	_, err := q.Exec(ctx, `
		insert into call_logs (
			id, date, date_answer, date_end,
			source_name, source_exten, source_line_identity,
			destination_name, destination_exten, destination_line_identity,
			direction, user_field, tags
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, cdr.Date, ptime.Ptr(cdr.DateAnswer), ptime.Ptr(cdr.DateEnd),
		cdr.SourceName, cdr.SourceExten, cdr.SourceLineIdentity,
		cdr.DestinationName, cdr.DestinationExten, cdr.DestinationLineIdentity,
		cdr.Direction, cdr.UserField, cdr.Tags,
	)
	if err != nil {
		return perr.FromPG(err, "generator insert call log")
	}
	return nil
}
