// Package repo implements postgres access for stored call logs
package repo

import (
	"context"
	"time"

	"callog/internal/modkit/repokit"
	perr "callog/internal/platform/errors"
)

// Filter narrows and orders the list query
type Filter struct {
	From   time.Time
	Until  time.Time
	Order  string
	Desc   bool
	Limit  int
	Offset int
	Search string
}

// Row is one stored call log row
type Row struct {
	ID                      string
	Date                    time.Time
	DateAnswer              *time.Time
	DateEnd                 *time.Time
	SourceName              string
	SourceExten             string
	SourceLineIdentity      string
	DestinationName         string
	DestinationExten        string
	DestinationLineIdentity string
	Direction               string
	UserField               string
	Tags                    []string
}

// Repo is the storage port for call logs
type Repo interface {
	List(ctx context.Context, f Filter) ([]Row, int, error)
	Get(ctx context.Context, id string) (Row, error)
}

// PG binds a postgres backed Repo
type PG struct{}

// NewPG returns a binder for the postgres repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &pgRepo{q: q} }

type pgRepo struct{ q repokit.Queryer }

// orderExpr whitelists sortable keys so user input never reaches the
// order by clause directly; unknown keys fall back to start
var orderExpr = map[string]string{
	"start":                 "date",
	"answer":                "date_answer",
	"end":                   "date_end",
	"source_name":           "source_name",
	"source_extension":      "source_exten",
	"destination_name":      "destination_name",
	"destination_extension": "destination_exten",
	"direction":             "direction",
	"duration":              "(date_end - date_answer)",
	"answered":              "(date_answer is not null)",
}

const listCols = `
	id, date, date_answer, date_end,
	source_name, source_exten, source_line_identity,
	destination_name, destination_exten, destination_line_identity,
	direction, user_field, tags`

func (r *pgRepo) List(ctx context.Context, f Filter) ([]Row, int, error) {
	col, ok := orderExpr[f.Order]
	if !ok {
		col = "date"
	}
	dir := "asc"
	if f.Desc {
		dir = "desc"
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	sql := `
		select` + listCols + `,
			count(*) over() as total
		from call_logs
		where ($1::timestamptz is null or date >= $1)
		  and ($2::timestamptz is null or date < $2)
		  and ($3 = ''
		    or source_name ilike '%' || $3 || '%'
		    or destination_name ilike '%' || $3 || '%'
		    or source_exten ilike '%' || $3 || '%'
		    or destination_exten ilike '%' || $3 || '%')
		order by ` + col + ` ` + dir + ` nulls last, id
		limit $4 offset $5`

	rows, err := r.q.Query(ctx, sql, tsOrNil(f.From), tsOrNil(f.Until), f.Search, limit, f.Offset)
	if err != nil {
		return nil, 0, perr.FromPG(err, "cdr list")
	}
	defer rows.Close()

	var out []Row
	total := 0
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.Date, &row.DateAnswer, &row.DateEnd,
			&row.SourceName, &row.SourceExten, &row.SourceLineIdentity,
			&row.DestinationName, &row.DestinationExten, &row.DestinationLineIdentity,
			&row.Direction, &row.UserField, &row.Tags,
			&total,
		); err != nil {
			return nil, 0, perr.FromPG(err, "cdr list scan")
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, perr.FromPG(err, "cdr list rows")
	}
	return out, total, nil
}

func (r *pgRepo) Get(ctx context.Context, id string) (Row, error) {
	var row Row
	err := r.q.QueryRow(ctx, `select`+listCols+` from call_logs where id = $1`, id).Scan(
		&row.ID, &row.Date, &row.DateAnswer, &row.DateEnd,
		&row.SourceName, &row.SourceExten, &row.SourceLineIdentity,
		&row.DestinationName, &row.DestinationExten, &row.DestinationLineIdentity,
		&row.Direction, &row.UserField, &row.Tags,
	)
	if err != nil {
		return Row{}, perr.FromPG(err, "cdr get")
	}
	return row, nil
}

// tsOrNil maps the zero time to SQL null so the filter collapses
func tsOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
