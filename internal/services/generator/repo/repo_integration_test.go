//go:build integration_pg
// +build integration_pg

package repo_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	celcore "callog/internal/core/cel"
	"callog/internal/modkit/repokit"
	perr "callog/internal/platform/errors"
	"callog/internal/platform/store"
	cdrrepo "callog/internal/services/cdr/repo"
	grepo "callog/internal/services/generator/repo"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

// one statement per string, the pool speaks the extended protocol
var schema = []string{`
	create table call_logs (
		id                        uuid primary key,
		date                      timestamptz not null,
		date_answer               timestamptz,
		date_end                  timestamptz,
		source_name               text not null default '',
		source_exten              text not null default '',
		source_line_identity      text not null default '',
		destination_name          text not null default '',
		destination_exten         text not null default '',
		destination_line_identity text not null default '',
		direction                 text not null default '',
		user_field                text not null default '',
		tags                      text[] not null default '{}'
	)`, `
	create table cel (
		id          bigserial primary key,
		eventtype   text not null,
		eventtime   timestamptz not null,
		uniqueid    text not null,
		linkedid    text not null,
		channame    text not null default '',
		cid_name    text not null default '',
		cid_num     text not null default '',
		exten       text not null default '',
		userfield   text not null default '',
		call_log_id uuid references call_logs (id)
	)`,
}

func seedCall(t *testing.T, ctx context.Context, q repokit.Queryer, linkedID string, t0 time.Time) {
	t.Helper()
	rows := []struct {
		typ    celcore.EventType
		at     time.Time
		unique string
		chan_  string
	}{
		{celcore.EventTypeChanStart, t0, "u-" + linkedID + "-1", "sip/alice-0001"},
		{celcore.EventTypeChanStart, t0.Add(time.Second), "u-" + linkedID + "-2", "sip/bob-0002"},
		{celcore.EventTypeBridgeStart, t0.Add(5 * time.Second), "u-" + linkedID + "-1", ""},
		{celcore.EventTypeHangup, t0.Add(65 * time.Second), "u-" + linkedID + "-1", ""},
		{celcore.EventTypeLinkedIDEnd, t0.Add(65 * time.Second), "u-" + linkedID + "-1", ""},
	}
	for _, r := range rows {
		_, err := q.Exec(ctx, `
			insert into cel (eventtype, eventtime, uniqueid, linkedid, channame, cid_name, cid_num, exten)
			values ($1, $2, $3, $4, $5, 'Alice', '1001', '2002')`,
			string(r.typ), r.at, r.unique, linkedID, r.chan_)
		if err != nil {
			t.Fatalf("seed cel: %v", err)
		}
	}
}

func TestRepos_Integration_GenerateAndRead(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "callog-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	for _, ddl := range schema {
		if _, err := st.PG.Exec(ctx, ddl); err != nil {
			t.Fatalf("schema: %v", err)
		}
	}

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	seedCall(t, ctx, st.PG, "L1", t0)

	g := grepo.NewPG().Bind(st.PG)

	ready, err := g.ListReadyLinkedIDs(ctx, 10)
	if err != nil {
		t.Fatalf("ListReadyLinkedIDs: %v", err)
	}
	if len(ready) != 1 || ready[0] != "L1" {
		t.Fatalf("ready = %v, want [L1]", ready)
	}

	events, err := g.FetchByLinkedID(ctx, "L1")
	if err != nil {
		t.Fatalf("FetchByLinkedID: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("events = %d, want 5", len(events))
	}
	if events[0].EventType != celcore.EventTypeChanStart || events[4].EventType != celcore.EventTypeLinkedIDEnd {
		t.Fatalf("events out of order: %v ... %v", events[0].EventType, events[4].EventType)
	}

	// a cel that lands after the fetch must stay unattributed
	_, err = st.PG.Exec(ctx, `
		insert into cel (eventtype, eventtime, uniqueid, linkedid)
		values ($1, $2, 'u-L1-3', 'L1')`,
		string(celcore.EventTypeChanStart), t0.Add(70*time.Second))
	if err != nil {
		t.Fatalf("late cel: %v", err)
	}

	answer := t0.Add(5 * time.Second)
	end := t0.Add(65 * time.Second)
	cdr := celcore.CDR{
		Date:               t0,
		DateAnswer:         answer,
		DateEnd:            end,
		SourceName:         "Alice",
		SourceExten:        "1001",
		SourceLineIdentity: "sip/alice",
		DestinationExten:   "2002",
		Direction:          celcore.DirectionInbound,
		Tags:               []string{"vip"},
		Duration:           time.Minute,
		Answered:           true,
	}

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}

	var id string
	err = repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
		var err error
		id, err = grepo.NewPG().Bind(q).WriteCallLog(ctx, cdr, "L1", ids)
		return err
	})
	if err != nil {
		t.Fatalf("WriteCallLog: %v", err)
	}
	if id == "" {
		t.Fatal("empty call log id")
	}

	// attribution drains the ready set even with the straggler present
	ready, err = g.ListReadyLinkedIDs(ctx, 10)
	if err != nil {
		t.Fatalf("ListReadyLinkedIDs after write: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("ready after write = %v, want empty", ready)
	}

	// only the fetched events were stamped
	var stamped, unstamped int
	if err := st.PG.QueryRow(ctx,
		`select count(*) filter (where call_log_id is not null),
		        count(*) filter (where call_log_id is null)
		 from cel where linkedid = 'L1'`).Scan(&stamped, &unstamped); err != nil {
		t.Fatalf("count cels: %v", err)
	}
	if stamped != 5 || unstamped != 1 {
		t.Fatalf("stamped %d / unstamped %d cels, want 5 / 1", stamped, unstamped)
	}

	c := cdrrepo.NewPG().Bind(st.PG)

	rows, total, err := c.List(ctx, cdrrepo.Filter{Search: "alice"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("list got %d rows total %d, want 1/1", len(rows), total)
	}
	if rows[0].SourceName != "Alice" || rows[0].DestinationExten != "2002" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].DateAnswer == nil || !rows[0].DateAnswer.Equal(answer) {
		t.Fatalf("date_answer = %v, want %v", rows[0].DateAnswer, answer)
	}
	if len(rows[0].Tags) != 1 || rows[0].Tags[0] != "vip" {
		t.Fatalf("tags = %v, want [vip]", rows[0].Tags)
	}

	got, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.Direction != celcore.DirectionInbound {
		t.Fatalf("unexpected get: %+v", got)
	}

	if _, err := c.Get(ctx, uuid.NewString()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// no-match search still reports zero total
	rows, total, err = c.List(ctx, cdrrepo.Filter{Search: "nobody"})
	if err != nil {
		t.Fatalf("List no match: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("no-match list got %d rows total %d", len(rows), total)
	}
}
