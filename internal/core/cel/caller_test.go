package cel_test

import (
	"context"
	"testing"
	"time"

	"callog/internal/core/cel"
)

func callerStep(t *testing.T, i *cel.Interpretor, ev cel.Event, r *cel.RawCallLog) *cel.RawCallLog {
	t.Helper()
	out, err := i.InterpretOne(context.Background(), ev, r)
	if err != nil {
		t.Fatalf("InterpretOne(%s): %v", ev.EventType, err)
	}
	return out
}

func TestCaller_ChanStart(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	dir := newFakeDirectory()
	dir.addLine("sip/alice", 10, "u1", "vip")
	i := cel.NewCallerInterpretor(dir)

	r := callerStep(t, i, cel.Event{
		EventType: cel.EventTypeChanStart,
		ChanName:  "sip/alice-0000001",
		CIDName:   "Alice",
		CIDNum:    "1001",
		Exten:     "2002",
		EventTime: t0,
	}, cel.NewRawCallLog())

	if !r.Date.Equal(t0) {
		t.Errorf("date = %v, want %v", r.Date, t0)
	}
	if r.SourceName != "Alice" || r.SourceExten != "1001" {
		t.Errorf("source = %q/%q, want Alice/1001", r.SourceName, r.SourceExten)
	}
	if r.DestinationExten != "2002" {
		t.Errorf("destination_exten = %q, want 2002", r.DestinationExten)
	}
	if r.SourceLineIdentity != "sip/alice" {
		t.Errorf("source_line_identity = %q, want sip/alice", r.SourceLineIdentity)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "vip" {
		t.Errorf("tags = %v, want [vip]", r.Tags)
	}
}

func TestCaller_ChanStartGenericExten(t *testing.T) {
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := callerStep(t, i, cel.Event{EventType: cel.EventTypeChanStart, Exten: "s"}, cel.NewRawCallLog())
	if r.DestinationExten != "" {
		t.Errorf("destination_exten = %q, want empty for the generic start exten", r.DestinationExten)
	}
}

func TestCaller_ChanStartUnknownLineSkipsIdentity(t *testing.T) {
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := callerStep(t, i, cel.Event{
		EventType: cel.EventTypeChanStart,
		ChanName:  "sip/stranger-0000001",
		CIDName:   "Stranger",
	}, cel.NewRawCallLog())

	if r.SourceLineIdentity != "" {
		t.Errorf("source_line_identity = %q, want empty without a participant", r.SourceLineIdentity)
	}
	if r.SourceName != "Stranger" {
		t.Errorf("source_name = %q, want Stranger", r.SourceName)
	}
}

func TestCaller_AppStartOverwritesOnlyFullCallerID(t *testing.T) {
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := cel.NewRawCallLog()
	r.SourceName = "Alice"
	r.SourceExten = "1001"

	// partial caller id leaves the identity untouched
	r = callerStep(t, i, cel.Event{EventType: cel.EventTypeAppStart, CIDName: "Real Alice", UserField: "tagged"}, r)
	if r.SourceName != "Alice" || r.SourceExten != "1001" {
		t.Errorf("partial cid overwrote identity: %q/%q", r.SourceName, r.SourceExten)
	}
	if r.UserField != "tagged" {
		t.Errorf("user_field = %q, want tagged", r.UserField)
	}

	// full caller id wins
	r = callerStep(t, i, cel.Event{EventType: cel.EventTypeAppStart, CIDName: "Real Alice", CIDNum: "4242"}, r)
	if r.SourceName != "Real Alice" || r.SourceExten != "4242" {
		t.Errorf("full cid did not overwrite: %q/%q", r.SourceName, r.SourceExten)
	}
}

func TestCaller_AnswerFirstWriteWins(t *testing.T) {
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := callerStep(t, i, cel.Event{EventType: cel.EventTypeAnswer, CIDName: "2002"}, cel.NewRawCallLog())
	if r.DestinationExten != "2002" {
		t.Fatalf("destination_exten = %q, want 2002", r.DestinationExten)
	}

	r = callerStep(t, i, cel.Event{EventType: cel.EventTypeAnswer, CIDName: "9999"}, r)
	if r.DestinationExten != "2002" {
		t.Errorf("second answer overwrote destination_exten: %q", r.DestinationExten)
	}
}

func TestCaller_BridgeRefreshesAnswerTimestamp(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 12, 0, 5, 0, time.UTC)
	t2 := t1.Add(30 * time.Second)
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := callerStep(t, i, cel.Event{
		EventType: cel.EventTypeBridgeStart, CIDName: "Alice", CIDNum: "1001", EventTime: t1,
	}, cel.NewRawCallLog())
	if r.SourceName != "Alice" || r.SourceExten != "1001" {
		t.Errorf("first bridge should set identity: %q/%q", r.SourceName, r.SourceExten)
	}
	if !r.DateAnswer.Equal(t1) {
		t.Errorf("date_answer = %v, want %v", r.DateAnswer, t1)
	}

	r = callerStep(t, i, cel.Event{
		EventType: cel.EventTypeBridgeEnter, CIDName: "Other", CIDNum: "9999", EventTime: t2,
	}, r)
	if r.SourceName != "Alice" || r.SourceExten != "1001" {
		t.Errorf("later bridge overwrote identity: %q/%q", r.SourceName, r.SourceExten)
	}
	if !r.DateAnswer.Equal(t2) {
		t.Errorf("date_answer not refreshed: %v, want %v", r.DateAnswer, t2)
	}
}

func TestCaller_DirectionMarkers(t *testing.T) {
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := callerStep(t, i, cel.Event{EventType: cel.EventTypeIncall}, cel.NewRawCallLog())
	if r.Direction != cel.DirectionInbound {
		t.Errorf("direction = %q, want inbound", r.Direction)
	}

	r = callerStep(t, i, cel.Event{EventType: cel.EventTypeOutcall}, r)
	if r.Direction != cel.DirectionOutbound {
		t.Errorf("direction = %q, want outbound", r.Direction)
	}
}

func TestCaller_FromSOverwritesDestination(t *testing.T) {
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := cel.NewRawCallLog()
	r.DestinationExten = "2002"

	r = callerStep(t, i, cel.Event{EventType: cel.EventTypeFromS, Exten: "3003"}, r)
	if r.DestinationExten != "3003" {
		t.Errorf("destination_exten = %q, want 3003", r.DestinationExten)
	}
}

func TestCaller_HangupStampsEnd(t *testing.T) {
	tEnd := time.Date(2026, 8, 1, 12, 2, 0, 0, time.UTC)
	i := cel.NewCallerInterpretor(newFakeDirectory())

	r := callerStep(t, i, cel.Event{EventType: cel.EventTypeHangup, EventTime: tEnd}, cel.NewRawCallLog())
	if !r.DateEnd.Equal(tEnd) {
		t.Errorf("date_end = %v, want %v", r.DateEnd, tEnd)
	}
}
