package cel_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"callog/internal/core/cel"
)

func TestLineIdentity(t *testing.T) {
	cases := []struct {
		channame string
		want     string
	}{
		{"sip/alice-0000001", "sip/alice"},
		{"sccp/1002-000000a", "sccp/1002"},
		{"sip/abc-def-0000002", "sip/abc-def"},
		{"noslash", ""},
		{"sip/nodash", ""},
		{"-sip/backwards", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := cel.LineIdentity(c.channame); got != c.want {
			t.Errorf("LineIdentity(%q) = %q, want %q", c.channame, got, c.want)
		}
	}
}

func TestFindParticipant_AbsenceCases(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.addEmptyLine("sip/ghost", 30)

	cases := []struct {
		name     string
		channame string
	}{
		{"unparsable channame", "garbage"},
		{"no matching line", "sip/nobody-0000001"},
		{"line without users", "sip/ghost-0000001"},
	}
	for _, c := range cases {
		p, err := cel.FindParticipant(ctx, dir, c.channame, cel.RoleSource)
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if p != nil {
			t.Errorf("%s: expected absence, got %+v", c.name, p)
		}
	}
}

func TestFindParticipant_Found(t *testing.T) {
	dir := newFakeDirectory()
	dir.addLine("sip/alice", 10, "u1", "vip, gold ,support")

	p, err := cel.FindParticipant(context.Background(), dir, "sip/alice-0000001", cel.RoleDestination)
	if err != nil {
		t.Fatalf("FindParticipant: %v", err)
	}
	if p == nil {
		t.Fatal("expected a participant")
	}
	if p.Role != cel.RoleDestination {
		t.Errorf("role = %q, want destination", p.Role)
	}
	if p.UserUUID != "u1" || p.LineID != 10 {
		t.Errorf("identity = %q/%d, want u1/10", p.UserUUID, p.LineID)
	}
	want := []string{"vip", "gold", "support"}
	if !reflect.DeepEqual(p.Tags, want) {
		t.Errorf("tags = %v, want %v", p.Tags, want)
	}
}

func TestFindParticipant_EmptyUserfieldYieldsNoTags(t *testing.T) {
	dir := newFakeDirectory()
	dir.addLine("sip/bob", 20, "u2", "")

	p, err := cel.FindParticipant(context.Background(), dir, "sip/bob-0000002", cel.RoleSource)
	if err != nil {
		t.Fatalf("FindParticipant: %v", err)
	}
	if p == nil {
		t.Fatal("expected a participant")
	}
	if len(p.Tags) != 0 {
		t.Errorf("tags = %v, want none", p.Tags)
	}
}

func TestFindParticipant_DirectoryErrorPropagates(t *testing.T) {
	dir := newFakeDirectory()
	dir.err = errors.New("directory down")

	_, err := cel.FindParticipant(context.Background(), dir, "sip/alice-0000001", cel.RoleSource)
	if err == nil {
		t.Fatal("expected the transport error to propagate")
	}
}
