package confd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "callog/internal/platform/errors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL, Token: "secret-token"})
	return srv, c
}

func TestListLines(t *testing.T) {
	var gotToken, gotName string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Auth-Token")
		gotName = r.URL.Query().Get("name")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":10,"name":"sip/alice","users":[{"uuid":"u1"}]}]}`))
	})

	lines, err := c.ListLines(context.Background(), "sip/alice")
	if err != nil {
		t.Fatalf("ListLines: %v", err)
	}
	if gotToken != "secret-token" {
		t.Errorf("X-Auth-Token = %q, want secret-token", gotToken)
	}
	if gotName != "sip/alice" {
		t.Errorf("name filter = %q, want sip/alice", gotName)
	}
	if len(lines) != 1 || lines[0].ID != 10 || lines[0].Name != "sip/alice" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if len(lines[0].Users) != 1 || lines[0].Users[0].UUID != "u1" {
		t.Fatalf("unexpected users: %+v", lines[0].Users)
	}
}

func TestListLines_NoMatch(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	lines, err := c.ListLines(context.Background(), "sip/nobody")
	if err != nil {
		t.Fatalf("ListLines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %+v", lines)
	}
}

func TestGetUser(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1" {
			t.Errorf("path = %q, want /users/u1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uuid":"u1","userfield":"vip,gold"}`))
	})

	u, err := c.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.UUID != "u1" || u.UserField != "vip,gold" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetUser(context.Background(), "ghost")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetJSON_ServerErrorIsUnavailable(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListLines(context.Background(), "sip/alice")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestGetJSON_DecodeErrorKeepsPathVerbatim(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":`))
	})

	// percent in the line name must survive into the error untouched
	_, err := c.ListLines(context.Background(), "sip/100%alice")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "name=sip%2F100%25alice") {
		t.Errorf("path not preserved in error: %v", err)
	}
	if strings.Contains(err.Error(), "%!") {
		t.Errorf("garbled format output: %v", err)
	}
}

func TestGetJSON_TransportErrorIsUnavailable(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.ListLines(context.Background(), "sip/alice")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
