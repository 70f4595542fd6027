package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
)

func TestList_EnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodGet, "/things", nil)

	Handle(func(*stdhttp.Request) Response {
		return List([]string{"a", "b"}, 9, 2, 4)
	}).ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var env struct {
		Data []string `json:"data"`
		Page *Page    `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 || env.Data[0] != "a" {
		t.Fatalf("data = %v, want the items array", env.Data)
	}
	if env.Page == nil || env.Page.Total != 9 || env.Page.Limit != 2 || env.Page.Offset != 4 {
		t.Fatalf("page = %+v, want total 9 limit 2 offset 4", env.Page)
	}
}

func TestOK_HasNoPage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodGet, "/thing", nil)

	Handle(func(*stdhttp.Request) Response {
		return OK(map[string]string{"id": "x"})
	}).ServeHTTP(rec, req)

	var env struct {
		Data map[string]string `json:"data"`
		Page *Page             `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Page != nil {
		t.Fatalf("page should be omitted, got %+v", env.Page)
	}
	if env.Data["id"] != "x" {
		t.Fatalf("data = %v", env.Data)
	}
}
