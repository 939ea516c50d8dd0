package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTenantRequiresHeader(t *testing.T) {
	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a tenant")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got %q", ct)
	}
}

func TestTenantStoresBusinessAndActor(t *testing.T) {
	var gotBusiness, gotActor string

	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBusiness = BusinessID(r.Context())
		gotActor = Actor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(BusinessIDHeader, "biz-1")
	req.Header.Set(ActorHeader, "user-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotBusiness != "biz-1" {
		t.Errorf("expected business biz-1, got %q", gotBusiness)
	}
	if gotActor != "user-1" {
		t.Errorf("expected actor user-1, got %q", gotActor)
	}
}

func TestActorIsOptional(t *testing.T) {
	var gotActor string

	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = Actor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(BusinessIDHeader, "biz-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotActor != "" {
		t.Errorf("expected empty actor, got %q", gotActor)
	}
}
