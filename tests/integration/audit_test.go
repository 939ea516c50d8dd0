package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/cashify/ledger/internal/adapter/http/dto"
	"github.com/cashify/ledger/tests/testutil"
)

func TestAuditTrailRecordsMutations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := testutil.NewTestEnv(t)
	env.TruncateAll(ctx)

	account := env.CreateAccount("biz-1", "Checking", "USD", "100", false)
	entry := env.CreateEntry("biz-1", account.ID, "expense", "30", "")

	note := "groceries"
	rec := env.Request(http.MethodPut, "/api/v1/entries/"+entry.ID, "biz-1", dto.UpdateEntryRequest{Note: &note})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.Request(http.MethodDelete, "/api/v1/entries/"+entry.ID, "biz-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cancel to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.Request(http.MethodGet, "/api/v1/audit", "biz-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var logs []*dto.AuditLogResponse
	env.Decode(rec, &logs)
	if len(logs) != 3 {
		t.Fatalf("expected 3 audit logs, got %d", len(logs))
	}

	// Newest first.
	wantActions := []string{"cancel", "update", "create"}
	for i, want := range wantActions {
		if logs[i].Action != want {
			t.Errorf("log %d: expected action %q, got %q", i, want, logs[i].Action)
		}
		if logs[i].ResourceType != "entry" {
			t.Errorf("log %d: expected resource_type entry, got %q", i, logs[i].ResourceType)
		}
		if logs[i].ResourceID != entry.ID {
			t.Errorf("log %d: expected resource_id %s, got %s", i, entry.ID, logs[i].ResourceID)
		}
		if logs[i].Actor != "test-user" {
			t.Errorf("log %d: expected actor test-user, got %q", i, logs[i].Actor)
		}
	}

	rec = env.Request(http.MethodGet, "/api/v1/audit?action=create", "biz-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env.Decode(rec, &logs)
	if len(logs) != 1 || logs[0].Action != "create" {
		t.Fatalf("expected exactly the create log, got %d logs", len(logs))
	}

	rec = env.Request(http.MethodGet, "/api/v1/audit?action=explode", "biz-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown action, got %d", rec.Code)
	}
}

func TestAuditTrailIsTenantScoped(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := testutil.NewTestEnv(t)
	env.TruncateAll(ctx)

	account := env.CreateAccount("biz-1", "Checking", "USD", "100", false)
	env.CreateEntry("biz-1", account.ID, "income", "50", "")

	rec := env.Request(http.MethodGet, "/api/v1/audit", "biz-2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var logs []*dto.AuditLogResponse
	env.Decode(rec, &logs)
	if len(logs) != 0 {
		t.Errorf("expected no audit logs for a foreign tenant, got %d", len(logs))
	}
}
