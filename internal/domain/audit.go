package domain

import "time"

// AuditAction is the recorded mutation type.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionCancel AuditAction = "cancel"
)

// AuditLog records one mutation of a ledger resource. Logs are written in the
// same storage transaction as the mutation they describe.
type AuditLog struct {
	ID           string
	BusinessID   string
	Actor        string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	BeforeState  map[string]any
	AfterState   map[string]any
	CreatedAt    time.Time
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	BusinessID   string
	ResourceType string
	ResourceID   string
	Action       AuditAction
	Limit        int
	Offset       int
}
