package models

import (
	"encoding/json"
	"time"
)

// Audit actions emitted by the engine.
const (
	AuditActionEnrollSubject     = "enroll_subject"
	AuditActionConfirmEnrollment = "confirm_enrollment"
	AuditActionIncExpired        = "inc_expired"
)

// Audited entity names.
const (
	AuditEntityAcademicRecord = "AcademicRecord"
	AuditEntityEnrollment     = "Enrollment"
)

// AuditEvent is the single persisted trace of every decision the engine
// makes. The engine defines only this payload shape; storage belongs to
// the emitter implementation.
type AuditEvent struct {
	ID        string          `db:"id" json:"id"`
	Actor     string          `db:"actor" json:"actor"`
	Action    string          `db:"action" json:"action"`
	Entity    string          `db:"entity" json:"entity"`
	EntityID  string          `db:"entity_id" json:"entity_id"`
	OldValue  json.RawMessage `db:"old_value" json:"old_value,omitempty"`
	NewValue  json.RawMessage `db:"new_value" json:"new_value,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
