package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/richwell/registrar-api/internal/models"
)

// AuditRepository persists audit events. Events are append-only.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit event.
func (r *AuditRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_events (id, actor, action, entity, entity_id, old_value, new_value, created_at)
        VALUES (:id, :actor, :action, :entity, :entity_id, :old_value, :new_value, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}

// ListByEntity returns the audit trail for one entity, newest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entity, entityID string) ([]models.AuditEvent, error) {
	const query = `SELECT id, actor, action, entity, entity_id, old_value, new_value, created_at
        FROM audit_events WHERE entity = $1 AND entity_id = $2 ORDER BY created_at DESC`
	var events []models.AuditEvent
	if err := r.db.SelectContext(ctx, &events, query, entity, entityID); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
