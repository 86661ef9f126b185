package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

// AuditRepository reads and appends audit log entries. The audit_logs table is
// append-only: this type exposes no update or delete, and none exists anywhere
// else in the codebase.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs a new repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// insertAuditLog appends one entry using the provided executor, which lets
// mutating repositories write their audit row inside the same transaction as
// the mutation it records.
func insertAuditLog(ctx context.Context, ext sqlx.ExtContext, entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.Details) == 0 {
		entry.Details = []byte("{}")
	}
	const query = `INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := ext.ExecContext(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.ResourceType, entry.ResourceID, entry.Details, entry.CreatedAt); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Append stores a single audit entry outside any surrounding transaction.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	return insertAuditLog(ctx, r.db, entry)
}

// GetByID loads one audit entry.
func (r *AuditRepository) GetByID(ctx context.Context, id string) (*models.AuditLogEntry, error) {
	const query = `SELECT id, actor_id, action, resource_type, resource_id, details, created_at
FROM audit_logs WHERE id = $1`
	var entry models.AuditLogEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get audit log: %w", err)
	}
	return &entry, nil
}

// Query returns entries matching all provided filters, newest first.
func (r *AuditRepository) Query(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ResourceID != "" {
		where = append(where, fmt.Sprintf("resource_id = $%d", len(args)+1))
		args = append(args, filter.ResourceID)
	}
	if filter.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, actor_id, action, resource_type, resource_id, details, created_at
FROM audit_logs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var entries []models.AuditLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("query audit logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_logs WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	return entries, total, nil
}
