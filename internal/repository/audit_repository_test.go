package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

func TestAuditRepositoryAppendDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditLogEntry{
		ActorID:      "mod-1",
		Action:       models.AuditActionBanUser,
		ResourceType: models.ResourcePlatformBan,
		ResourceID:   "plat-7",
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.JSONEq(t, "{}", string(entry.Details))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryQueryFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	rows := sqlmock.NewRows([]string{"id", "actor_id", "action", "resource_type", "resource_id", "details", "created_at"}).
		AddRow("e2", "mod-1", "reject_submission", "submission", "sub-1", []byte(`{}`), time.Now()).
		AddRow("e1", "mod-1", "reject_submission", "submission", "sub-1", []byte(`{}`), time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("sub-1", "reject_submission").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs")).
		WithArgs("sub-1", "reject_submission").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	entries, total, err := repo.Query(context.Background(), models.AuditLogFilter{
		ResourceID: "sub-1",
		Action:     models.AuditActionRejectSubmission,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, total)
	require.Equal(t, "e2", entries[0].ID, "newest entry first")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryQueryNoFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "action", "resource_type", "resource_id", "details", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	entries, total, err := repo.Query(context.Background(), models.AuditLogFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
