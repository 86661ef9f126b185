package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

func TestAppealRepositoryResolveCAS(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAppealRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appeals")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resolution := "restored"
	err := repo.Resolve(context.Background(), ResolveParams{
		ID:         "ap-1",
		Status:     models.AppealApproved,
		Resolution: &resolution,
		ResolvedBy: "mod-1",
		ResolvedAt: now,
	}, &models.AuditLogEntry{ActorID: "mod-1", Action: models.AuditActionAppealResolved, ResourceType: models.ResourceAppeal, ResourceID: "ap-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryResolveAlreadyResolved(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAppealRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appeals")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Resolve(context.Background(), ResolveParams{
		ID:         "ap-1",
		Status:     models.AppealRejected,
		ResolvedBy: "mod-1",
		ResolvedAt: time.Now().UTC(),
	}, &models.AuditLogEntry{})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryCreateForcesPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAppealRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appeals")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	appeal := &models.Appeal{
		ModerationActionID: "audit-1",
		UserID:             "user-9",
		Reason:             "fair use",
		Status:             models.AppealRejected,
	}
	entry := &models.AuditLogEntry{ActorID: "user-9", Action: models.AuditActionAppealSubmitted, ResourceType: models.ResourceAppeal, ResourceID: "audit-1"}
	require.NoError(t, repo.Create(context.Background(), appeal, entry))
	require.Equal(t, models.AppealPending, appeal.Status)
	require.NotEmpty(t, appeal.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
