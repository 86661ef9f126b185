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

func TestBanRepositoryCreateSharesTxWithAudit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBanRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ban_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reason := "spam"
	record := &models.BanRecord{
		BroadcasterPlatformID: "chan-1",
		TargetPlatformID:      "target-7",
		IssuedBy:              "admin-1",
		Reason:                &reason,
	}
	entry := &models.AuditLogEntry{
		ActorID:      "admin-1",
		Action:       models.AuditActionBanUser,
		ResourceType: models.ResourcePlatformBan,
		ResourceID:   "target-7",
	}
	require.NoError(t, repo.Create(context.Background(), record, entry))
	require.NotEmpty(t, record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryCreateRollsBackOnAuditFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBanRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ban_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.BanRecord{}, &models.AuditLogEntry{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryDeleteMissingRowStillAudits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBanRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ban_records")).
		WithArgs("chan-1", "target-7").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry := &models.AuditLogEntry{ActorID: "admin-1", Action: models.AuditActionUnbanUser, ResourceType: models.ResourcePlatformBan, ResourceID: "target-7"}
	require.NoError(t, repo.Delete(context.Background(), "chan-1", "target-7", entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryDeleteExpired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBanRepository(db)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ban_records WHERE expires_at IS NOT NULL")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
