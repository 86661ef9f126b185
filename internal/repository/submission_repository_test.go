package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/subculture-collective/clipper-sub007/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubmissionRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "clip_id", "title", "status", "rejection_reason", "reviewed_by", "reviewed_at", "created_at", "updated_at"}).
		AddRow("sub-1", "user-9", "clip-1", "My clip", "pending", nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, clip_id, title, status")).
		WithArgs("sub-1").
		WillReturnRows(rows)

	sub, err := repo.GetByID(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionPending, sub.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryTransitionCommitsWithAudit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions")).
		WithArgs("sub-1", models.SubmissionApproved, nil, "mod-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry := &models.AuditLogEntry{
		ActorID:      "mod-1",
		Action:       models.AuditActionApproveSubmission,
		ResourceType: models.ResourceSubmission,
		ResourceID:   "sub-1",
	}
	err := repo.Transition(context.Background(), TransitionParams{
		ID:         "sub-1",
		To:         models.SubmissionApproved,
		ReviewedBy: "mod-1",
		ReviewedAt: now,
	}, entry)
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID, "audit entry id is assigned on insert")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryTransitionCASMiss(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions")).
		WithArgs("sub-1", models.SubmissionApproved, nil, "mod-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Transition(context.Background(), TransitionParams{
		ID:         "sub-1",
		To:         models.SubmissionApproved,
		ReviewedBy: "mod-1",
		ReviewedAt: now,
	}, &models.AuditLogEntry{})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryTransitionRollsBackOnAuditFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions")).
		WithArgs("sub-1", models.SubmissionRejected, "spam", "mod-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	reason := "spam"
	err := repo.Transition(context.Background(), TransitionParams{
		ID:         "sub-1",
		To:         models.SubmissionRejected,
		Reason:     &reason,
		ReviewedBy: "mod-1",
		ReviewedAt: now,
	}, &models.AuditLogEntry{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
