package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subculture-collective/clipper-sub007/internal/dto"
	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/internal/repository"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

type stubAppealStore struct {
	appeals    map[string]*models.Appeal
	resolveErr error

	created  []*models.Appeal
	resolves []repository.ResolveParams
	entries  []*models.AuditLogEntry
}

func newStubAppealStore() *stubAppealStore {
	return &stubAppealStore{appeals: make(map[string]*models.Appeal)}
}

func (s *stubAppealStore) Create(_ context.Context, appeal *models.Appeal, entry *models.AuditLogEntry) error {
	s.created = append(s.created, appeal)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubAppealStore) GetByID(_ context.Context, id string) (*models.Appeal, error) {
	appeal, ok := s.appeals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *appeal
	return &copied, nil
}

func (s *stubAppealStore) Resolve(_ context.Context, params repository.ResolveParams, entry *models.AuditLogEntry) error {
	if s.resolveErr != nil {
		return s.resolveErr
	}
	s.resolves = append(s.resolves, params)
	s.entries = append(s.entries, entry)
	return nil
}

type stubAuditEntryReader struct {
	entries map[string]*models.AuditLogEntry
}

func (s *stubAuditEntryReader) GetByID(_ context.Context, id string) (*models.AuditLogEntry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return entry, nil
}

type stubSubmissionReader struct {
	submissions map[string]*models.Submission
}

func (s *stubSubmissionReader) GetByID(_ context.Context, id string) (*models.Submission, error) {
	sub, ok := s.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sub, nil
}

func newAppealFixture() (*AppealService, *stubAppealStore, *stubAuditEntryReader, *stubSubmissionReader) {
	store := newStubAppealStore()
	audit := &stubAuditEntryReader{entries: make(map[string]*models.AuditLogEntry)}
	subs := &stubSubmissionReader{submissions: make(map[string]*models.Submission)}
	svc := NewAppealService(store, audit, subs, nil, nil)
	return svc, store, audit, subs
}

func rejectionAuditEntry(id, submissionID string) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		ID:           id,
		ActorID:      "mod-1",
		Action:       models.AuditActionRejectSubmission,
		ResourceType: models.ResourceSubmission,
		ResourceID:   submissionID,
	}
}

func TestSubmitAppealBySubject(t *testing.T) {
	svc, store, audit, subs := newAppealFixture()
	audit.entries["audit-1"] = rejectionAuditEntry("audit-1", "sub-1")
	subs.submissions["sub-1"] = &models.Submission{ID: "sub-1", UserID: "user-9", Status: models.SubmissionRejected}

	actor := &models.Actor{ID: "user-9", Role: models.RoleUser}
	appeal, err := svc.Submit(context.Background(), actor, &dto.CreateAppealRequest{ModerationActionID: "audit-1", Reason: "it was fair use"})
	require.NoError(t, err)
	assert.Equal(t, models.AppealPending, appeal.Status)
	assert.Equal(t, "audit-1", appeal.ModerationActionID)
	assert.Equal(t, "user-9", appeal.UserID)

	require.Len(t, store.entries, 1)
	assert.Equal(t, models.AuditActionAppealSubmitted, store.entries[0].Action)
}

func TestSubmitAppealRequiresReason(t *testing.T) {
	svc, store, audit, subs := newAppealFixture()
	audit.entries["audit-1"] = rejectionAuditEntry("audit-1", "sub-1")
	subs.submissions["sub-1"] = &models.Submission{ID: "sub-1", UserID: "user-9"}

	actor := &models.Actor{ID: "user-9", Role: models.RoleUser}
	_, err := svc.Submit(context.Background(), actor, &dto.CreateAppealRequest{ModerationActionID: "audit-1", Reason: "  "})
	assert.True(t, appErrors.Is(err, appErrors.ErrReasonRequired))
	assert.Empty(t, store.created)
}

func TestSubmitAppealByNonSubjectDenied(t *testing.T) {
	svc, store, audit, subs := newAppealFixture()
	audit.entries["audit-1"] = rejectionAuditEntry("audit-1", "sub-1")
	subs.submissions["sub-1"] = &models.Submission{ID: "sub-1", UserID: "user-9"}

	actor := &models.Actor{ID: "someone-else", Role: models.RoleUser}
	_, err := svc.Submit(context.Background(), actor, &dto.CreateAppealRequest{ModerationActionID: "audit-1", Reason: "not mine but still"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, store.created)
}

func TestSubmitAppealUnknownAction(t *testing.T) {
	svc, _, _, _ := newAppealFixture()

	actor := &models.Actor{ID: "user-9", Role: models.RoleUser}
	_, err := svc.Submit(context.Background(), actor, &dto.CreateAppealRequest{ModerationActionID: "ghost", Reason: "x"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSubmitAppealAgainstBanMatchesPlatformAccount(t *testing.T) {
	svc, store, audit, _ := newAppealFixture()
	entry := &models.AuditLogEntry{
		ID:           "audit-2",
		Action:       models.AuditActionBanUser,
		ResourceType: models.ResourcePlatformBan,
		ResourceID:   "plat-77",
		Details:      json.RawMessage(`{"user_id":"plat-77","broadcaster_id":"chan-1"}`),
	}
	audit.entries["audit-2"] = entry

	linked := "plat-77"
	owner := &models.Actor{ID: "user-3", Role: models.RoleUser, PlatformAccountID: &linked}
	_, err := svc.Submit(context.Background(), owner, &dto.CreateAppealRequest{ModerationActionID: "audit-2", Reason: "wrong target"})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	other := "plat-99"
	stranger := &models.Actor{ID: "user-4", Role: models.RoleUser, PlatformAccountID: &other}
	_, err = svc.Submit(context.Background(), stranger, &dto.CreateAppealRequest{ModerationActionID: "audit-2", Reason: "me too"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestResolveAppeal(t *testing.T) {
	svc, store, _, _ := newAppealFixture()
	store.appeals["ap-1"] = &models.Appeal{ID: "ap-1", UserID: "user-9", Status: models.AppealPending}

	appeal, err := svc.Resolve(context.Background(), "ap-1", staffActor(), &dto.ResolveAppealRequest{Decision: "approve", Resolution: "  restored  "})
	require.NoError(t, err)
	assert.Equal(t, models.AppealApproved, appeal.Status)
	require.NotNil(t, appeal.Resolution)
	assert.Equal(t, "restored", *appeal.Resolution)
	require.NotNil(t, appeal.ResolvedBy)
	assert.Equal(t, "mod-1", *appeal.ResolvedBy)

	require.Len(t, store.resolves, 1)
	assert.Equal(t, models.AppealApproved, store.resolves[0].Status)
}

func TestResolveAppealEmptyResolutionStoredAsNil(t *testing.T) {
	svc, store, _, _ := newAppealFixture()
	store.appeals["ap-1"] = &models.Appeal{ID: "ap-1", Status: models.AppealPending}

	appeal, err := svc.Resolve(context.Background(), "ap-1", staffActor(), &dto.ResolveAppealRequest{Decision: "reject", Resolution: "   "})
	require.NoError(t, err)
	assert.Equal(t, models.AppealRejected, appeal.Status)
	assert.Nil(t, appeal.Resolution)
	require.Len(t, store.resolves, 1)
	assert.Nil(t, store.resolves[0].Resolution)
}

func TestResolveAppealDeniedForRegularUser(t *testing.T) {
	svc, store, _, _ := newAppealFixture()
	store.appeals["ap-1"] = &models.Appeal{ID: "ap-1", Status: models.AppealPending}

	actor := &models.Actor{ID: "user-9", Role: models.RoleUser}
	_, err := svc.Resolve(context.Background(), "ap-1", actor, &dto.ResolveAppealRequest{Decision: "approve"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAuthenticated))
	assert.Empty(t, store.resolves)
}

func TestResolveAppealAlreadyResolved(t *testing.T) {
	svc, store, _, _ := newAppealFixture()
	store.appeals["ap-1"] = &models.Appeal{ID: "ap-1", Status: models.AppealRejected}

	_, err := svc.Resolve(context.Background(), "ap-1", staffActor(), &dto.ResolveAppealRequest{Decision: "approve"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestResolveAppealLosesRace(t *testing.T) {
	svc, store, _, _ := newAppealFixture()
	store.appeals["ap-1"] = &models.Appeal{ID: "ap-1", Status: models.AppealPending}
	store.resolveErr = sql.ErrNoRows

	_, err := svc.Resolve(context.Background(), "ap-1", staffActor(), &dto.ResolveAppealRequest{Decision: "approve"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}
