package level

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository with version checks.
type memRepo struct {
	mu      sync.Mutex
	records map[string]UserLevel
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]UserLevel)}
}

func (m *memRepo) Get(_ context.Context, userID string) (*UserLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.Badges = append([]Badge(nil), u.Badges...)
	return &u, nil
}

func (m *memRepo) Create(_ context.Context, u *UserLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[u.UserID]; ok {
		return ErrConcurrentModification
	}
	u.Version = 1
	m.records[u.UserID] = *u
	return nil
}

func (m *memRepo) Update(_ context.Context, u *UserLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[u.UserID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != u.Version {
		return ErrConcurrentModification
	}
	u.Version++
	m.records[u.UserID] = *u
	return nil
}

func newTestService(now time.Time) (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestUpdateUserLevelCreatesRecord(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)

	p, err := svc.RecordCompletion(context.Background(), "u1", Activity{Score: 6.5, RecentInterviews: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Level)
	assert.False(t, p.LevelIncreased)
	assert.Equal(t, 4, p.InterviewsToNextLevel)
	require.Len(t, p.NewBadges, 1)
	assert.Equal(t, BadgeFirstInterview, p.NewBadges[0].ID)

	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CompletedInterviews)
	assert.Equal(t, 1, stored.TotalInterviews)
	assert.Equal(t, 62, stored.ReadinessScore)
}

func TestUpdateUserLevelLevelUp(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)

	u := NewUserLevel("u1", now)
	u.CompletedInterviews = 4
	u.TotalInterviews = 6
	u.Badges = []Badge{{ID: BadgeFirstInterview, EarnedAt: now.Add(-time.Hour)}}
	require.NoError(t, repo.Create(context.Background(), u))

	p, err := svc.RecordCompletion(context.Background(), "u1", Activity{Score: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Level)
	assert.True(t, p.LevelIncreased)
	assert.Empty(t, p.NewBadges)
	assert.Equal(t, 15, p.InterviewsToNextLevel)
	assert.Equal(t, 6, p.UserLevel.TotalInterviews)
	assert.Len(t, p.UserLevel.Badges, 1)
}

func TestUpdateUserLevelWithoutCompletion(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	p, err := svc.UpdateUserLevel(context.Background(), "u1", Activity{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Empty(t, p.NewBadges)
	assert.Equal(t, 0, p.UserLevel.CompletedInterviews)
}

func TestRecordStartAndDeletion(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)
	ctx := context.Background()

	require.NoError(t, svc.RecordStart(ctx, "u1"))
	require.NoError(t, svc.RecordStart(ctx, "u1"))

	u, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.TotalInterviews)

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RecordDeletion(ctx, "u1"))
	}
	u, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, u.TotalInterviews, "counter must floor at zero")
}

func TestRecordDeletionWithoutRecord(t *testing.T) {
	svc, repo := newTestService(time.Now())
	require.NoError(t, svc.RecordDeletion(context.Background(), "ghost"))
	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDefaultsForNewUser(t *testing.T) {
	svc, _ := newTestService(time.Now())
	u, err := svc.Get(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, u.CurrentLevel)
	assert.Empty(t, u.Badges)
}

func TestServiceRequiresUser(t *testing.T) {
	svc, _ := newTestService(time.Now())
	_, err := svc.UpdateUserLevel(context.Background(), "", Activity{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
