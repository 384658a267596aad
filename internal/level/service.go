package level

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Repository persists user level records. Update must fail with
// ErrConcurrentModification when the stored version differs from
// u.Version, and bump u.Version on success.
type Repository interface {
	Get(ctx context.Context, userID string) (*UserLevel, error)
	Create(ctx context.Context, u *UserLevel) error
	Update(ctx context.Context, u *UserLevel) error
}

// Progress is the outcome of a level update.
type Progress struct {
	Level                 int        `json:"level"`
	LevelIncreased        bool       `json:"levelIncreased"`
	NewBadges             []Badge    `json:"newBadges"`
	InterviewsToNextLevel int        `json:"interviewsToNextLevel"`
	UserLevel             *UserLevel `json:"userLevel"`
}

// Service applies activity to user level records.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a level service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Get returns the user's level record. A user without one gets a fresh,
// unsaved record at level 1.
func (s *Service) Get(ctx context.Context, userID string) (*UserLevel, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return NewUserLevel(userID, s.now()), nil
	}
	return u, err
}

// UpdateUserLevel applies a and re-derives level, badges and readiness.
// The record is created on first use.
func (s *Service) UpdateUserLevel(ctx context.Context, userID string, a Activity) (*Progress, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	now := s.now()
	if a.At.IsZero() {
		a.At = now
	}

	u, created, err := s.load(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if a.Completed {
		u.CompletedInterviews++
		if u.TotalInterviews < u.CompletedInterviews {
			u.TotalInterviews = u.CompletedInterviews
		}
		u.LastActivity = a.At
	}

	prev := u.CurrentLevel
	u.CurrentLevel = max(prev, LevelFor(u.CompletedInterviews))

	newBadges := EvaluateBadges(u, a, now)
	u.Badges = append(u.Badges, newBadges...)
	u.ReadinessScore = ReadinessScore(u.CompletedInterviews, u.LastActivity, now)
	u.UpdatedAt = now

	if err := s.save(ctx, u, created); err != nil {
		return nil, err
	}

	if u.CurrentLevel > prev {
		s.logger.Info("user level increased",
			zap.String("user_id", userID),
			zap.Int("from", prev),
			zap.Int("to", u.CurrentLevel))
	}
	for _, b := range newBadges {
		s.logger.Info("badge earned", zap.String("user_id", userID), zap.String("badge", b.ID))
	}

	if newBadges == nil {
		newBadges = []Badge{}
	}
	return &Progress{
		Level:                 u.CurrentLevel,
		LevelIncreased:        u.CurrentLevel > prev,
		NewBadges:             newBadges,
		InterviewsToNextLevel: InterviewsToNextLevel(u.CurrentLevel, u.CompletedInterviews),
		UserLevel:             u,
	}, nil
}

// RecordCompletion counts a completed interview.
func (s *Service) RecordCompletion(ctx context.Context, userID string, a Activity) (*Progress, error) {
	a.Completed = true
	return s.UpdateUserLevel(ctx, userID, a)
}

// RecordStart counts a started interview and marks the user active.
func (s *Service) RecordStart(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	now := s.now()
	u, created, err := s.load(ctx, userID, now)
	if err != nil {
		return err
	}
	u.TotalInterviews++
	u.LastActivity = now
	u.ReadinessScore = ReadinessScore(u.CompletedInterviews, u.LastActivity, now)
	u.UpdatedAt = now
	return s.save(ctx, u, created)
}

// RecordDeletion uncounts a deleted interview. The counter never goes
// below zero and a user without a record is left alone.
func (s *Service) RecordDeletion(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	u, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.TotalInterviews == 0 {
		return nil
	}
	u.TotalInterviews--
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func (s *Service) load(ctx context.Context, userID string, now time.Time) (*UserLevel, bool, error) {
	u, err := s.repo.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		return NewUserLevel(userID, now), true, nil
	case err != nil:
		return nil, false, err
	}
	if u.Badges == nil {
		u.Badges = []Badge{}
	}
	if u.CurrentLevel < 1 {
		u.CurrentLevel = 1
	}
	return u, false, nil
}

func (s *Service) save(ctx context.Context, u *UserLevel, created bool) error {
	if created {
		return s.repo.Create(ctx, u)
	}
	return s.repo.Update(ctx, u)
}
