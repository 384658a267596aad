package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/prepwise/internal/apperr"
	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/level"
)

// HistoryReader lists a user's interviews.
type HistoryReader interface {
	List(ctx context.Context, userID string, opts interview.ListOptions) ([]interview.Interview, error)
}

// LevelReader returns a user's level record.
type LevelReader interface {
	Get(ctx context.Context, userID string) (*level.UserLevel, error)
}

// Report sections that can be requested on their own.
const (
	SectionOverview = "overview"
	SectionSkills   = "skills"
	SectionWeekly   = "weekly"
	SectionTrends   = "trends"
	SectionActivity = "activity"
	SectionStats    = "stats"
	SectionLevel    = "level"
)

// Sections lists every section name.
func Sections() []string {
	return []string{SectionOverview, SectionSkills, SectionWeekly, SectionTrends, SectionActivity, SectionStats, SectionLevel}
}

var (
	ErrUnauthorized   = apperr.New(apperr.KindUnauthorized, "user identity required")
	ErrUnknownSection = apperr.New(apperr.KindInvalidInput, "unknown analytics section")
)

// UserReport is the analytics report together with the user's level.
type UserReport struct {
	Report
	Level *level.UserLevel `json:"level,omitempty"`
}

// Service loads interview history and derives analytics views.
type Service struct {
	history HistoryReader
	levels  LevelReader
	logger  *zap.Logger
	now     func() time.Time
	loc     *time.Location
}

// NewService creates an analytics service. levels may be nil.
func NewService(history HistoryReader, levels LevelReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		history: history,
		levels:  levels,
		logger:  logger,
		now:     time.Now,
		loc:     time.Local,
	}
}

// WithLocation sets the time zone calendar days are counted in.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Report loads the history and the level record concurrently and derives
// the full report. A failing level lookup only drops the level block.
func (s *Service) Report(ctx context.Context, userID string) (*UserReport, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	var (
		ivs []interview.Interview
		lvl *level.UserLevel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ivs, err = s.loadHistory(gctx, userID)
		return err
	})
	if s.levels != nil {
		g.Go(func() error {
			u, err := s.levels.Get(gctx, userID)
			if err != nil {
				s.logger.Warn("load user level failed", zap.String("user_id", userID), zap.Error(err))
				return nil
			}
			lvl = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &UserReport{Report: Build(ivs, s.now(), s.loc), Level: lvl}, nil
}

// Stats derives the compact statistics view.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	ivs, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := BuildStats(ivs, s.now())
	return &st, nil
}

// Section returns a single view of the report by name.
func (s *Service) Section(ctx context.Context, userID, name string) (any, error) {
	switch name {
	case SectionStats:
		return s.Stats(ctx, userID)
	case SectionLevel:
		if s.levels == nil {
			return nil, ErrUnknownSection.WithData("section", name)
		}
		if userID == "" {
			return nil, ErrUnauthorized
		}
		return s.levels.Get(ctx, userID)
	case SectionOverview, SectionSkills, SectionWeekly, SectionTrends, SectionActivity:
	default:
		return nil, ErrUnknownSection.WithData("section", name)
	}

	if userID == "" {
		return nil, ErrUnauthorized
	}
	ivs, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	switch name {
	case SectionOverview:
		return BuildOverview(ivs, now, s.loc), nil
	case SectionSkills:
		return SkillBreakdown(ivs), nil
	case SectionWeekly:
		return WeeklyProgress(ivs, now), nil
	case SectionTrends:
		return PerformanceTrends(ivs), nil
	default:
		return RecentActivity(ivs), nil
	}
}

func (s *Service) loadHistory(ctx context.Context, userID string) ([]interview.Interview, error) {
	ivs, err := s.history.List(ctx, userID, interview.ListOptions{
		SortBy: interview.SortByCreatedAt,
		Order:  interview.OrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("load interview history: %w", err)
	}
	return NewestFirst(ivs), nil
}
