package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/apperr"
	"github.com/abhisek/prepwise/internal/events"
	"github.com/abhisek/prepwise/internal/level"
	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/scoring"
)

const (
	// DefaultSummaryTimeout bounds overall summary generation.
	DefaultSummaryTimeout = 45 * time.Second

	// SummaryUnavailable is stored when the overall summary could not be
	// generated.
	SummaryUnavailable = "Summary unavailable. Review the feedback of each round for details."

	maxIDAttempts = 5
	recentWindow  = 7 * 24 * time.Hour
)

// Options configures a Service. Every field is optional.
type Options struct {
	Coach          Coach
	Levels         LevelRecorder
	Publisher      events.Publisher
	Logger         *zap.Logger
	Clock          func() time.Time
	NewID          func() string
	SummaryTimeout time.Duration
}

// Service orchestrates the interview lifecycle on top of a Repository.
type Service struct {
	repo           Repository
	coach          Coach
	levels         LevelRecorder
	events         events.Publisher
	logger         *zap.Logger
	now            func() time.Time
	newID          func() string
	summaryTimeout time.Duration
	inflight       *inflight
}

// NewService creates an interview service.
func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:           repo,
		coach:          opts.Coach,
		levels:         opts.Levels,
		events:         opts.Publisher,
		logger:         opts.Logger,
		now:            opts.Clock,
		newID:          opts.NewID,
		summaryTimeout: opts.SummaryTimeout,
		inflight:       newInflight(),
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.summaryTimeout <= 0 {
		s.summaryTimeout = DefaultSummaryTimeout
	}
	return s
}

// StartInput holds the parameters of a new interview.
type StartInput struct {
	UserID              string
	Role                string
	TotalRounds         int
	Difficulty          string
	PreviousInterviewID string
}

// Start validates in and creates a new active interview.
func (s *Service) Start(ctx context.Context, in StartInput) (*Interview, error) {
	if in.UserID == "" {
		return nil, ErrUnauthorized
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		return nil, ErrInvalidRole
	}
	total := in.TotalRounds
	if total == 0 {
		total = DefaultTotalRounds
	}
	if total < 1 || total > MaxTotalRounds {
		return nil, ErrInvalidTotalRounds.WithData("totalRounds", in.TotalRounds).WithData("max", MaxTotalRounds)
	}
	difficulty, err := ParseDifficulty(in.Difficulty)
	if err != nil {
		return nil, ErrInvalidDifficulty.WithData("difficulty", in.Difficulty)
	}
	if in.PreviousInterviewID != "" {
		if err := s.checkRetake(ctx, in.UserID, in.PreviousInterviewID); err != nil {
			return nil, err
		}
	}

	id, err := s.allocateID(ctx)
	if err != nil {
		return nil, err
	}

	iv := New(id, in.UserID, role, difficulty, total, s.now())
	iv.RetakeOf = in.PreviousInterviewID
	if err := s.repo.Create(ctx, iv); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	s.logger.Info("interview started",
		zap.String("session_id", iv.ID),
		zap.String("user_id", iv.UserID),
		zap.String("role", iv.Role),
		zap.String("difficulty", string(iv.Difficulty)),
		zap.Int("total_rounds", iv.TotalRounds))
	metrics.Interview(metrics.EventStarted)

	if s.levels != nil {
		if err := s.levels.RecordStart(ctx, iv.UserID); err != nil {
			s.warn("record interview start", iv, err)
		}
	}
	s.publish(ctx, events.InterviewStarted, iv, 0)
	return iv, nil
}

func (s *Service) checkRetake(ctx context.Context, userID, prevID string) error {
	prev, err := s.repo.Get(ctx, prevID)
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrInvalidRetake.WithData("previousInterviewId", prevID)
	case err != nil:
		return fmt.Errorf("load retake target: %w", err)
	case prev.UserID != userID || prev.Status != StatusCompleted:
		return ErrInvalidRetake.WithData("previousInterviewId", prevID)
	}
	return nil
}

// allocateID draws session ids until one is unused.
func (s *Service) allocateID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check session id: %w", err)
		}
		if !exists {
			return id, nil
		}
		s.logger.Debug("session id collision", zap.String("session_id", id))
	}
	return "", apperr.New(apperr.KindInternal, "could not allocate a unique session id")
}

// Get returns the interview owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Interview, error) {
	return s.load(ctx, userID, id)
}

// Details is the interview with derived per-round statistics.
type Details struct {
	Interview       *Interview     `json:"interview"`
	Rounds          []RoundSummary `json:"rounds"`
	CompletedRounds int            `json:"completedRounds"`
	Progress        int            `json:"progressPercentage"`
	OverallScore    float64        `json:"overallScore"`
}

// Details returns the interview with per-round score statistics.
func (s *Service) Details(ctx context.Context, userID, id string) (*Details, error) {
	iv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	completed := iv.CompletedRounds()
	return &Details{
		Interview:       iv,
		Rounds:          iv.RoundSummaries(),
		CompletedRounds: completed,
		Progress:        scoring.Percentage(completed, iv.TotalRounds),
		OverallScore:    iv.Score(),
	}, nil
}

// ListItem is the summary row of an interview in a listing.
type ListItem struct {
	ID              string     `json:"interviewId"`
	Role            string     `json:"role"`
	Difficulty      Difficulty `json:"difficulty"`
	Status          Status     `json:"status"`
	TotalRounds     int        `json:"totalRounds"`
	CurrentRound    int        `json:"currentRound"`
	CompletedRounds int        `json:"completedRounds"`
	Progress        int        `json:"progressPercentage"`
	OverallScore    float64    `json:"overallScore"`
	RetakeOf        string     `json:"retakeOf,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastActiveAt    time.Time  `json:"lastActiveAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// ListResult is one page of a user's interviews plus status totals.
type ListResult struct {
	Interviews []ListItem `json:"interviews"`
	Counts
}

// List returns a filtered, sorted page of the user's interviews.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	ivs, err := s.repo.List(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	counts, err := s.repo.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count interviews: %w", err)
	}

	items := make([]ListItem, len(ivs))
	for i := range ivs {
		items[i] = listItem(&ivs[i])
	}
	return &ListResult{Interviews: items, Counts: counts}, nil
}

func listItem(iv *Interview) ListItem {
	completed := iv.CompletedRounds()
	item := ListItem{
		ID:              iv.ID,
		Role:            iv.Role,
		Difficulty:      iv.Difficulty,
		Status:          iv.Status,
		TotalRounds:     iv.TotalRounds,
		CurrentRound:    iv.CurrentRound,
		CompletedRounds: completed,
		Progress:        scoring.Percentage(completed, iv.TotalRounds),
		RetakeOf:        iv.RetakeOf,
		CreatedAt:       iv.CreatedAt,
		LastActiveAt:    iv.LastActiveAt,
		CompletedAt:     iv.CompletedAt,
	}
	if iv.Status == StatusCompleted {
		item.OverallScore = iv.Score()
	}
	return item
}

// StartRound moves round n of the interview into progress.
func (s *Service) StartRound(ctx context.Context, userID, id string, n int) (*Round, error) {
	iv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	r, err := iv.StartRound(n, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, iv); err != nil {
		return nil, err
	}
	s.logger.Debug("round started",
		zap.String("session_id", iv.ID),
		zap.Int("round", n),
		zap.String("status", string(r.Status)))
	out := *r
	return &out, nil
}

// CompleteRoundInput carries a round submission.
type CompleteRoundInput struct {
	UserID      string
	InterviewID string
	RoundNumber int
	Questions   []Question
	Feedback    string
}

// RoundResult reports the interview state after a round completion.
type RoundResult struct {
	Progress  int        `json:"progress"`
	Status    Status     `json:"status"`
	NextRound int        `json:"nextRound,omitempty"`
	Final     bool       `json:"final"`
	Interview *Interview `json:"interview"`
}

// CompleteRound stores the final question list of a round. Completing the
// last round completes the interview; the overall summary, level update
// and notifications that follow never fail the call.
func (s *Service) CompleteRound(ctx context.Context, in CompleteRoundInput) (*RoundResult, error) {
	iv, err := s.load(ctx, in.UserID, in.InterviewID)
	if err != nil {
		return nil, err
	}
	final, err := iv.CompleteRound(in.RoundNumber, in.Questions, in.Feedback, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, iv); err != nil {
		return nil, err
	}

	metrics.RoundCompleted()
	s.logger.Info("round completed",
		zap.String("session_id", iv.ID),
		zap.String("user_id", iv.UserID),
		zap.Int("round", in.RoundNumber),
		zap.Int("progress", iv.Progress))
	s.publish(ctx, events.InterviewRoundCompleted, iv, in.RoundNumber)

	res := &RoundResult{Progress: iv.Progress, Status: iv.Status, Final: final, Interview: iv}
	if !final {
		res.NextRound = in.RoundNumber + 1
		return res, nil
	}

	metrics.Interview(metrics.EventCompleted)
	s.logger.Info("interview completed", zap.String("session_id", iv.ID), zap.String("user_id", iv.UserID))
	s.summarize(ctx, iv)
	s.recordCompletion(ctx, iv)
	s.publish(ctx, events.InterviewCompleted, iv, in.RoundNumber)
	res.Interview = iv
	return res, nil
}

// summarize stores the overall AI summary once. Any failure is replaced by
// SummaryUnavailable, and a lost write leaves the completed interview as
// it was.
func (s *Service) summarize(ctx context.Context, iv *Interview) {
	if iv.OverallSummary != "" {
		return
	}

	summary := SummaryUnavailable
	if s.coach != nil {
		sctx, release := s.inflight.register(ctx, iv.ID)
		sctx, cancel := context.WithTimeout(sctx, s.summaryTimeout)
		text, err := s.coach.Summarize(sctx, snapshot(iv))
		cancel()
		release()

		switch {
		case err != nil:
			s.warn("generate overall summary", iv, err)
			metrics.AIFallback("summary")
		case strings.TrimSpace(text) == "":
			s.warn("generate overall summary", iv, errors.New("empty summary"))
			metrics.AIFallback("summary")
		default:
			summary = strings.TrimSpace(text)
		}
	}

	iv.OverallSummary = summary
	if err := s.write(ctx, iv); err != nil {
		iv.OverallSummary = ""
		s.warn("store overall summary", iv, err)
	}
}

func (s *Service) recordCompletion(ctx context.Context, iv *Interview) {
	if s.levels == nil {
		return
	}
	now := s.now()
	a := level.Activity{At: now, Score: iv.Score()}

	recent, err := s.repo.List(ctx, iv.UserID, ListOptions{Since: now.Add(-recentWindow)})
	if err != nil {
		s.warn("count recent interviews", iv, err)
	} else {
		a.RecentInterviews = len(recent)
	}

	p, err := s.levels.RecordCompletion(ctx, iv.UserID, a)
	if err != nil {
		s.warn("update user level", iv, err)
		return
	}
	if p.LevelIncreased || len(p.NewBadges) > 0 {
		s.logger.Info("user progressed",
			zap.String("user_id", iv.UserID),
			zap.Int("level", p.Level),
			zap.Int("new_badges", len(p.NewBadges)))
	}
}

// Cancel ends an active interview and stops its in-flight AI calls.
// Cancelling an already cancelled interview is a no-op; a completed
// interview cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, userID, id string) (*Interview, error) {
	iv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if iv.Status == StatusCancelled {
		return iv, nil
	}
	if err := iv.Cancel(s.now()); err != nil {
		return nil, err
	}
	if err := s.write(ctx, iv); err != nil {
		return nil, err
	}

	stopped := s.inflight.cancel(iv.ID)
	metrics.Interview(metrics.EventCancelled)
	s.logger.Info("interview cancelled",
		zap.String("session_id", iv.ID),
		zap.String("user_id", iv.UserID),
		zap.Int("stopped_calls", stopped))
	s.publish(ctx, events.InterviewCancelled, iv, 0)
	return iv, nil
}

// Delete removes the interview and uncounts it from the user's level.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	iv, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, iv.ID); err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	s.inflight.cancel(iv.ID)

	metrics.Interview(metrics.EventDeleted)
	s.logger.Info("interview deleted", zap.String("session_id", iv.ID), zap.String("user_id", iv.UserID))

	if s.levels != nil {
		if err := s.levels.RecordDeletion(ctx, iv.UserID); err != nil {
			s.warn("uncount deleted interview", iv, err)
		}
	}
	s.publish(ctx, events.InterviewDeleted, iv, 0)
	return nil
}

func (s *Service) load(ctx context.Context, userID, id string) (*Interview, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	iv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.UserID != userID {
		return nil, ErrForbidden
	}
	return iv, nil
}

func (s *Service) write(ctx context.Context, iv *Interview) error {
	err := s.repo.Update(ctx, iv)
	if errors.Is(err, ErrConcurrentModification) {
		metrics.Conflict("interview")
		s.logger.Warn("concurrent interview update",
			zap.String("session_id", iv.ID),
			zap.Int64("version", iv.Version))
	}
	return err
}

func (s *Service) publish(ctx context.Context, typ events.Type, iv *Interview, round int) {
	err := s.events.Publish(ctx, events.Event{
		Type:      typ,
		SessionID: iv.ID,
		UserID:    iv.UserID,
		Status:    string(iv.Status),
		Round:     round,
		Progress:  iv.Progress,
		At:        s.now(),
	})
	if err != nil {
		s.warn("publish "+string(typ), iv, err)
	}
}

func (s *Service) warn(op string, iv *Interview, err error) {
	s.logger.Warn(op+" failed",
		zap.String("session_id", iv.ID),
		zap.String("user_id", iv.UserID),
		zap.Error(err))
}
