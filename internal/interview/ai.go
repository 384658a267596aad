package interview

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/apperr"
)

var errNoCoach = apperr.New(apperr.KindGenerationFailed, "no AI coach configured")

// NextQuestion asks the coach for a prepared question for round n.
func (s *Service) NextQuestion(ctx context.Context, userID, id string, n int) (*Question, error) {
	return runInSession(ctx, s, userID, id, func(ctx context.Context, iv *Interview) (*Question, error) {
		if n < 1 || n > iv.TotalRounds {
			return nil, ErrInvalidRoundIndex.WithData("round", n)
		}
		text, err := s.coach.PreparedQuestion(ctx, iv, n)
		if err != nil {
			return nil, err
		}
		now := s.now()
		return &Question{Text: text, Kind: KindPrepared, AskedAt: &now}, nil
	})
}

// FollowUp asks the coach for a follow-up to the answer given to the
// prepared question at parentIndex.
func (s *Service) FollowUp(ctx context.Context, userID, id string, parentIndex int, question, answer string) (*Question, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, ErrMissingAnswer
	}
	if parentIndex < 0 {
		return nil, ErrInvalidQuestions.WithData("parentQuestionIndex", parentIndex)
	}
	return runInSession(ctx, s, userID, id, func(ctx context.Context, iv *Interview) (*Question, error) {
		text, err := s.coach.FollowUp(ctx, iv, question, answer)
		if err != nil {
			return nil, err
		}
		now := s.now()
		parent := parentIndex
		return &Question{Text: text, Kind: KindFollowUp, ParentIndex: &parent, AskedAt: &now}, nil
	})
}

// Evaluate asks the coach to assess an answer.
func (s *Service) Evaluate(ctx context.Context, userID, id, question, answer string) (*Evaluation, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, ErrMissingAnswer
	}
	return runInSession(ctx, s, userID, id, func(ctx context.Context, iv *Interview) (*Evaluation, error) {
		return s.coach.Evaluate(ctx, iv, question, answer)
	})
}

// InFlight reports how many AI calls are running for the session.
func (s *Service) InFlight(id string) int {
	return s.inflight.count(id)
}

// runInSession runs an AI call for an active interview. The call is
// registered so that Cancel and Delete can stop it, and its result is
// discarded when the interview stopped being active meanwhile.
func runInSession[T any](ctx context.Context, s *Service, userID, id string, fn func(context.Context, *Interview) (T, error)) (T, error) {
	var zero T
	if s.coach == nil {
		return zero, errNoCoach
	}
	iv, err := s.load(ctx, userID, id)
	if err != nil {
		return zero, err
	}
	if iv.Status != StatusActive {
		return zero, ErrInvalidTransition.WithData("status", string(iv.Status))
	}

	callCtx, release := s.inflight.register(ctx, iv.ID)
	out, err := fn(callCtx, snapshot(iv))
	stopped := callCtx.Err() != nil && ctx.Err() == nil
	release()

	if stopped {
		s.logger.Debug("discarding AI result for stopped session", zap.String("session_id", iv.ID))
		return zero, ErrInvalidTransition.WithData("reason", "interview ended during generation")
	}
	if err != nil {
		return zero, err
	}

	cur, err := s.repo.Get(ctx, iv.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		return zero, ErrInvalidTransition.WithData("reason", "interview was deleted")
	case err != nil:
		return zero, err
	case cur.Status != StatusActive:
		s.logger.Debug("discarding AI result for inactive session",
			zap.String("session_id", iv.ID),
			zap.String("status", string(cur.Status)))
		return zero, ErrInvalidTransition.WithData("status", string(cur.Status))
	}
	return out, nil
}

// snapshot deep-copies iv so collaborators cannot mutate the aggregate.
func snapshot(iv *Interview) *Interview {
	cp := *iv
	cp.Rounds = make([]Round, len(iv.Rounds))
	for i, r := range iv.Rounds {
		if r.Questions != nil {
			r.Questions = append([]Question{}, r.Questions...)
		}
		cp.Rounds[i] = r
	}
	return &cp
}
