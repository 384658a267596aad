package interview

import (
	"strings"
	"time"

	"github.com/abhisek/prepwise/internal/scoring"
)

const (
	// DefaultTotalRounds is used when a start request does not name a count.
	DefaultTotalRounds = 3

	// MaxTotalRounds bounds the number of rounds a single interview may have.
	MaxTotalRounds = 10
)

// New builds an active interview with total not-started rounds.
func New(id, userID, role string, difficulty Difficulty, total int, now time.Time) *Interview {
	rounds := make([]Round, total)
	for i := range rounds {
		rounds[i] = Round{Number: i + 1, Status: RoundNotStarted, Questions: []Question{}}
	}
	return &Interview{
		ID:           id,
		UserID:       userID,
		Role:         strings.TrimSpace(role),
		Difficulty:   difficulty,
		TotalRounds:  total,
		CurrentRound: 1,
		Rounds:       rounds,
		Status:       StatusActive,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Round returns the round with number n, or nil when n is out of range.
func (iv *Interview) Round(n int) *Round {
	if n < 1 || n > iv.TotalRounds || n > len(iv.Rounds) {
		return nil
	}
	return &iv.Rounds[n-1]
}

// CompletedRounds counts rounds in the completed state.
func (iv *Interview) CompletedRounds() int {
	n := 0
	for _, r := range iv.Rounds {
		if r.Status == RoundCompleted {
			n++
		}
	}
	return n
}

// Questions returns every question across all rounds, in round order.
func (iv *Interview) Questions() []Question {
	var out []Question
	for _, r := range iv.Rounds {
		out = append(out, r.Questions...)
	}
	return out
}

// ScoredQuestions returns the questions that carry a score above zero.
func (iv *Interview) ScoredQuestions() []Question {
	var out []Question
	for _, r := range iv.Rounds {
		for _, q := range r.Questions {
			if q.Score > 0 {
				out = append(out, q)
			}
		}
	}
	return out
}

// Score is the average of every scored question across all rounds.
func (iv *Interview) Score() float64 {
	var scores []float64
	for _, r := range iv.Rounds {
		scores = append(scores, r.Scores()...)
	}
	return scoring.Average(scores)
}

// RoundScore is the rounded average of the scored questions in qs.
func RoundScore(qs []Question) float64 {
	scores := make([]float64, len(qs))
	for i, q := range qs {
		scores[i] = q.Score
	}
	return scoring.Average(scores)
}

// RoundSummaries reports per-round statistics over scored questions.
func (iv *Interview) RoundSummaries() []RoundSummary {
	out := make([]RoundSummary, 0, len(iv.Rounds))
	for _, r := range iv.Rounds {
		s := RoundSummary{
			Number:       r.Number,
			Status:       r.Status,
			Questions:    len(r.Questions),
			AverageScore: RoundScore(r.Questions),
		}
		first := true
		for _, q := range r.Questions {
			if q.Score <= 0 {
				continue
			}
			if first || q.Score > s.MaxScore {
				s.MaxScore = q.Score
			}
			if first || q.Score < s.MinScore {
				s.MinScore = q.Score
			}
			first = false
		}
		out = append(out, s)
	}
	return out
}

// StartRound moves round n into progress. A missing round is created, a
// not-started round gets its start time, and a completed round is returned
// as is.
func (iv *Interview) StartRound(n int, now time.Time) (*Round, error) {
	if iv.Status != StatusActive {
		return nil, ErrInvalidTransition.WithData("status", string(iv.Status))
	}
	if n < 1 || n > iv.TotalRounds {
		return nil, ErrInvalidRoundIndex.WithData("round", n)
	}
	iv.ensureRounds()

	r := &iv.Rounds[n-1]
	if r.Status == RoundCompleted {
		return r, nil
	}
	r.Status = RoundInProgress
	if r.StartedAt == nil {
		t := now
		r.StartedAt = &t
	}
	if r.Questions == nil {
		r.Questions = []Question{}
	}
	iv.LastActiveAt = now
	return r, nil
}

// CompleteRound replaces the question list of round n and marks it
// completed. It reports whether n was the final round, in which case the
// interview itself is now completed. Nothing is modified when validation
// fails.
func (iv *Interview) CompleteRound(n int, questions []Question, feedback string, now time.Time) (bool, error) {
	if iv.Status != StatusActive {
		return false, ErrInvalidTransition.WithData("status", string(iv.Status))
	}
	if n < 1 || n > iv.TotalRounds {
		return false, ErrInvalidRoundIndex.WithData("round", n)
	}
	if err := ValidateQuestions(questions); err != nil {
		return false, err
	}
	iv.ensureRounds()

	r := &iv.Rounds[n-1]
	r.Questions = append([]Question(nil), questions...)
	r.Status = RoundCompleted
	if r.StartedAt == nil {
		t := now
		r.StartedAt = &t
	}
	if r.CompletedAt == nil {
		t := now
		r.CompletedAt = &t
	}

	iv.Progress = scoring.Percentage(iv.CompletedRounds(), iv.TotalRounds)
	iv.CurrentRound = n + 1
	iv.LastActiveAt = now

	final := n == iv.TotalRounds
	if final {
		iv.Status = StatusCompleted
		if iv.CompletedAt == nil {
			t := now
			iv.CompletedAt = &t
		}
		iv.OverallFeedback = feedback
	}
	return final, nil
}

// Cancel ends an active interview. Cancelling a cancelled interview is a
// no-op; a completed interview cannot be cancelled.
func (iv *Interview) Cancel(now time.Time) error {
	switch iv.Status {
	case StatusCancelled:
		return nil
	case StatusCompleted:
		return ErrInvalidTransition.WithData("status", string(iv.Status))
	}
	iv.Status = StatusCancelled
	iv.LastActiveAt = now
	return nil
}

// ValidateQuestions checks a submitted round question list.
func ValidateQuestions(qs []Question) error {
	for i, q := range qs {
		switch {
		case strings.TrimSpace(q.Text) == "":
			return ErrInvalidQuestions.WithData("index", i).WithData("reason", "empty question text")
		case q.Kind != KindPrepared && q.Kind != KindFollowUp:
			return ErrInvalidQuestions.WithData("index", i).WithData("reason", "unknown question kind")
		case q.Score < 0 || q.Score > scoring.MaxScore:
			return ErrInvalidQuestions.WithData("index", i).WithData("reason", "score out of range")
		case q.ParentIndex != nil && (*q.ParentIndex < 0 || *q.ParentIndex >= len(qs)):
			return ErrInvalidQuestions.WithData("index", i).WithData("reason", "parent index out of range")
		}
	}
	return nil
}

// ensureRounds restores the rounds-per-total invariant for documents that
// were persisted with fewer rounds.
func (iv *Interview) ensureRounds() {
	for len(iv.Rounds) < iv.TotalRounds {
		iv.Rounds = append(iv.Rounds, Round{
			Number:    len(iv.Rounds) + 1,
			Status:    RoundNotStarted,
			Questions: []Question{},
		})
	}
}
