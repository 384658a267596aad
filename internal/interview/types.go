package interview

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an interview.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// RoundStatus is the lifecycle state of a single round.
type RoundStatus string

const (
	RoundNotStarted RoundStatus = "not_started"
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
)

// Difficulty is the tier an interview is pitched at.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties returns all tiers, easiest first.
func Difficulties() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Advanced}
}

// ParseDifficulty resolves a case-insensitive tier name. An empty string
// selects Intermediate.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Intermediate, nil
	}
	for _, d := range Difficulties() {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// QuestionKind distinguishes primary questions from follow-ups.
type QuestionKind string

const (
	KindPrepared QuestionKind = "prepared"
	KindFollowUp QuestionKind = "followup"
)

// Question is one prompt/answer/feedback unit inside a round.
// Score is bounded to [0, 10]; 0 means unscored.
type Question struct {
	Text           string       `json:"question" bson:"question"`
	Kind           QuestionKind `json:"questionType" bson:"questionType"`
	ParentIndex    *int         `json:"parentQuestionIndex,omitempty" bson:"parentQuestionIndex,omitempty"`
	Answer         string       `json:"answer,omitempty" bson:"answer,omitempty"`
	AnswerSummary  string       `json:"answerSummary,omitempty" bson:"answerSummary,omitempty"`
	Feedback       string       `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Score          float64      `json:"score" bson:"score"`
	ExpectedAnswer string       `json:"expectedAnswer,omitempty" bson:"expectedAnswer,omitempty"`
	Keywords       []string     `json:"keywords,omitempty" bson:"keywords,omitempty"`
	AskedAt        *time.Time   `json:"askedAt,omitempty" bson:"askedAt,omitempty"`
	AnsweredAt     *time.Time   `json:"answeredAt,omitempty" bson:"answeredAt,omitempty"`
}

// Round is one stage of an interview. It has no identity outside its
// parent Interview.
type Round struct {
	Number      int         `json:"roundNumber" bson:"roundNumber"`
	Status      RoundStatus `json:"status" bson:"status"`
	Questions   []Question  `json:"questions" bson:"questions"`
	StartedAt   *time.Time  `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Scores returns the raw scores of the round's questions.
func (r *Round) Scores() []float64 {
	out := make([]float64, len(r.Questions))
	for i, q := range r.Questions {
		out[i] = q.Score
	}
	return out
}

// Interview is one practice session and the aggregate root for its rounds.
type Interview struct {
	ID              string     `json:"interviewId" bson:"_id"`
	UserID          string     `json:"userId" bson:"userId"`
	Role            string     `json:"role" bson:"role"`
	Difficulty      Difficulty `json:"difficulty" bson:"difficulty"`
	TotalRounds     int        `json:"totalRounds" bson:"totalRounds"`
	CurrentRound    int        `json:"currentRound" bson:"currentRound"`
	Rounds          []Round    `json:"rounds" bson:"rounds"`
	Progress        int        `json:"progress" bson:"progress"`
	Status          Status     `json:"status" bson:"status"`
	RetakeOf        string     `json:"retakeOf,omitempty" bson:"retakeOf,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	LastActiveAt    time.Time  `json:"lastActiveAt" bson:"lastActiveAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	OverallFeedback string     `json:"overallFeedback,omitempty" bson:"overallFeedback,omitempty"`
	OverallSummary  string     `json:"overallSummary,omitempty" bson:"overallSummary,omitempty"`

	// Version is the optimistic-concurrency token maintained by the
	// repository. It increments on every successful write.
	Version int64 `json:"version" bson:"version"`
}

// RoundSummary is the per-round score view shown on the details page.
type RoundSummary struct {
	Number       int         `json:"roundNumber"`
	Status       RoundStatus `json:"status"`
	Questions    int         `json:"questions"`
	AverageScore float64     `json:"averageScore"`
	MaxScore     float64     `json:"maxScore"`
	MinScore     float64     `json:"minScore"`
}
