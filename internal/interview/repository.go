package interview

import (
	"context"
	"time"

	"github.com/abhisek/prepwise/internal/level"
)

// Repository persists interview documents.
//
// Update is a conditional write: it must fail with ErrConcurrentModification
// when the stored version differs from iv.Version and increment iv.Version
// on success. Get and Delete return ErrNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, iv *Interview) error
	Get(ctx context.Context, id string) (*Interview, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, iv *Interview) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string, opts ListOptions) ([]Interview, error)
	Count(ctx context.Context, userID string) (Counts, error)
}

// SortField names a sortable interview attribute.
type SortField string

const (
	SortByCreatedAt    SortField = "createdAt"
	SortByLastActiveAt SortField = "lastActiveAt"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderDesc SortOrder = "desc"
	OrderAsc  SortOrder = "asc"
)

// ListOptions filters and pages an owner query. The zero value lists every
// interview of the user, newest first.
type ListOptions struct {
	Status Status
	Since  time.Time // created strictly after, when set
	SortBy SortField
	Order  SortOrder
	Limit  int
	Offset int
}

// Normalize fills defaults and rejects unknown sort parameters.
func (o ListOptions) Normalize() (ListOptions, error) {
	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
	}
	if o.Order == "" {
		o.Order = OrderDesc
	}
	switch {
	case o.SortBy != SortByCreatedAt && o.SortBy != SortByLastActiveAt:
		return o, ErrInvalidListOptions.WithData("sortBy", string(o.SortBy))
	case o.Order != OrderAsc && o.Order != OrderDesc:
		return o, ErrInvalidListOptions.WithData("order", string(o.Order))
	case o.Status != "" && !o.Status.Valid():
		return o, ErrInvalidListOptions.WithData("status", string(o.Status))
	case o.Limit < 0 || o.Offset < 0:
		return o, ErrInvalidListOptions.WithData("limit", o.Limit).WithData("offset", o.Offset)
	}
	return o, nil
}

// Counts tallies a user's interviews by status.
type Counts struct {
	Total     int `json:"totalCount"`
	Active    int `json:"activeCount"`
	Completed int `json:"completedCount"`
	Cancelled int `json:"cancelledCount"`
}

// Evaluation is the AI assessment of one answer.
type Evaluation struct {
	Accuracy       string   `json:"accuracy"`
	Score          int      `json:"score"`
	Feedback       string   `json:"feedback"`
	ExpectedAnswer string   `json:"expectedAnswer"`
	AnswerSummary  string   `json:"answerSummary"`
	Keywords       []string `json:"keywords"`

	// Fallback is set when the AI result was unusable and a neutral
	// evaluation was substituted.
	Fallback bool `json:"fallback"`
}

// Coach produces AI interview content. Implementations receive a copy of
// the interview and must not retain it.
type Coach interface {
	PreparedQuestion(ctx context.Context, iv *Interview, round int) (string, error)
	FollowUp(ctx context.Context, iv *Interview, question, answer string) (string, error)
	Evaluate(ctx context.Context, iv *Interview, question, answer string) (*Evaluation, error)
	Summarize(ctx context.Context, iv *Interview) (string, error)
}

// LevelRecorder keeps the user's progression record in step with the
// interview lifecycle.
type LevelRecorder interface {
	RecordStart(ctx context.Context, userID string) error
	RecordCompletion(ctx context.Context, userID string, a level.Activity) (*level.Progress, error)
	RecordDeletion(ctx context.Context, userID string) error
}
