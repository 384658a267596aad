package interview

import "github.com/abhisek/prepwise/internal/apperr"

// Sentinel errors. Callers match them with errors.Is and classify them with
// apperr.KindOf.
var (
	ErrNotFound               = apperr.New(apperr.KindNotFound, "interview not found")
	ErrForbidden              = apperr.New(apperr.KindForbidden, "interview belongs to another user")
	ErrUnauthorized           = apperr.New(apperr.KindUnauthorized, "user identity required")
	ErrInvalidRoundIndex      = apperr.New(apperr.KindInvalidInput, "invalid round number")
	ErrInvalidRole            = apperr.New(apperr.KindInvalidInput, "role is required")
	ErrInvalidDifficulty      = apperr.New(apperr.KindInvalidInput, "difficulty must be Beginner, Intermediate or Advanced")
	ErrInvalidTotalRounds     = apperr.New(apperr.KindInvalidInput, "total rounds out of range")
	ErrInvalidQuestions       = apperr.New(apperr.KindInvalidInput, "invalid question list")
	ErrInvalidRetake          = apperr.New(apperr.KindInvalidInput, "retake must reference a completed interview of the same user")
	ErrInvalidTransition      = apperr.New(apperr.KindInvalidTransition, "interview is not active")
	ErrConcurrentModification = apperr.New(apperr.KindConcurrentModification, "interview was modified concurrently")
	ErrInvalidListOptions     = apperr.New(apperr.KindInvalidInput, "invalid list options")
	ErrMissingAnswer          = apperr.New(apperr.KindInvalidInput, "question and answer are required")
)
