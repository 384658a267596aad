// Package level tracks per-user progression: a discrete level derived from
// completed interviews, append-only badges and a bounded readiness score.
package level

import (
	"time"

	"github.com/abhisek/prepwise/internal/apperr"
)

// MaxLevel is the highest attainable level.
const MaxLevel = 5

// thresholds maps each level to the completed interviews it requires.
var thresholds = map[int]int{
	1: 0,
	2: 5,
	3: 20,
	4: 50,
	5: 75,
}

// Readiness score components.
const (
	readinessVolumeCap    = 40
	readinessPerInterview = 2
	readinessRecentBonus  = 25
	readinessStaleBonus   = 10
	readinessPerformance  = 35
	readinessRecentWindow = 7 * 24 * time.Hour
	readinessMax          = 100
)

var (
	ErrNotFound               = apperr.New(apperr.KindNotFound, "user level not found")
	ErrConcurrentModification = apperr.New(apperr.KindConcurrentModification, "user level was modified concurrently")
	ErrUnauthorized           = apperr.New(apperr.KindUnauthorized, "user identity required")
)

// Badge is an achievement. Once earned it is never revoked.
type Badge struct {
	ID          string    `json:"badgeId" bson:"badgeId"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	EarnedAt    time.Time `json:"earnedAt" bson:"earnedAt"`
	Icon        string    `json:"icon" bson:"icon"`
}

// UserLevel is the progression record of one user.
type UserLevel struct {
	UserID              string    `json:"userId" bson:"_id"`
	CurrentLevel        int       `json:"currentLevel" bson:"currentLevel"`
	TotalInterviews     int       `json:"totalInterviews" bson:"totalInterviews"`
	CompletedInterviews int       `json:"completedInterviews" bson:"completedInterviews"`
	Badges              []Badge   `json:"badges" bson:"badges"`
	ReadinessScore      int       `json:"readinessScore" bson:"readinessScore"`
	LastActivity        time.Time `json:"lastActivity" bson:"lastActivity"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt" bson:"updatedAt"`
	Version             int64     `json:"version" bson:"version"`
}

// NewUserLevel returns the record a user starts with.
func NewUserLevel(userID string, now time.Time) *UserLevel {
	return &UserLevel{
		UserID:       userID,
		CurrentLevel: 1,
		Badges:       []Badge{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasBadge reports whether the badge with id was already earned.
func (u *UserLevel) HasBadge(id string) bool {
	for _, b := range u.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// LevelFor returns the highest level whose threshold completed meets.
func LevelFor(completed int) int {
	for lvl := MaxLevel; lvl > 1; lvl-- {
		if completed >= thresholds[lvl] {
			return lvl
		}
	}
	return 1
}

// Threshold returns the completed interviews required for lvl, and false
// when lvl does not exist.
func Threshold(lvl int) (int, bool) {
	t, ok := thresholds[lvl]
	return t, ok
}

// InterviewsToNextLevel returns how many more completions reach the next
// level. It is 0 at the top level.
func InterviewsToNextLevel(lvl, completed int) int {
	next, ok := thresholds[lvl+1]
	if !ok {
		return 0
	}
	if n := next - completed; n > 0 {
		return n
	}
	return 0
}

// ReadinessScore combines volume, recency and a fixed performance bonus,
// clamped to [0, 100].
func ReadinessScore(completed int, lastActivity, now time.Time) int {
	score := min(completed*readinessPerInterview, readinessVolumeCap)
	if !lastActivity.IsZero() && now.Sub(lastActivity) <= readinessRecentWindow {
		score += readinessRecentBonus
	} else {
		score += readinessStaleBonus
	}
	score += readinessPerformance
	return max(0, min(score, readinessMax))
}
