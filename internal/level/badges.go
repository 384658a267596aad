package level

import "time"

// Activity describes the event a level update reacts to.
type Activity struct {
	// Completed is set when an interview was just completed.
	Completed bool

	// At is when the activity happened.
	At time.Time

	// Score is the overall score of the completed interview (0-10).
	Score float64

	// RecentInterviews counts the user's interviews created during the
	// seven days before At, including the one just completed.
	RecentInterviews int
}

const (
	BadgeFirstInterview = "first_interview"
	BadgeQuickLearner   = "quick_learner"
	BadgePerfectionist  = "perfectionist"
	BadgeConsistent     = "consistent"
)

type badgeRule struct {
	badge  Badge
	earned func(u *UserLevel, a Activity) bool
}

var badgeRules = []badgeRule{
	{
		badge: Badge{ID: BadgeFirstInterview, Name: "First Interview", Description: "Complete your first interview", Icon: "🎯"},
		earned: func(u *UserLevel, _ Activity) bool {
			return u.CompletedInterviews >= 1
		},
	},
	{
		badge: Badge{ID: BadgeQuickLearner, Name: "Quick Learner", Description: "Practice three interviews within a week", Icon: "⚡"},
		earned: func(_ *UserLevel, a Activity) bool {
			return a.RecentInterviews >= 3
		},
	},
	{
		badge: Badge{ID: BadgePerfectionist, Name: "Perfectionist", Description: "Score 9 or higher on an interview", Icon: "💯"},
		earned: func(_ *UserLevel, a Activity) bool {
			return a.Completed && a.Score >= 9.0
		},
	},
	{
		badge: Badge{ID: BadgeConsistent, Name: "Consistent", Description: "Complete ten interviews", Icon: "🔥"},
		earned: func(u *UserLevel, _ Activity) bool {
			return u.CompletedInterviews >= 10
		},
	},
}

// Catalog returns every badge that can be earned.
func Catalog() []Badge {
	out := make([]Badge, len(badgeRules))
	for i, r := range badgeRules {
		out[i] = r.badge
	}
	return out
}

// EvaluateBadges returns the badges u newly qualifies for, stamped with
// now. Badges already held are never returned again.
func EvaluateBadges(u *UserLevel, a Activity, now time.Time) []Badge {
	var earned []Badge
	for _, r := range badgeRules {
		if u.HasBadge(r.badge.ID) || !r.earned(u, a) {
			continue
		}
		b := r.badge
		b.EarnedAt = now
		earned = append(earned, b)
	}
	return earned
}
