package level

import (
	"testing"
	"time"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		completed int
		want      int
	}{
		{0, 1},
		{4, 1},
		{5, 2},
		{19, 2},
		{20, 3},
		{49, 3},
		{50, 4},
		{75, 5},
		{500, 5},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.completed); got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.completed, got, tt.want)
		}
	}
}

func TestInterviewsToNextLevel(t *testing.T) {
	tests := []struct {
		level, completed, want int
	}{
		{1, 0, 5},
		{1, 3, 2},
		{2, 5, 15},
		{4, 60, 15},
		{5, 80, 0},
	}
	for _, tt := range tests {
		if got := InterviewsToNextLevel(tt.level, tt.completed); got != tt.want {
			t.Errorf("InterviewsToNextLevel(%d, %d) = %d, want %d", tt.level, tt.completed, got, tt.want)
		}
	}
}

func TestReadinessScore(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		completed int
		last      time.Time
		want      int
	}{
		{"new user, recent", 0, now, 60},
		{"stale activity", 0, now.Add(-8 * 24 * time.Hour), 45},
		{"exactly seven days", 3, now.Add(-7 * 24 * time.Hour), 66},
		{"volume capped", 50, now, 100},
		{"never active", 10, time.Time{}, 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadinessScore(tt.completed, tt.last, now)
			if got != tt.want {
				t.Errorf("ReadinessScore = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("ReadinessScore %d out of bounds", got)
			}
		})
	}
}

func TestEvaluateBadges(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	u := NewUserLevel("u1", now)
	u.CompletedInterviews = 1
	got := EvaluateBadges(u, Activity{Completed: true, Score: 9.2, RecentInterviews: 3}, now)

	ids := map[string]bool{}
	for _, b := range got {
		ids[b.ID] = true
		if !b.EarnedAt.Equal(now) {
			t.Errorf("badge %s EarnedAt = %v, want %v", b.ID, b.EarnedAt, now)
		}
	}
	for _, want := range []string{BadgeFirstInterview, BadgeQuickLearner, BadgePerfectionist} {
		if !ids[want] {
			t.Errorf("missing badge %s", want)
		}
	}
	if ids[BadgeConsistent] {
		t.Error("consistent awarded with one completion")
	}

	u.Badges = append(u.Badges, got...)
	if again := EvaluateBadges(u, Activity{Completed: true, Score: 10, RecentInterviews: 5}, now); len(again) != 0 {
		t.Errorf("badges re-awarded: %v", again)
	}
}

func TestCatalogIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range Catalog() {
		if seen[b.ID] {
			t.Errorf("duplicate badge id %s", b.ID)
		}
		seen[b.ID] = true
	}
}
