package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/prepwise/internal/interview"
)

func TestBuildStats(t *testing.T) {
	day := 24 * time.Hour
	withFeedback := func(text string, score float64, fb string) interview.Question {
		qq := q(text, score)
		qq.Feedback = fb
		return qq
	}

	ivs := []interview.Interview{
		ivAt("a", now, interview.StatusCompleted,
			withFeedback("q1", 8, "Good use of Python and SQL"),
			withFeedback("q2", 6, "Review SQL joins"),
		),
		ivAt("b", now.Add(-2*day), interview.StatusCompleted, withFeedback("q3", 0, "Talk about React")),
		ivAt("c", now.Add(-10*day), interview.StatusActive, withFeedback("q4", 9, "Great java answer")),
		ivAt("d", now.Add(-20*day), interview.StatusCancelled),
	}

	st := BuildStats(ivs, now)

	assert.Equal(t, 4, st.TotalInterviews)
	assert.Equal(t, 2, st.CompletedInterviews)
	assert.Equal(t, 1, st.ActiveInterviews)
	assert.Equal(t, 1, st.CancelledInterviews)
	assert.Equal(t, 7.0, st.AverageScore, "interview without scored questions is excluded")
	assert.Equal(t, 50, st.CompletionRate)
	assert.Equal(t, 2, st.RecentActivity)
	assert.Equal(t, 2, st.TotalPracticeHours)
	assert.Equal(t, []SkillMention{
		{Skill: "sql", Mentions: 2},
		{Skill: "react", Mentions: 1},
		{Skill: "python", Mentions: 1},
	}, st.SkillDistribution)
}

func TestBuildStatsEmpty(t *testing.T) {
	st := BuildStats(nil, now)
	assert.Zero(t, st.CompletionRate)
	assert.Zero(t, st.AverageScore)
	assert.Empty(t, st.SkillDistribution)
}

func TestTopMentionsKeepsFive(t *testing.T) {
	m := map[string]int{"javascript": 1, "react": 2, "node": 3, "python": 4, "java": 5, "sql": 6, "algorithms": 7}
	got := topMentions(m)
	assert.Len(t, got, 5)
	assert.Equal(t, "algorithms", got[0].Skill)
	assert.Equal(t, "node", got[4].Skill)
}
