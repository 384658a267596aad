package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/scoring"
)

// MinutesPerRound is the practice-time estimate of one completed round.
const MinutesPerRound = 30

const topSkillMentions = 5

// mentionKeywords are the technologies counted in feedback text.
var mentionKeywords = []string{
	"javascript", "react", "node", "python", "java", "sql", "system design", "algorithms",
}

// SkillMention counts how often a technology appears in feedback.
type SkillMention struct {
	Skill    string `json:"skill"`
	Mentions int    `json:"mentions"`
}

// Stats is the compact statistics view of a user's interviews.
type Stats struct {
	TotalInterviews     int            `json:"totalInterviews"`
	CompletedInterviews int            `json:"completedInterviews"`
	ActiveInterviews    int            `json:"activeInterviews"`
	CancelledInterviews int            `json:"cancelledInterviews"`
	AverageScore        float64        `json:"averageScore"`
	CompletionRate      int            `json:"completionRate"`
	RecentActivity      int            `json:"recentActivity"`
	TotalPracticeHours  int            `json:"totalPracticeHours"`
	SkillDistribution   []SkillMention `json:"skillDistribution"`
}

// BuildStats derives Stats. The average covers completed interviews that
// have at least one scored question; recent activity counts interviews
// created during the seven days before now.
func BuildStats(ivs []interview.Interview, now time.Time) Stats {
	st := Stats{TotalInterviews: len(ivs)}

	var interviewScores []float64
	practiceMinutes := 0
	mentions := make(map[string]int)
	for i := range ivs {
		iv := &ivs[i]
		switch iv.Status {
		case interview.StatusCompleted:
			st.CompletedInterviews++
			interviewScores = append(interviewScores, InterviewScore(iv))
			countMentions(iv, mentions)
		case interview.StatusActive:
			st.ActiveInterviews++
		case interview.StatusCancelled:
			st.CancelledInterviews++
		}
		if iv.CreatedAt.After(now.Add(-week)) {
			st.RecentActivity++
		}
		practiceMinutes += iv.CompletedRounds() * MinutesPerRound
	}

	st.AverageScore = scoring.Average(interviewScores)
	st.CompletionRate = scoring.Percentage(st.CompletedInterviews, st.TotalInterviews)
	st.TotalPracticeHours = int(math.Round(float64(practiceMinutes) / 60))
	st.SkillDistribution = topMentions(mentions)
	return st
}

func countMentions(iv *interview.Interview, into map[string]int) {
	for _, q := range iv.Questions() {
		if q.Feedback == "" {
			continue
		}
		fb := strings.ToLower(q.Feedback)
		for _, kw := range mentionKeywords {
			if strings.Contains(fb, kw) {
				into[kw]++
			}
		}
	}
}

// topMentions orders mentions by count, ties in keyword order, and keeps
// the first five.
func topMentions(mentions map[string]int) []SkillMention {
	out := []SkillMention{}
	for _, kw := range mentionKeywords {
		if n := mentions[kw]; n > 0 {
			out = append(out, SkillMention{Skill: kw, Mentions: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mentions > out[j].Mentions
	})
	if len(out) > topSkillMentions {
		out = out[:topSkillMentions]
	}
	return out
}
