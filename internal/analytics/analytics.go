// Package analytics derives report views from a user's full interview
// history. Every function is a pure read over interviews ordered newest
// first; nothing here trusts stored running totals.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/scoring"
)

const (
	// MinutesPerInterview is the fixed practice-time estimate of a session.
	MinutesPerInterview = 45

	// RecentActivityLimit is the number of sessions in the activity feed.
	RecentActivityLimit = 5

	weeks      = 5
	week       = 7 * 24 * time.Hour
	trendGroup = 3
)

// Skill categories.
const (
	SkillTechnical      = "Technical"
	SkillProblemSolving = "Problem Solving"
	SkillCommunication  = "Communication"
	SkillSystemDesign   = "System Design"
	SkillAlgorithms     = "Algorithms"
)

// skillOrder is the output order of the skill breakdown.
var skillOrder = []string{
	SkillTechnical,
	SkillProblemSolving,
	SkillCommunication,
	SkillSystemDesign,
	SkillAlgorithms,
}

// skillRules are checked in order; the first match wins.
var skillRules = []struct {
	skill    string
	keywords []string
}{
	{SkillSystemDesign, []string{"system", "architecture"}},
	{SkillAlgorithms, []string{"algorithm", "complexity"}},
	{SkillCommunication, []string{"communicat", "explain"}},
	{SkillProblemSolving, []string{"solve", "problem"}},
}

// Trend weights applied to the improvement delta.
const (
	weightTechnical      = 0.3
	weightCommunication  = 0.2
	weightProblemSolving = 0.4
	weightConfidence     = 0.1
)

// SkillScore is the average score of the questions in one category.
type SkillScore struct {
	Skill     string  `json:"skill"`
	Score     float64 `json:"score"`
	Questions int     `json:"questions"`
}

// WeekProgress summarizes one rolling seven-day window.
type WeekProgress struct {
	Week     string    `json:"week"`
	Score    float64   `json:"score"`
	Sessions int       `json:"sessions"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Trends are the recent-versus-older sub-scores, each within [0, 10].
type Trends struct {
	Technical      float64 `json:"technical"`
	Communication  float64 `json:"communication"`
	ProblemSolving float64 `json:"problemSolving"`
	Confidence     float64 `json:"confidence"`
}

// Overview is the headline block of the report.
type Overview struct {
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	AverageScore      float64 `json:"averageScore"`
	TotalPracticeTime int     `json:"totalPracticeTime"`
	ImprovementRate   int     `json:"improvementRate"`
	CurrentStreak     int     `json:"currentStreak"`
	TotalQuestions    int     `json:"totalQuestions"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	SessionID string           `json:"interviewId"`
	Date      time.Time        `json:"date"`
	Role      string           `json:"role"`
	Score     float64          `json:"score"`
	Status    interview.Status `json:"status"`
	Duration  int              `json:"duration"`
}

// Report is the complete analytics view.
type Report struct {
	Overview          Overview       `json:"overview"`
	SkillBreakdown    []SkillScore   `json:"skillBreakdown"`
	WeeklyProgress    []WeekProgress `json:"weeklyProgress"`
	PerformanceTrends Trends         `json:"performanceTrends"`
	RecentActivity    []Activity     `json:"recentActivity"`
}

// Build derives the full report. ivs may be in any order.
func Build(ivs []interview.Interview, now time.Time, loc *time.Location) Report {
	ivs = NewestFirst(ivs)
	return Report{
		Overview:          BuildOverview(ivs, now, loc),
		SkillBreakdown:    SkillBreakdown(ivs),
		WeeklyProgress:    WeeklyProgress(ivs, now),
		PerformanceTrends: PerformanceTrends(ivs),
		RecentActivity:    RecentActivity(ivs),
	}
}

// NewestFirst returns a copy of ivs ordered by creation time, newest first.
func NewestFirst(ivs []interview.Interview) []interview.Interview {
	out := append([]interview.Interview(nil), ivs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// BuildOverview computes the headline figures.
func BuildOverview(ivs []interview.Interview, now time.Time, loc *time.Location) Overview {
	o := Overview{
		TotalSessions:     len(ivs),
		TotalPracticeTime: TotalPracticeTime(ivs),
		ImprovementRate:   ImprovementRate(ivs),
		CurrentStreak:     CurrentStreak(ivs, now, loc),
	}
	var scores []float64
	for i := range ivs {
		if ivs[i].Status == interview.StatusCompleted {
			o.CompletedSessions++
		}
		scores = append(scores, questionScores(&ivs[i])...)
	}
	_, o.TotalQuestions = scoring.SumScored(scores)
	o.AverageScore = scoring.Average(scores)
	return o
}

// ClassifySkill maps a question text to its skill category.
func ClassifySkill(question string) string {
	text := strings.ToLower(question)
	for _, r := range skillRules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.skill
			}
		}
	}
	return SkillTechnical
}

// SkillBreakdown averages scored questions per category. Categories with
// no scored question are omitted.
func SkillBreakdown(ivs []interview.Interview) []SkillScore {
	scores := make(map[string][]float64, len(skillOrder))
	for i := range ivs {
		for _, q := range ivs[i].ScoredQuestions() {
			skill := ClassifySkill(q.Text)
			scores[skill] = append(scores[skill], q.Score)
		}
	}

	out := []SkillScore{}
	for _, skill := range skillOrder {
		s := scores[skill]
		if len(s) == 0 {
			continue
		}
		out = append(out, SkillScore{Skill: skill, Score: scoring.Average(s), Questions: len(s)})
	}
	return out
}

// WeeklyProgress splits the five weeks before now into rolling windows,
// oldest first. Window i covers (end-7d, end] with end = now-(5-i)*7d.
func WeeklyProgress(ivs []interview.Interview, now time.Time) []WeekProgress {
	out := make([]WeekProgress, 0, weeks)
	for i := 1; i <= weeks; i++ {
		end := now.Add(-time.Duration(weeks-i) * week)
		start := end.Add(-week)

		wp := WeekProgress{Week: fmt.Sprintf("Week %d", i), Start: start, End: end}
		var scores []float64
		for j := range ivs {
			c := ivs[j].CreatedAt
			if !c.After(start) || c.After(end) {
				continue
			}
			wp.Sessions++
			scores = append(scores, questionScores(&ivs[j])...)
		}
		wp.Score = scoring.Average(scores)
		out = append(out, wp)
	}
	return out
}

// PerformanceTrends compares the three newest interviews against the three
// oldest. Fewer than two interviews yields all zeros.
func PerformanceTrends(ivs []interview.Interview) Trends {
	if len(ivs) < 2 {
		return Trends{}
	}
	recent, older := trendGroups(ivs)
	recentAvg := rawAverage(recent)
	improvement := recentAvg - rawAverage(older)

	trend := func(weight float64) float64 {
		return scoring.Clamp(recentAvg+improvement*weight, 0, scoring.MaxScore)
	}
	return Trends{
		Technical:      trend(weightTechnical),
		Communication:  trend(weightCommunication),
		ProblemSolving: trend(weightProblemSolving),
		Confidence:     trend(weightConfidence),
	}
}

// ImprovementRate is the rounded percentage change from the oldest three
// interviews to the newest three. It is 0 without a scored baseline.
func ImprovementRate(ivs []interview.Interview) int {
	if len(ivs) < 2 {
		return 0
	}
	recent, older := trendGroups(ivs)
	base := rawAverage(older)
	if base <= 0 {
		return 0
	}
	return int(math.Round((rawAverage(recent) - base) / base * 100))
}

// CurrentStreak counts consecutive local calendar days, ending today, on
// which at least one interview was created.
func CurrentStreak(ivs []interview.Interview, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	days := make(map[string]bool, len(ivs))
	for i := range ivs {
		days[dayKey(ivs[i].CreatedAt.In(loc))] = true
	}

	streak := 0
	y, m, d := now.In(loc).Date()
	day := time.Date(y, m, d, 12, 0, 0, 0, loc)
	for days[dayKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// TotalPracticeTime estimates practice minutes.
func TotalPracticeTime(ivs []interview.Interview) int {
	return len(ivs) * MinutesPerInterview
}

// InterviewScore is the rounded average of every scored question of iv,
// completed rounds or not.
func InterviewScore(iv *interview.Interview) float64 {
	return scoring.Average(questionScores(iv))
}

// InterviewDuration estimates the minutes spent on iv.
func InterviewDuration(*interview.Interview) int {
	return MinutesPerInterview
}

// RecentActivity lists the newest sessions.
func RecentActivity(ivs []interview.Interview) []Activity {
	n := min(len(ivs), RecentActivityLimit)
	out := make([]Activity, 0, n)
	for i := 0; i < n; i++ {
		iv := &ivs[i]
		out = append(out, Activity{
			SessionID: iv.ID,
			Date:      iv.CreatedAt,
			Role:      iv.Role,
			Score:     InterviewScore(iv),
			Status:    iv.Status,
			Duration:  InterviewDuration(iv),
		})
	}
	return out
}

func trendGroups(ivs []interview.Interview) (recent, older []interview.Interview) {
	return ivs[:min(trendGroup, len(ivs))], ivs[max(0, len(ivs)-trendGroup):]
}

// rawAverage is the unrounded mean of the scored questions of ivs.
func rawAverage(ivs []interview.Interview) float64 {
	var scores []float64
	for i := range ivs {
		scores = append(scores, questionScores(&ivs[i])...)
	}
	sum, n := scoring.SumScored(scores)
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func questionScores(iv *interview.Interview) []float64 {
	var out []float64
	for i := range iv.Rounds {
		out = append(out, iv.Rounds[i].Scores()...)
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
