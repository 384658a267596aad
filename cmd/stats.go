package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/analytics"
	"github.com/abhisek/prepwise/internal/level"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show interview statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.analytics.Stats(cmd.Context(), a.user)
		if err != nil {
			return err
		}
		return output(cmd, st, func(w io.Writer) {
			renderStats(w, st)
		})
	},
}

var analyticsCmd = &cobra.Command{
	Use:       "analytics [section]",
	Short:     "Show the analytics report, or one section of it",
	Long:      "Show the analytics report. Sections: " + strings.Join(analytics.Sections(), ", ") + ".",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: analytics.Sections(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			v, err := a.analytics.Section(cmd.Context(), a.user, args[0])
			if err != nil {
				return err
			}
			// Single sections are data views and always print as JSON.
			return printJSON(cmd.OutOrStdout(), v)
		}

		r, err := a.analytics.Report(cmd.Context(), a.user)
		if err != nil {
			return err
		}
		return output(cmd, r, func(w io.Writer) {
			renderReport(w, r)
		})
	},
}

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show your level, readiness and badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.levels.Get(cmd.Context(), a.user)
		if err != nil {
			return err
		}
		return output(cmd, u, func(w io.Writer) {
			renderLevel(w, u)
		})
	},
}

func renderStats(w io.Writer, st *analytics.Stats) {
	heading(w, "Statistics")
	field(w, "Interviews", fmt.Sprintf("%d (%d active, %d completed, %d cancelled)",
		st.TotalInterviews, st.ActiveInterviews, st.CompletedInterviews, st.CancelledInterviews))
	field(w, "Average", score(st.AverageScore))
	field(w, "Completion", fmt.Sprintf("%s %d%%", theme.Progress(st.CompletionRate, 20), st.CompletionRate))
	field(w, "Last 7 days", st.RecentActivity)
	field(w, "Practice", fmt.Sprintf("%dh", st.TotalPracticeHours))
	if len(st.SkillDistribution) > 0 {
		parts := make([]string, len(st.SkillDistribution))
		for i, m := range st.SkillDistribution {
			parts[i] = fmt.Sprintf("%s (%d)", m.Skill, m.Mentions)
		}
		field(w, "Mentioned", strings.Join(parts, ", "))
	}
}

func renderReport(w io.Writer, r *analytics.UserReport) {
	o := r.Overview
	heading(w, "Overview")
	field(w, "Sessions", fmt.Sprintf("%d (%d completed)", o.TotalSessions, o.CompletedSessions))
	field(w, "Average", score(o.AverageScore))
	field(w, "Questions", o.TotalQuestions)
	field(w, "Practice", fmt.Sprintf("%d min", o.TotalPracticeTime))
	field(w, "Improvement", fmt.Sprintf("%d%%", o.ImprovementRate))
	field(w, "Streak", fmt.Sprintf("%d days", o.CurrentStreak))

	if len(r.SkillBreakdown) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Subtitle.Render("Skills"))
		for _, s := range r.SkillBreakdown {
			field(w, s.Skill, fmt.Sprintf("%s over %d questions", score(s.Score), s.Questions))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Subtitle.Render("Weekly progress"))
	for _, wk := range r.WeeklyProgress {
		field(w, wk.Week, fmt.Sprintf("%s  %d sessions", score(wk.Score), wk.Sessions))
	}

	t := r.PerformanceTrends
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Subtitle.Render("Trends"))
	field(w, "Technical", score(t.Technical))
	field(w, "Communication", score(t.Communication))
	field(w, "Problem solving", score(t.ProblemSolving))
	field(w, "Confidence", score(t.Confidence))

	if len(r.RecentActivity) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Subtitle.Render("Recent activity"))
		for _, act := range r.RecentActivity {
			fmt.Fprintf(w, "%s  %-24s  %-9s  %s\n", when(act.Date), act.Role, act.Status, score(act.Score))
		}
	}

	if r.Level != nil {
		fmt.Fprintln(w)
		renderLevel(w, r.Level)
	}
}

func renderLevel(w io.Writer, u *level.UserLevel) {
	heading(w, fmt.Sprintf("Level %d", u.CurrentLevel))
	field(w, "Completed", fmt.Sprintf("%d of %d interviews", u.CompletedInterviews, u.TotalInterviews))
	if next := level.InterviewsToNextLevel(u.CurrentLevel, u.CompletedInterviews); next > 0 {
		field(w, "Next level", fmt.Sprintf("%d more completed interviews", next))
	}
	field(w, "Readiness", fmt.Sprintf("%s %d%%", theme.Progress(u.ReadinessScore, 20), u.ReadinessScore))
	if len(u.Badges) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Subtitle.Render("Badges"))
	for _, b := range u.Badges {
		fmt.Fprintf(w, "%s %s  %s\n", b.Icon, theme.Body.Render(b.Name), theme.Hint.Render(b.Description))
	}
}
