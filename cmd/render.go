package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

// output prints v as JSON under --json, and through human otherwise.
func output(cmd *cobra.Command, v any, human func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		return printJSON(w, v)
	}
	human(w)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, theme.Title.Render(title))
}

func field(w io.Writer, label string, value any) {
	fmt.Fprintln(w, theme.Label.Render(label)+fmt.Sprint(value))
}

func score(v float64) string {
	return theme.Score(v).Render(fmt.Sprintf("%.1f", v))
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderInterview(w io.Writer, iv *interview.Interview) {
	heading(w, fmt.Sprintf("%s (%s)", iv.Role, iv.Difficulty))
	field(w, "ID", iv.ID)
	field(w, "Status", iv.Status)
	field(w, "Round", fmt.Sprintf("%d of %d", iv.CurrentRound, iv.TotalRounds))
	field(w, "Progress", fmt.Sprintf("%s %d%%", theme.Progress(iv.Progress, 20), iv.Progress))
	if iv.RetakeOf != "" {
		field(w, "Retake of", iv.RetakeOf)
	}
	field(w, "Started", when(iv.CreatedAt))
	if iv.CompletedAt != nil {
		field(w, "Completed", when(*iv.CompletedAt))
	}
}

func renderDetails(w io.Writer, d *interview.Details) {
	renderInterview(w, d.Interview)
	if d.Interview.Status == interview.StatusCompleted {
		field(w, "Score", score(d.OverallScore))
	}

	for _, rs := range d.Rounds {
		fmt.Fprintln(w)
		title := fmt.Sprintf("Round %d · %s", rs.Number, rs.Status)
		if rs.Questions > 0 {
			title += fmt.Sprintf(" · avg %s (min %.0f, max %.0f)", score(rs.AverageScore), rs.MinScore, rs.MaxScore)
		}
		fmt.Fprintln(w, theme.Subtitle.Render(title))

		r := d.Interview.Rounds[rs.Number-1]
		for i, q := range r.Questions {
			prefix := fmt.Sprintf("%d.", i+1)
			if q.Kind == interview.KindFollowUp {
				prefix = "  ↳"
			}
			fmt.Fprintf(w, "%s %s\n", prefix, q.Text)
			if q.Answer != "" {
				fmt.Fprintln(w, theme.Hint.Render("   "+q.Answer))
			}
			if q.Score > 0 {
				fmt.Fprintf(w, "   %s %s\n", score(q.Score), q.Feedback)
			}
		}
	}

	if s := d.Interview.OverallSummary; s != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Card.Render(strings.TrimSpace(s)))
	}
}

func renderList(w io.Writer, res *interview.ListResult) {
	heading(w, "Interviews")
	fmt.Fprintf(w, "%d total · %d active · %d completed · %d cancelled\n\n",
		res.Total, res.Active, res.Completed, res.Cancelled)
	if len(res.Interviews) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No interviews yet. Start one with `prepwise start --role <role>`."))
		return
	}

	fmt.Fprintf(w, "%-36s  %-24s  %-12s  %-9s  %6s  %5s  %s\n",
		"ID", "Role", "Difficulty", "Status", "Rounds", "Score", "Started")
	fmt.Fprintln(w, strings.Repeat("─", 118))
	for _, it := range res.Interviews {
		role := it.Role
		if len(role) > 24 {
			role = role[:21] + "..."
		}
		sc := "-"
		if it.Status == interview.StatusCompleted {
			sc = fmt.Sprintf("%.1f", it.OverallScore)
		}
		fmt.Fprintf(w, "%-36s  %-24s  %-12s  %-9s  %6s  %5s  %s\n",
			it.ID, role, it.Difficulty, it.Status,
			fmt.Sprintf("%d/%d", it.CompletedRounds, it.TotalRounds), sc, when(it.CreatedAt))
	}
}
