package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new mock interview",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		rounds, _ := cmd.Flags().GetInt("rounds")
		retake, _ := cmd.Flags().GetString("retake")

		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		iv, err := a.interviews.Start(cmd.Context(), interview.StartInput{
			UserID:              a.user,
			Role:                role,
			TotalRounds:         rounds,
			Difficulty:          difficulty,
			PreviousInterviewID: retake,
		})
		if err != nil {
			return err
		}
		return output(cmd, iv, func(w io.Writer) {
			renderInterview(w, iv)
			fmt.Fprintln(w)
			fmt.Fprintln(w, theme.Hint.Render(fmt.Sprintf("Next: prepwise round start %s 1", iv.ID)))
		})
	},
}

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Start or complete an interview round",
}

var roundStartCmd = &cobra.Command{
	Use:   "start <interview-id> <round>",
	Short: "Move a round into progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseRound(args[1])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.interviews.StartRound(cmd.Context(), a.user, args[0], n)
		if err != nil {
			return err
		}
		return output(cmd, r, func(w io.Writer) {
			heading(w, fmt.Sprintf("Round %d", r.Number))
			field(w, "Status", r.Status)
			if r.StartedAt != nil {
				field(w, "Started", when(*r.StartedAt))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, theme.Hint.Render(fmt.Sprintf("Get a question with: prepwise ask %s %d", args[0], n)))
		})
	},
}

var roundCompleteCmd = &cobra.Command{
	Use:   "complete <interview-id> <round>",
	Short: "Submit the questions of a round and complete it",
	Long: "Submit the final question list of a round as a JSON array of questions\n" +
		"(question, questionType, answer, feedback, score, ...). Completing the last\n" +
		"round completes the interview and generates the overall summary.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseRound(args[1])
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("questions")
		feedback, _ := cmd.Flags().GetString("feedback")

		questions, err := readQuestions(cmd, path)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, coachOptional)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.interviews.CompleteRound(cmd.Context(), interview.CompleteRoundInput{
			UserID:      a.user,
			InterviewID: args[0],
			RoundNumber: n,
			Questions:   questions,
			Feedback:    feedback,
		})
		if err != nil {
			return err
		}
		return output(cmd, res, func(w io.Writer) {
			heading(w, fmt.Sprintf("Round %d completed", n))
			field(w, "Progress", fmt.Sprintf("%s %d%%", theme.Progress(res.Progress, 20), res.Progress))
			if !res.Final {
				fmt.Fprintln(w)
				fmt.Fprintln(w, theme.Hint.Render(fmt.Sprintf("Next: prepwise round start %s %d", args[0], res.NextRound)))
				return
			}
			field(w, "Status", res.Status)
			field(w, "Score", score(res.Interview.Score()))
			if s := res.Interview.OverallSummary; s != "" {
				fmt.Fprintln(w)
				fmt.Fprintln(w, theme.Card.Render(s))
			}
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <interview-id>",
	Short: "Cancel an active interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		iv, err := a.interviews.Cancel(cmd.Context(), a.user, args[0])
		if err != nil {
			return err
		}
		return output(cmd, iv, func(w io.Writer) {
			renderInterview(w, iv)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <interview-id>",
	Short: "Delete an interview permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.interviews.Delete(cmd.Context(), a.user, args[0]); err != nil {
			return err
		}
		res := map[string]any{"interviewId": args[0], "deleted": true}
		return output(cmd, res, func(w io.Writer) {
			fmt.Fprintf(w, "Deleted interview %s\n", args[0])
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <interview-id>",
	Short: "Show an interview with per-round scores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.interviews.Details(cmd.Context(), a.user, args[0])
		if err != nil {
			return err
		}
		return output(cmd, d, func(w io.Writer) {
			renderDetails(w, d)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your interviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := listOptions(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, coachNone)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.interviews.List(cmd.Context(), a.user, opts)
		if err != nil {
			return err
		}
		return output(cmd, res, func(w io.Writer) {
			renderList(w, res)
		})
	},
}

func init() {
	startCmd.Flags().String("role", "", "Role to interview for (e.g. \"Backend Engineer\")")
	startCmd.Flags().String("difficulty", "", "Beginner, Intermediate (default) or Advanced")
	startCmd.Flags().Int("rounds", 0, fmt.Sprintf("Number of rounds (default %d, max %d)", interview.DefaultTotalRounds, interview.MaxTotalRounds))
	startCmd.Flags().String("retake", "", "ID of a completed interview this one retakes")

	roundCompleteCmd.Flags().String("questions", "-", "JSON file with the round's questions (- reads stdin)")
	roundCompleteCmd.Flags().String("feedback", "", "Interviewer notes for the round")

	roundCmd.AddCommand(roundStartCmd)
	roundCmd.AddCommand(roundCompleteCmd)

	listCmd.Flags().String("status", "", "Filter by status (active, completed, cancelled)")
	listCmd.Flags().String("since", "", "Only interviews created after this date (2006-01-02) or duration ago (e.g. 168h)")
	listCmd.Flags().String("sort", string(interview.SortByCreatedAt), "Sort by createdAt or lastActiveAt")
	listCmd.Flags().String("order", string(interview.OrderDesc), "asc or desc")
	listCmd.Flags().Int("limit", 20, "Maximum number of interviews (0 = all)")
	listCmd.Flags().Int("offset", 0, "Number of interviews to skip")
}

func parseRound(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid round %q: %w", s, err)
	}
	return n, nil
}

func readQuestions(cmd *cobra.Command, path string) ([]interview.Question, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	var qs []interview.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	return qs, nil
}

func listOptions(cmd *cobra.Command) (interview.ListOptions, error) {
	status, _ := cmd.Flags().GetString("status")
	since, _ := cmd.Flags().GetString("since")
	sortBy, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	opts := interview.ListOptions{
		Status: interview.Status(status),
		SortBy: interview.SortField(sortBy),
		Order:  interview.SortOrder(order),
		Limit:  limit,
		Offset: offset,
	}
	if since != "" {
		t, err := parseSince(since, time.Now())
		if err != nil {
			return opts, err
		}
		opts.Since = t
	}
	return opts, nil
}

// parseSince accepts a calendar date in local time or a duration back
// from now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want a date (2006-01-02) or a duration (168h)", s)
	}
	return now.Add(-d), nil
}
