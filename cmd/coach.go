package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

var askCmd = &cobra.Command{
	Use:   "ask <interview-id> <round>",
	Short: "Ask the AI coach for the next question of a round",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseRound(args[1])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, coachRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.aiContext(cmd.Context())
		defer cancel()
		q, err := a.interviews.NextQuestion(ctx, a.user, args[0], n)
		if err != nil {
			return err
		}
		return output(cmd, q, func(w io.Writer) {
			fmt.Fprintln(w, theme.Subtitle.Render(fmt.Sprintf("Round %d", n)))
			fmt.Fprintln(w, q.Text)
		})
	},
}

var followUpCmd = &cobra.Command{
	Use:   "followup <interview-id>",
	Short: "Ask the AI coach for a follow-up to an answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetInt("parent")
		question, answer, err := questionAndAnswer(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, coachRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.aiContext(cmd.Context())
		defer cancel()
		q, err := a.interviews.FollowUp(ctx, a.user, args[0], parent, question, answer)
		if err != nil {
			return err
		}
		return output(cmd, q, func(w io.Writer) {
			fmt.Fprintln(w, theme.Subtitle.Render("Follow-up"))
			fmt.Fprintln(w, q.Text)
		})
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <interview-id>",
	Short: "Have the AI coach score an answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question, answer, err := questionAndAnswer(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, coachRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.aiContext(cmd.Context())
		defer cancel()
		ev, err := a.interviews.Evaluate(ctx, a.user, args[0], question, answer)
		if err != nil {
			return err
		}
		return output(cmd, ev, func(w io.Writer) {
			renderEvaluation(w, ev)
		})
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe a recorded answer",
	Long:  "Transcribe a recorded answer with the configured speech provider (PREPWISE_SPEECH_PROVIDER).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audio, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}

		a, err := newApp(cmd, coachRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.aiContext(cmd.Context())
		defer cancel()
		text, err := a.coach.TranscribeAnswer(ctx, audio, filepath.Base(args[0]))
		if err != nil {
			return err
		}
		res := map[string]string{"transcript": text}
		return output(cmd, res, func(w io.Writer) {
			fmt.Fprintln(w, text)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{followUpCmd, evaluateCmd} {
		c.Flags().String("question", "", "The question that was asked")
		c.Flags().String("answer", "", "The candidate's answer (@file reads it from a file)")
	}
	followUpCmd.Flags().Int("parent", 0, "Index of the prepared question within the round")
}

// questionAndAnswer reads --question and --answer. An answer of the form
// @path is read from that file.
func questionAndAnswer(cmd *cobra.Command) (string, string, error) {
	question, _ := cmd.Flags().GetString("question")
	answer, _ := cmd.Flags().GetString("answer")
	if path, ok := strings.CutPrefix(answer, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("read answer: %w", err)
		}
		answer = string(data)
	}
	return question, answer, nil
}

func renderEvaluation(w io.Writer, ev *interview.Evaluation) {
	heading(w, "Evaluation")
	field(w, "Accuracy", ev.Accuracy)
	field(w, "Score", score(float64(ev.Score))+"/10")
	if ev.Fallback {
		fmt.Fprintln(w, theme.Hint.Render("The coach could not assess this answer; a neutral score was recorded."))
	}
	if ev.Feedback != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ev.Feedback)
	}
	if ev.ExpectedAnswer != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Subtitle.Render("Expected answer"))
		fmt.Fprintln(w, ev.ExpectedAnswer)
	}
	if len(ev.Keywords) > 0 {
		fmt.Fprintln(w)
		field(w, "Keywords", strings.Join(ev.Keywords, ", "))
	}
}
