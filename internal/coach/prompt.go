package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/scoring"
)

const interviewerSystem = `You are an experienced technical interviewer running a mock interview.

Rules:
- Ask exactly one question. Do not number it, label it or add commentary.
- Match the question to the candidate's target role and difficulty.
- Prefer questions about concrete experience, technical depth and trade-offs.
- Never repeat a question from the "already asked" list.`

const followUpSystem = `You are a technical interview specialist focusing on software development, engineering practices, and technical depth.

Given the original question and the candidate's response, ask one concise follow-up question that digs deeper into the technical experience, skills or projects the candidate mentioned. Focus on technical specifics, implementation details or challenges faced. Reply with the question only.`

const evaluatorSystem = `You are a fair and precise technical interviewer grading one answer.

Rules:
- Judge the answer only on technical correctness and completeness for the question asked.
- accuracy must be one of: excellent, good, partial, incorrect, idk. Use idk when the candidate says they do not know or gives no real answer.
- feedback is two or three sentences addressed to the candidate.
- expected_answer is a short model answer.
- keywords lists the key concepts a strong answer mentions.
- answer_summary restates the candidate's answer in one sentence.`

const summarySystem = `You are a senior interviewer writing the closing summary of a mock interview.

Write three short paragraphs in plain text: overall impression, strengths, and the most important areas to improve with one concrete next step. Address the candidate directly. Do not invent answers that are not in the transcript.`

func questionMessage(iv *interview.Interview, round int, prior []string, maxPrior int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\n", iv.Role)
	fmt.Fprintf(&b, "Difficulty: %s\n", iv.Difficulty)
	fmt.Fprintf(&b, "Round: %d of %d\n", round, iv.TotalRounds)
	b.WriteString("\nAlready asked in this interview:\n")
	b.WriteString(numbered(prior, maxPrior))
	return b.String()
}

func followUpMessage(question, answer string) string {
	return fmt.Sprintf("Original Question: %q\nCandidate's Response: %q\n\nFollow-up Question:", question, answer)
}

func evaluationMessage(iv *interview.Interview, question, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\nDifficulty: %s\n\n", iv.Role, iv.Difficulty)
	fmt.Fprintf(&b, "Question:\n%s\n\nCandidate's answer:\n%s\n", question, answer)
	return b.String()
}

func summaryMessage(iv *interview.Interview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\nDifficulty: %s\n", iv.Role, iv.Difficulty)
	if s := iv.Score(); s > 0 {
		fmt.Fprintf(&b, "Average score: %.1f / %d\n", s, scoring.MaxScore)
	}
	for _, r := range iv.Rounds {
		fmt.Fprintf(&b, "\nRound %d (%s)\n", r.Number, r.Status)
		for _, q := range r.Questions {
			fmt.Fprintf(&b, "- Q: %s\n  A: %s\n", q.Text, orNone(q.Answer))
			if q.Score > 0 {
				fmt.Fprintf(&b, "  Score: %.0f\n", q.Score)
			}
			if q.Feedback != "" {
				fmt.Fprintf(&b, "  Feedback: %s\n", q.Feedback)
			}
		}
	}
	if iv.OverallFeedback != "" {
		fmt.Fprintf(&b, "\nInterviewer notes: %s\n", iv.OverallFeedback)
	}
	return b.String()
}

// numbered renders the last max items as a numbered list, or "None".
func numbered(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}
	var b strings.Builder
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(no answer)"
	}
	return s
}

// questionLabels are prefixes models sometimes put before a question.
var questionLabels = []string{"follow-up question:", "followup question:", "question:"}

// cleanQuestion strips labels, list markers and wrapping quotes from a
// generated question.
func cleanQuestion(text string) string {
	s := strings.TrimSpace(text)
	for _, label := range questionLabels {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
			break
		}
	}
	s = strings.TrimLeft(s, "-*0123456789. ")
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"') {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
