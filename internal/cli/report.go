package cli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quest-workers/internal/models"
	"quest-workers/internal/scoring"
)

// ScoreReport is what `questctl evaluate` prints.
type ScoreReport struct {
	OverallScore int                                   `json:"overallScore"`
	Breakdown    map[models.LevelID]models.LevelScore `json:"breakdown"`
	Readiness    scoring.Readiness                     `json:"readiness"`
	NextSteps    []scoring.PendingRule                 `json:"nextSteps"`
}

func BuildScoreReport(engine *scoring.Engine, answers models.AnswerContext) (report ScoreReport) {
	result := engine.Evaluate(answers)
	report = ScoreReport{
		OverallScore: result.OverallScore,
		Breakdown:    result.Breakdown,
		Readiness:    scoring.Classify(result.OverallScore),
		NextSteps:    engine.Pending(result),
	}
	return report
}

// RenderScore writes the report with levels in registry order.
func RenderScore(w io.Writer, levels []scoring.Level, report ScoreReport) (err error) {
	titleCaser := cases.Title(language.English)

	var b strings.Builder
	fmt.Fprintf(&b, "Overall score: %d/100 (%s)\n", report.OverallScore, report.Readiness)

	for _, lvl := range levels {
		ls, ok := report.Breakdown[lvl.ID]
		if !ok {
			continue
		}
		label := lvl.Label
		if label == "" {
			label = string(lvl.ID)
		}
		fmt.Fprintf(&b, "\n%s: %d/100\n", titleCaser.String(label), ls.Score)
		for _, d := range ls.Details {
			mark := " "
			if d.Passed {
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", mark, d.Message)
		}
	}

	b.WriteString("\nNext steps:\n")
	if len(report.NextSteps) == 0 {
		b.WriteString("  none, every rule passes\n")
	}
	for i, p := range report.NextSteps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p.Message)
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// MatchReport is what `questctl match` prints.
type MatchReport struct {
	Matches        []models.MatchResult `json:"matches"`
	CandidateCount int                  `json:"candidateCount"`
}

func RenderMatches(w io.Writer, report MatchReport) (err error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluated %d templates, showing %d\n", report.CandidateCount, len(report.Matches))

	if len(report.Matches) == 0 {
		b.WriteString("\nNo matching templates.\n")
	}
	for i, m := range report.Matches {
		fmt.Fprintf(&b, "\n%d. %s  %d/100\n", i+1, m.TemplateID, m.MatchScore)
		fmt.Fprintf(&b, "   theme %d | geography %d | target group %d\n",
			m.Breakdown.Theme, m.Breakdown.Geography, m.Breakdown.TargetGroup)
		for _, line := range m.Explanation {
			fmt.Fprintf(&b, "   %s\n", line)
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}
