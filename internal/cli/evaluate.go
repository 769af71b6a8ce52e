package cli

import (
	"github.com/spf13/cobra"

	"quest-workers/internal/models"
	"quest-workers/internal/scoring"
)

//nolint:gochecknoglobals // Cobra boilerplate
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <answers.json>",
	Short: "Score a set of quest answers",
	Long: `Scores a JSON object of quest answers with the default rule registry and
prints the per-level breakdown, readiness and the rules still failing.

Examples:
  questctl evaluate answers.json
  questctl evaluate answers.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) (err error) {
	var answers models.AnswerContext
	err = readJSONFile(args[0], &answers)
	if err != nil {
		return err
	}

	registry := scoring.DefaultRegistry()
	report := BuildScoreReport(scoring.NewEngine(registry), answers)

	if getJSONOutput() {
		err = writeJSON(cmd.OutOrStdout(), report)
		return err
	}
	err = RenderScore(cmd.OutOrStdout(), registry.Levels(), report)
	return err
}
