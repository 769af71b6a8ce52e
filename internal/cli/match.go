package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"quest-workers/internal/matching"
	"quest-workers/internal/models"
	"quest-workers/pkg/library"
)

//nolint:gochecknoglobals // Cobra boilerplate
var libraryPath string

//nolint:gochecknoglobals // Cobra boilerplate
var matchLimit int

//nolint:gochecknoglobals // Cobra boilerplate
var matchCmd = &cobra.Command{
	Use:   "match <context.json>",
	Short: "Rank library templates against a project context",
	Long: `Reads a project context ({"theme", "geography", "targetGroups"}) and ranks
every template of a library file against it, with explanations.

Examples:
  questctl match context.json --library templates.yaml
  questctl match context.json --library templates.json --limit 3 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVar(&libraryPath, "library", "", "template library file (JSON or YAML)")
	matchCmd.Flags().IntVar(&matchLimit, "limit", 0, "show only the first N matches (0 shows all)")
}

func runMatch(cmd *cobra.Command, args []string) (err error) {
	if libraryPath == "" {
		err = errors.New("--library is required")
		return err
	}
	if matchLimit < 0 {
		err = errors.New("--limit must not be negative")
		return err
	}

	var user models.UserMatchContext
	err = readJSONFile(args[0], &user)
	if err != nil {
		return err
	}

	var lib *library.Library
	lib, err = library.Load(libraryPath)
	if err != nil {
		return err
	}

	results := matching.NewMatcher().Match(&user, lib.Templates)
	report := MatchReport{
		Matches:        matching.Top(results, matchLimit),
		CandidateCount: len(lib.Templates),
	}

	if getJSONOutput() {
		err = writeJSON(cmd.OutOrStdout(), report)
		return err
	}
	err = RenderMatches(cmd.OutOrStdout(), report)
	return err
}
