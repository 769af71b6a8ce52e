package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quest-workers/internal/answers"
	"quest-workers/internal/common/config"
	"quest-workers/internal/common/database"
	"quest-workers/internal/common/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Manage cached project answers",
}

//nolint:gochecknoglobals // Cobra boilerplate
var answersInvalidateCmd = &cobra.Command{
	Use:   "invalidate <project-id>...",
	Short: "Drop cached answers so the next score reads Postgres",
	Long: `Deletes the Redis cache entry of each project so the evaluate-project-score
worker reloads its answers from Postgres. Run it after answers are edited
outside the wizard, or wire the same call into whatever writes
project_answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswersInvalidate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(answersCmd)
	answersCmd.AddCommand(answersInvalidateCmd)
}

func runAnswersInvalidate(cmd *cobra.Command, args []string) (err error) {
	var cfg *config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	log := logger.NewStructured(cfg.Logging.Level, "console")
	store := answers.NewStore(nil, rdb.Client, config.Seconds(cfg.Answers.CacheTTL), log)

	var cleared int
	cleared, err = invalidateAnswers(ctx, store, args)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared cached answers for %d projects\n", cleared)
	return err
}

// invalidator is satisfied by *answers.Store.
type invalidator interface {
	Invalidate(ctx context.Context, projectID string) error
}

func invalidateAnswers(ctx context.Context, store invalidator, projectIDs []string) (cleared int, err error) {
	for _, id := range projectIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			err = fmt.Errorf("project id must not be blank")
			return cleared, err
		}
		err = store.Invalidate(ctx, id)
		if err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, err
}
