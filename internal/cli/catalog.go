package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quest-workers/internal/catalog"
	"quest-workers/internal/common/config"
	"quest-workers/internal/common/database"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/models"
	"quest-workers/pkg/library"
)

//nolint:gochecknoglobals // Cobra boilerplate
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and import template libraries",
}

//nolint:gochecknoglobals // Cobra boilerplate
var catalogValidateCmd = &cobra.Command{
	Use:   "validate <library-file>",
	Short: "Check a template library against its schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidate,
}

//nolint:gochecknoglobals // Cobra boilerplate
var catalogImportCmd = &cobra.Command{
	Use:   "import <library-file>",
	Short: "Upsert library templates into the Postgres templates table",
	Long: `Validates a template library and upserts every template into the templates
table in one transaction. Connection settings come from --config or
configs/config.yaml plus environment overrides.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) (err error) {
	var lib *library.Library
	lib, err = library.Load(args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid, version %s, %d templates (themes: %s)\n",
		args[0], lib.Version, len(lib.Templates), strings.Join(lib.Themes(), ", "))
	return err
}

func runCatalogImport(cmd *cobra.Command, args []string) (err error) {
	var lib *library.Library
	lib, err = library.Load(args[0])
	if err != nil {
		return err
	}

	var cfg *config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	var pg *database.PostgresClient
	pg, err = database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	log := logger.NewStructured(cfg.Logging.Level, "console")
	err = importLibrary(ctx, catalog.NewPostgresSource(pg, nil, 0, log), lib)
	if err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	cached := catalog.NewPostgresSource(pg, rdb, time.Second, log)
	if invErr := cached.Invalidate(ctx); invErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: template cache not cleared: %v\n", invErr)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d templates from %s\n", len(lib.Templates), args[0])
	return err
}

// upserter is satisfied by *catalog.PostgresSource.
type upserter interface {
	Upsert(ctx context.Context, templates []models.Template) error
}

func importLibrary(ctx context.Context, dst upserter, lib *library.Library) (err error) {
	if len(lib.Templates) == 0 {
		err = fmt.Errorf("library has no templates")
		return err
	}
	err = dst.Upsert(ctx, lib.Templates)
	if err != nil {
		err = fmt.Errorf("failed to import templates: %w", err)
		return err
	}
	return err
}
