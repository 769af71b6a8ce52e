// Package cli implements questctl, the offline companion to the quest workers.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quest-workers/internal/common/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var jsonOutput bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "questctl",
	Short: "Score quest answers and match project templates offline",
	Long: `questctl runs the quest scoring engine and template matcher against local
files, and manages the template library used by the match-templates worker.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a report")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is configs/config.yaml)")
}

func getJSONOutput() (result bool) {
	result = jsonOutput
	return result
}

func getConfigFile() (result string) {
	result = configFile
	return result
}

// loadConfig reads --config when given, otherwise the default search path.
func loadConfig() (cfg *config.Config, err error) {
	if getConfigFile() != "" {
		cfg, err = config.LoadFromFile(getConfigFile())
		return cfg, err
	}
	cfg, err = config.Load()
	return cfg, err
}

func readJSONFile(path string, target interface{}) (err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", path, err)
		return err
	}

	err = json.Unmarshal(data, target)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", path, err)
		return err
	}
	return err
}

func writeJSON(w io.Writer, value interface{}) (err error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err = enc.Encode(value)
	return err
}
