// ABOUTME: Root command definition and CLI setup
// ABOUTME: Handles the global config flag and shared startup helpers
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/db"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "vox",
	Short: "Audio recording manager",
	Long:  `Vox watches a directory for audio recordings, transcribes them with whisper, and makes everything searchable.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file")
}

// configPath resolves the active config file location.
func configPath() string {
	if configFlag != "" {
		return configFlag
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file, warning rather than failing when it
// is malformed.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return &cfg
}

// openDatabase opens the metadata database under the storage root.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	database, err := db.InitDB(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
