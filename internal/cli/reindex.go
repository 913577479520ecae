// ABOUTME: Reindex command: rebuild the search index from the recordings table
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/search"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index",
	Long:  `Drop and repopulate the full-text index from the recordings table. Use this after restoring a database or if search results look stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		idx := search.NewIndex(database)
		if err := idx.Rebuild(); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}

		color.Green("Search index rebuilt")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
