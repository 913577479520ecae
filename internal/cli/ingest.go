// ABOUTME: Ingest command for one-shot imports
// ABOUTME: Imports named files, or scans the monitored directory
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Import audio files",
	Long:  `Import the named audio files into managed storage, or scan the monitored directory when no files are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		logger := newLogger()

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		importer := ingest.NewImporter(database, cfg, logger, nil)

		if len(args) == 0 {
			n, err := importer.Scan(cmd.Context())
			if err != nil {
				return err
			}
			color.Green("Imported %d file(s) from %s", n, cfg.MonitoredDirectory)
			return nil
		}

		for _, path := range args {
			id, err := importer.ImportFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			color.Green("Imported %s (recording %d)", path, id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
