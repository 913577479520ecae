// ABOUTME: List command for displaying recordings
// ABOUTME: Supports table and JSON output with date filters
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/db"
)

var (
	listLimit      int
	listSince      string
	listUntil      string
	listJSONOutput bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recordings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		params := db.ListParams{Page: 1, PerPage: listLimit}
		if listSince != "" {
			since, err := dateparse.ParseAny(listSince)
			if err != nil {
				return fmt.Errorf("invalid --since date: %w", err)
			}
			params.Since = &since
		}
		if listUntil != "" {
			until, err := dateparse.ParseAny(listUntil)
			if err != nil {
				return fmt.Errorf("invalid --until date: %w", err)
			}
			params.Until = &until
		}

		recordings, total, err := db.ListRecordings(database, params)
		if err != nil {
			return fmt.Errorf("failed to list recordings: %w", err)
		}

		if listJSONOutput {
			data, err := json.MarshalIndent(recordings, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		// Print table
		fmt.Println("ID\tImported\t\tStatus\t\tFilename")
		fmt.Println("--\t--------\t\t------\t\t--------")
		for _, rec := range recordings {
			timestamp := rec.ImportTimestamp.Format("2006-01-02 15:04:05")
			fmt.Printf("%d\t%s\t%s\t%s\n", rec.ID, timestamp, rec.TranscriptStatus, rec.OriginalFilename)
		}
		fmt.Printf("\n%d recording(s) total\n", total)

		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Number of recordings to show")
	listCmd.Flags().StringVar(&listSince, "since", "", "Start date (natural language or ISO)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "End date (natural language or ISO)")
	listCmd.Flags().BoolVar(&listJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
