// ABOUTME: Search command for full-text queries over transcripts
// ABOUTME: Renders highlighted excerpts in the terminal or JSON
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/search"
)

var (
	searchPage       int
	searchPerPage    int
	searchJSONOutput bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recordings",
	Long:  `Full-text search across recording filenames and transcripts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if !cfg.FTSEnabled {
			return fmt.Errorf("full-text search is disabled in the config")
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		idx := search.NewIndex(database)
		engine := search.NewEngine(idx, cfg.ItemsPerPage, cfg.MaxPerPage, cfg.ExcerptLength)

		perPage := searchPerPage
		if perPage == 0 {
			perPage = engine.DefaultPerPage()
		}
		page, err := engine.Search(args[0], searchPage, perPage)
		if err != nil {
			return err
		}

		if searchJSONOutput {
			data, err := json.MarshalIndent(page, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if page.Total == 0 {
			fmt.Printf("No recordings match %q\n", args[0])
			return nil
		}

		fmt.Printf("%d recording(s) match %q (page %d of %d)\n\n", page.Total, args[0], page.PageNum, page.Pages)
		highlight := color.New(color.FgYellow, color.Bold)
		for _, result := range page.Results {
			color.Cyan("#%d %s (score %.2f)", result.ID, result.OriginalFilename, result.RelevanceScore)
			if result.HighlightedFilename != "" {
				fmt.Println("  filename: " + renderMarks(result.HighlightedFilename, highlight))
			}
			fmt.Println("  " + renderMarks(result.Excerpt, highlight))
			fmt.Println()
		}

		return nil
	},
}

// renderMarks converts <mark> spans into terminal colors.
func renderMarks(excerpt string, highlight *color.Color) string {
	var sb strings.Builder
	rest := excerpt
	for {
		open := strings.Index(rest, search.MarkOpen)
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:open])
		rest = rest[open+len(search.MarkOpen):]

		end := strings.Index(rest, search.MarkClose)
		if end < 0 {
			sb.WriteString(highlight.Sprint(rest))
			break
		}
		sb.WriteString(highlight.Sprint(rest[:end]))
		rest = rest[end+len(search.MarkClose):]
	}
	return sb.String()
}

func init() {
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Result page")
	searchCmd.Flags().IntVar(&searchPerPage, "per-page", 0, "Results per page")
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json", false, "Output as JSON")
	rootCmd.AddCommand(searchCmd)
}
