package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchSources []string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the ingested documents without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, _, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		results, err := p.Search(ctx, strings.Join(args, " "), searchSources)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}

		for i, r := range results {
			fmt.Printf("--- Result %d: %s (chunk %d, score %.3f) ---\n%s\n\n", i+1, r.Source, r.ChunkIndex, r.Score, r.Text)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchSources, "sources", nil, "restrict the search to these source names")
	rootCmd.AddCommand(searchCmd)
}
