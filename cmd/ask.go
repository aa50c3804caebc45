package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askSources []string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the most relevant chunks for the question and generates an
answer grounded in them. Use --sources to restrict the answer to
specific documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		p, _, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		answer, err := p.Ask(ctx, question, askSources)
		if err != nil {
			return err
		}

		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringSliceVar(&askSources, "sources", nil, "restrict the answer to these source names")
	rootCmd.AddCommand(askCmd)
}
