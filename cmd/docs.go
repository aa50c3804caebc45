package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage ingested documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ingested documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, _, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		docs, err := p.ListDocuments(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents ingested yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tCHUNKS\tINGESTED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%d\t%s\n", d.Source, d.ChunkCount, d.IngestedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var docsShowCmd = &cobra.Command{
	Use:   "show <source>",
	Short: "Print the extracted text of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		text, err := p.DocumentOCR(args[0], false)
		if err != nil {
			return fmt.Errorf("no extracted text for %q", args[0])
		}
		fmt.Println(text)
		return nil
	},
}

var docsDeleteForce bool

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <source>",
	Short: "Delete a document and all its chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source := args[0]

		if !docsDeleteForce {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("Delete %q and all its chunks", source),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		p, _, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		if err := p.DeleteDocument(ctx, source); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", source)
		return nil
	},
}

func init() {
	docsDeleteCmd.Flags().BoolVarP(&docsDeleteForce, "force", "f", false, "delete without confirmation")
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}
