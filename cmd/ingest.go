package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hdtinh57/smartdocqa/internal/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-glob>...",
	Short: "Ingest documents into the vector store",
	Long: `Extracts text from the given documents (images or PDFs), chunks and
embeds it, and stores the chunks for retrieval. Arguments may be file
paths or glob patterns with ** support. Documents that were already
ingested are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths, err := expandArgs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files match the given patterns")
		}

		p, _, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		var bar *progressbar.ProgressBar
		if len(paths) > 1 {
			bar = progressbar.NewOptions(len(paths),
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		var ingested, skipped, failed int
		for _, path := range paths {
			if bar != nil {
				bar.Describe(filepath.Base(path))
			}

			result, err := p.Ingest(ctx, path, "")
			switch {
			case err != nil:
				failed++
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			case result.Status == pipeline.StatusFailed:
				failed++
				fmt.Fprintf(os.Stderr, "Error: %s: %s\n", path, result.Reason)
			case result.Status == pipeline.StatusSkipped:
				skipped++
				if verbose {
					fmt.Fprintf(os.Stderr, "Skipped %s: %s\n", result.Source, result.Reason)
				}
			default:
				ingested++
				if verbose {
					fmt.Fprintf(os.Stderr, "Ingested %s (%d chunks)\n", result.Source, result.ChunkCount)
				}
			}

			if bar != nil {
				bar.Add(1)
			}
		}
		if bar != nil {
			bar.Finish()
		}

		fmt.Printf("Done: %d ingested, %d skipped, %d failed\n", ingested, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d document(s) failed", failed)
		}
		return nil
	},
}

// expandArgs resolves each argument as a literal path or a glob pattern.
func expandArgs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			if !seen[arg] {
				seen[arg] = true
				paths = append(paths, arg)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(filepath.ToSlash(arg))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
