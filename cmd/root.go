package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "smartdocqa",
	Short: "Document question answering with OCR, embeddings and retrieval",
	Long: `Smart Doc QA ingests scanned documents and PDFs through OCR, chunks and
embeds the extracted text into a vector store, and answers natural
language questions grounded in the retrieved passages. It runs as a CLI,
an HTTP server, or an MCP server for AI agents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "docqa.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
