package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/hdtinh57/smartdocqa/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and question-answering tools for AI agents like Claude Code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cfg, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		mcpserver.Version = Version

		// Stdout carries MCP protocol messages; status goes to stderr.
		fmt.Fprintf(os.Stderr, "smartdocqa MCP server started on stdio (data=%s)\n", cfg.DataDir)

		srv := mcpserver.NewServer(p)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
