package main

import (
	"log"
	"os"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/pkg/adapters/loam"
	"github.com/aretw0/runcondition/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the evaluator as an MCP Server over Standard Input/Output.
Agents can call evaluate_causes, and list_conditions/get_condition for the
condition documents in --dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		conditions, err := loam.Open(dir)
		if err != nil {
			return err
		}

		gate := runcondition.New(
			runcondition.WithConditions(conditions),
			runcondition.WithLogger(logger),
		)
		srv := mcp.NewServer(gate, mcp.WithConditions(conditions), mcp.WithLogger(logger))

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
