package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wrt/internal/api"
	"github.com/lzjever/mbos-wrt/internal/runtimeclient"
)

var (
	restoreFromSnapshot bool
	apiToken            string
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Workspace runtime commands",
}

var wsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the workspace tracked by the agent",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var ws api.WorkspaceResponse
		if err := NewClient(agentURL).Get("/v1/workspace", &ws); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(ws)
	},
}

var wsStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the workspace with its default environment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req := api.StartWorkspaceRequest{RestoreFromSnapshot: restoreFromSnapshot}
		var resp map[string]string
		if err := NewClient(agentURL).Post("/v1/workspace:start", req, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Start of workspace %s accepted.\n", resp["workspace_id"])
	},
}

var wsStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the workspace",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var resp map[string]string
		if err := NewClient(agentURL).Post("/v1/workspace:stop", nil, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Stop of workspace %s requested.\n", resp["workspace_id"])
	},
}

var wsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces known to the master",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		c := runtimeclient.New(apiURL, runtimeclient.Options{Token: apiToken}, zap.NewNop())
		list, err := c.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(list)
	},
}

func init() {
	wsStartCmd.Flags().BoolVar(&restoreFromSnapshot, "restore", false, "Restore the workspace from its latest snapshot")
	wsListCmd.Flags().StringVar(&apiToken, "token", os.Getenv("WRT_API_TOKEN"), "Bearer token for the master API")
	workspaceCmd.AddCommand(wsGetCmd, wsStartCmd, wsStopCmd, wsListCmd)
	rootCmd.AddCommand(workspaceCmd)
}
