package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	agentURL  string
	apiURL    string
	infraAddr string
	output    string
)

var rootCmd = &cobra.Command{
	Use:   "wrtctl",
	Short: "WRT CLI - workspace runtime command line tool",
	Long: `wrtctl drives the workspace runtime: the agent running next to a workspace,
the master runtime API, and the infrastructure provisioning service.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&agentURL, "agent-url", "http://localhost:8090", "WRT agent URL")
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "a", "http://localhost:8080/api", "Workspace master API URL")
	rootCmd.PersistentFlags().StringVar(&infraAddr, "infra-addr", "localhost:7070", "WRT infra gRPC address")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
}
