package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/routev1"
	"github.com/lzjever/mbos-wrt/internal/infra/rpc"
)

// Recipe is the YAML description of a workspace environment.
type Recipe struct {
	WorkspaceID string                        `json:"workspaceId,omitempty"`
	Environment provision.InternalEnvironment `json:"environment"`
	Pods        []corev1.Pod                  `json:"pods,omitempty"`
	Routes      []routev1.Route               `json:"routes,omitempty"`
}

func loadRecipe(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	var r Recipe
	if err := yaml.UnmarshalStrict(b, &r); err != nil {
		return nil, fmt.Errorf("parse recipe %s: %w", path, err)
	}
	return &r, nil
}

// provisionRequest builds the request for a recipe; a non-empty workspaceID overrides the recipe's.
func (r *Recipe) provisionRequest(workspaceID string, dryRun bool) rpc.ProvisionRequest {
	if workspaceID == "" {
		workspaceID = r.WorkspaceID
	}
	return rpc.ProvisionRequest{
		WorkspaceID: workspaceID,
		Environment: r.Environment,
		Pods:        r.Pods,
		Routes:      r.Routes,
		DryRun:      dryRun,
	}
}

var (
	recipeFile  string
	workspaceID string
	dryRun      bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Workspace environment provisioning commands",
}

var envProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision a workspace environment from a recipe",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		recipe, err := loadRecipe(recipeFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		c, err := rpc.NewClient(infraAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()
		resp, err := c.Provision(ctx, recipe.provisionRequest(workspaceID, dryRun))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp)
	},
}

var envTeardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Delete every provisioned resource of a workspace",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := rpc.NewClient(infraAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()
		if err := c.Teardown(ctx, workspaceID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Environment of workspace %s torn down.\n", workspaceID)
	},
}

func init() {
	envProvisionCmd.Flags().StringVarP(&recipeFile, "file", "f", "", "Recipe YAML file")
	envProvisionCmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace id (overrides the recipe)")
	envProvisionCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Rewrite resources without creating them")
	_ = envProvisionCmd.MarkFlagRequired("file")

	envTeardownCmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace id")
	_ = envTeardownCmd.MarkFlagRequired("workspace")

	envCmd.AddCommand(envProvisionCmd, envTeardownCmd)
	rootCmd.AddCommand(envCmd)
}
