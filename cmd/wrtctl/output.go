package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lzjever/mbos-wrt/internal/api"
	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/infra/provision"
	"github.com/lzjever/mbos-wrt/internal/infra/rpc"
)

func printResult(v interface{}) {
	if output == "json" {
		json.NewEncoder(os.Stdout).Encode(v)
		return
	}
	printTable(v)
}

func printTable(v interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch data := v.(type) {
	case []core.Workspace:
		if len(data) == 0 {
			fmt.Println("No workspaces found.")
			return
		}
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDEFAULT ENV")
		for _, ws := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ws.ID, ws.Config.Name, ws.Status, ws.Config.DefaultEnv)
		}
	case api.WorkspaceResponse:
		fmt.Fprintf(w, "ID:\t%s\n", data.ID)
		fmt.Fprintf(w, "Name:\t%s\n", data.Config.Name)
		fmt.Fprintf(w, "Status:\t%s\n", data.Status)
		fmt.Fprintf(w, "Default env:\t%s\n", data.Config.DefaultEnv)
		fmt.Fprintf(w, "Projects root:\t%s\n", data.ProjectsRoot)
	case *rpc.ProvisionResponse:
		fmt.Fprintln(w, "KIND\tNAME\tORIGINAL NAME\tWORKSPACE")
		for _, p := range data.Pods {
			fmt.Fprintf(w, "pod\t%s\t%s\t%s\n", p.Name, p.Labels[provision.OriginalNameLabel], p.Labels[provision.WorkspaceIDLabel])
		}
		for _, r := range data.Routes {
			fmt.Fprintf(w, "route\t%s\t%s\t%s\n", r.Name, r.Labels[provision.OriginalNameLabel], r.Labels[provision.WorkspaceIDLabel])
		}
	default:
		json.NewEncoder(os.Stdout).Encode(v)
	}
	w.Flush()
}
