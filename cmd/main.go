// jobmate-dashboard-service
//
// Data layer behind the job-search dashboard: fetches listings from the
// JSearch API, a backend proxy or a local fixture, caches them, and keeps the
// user's favorites. Served over HTTP (gin), with a gRPC health endpoint and
// an operator CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Job-search dashboard data service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dashboard-service %s\n", version)
		},
	})
	root.AddCommand(newServeCommand())
	root.AddCommand(newJobsCommand())
	root.AddCommand(newSectionsCommand())
	root.AddCommand(newFavoritesCommand())
	root.AddCommand(newCacheCommand())

	return root
}
