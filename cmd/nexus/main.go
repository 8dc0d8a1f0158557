package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "nexus",
		Short: "Multi-tenant bot hosting panel",
		Long:  "Nexus hosts tenant-owned bot processes: start/stop them over HTTP, inspect their output, and edit their workspace files.",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newUserCmd())
	return root
}
