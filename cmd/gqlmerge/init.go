package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gqlmerge/internal/project"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create a gqlmerge.toml manifest",
		Long: `Create a starter gqlmerge.toml in [path] (default: the current directory).
A missing directory is created. An existing manifest is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	path, err := project.Init(target)
	if err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}
	return nil
}
