package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gqlmerge/internal/engine"
)

func newCacheCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the on-disk outcome cache used by --disk-cache",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "cache directory (default: user cache dir)")

	open := func() (*engine.DiskCache, error) {
		if dir != "" {
			return engine.OpenDiskCacheAt(dir)
		}
		return engine.OpenDiskCache("gqlmerge")
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := open()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove all cached merge outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := open()
			if err != nil {
				return err
			}
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clean cache: %w", err)
			}
			if !quiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "cleaned %s\n", cache.Dir())
			}
			return nil
		},
	})
	return cmd
}
