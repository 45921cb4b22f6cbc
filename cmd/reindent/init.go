package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reindent/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default reindent.toml",
	Long: `Write a reindent.toml holding the built-in options into dir (default: the
current directory). The directory is created when missing; an existing
reindent.toml is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if err := project.DefaultConfig().Encode(manifestPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("already initialized: %s exists", manifestPath)
		}
		return fmt.Errorf("failed to write %s: %w", project.ManifestName, err)
	}

	rel := manifestPath
	if wd, err := os.Getwd(); err == nil {
		if r, relErr := filepath.Rel(wd, manifestPath); relErr == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", rel)
	return nil
}
