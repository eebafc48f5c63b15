package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hxinfer/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default hxinfer.toml",
	Long: `Init writes hxinfer.toml with default check settings into dir (the current
directory when omitted) and creates the src directory next to it. An existing
config is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
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
	created, err := initProject(target)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		for _, path := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		}
	}
	return nil
}

// initProject writes the default config into dir and returns what it
// created.
func initProject(dir string) ([]string, error) {
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}

	configPath := filepath.Join(dir, project.ConfigName)
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", configPath)
	}
	cfg := project.Default()
	data, err := project.Encode(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	created := []string{configPath}

	for _, inc := range cfg.Sources.Include {
		src := filepath.Join(dir, filepath.FromSlash(inc))
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(src, 0o755); err != nil {
				return created, fmt.Errorf("failed to create %q: %w", src, err)
			}
			created = append(created, src)
		}
	}
	return created, nil
}
