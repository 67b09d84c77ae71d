package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/routemount/internal/config"
	"github.com/vango-dev/routemount/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		rf     routeFlags
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a routemount config file",
		Long: `Write a routemount config file with default settings, overridden by
any route flags given, and create the routes directory if it is missing.

Examples:
  routemount init
  routemount init site --format yaml
  routemount init --root ./handlers --filter .route.js`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, &rf, format, force)
		},
	}

	rf.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "json", "Config format: json or yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, rf *routeFlags, format string, force bool) error {
	var name string
	switch format {
	case "json":
		name = config.ConfigFileName
	case "yaml", "yml":
		name = config.YAMLConfigFileName
	default:
		return errors.Newf(errors.CategoryCLI, "unknown format %q", format).
			WithSuggestion("Use json or yaml")
	}

	if config.Exists(dir) && !force {
		return errors.New("E106").WithPath(dir)
	}

	cfg := config.New()
	rf.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E100").WithPath(dir).Wrap(err)
	}
	path := filepath.Join(dir, name)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	w := cmd.ErrOrStderr()
	success(w, "Wrote %s", path)

	if !cfg.HasS3() {
		root := cfg.Routes.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(dir, root)
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			return fmt.Errorf("creating routes directory: %w", err)
		}
		info(w, "Routes directory: %s", root)
	}
	return nil
}
