package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/routemount/internal/errors"
	"github.com/vango-dev/routemount/pkg/router"
	"gopkg.in/yaml.v3"
)

func scanCmd(g *globalFlags) *cobra.Command {
	var (
		rf     routeFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the routes a tree would mount",
		Long: `Walk the route tree and print every route it produces, without
loading or serving anything.

Examples:
  routemount scan
  routemount scan --root ./routes --base-path /api
  routemount scan --filter .route.js --format json
  routemount scan --s3-bucket my-site --s3-prefix routes --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, &rf, format)
		},
	}

	rf.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "table", "Output format: table, json or yaml")

	return cmd
}

func runScan(cmd *cobra.Command, g *globalFlags, rf *routeFlags, format string) error {
	write, err := routeWriter(format)
	if err != nil {
		return err
	}

	cfg, baseDir, err := loadConfig(g.configPath)
	if err != nil {
		return err
	}
	rf.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	src, err := openSource(ctx, cfg, baseDir)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), g.verbose)
	opts := append([]router.Option{router.WithLogger(logger)}, src.opts...)

	routes, err := router.Scan(ctx, src.spec, opts...)
	if err != nil {
		return classify(err, src, "E200")
	}

	if err := write(cmd.OutOrStdout(), routes); err != nil {
		return err
	}
	if len(routes) == 0 {
		warn(cmd.ErrOrStderr(), "No routes found in %s", src.root)
		return nil
	}
	success(cmd.ErrOrStderr(), "%d routes in %s", len(routes), src.root)
	return nil
}

// routeWriter returns the printer for an output format.
func routeWriter(format string) (func(io.Writer, []router.DiscoveredRoute) error, error) {
	switch format {
	case "table", "":
		return writeTable, nil
	case "json":
		return writeJSON, nil
	case "yaml":
		return writeYAML, nil
	}
	return nil, errors.Newf(errors.CategoryCLI, "unknown format %q", format).
		WithSuggestion("Use table, json or yaml")
}

func writeTable(w io.Writer, routes []router.DiscoveredRoute) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tFILE")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\n", r.Path, r.SourceFile)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, routes []router.DiscoveredRoute) error {
	if routes == nil {
		routes = []router.DiscoveredRoute{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}

func writeYAML(w io.Writer, routes []router.DiscoveredRoute) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(routes); err != nil {
		return err
	}
	return enc.Close()
}
