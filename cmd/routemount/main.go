package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vango-dev/routemount/internal/config"
	"github.com/vango-dev/routemount/internal/errors"
	"github.com/vango-dev/routemount/pkg/router"
	"github.com/vango-dev/routemount/pkg/s3fs"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "routemount",
		Short: "Mount a directory tree of route files as HTTP routes",
		Long: `routemount maps a directory of route files to URL paths.

Every file whose name contains the filter becomes a route: the directory
structure becomes the path, the filter and extension are dropped, and
index files answer for their directory.

  routes/index.js          → /
  routes/users/index.js    → /users/
  routes/users/profile.js  → /users/profile`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (default: routemount.json in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log every directory and file visited")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		scanCmd(g),
		serveCmd(g),
		initCmd(),
		errorsCmd(),
		versionCmd(),
	)

	return rootCmd
}

// newLogger returns a text logger on w. Debug lines are only shown with
// --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the file named by --config, or the project file found
// from the working directory upward. Without one it falls back to defaults
// anchored at the working directory. The second result is the directory a
// relative route root is resolved against.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, cfg.Dir(), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	root, err := config.FindProjectRoot(wd)
	if err != nil {
		return config.New(), wd, nil
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// routeFlags override the routes and s3 sections of the config file.
type routeFlags struct {
	root       string
	basePath   string
	filter     string
	ext        string
	ignoreFile string

	s3Bucket   string
	s3Prefix   string
	s3Region   string
	s3Endpoint string
	s3Profile  string
	s3Anon     bool
}

func (f *routeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.root, "root", "r", "", "Routes directory (default from config, else ./routes)")
	cmd.Flags().StringVarP(&f.basePath, "base-path", "b", "", "Prefix for every route")
	cmd.Flags().StringVarP(&f.filter, "filter", "f", "", "Substring route filenames must contain (default .js)")
	cmd.Flags().StringVar(&f.ext, "ext", "", "Route source-file extension (default .js)")
	cmd.Flags().StringVar(&f.ignoreFile, "ignore-file", "", `Ignore-rules file in the root ("-" to disable)`)

	cmd.Flags().StringVar(&f.s3Bucket, "s3-bucket", "", "Read the route tree from this S3 bucket")
	cmd.Flags().StringVar(&f.s3Prefix, "s3-prefix", "", "Key prefix of the route tree in the bucket")
	cmd.Flags().StringVar(&f.s3Region, "s3-region", "", "Bucket region")
	cmd.Flags().StringVar(&f.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().StringVar(&f.s3Profile, "s3-profile", "", "AWS shared config profile")
	cmd.Flags().BoolVar(&f.s3Anon, "s3-anonymous", false, "Send unsigned requests (public buckets)")
}

func (f *routeFlags) apply(cfg *config.Config) {
	if f.root != "" {
		cfg.Routes.Root = f.root
	}
	if f.basePath != "" {
		cfg.Routes.BasePath = f.basePath
	}
	if f.filter != "" {
		cfg.Routes.Filter = f.filter
	}
	if f.ext != "" {
		cfg.Routes.Extension = f.ext
	}
	if f.ignoreFile != "" {
		cfg.Routes.IgnoreFile = f.ignoreFile
	}
	if f.s3Bucket != "" {
		cfg.S3.Bucket = f.s3Bucket
	}
	if f.s3Prefix != "" {
		cfg.S3.Prefix = f.s3Prefix
	}
	if f.s3Region != "" {
		cfg.S3.Region = f.s3Region
	}
	if f.s3Endpoint != "" {
		cfg.S3.Endpoint = f.s3Endpoint
	}
	if f.s3Profile != "" {
		cfg.S3.Profile = f.s3Profile
	}
	if f.s3Anon {
		cfg.S3.Anonymous = true
	}
}

// source is a resolved route tree: the router.Spec to walk it with, the scanner
// options selecting its file system, and that file system for serving.
type source struct {
	spec router.Spec
	opts []router.Option
	fsys fs.FS
	root string
}

// openSource resolves the route tree named by cfg, local or in S3.
func openSource(ctx context.Context, cfg *config.Config, baseDir string) (*source, error) {
	spec := cfg.Spec(baseDir)

	if cfg.HasS3() {
		client, err := s3fs.NewClient(ctx, s3fs.ClientOptions{
			Region:    cfg.S3.Region,
			Profile:   cfg.S3.Profile,
			Endpoint:  cfg.S3.Endpoint,
			Anonymous: cfg.S3.Anonymous,
		})
		if err != nil {
			return nil, errors.New("E205").WithPath("s3://" + cfg.S3.Bucket).Wrap(err)
		}
		fsys := s3fs.New(client, cfg.S3.Bucket, cfg.S3.Prefix).WithContext(ctx)
		spec.RootDir = fsys.Label()
		return &source{
			spec: spec,
			opts: []router.Option{router.WithFS(fsys)},
			fsys: fsys,
			root: spec.RootDir,
		}, nil
	}

	root := router.NewScanner(spec).Root()
	return &source{
		spec: spec,
		fsys: os.DirFS(root),
		root: root,
	}, nil
}

// classify converts a library error into a coded CLI error.
func classify(err error, src *source, fallback string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}

	code := fallback
	switch {
	case stderrors.Is(err, router.ErrIrregularEntry):
		code = "E202"
	case stderrors.Is(err, router.ErrHandlerNotFound):
		code = "E301"
	case stderrors.Is(err, fs.ErrNotExist):
		code = "E201"
	case len(src.opts) > 0:
		code = "E204"
	}

	re := errors.FromError(err, code)
	if re.Path == "" {
		re = re.WithPath(src.root)
	}
	return re
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}
