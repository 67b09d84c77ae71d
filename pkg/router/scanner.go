package router

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/routemount/pkg/routepath"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for scan and mount spans.
const defaultTracerName = "routemount/router"

// Option configures a Scanner.
type Option func(*options)

type options struct {
	fsys           fs.FS
	logger         *slog.Logger
	observer       Observer
	decorators     []Decorator
	tracerProvider trace.TracerProvider
}

// WithFS scans fsys instead of the local directory named by Spec.RootDir.
// Spec.RootDir is then only a label: it prefixes SourceFile values and is
// not resolved against Spec.BaseDir.
func WithFS(fsys fs.FS) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithLogger sets the logger for traversal tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver sets an observer notified of scans and registrations.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithDecorators wraps every mounted handler, first decorator innermost.
func WithDecorators(decorators ...Decorator) Option {
	return func(o *options) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithTracerProvider sets the provider for scan and mount spans.
// Default: the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// Scanner walks a route directory and derives a route for every
// qualifying file.
type Scanner struct {
	spec       Spec
	root       string
	fsys       fs.FS
	join       func(rel string) string
	resolver   *routepath.Resolver
	logger     *slog.Logger
	observer   Observer
	decorators []Decorator
	tracer     trace.Tracer
}

// NewScanner creates a scanner for spec. It performs no I/O.
func NewScanner(spec Spec, opts ...Option) *Scanner {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	spec = spec.withDefaults()
	s := &Scanner{
		spec:       spec,
		observer:   o.observer,
		decorators: o.decorators,
		logger:     o.logger,
		fsys:       o.fsys,
	}

	if s.fsys == nil {
		s.root = routepath.NormalizeRoot(spec.BaseDir, spec.RootDir)
		s.fsys = os.DirFS(s.root)
		s.join = func(rel string) string {
			return s.root + string(filepath.Separator) + filepath.FromSlash(rel)
		}
	} else {
		s.root = strings.TrimRight(strings.TrimSpace(spec.RootDir), "/")
		s.join = func(rel string) string {
			return s.root + "/" + rel
		}
	}

	if s.logger == nil {
		s.logger = slog.Default().With("component", "router")
	}

	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	s.tracer = tp.Tracer(defaultTracerName)

	s.resolver = routepath.NewResolver(s.root, spec.BasePath, spec.Filter, spec.Extension)
	return s
}

// Root returns the normalized root directory.
func (s *Scanner) Root() string {
	return s.root
}

// Spec returns the scanner's Spec with defaults applied.
func (s *Scanner) Spec() Spec {
	return s.spec
}

// Scan walks the root directory and returns every discovered route in
// traversal order: depth-first, entries of a directory in lexical order.
func (s *Scanner) Scan(ctx context.Context) ([]DiscoveredRoute, error) {
	ctx, span := s.startSpan(ctx, "router.Scan")
	defer span.End()

	start := time.Now()
	var routes []DiscoveredRoute
	err := s.walk(ctx, func(route DiscoveredRoute) error {
		routes = append(routes, route)
		return nil
	})
	s.finish(span, start, len(routes), err)

	if err != nil {
		return nil, err
	}
	return routes, nil
}

// walk visits every qualifying route file under the root. Symlinks are
// followed: a link to a file is visited under the link's name and a link to
// a directory is walked as if the directory lived at the link.
func (s *Scanner) walk(ctx context.Context, visit func(DiscoveredRoute) error) error {
	ignore, err := loadIgnoreRules(s.fsys, s.spec.IgnoreFile)
	if err != nil {
		return err
	}

	var walkFn fs.WalkDirFunc
	walkFn = func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if rel != "." && ignore.excluded(rel, d.IsDir()) {
			s.logger.Debug("skipping entry", "path", s.join(rel), "reason", "ignored")
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			if rel == "." {
				s.logger.Debug("mounting dir", "path", s.root)
			} else {
				s.logger.Debug("mounting dir", "path", s.join(rel))
			}
			return nil

		case d.Type().IsRegular():
			if !hasExtension(d.Name(), s.spec.Extension) {
				return nil
			}
			return s.visitFile(rel, visit)

		case d.Type()&fs.ModeSymlink != 0:
			info, err := fs.Stat(s.fsys, rel)
			if err != nil {
				return fmt.Errorf("%w: %q: %v", ErrIrregularEntry, s.join(rel), err)
			}
			switch {
			case info.IsDir():
				if err := s.checkCycle(rel, info); err != nil {
					return err
				}
				if ignore.excluded(rel, true) {
					s.logger.Debug("skipping entry", "path", s.join(rel), "reason", "ignored")
					return nil
				}
				return fs.WalkDir(s.fsys, rel, walkFn)
			case info.Mode().IsRegular():
				if !hasExtension(d.Name(), s.spec.Extension) {
					return nil
				}
				return s.visitFile(rel, visit)
			}
		}
		return fmt.Errorf("%w: %q", ErrIrregularEntry, s.join(rel))
	}

	return fs.WalkDir(s.fsys, ".", walkFn)
}

// checkCycle fails when the directory a symlink at rel points to is one of
// rel's own ancestors.
func (s *Scanner) checkCycle(rel string, target fs.FileInfo) error {
	for dir := path.Dir(rel); ; dir = path.Dir(dir) {
		info, err := fs.Stat(s.fsys, dir)
		if err == nil && os.SameFile(info, target) {
			return fmt.Errorf("%w: %q links to its ancestor %q", ErrIrregularEntry, s.join(rel), s.join(dir))
		}
		if dir == "." {
			return nil
		}
	}
}

// visitFile resolves one candidate file and hands qualifying routes to visit.
func (s *Scanner) visitFile(rel string, visit func(DiscoveredRoute) error) error {
	source := s.join(rel)
	s.logger.Debug("mounting file", "path", source)

	routePath, ok := s.resolver.Resolve(source)
	if !ok {
		s.logger.Debug("skipping file", "path", source, "reason", "filter", "filter", s.spec.Filter)
		return nil
	}

	return visit(DiscoveredRoute{
		Path:       routePath,
		SourceFile: source,
		RelPath:    rel,
	})
}

func (s *Scanner) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("routemount.root", s.root),
			attribute.String("routemount.base_path", s.resolver.BasePath()),
			attribute.String("routemount.filter", s.spec.Filter),
		),
	)
}

// finish records the outcome of a traversal on the span and the observer.
func (s *Scanner) finish(span trace.Span, start time.Time, routes int, err error) {
	span.SetAttributes(attribute.Int("routemount.routes", routes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if s.observer != nil {
		s.observer.ScanCompleted(s.root, routes, time.Since(start), err)
	}
}

// hasExtension reports whether name ends in ext, ignoring case.
func hasExtension(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

// Scan scans the tree described by spec.
func Scan(ctx context.Context, spec Spec, opts ...Option) ([]DiscoveredRoute, error) {
	return NewScanner(spec, opts...).Scan(ctx)
}
