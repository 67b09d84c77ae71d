package router

import (
	"net/http"
	"time"
)

const (
	// DefaultRootDir is the route directory used when Spec.RootDir is empty.
	DefaultRootDir = "./routes"

	// DefaultBasePath is the base path used when Spec.BasePath is empty.
	DefaultBasePath = ""

	// DefaultFilter is the filename filter used when Spec.Filter is empty.
	DefaultFilter = ".js"

	// DefaultExtension is the source-file extension of route files.
	DefaultExtension = ".js"

	// DefaultIgnoreFile is the ignore-rules file looked up in the root directory.
	DefaultIgnoreFile = ".routeignore"

	// NoIgnoreFile disables ignore-rule lookup when used as Spec.IgnoreFile.
	NoIgnoreFile = "-"
)

// Spec describes one route tree to scan or mount.
type Spec struct {
	// BaseDir anchors a relative RootDir. Callers usually pass the working
	// directory. Empty leaves a relative RootDir unanchored.
	BaseDir string `json:"baseDir,omitempty" yaml:"baseDir,omitempty"`

	// RootDir is the directory holding route files (default: "./routes").
	RootDir string `json:"rootDir,omitempty" yaml:"rootDir,omitempty"`

	// BasePath prefixes every derived route (default: "").
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`

	// Filter is the substring a route filename must contain (default: ".js").
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`

	// Extension is the source-file extension (default: ".js").
	Extension string `json:"extension,omitempty" yaml:"extension,omitempty"`

	// IgnoreFile names the ignore-rules file in RootDir (default: ".routeignore").
	IgnoreFile string `json:"ignoreFile,omitempty" yaml:"ignoreFile,omitempty"`
}

// withDefaults returns a copy of s with empty fields set to their defaults.
func (s Spec) withDefaults() Spec {
	if s.RootDir == "" {
		s.RootDir = DefaultRootDir
	}
	if s.Filter == "" {
		s.Filter = DefaultFilter
	}
	if s.Extension == "" {
		s.Extension = DefaultExtension
	}
	if s.IgnoreFile == "" {
		s.IgnoreFile = DefaultIgnoreFile
	}
	return s
}

// DiscoveredRoute is a route found by the scanner.
type DiscoveredRoute struct {
	// Path is the derived route path (e.g., "/test-1/other").
	Path string `json:"path" yaml:"path"`

	// SourceFile is the location of the route file, prefixed by the root.
	SourceFile string `json:"sourceFile" yaml:"sourceFile"`

	// RelPath is the slash-separated file path relative to the root
	// (e.g., "test-1/other.js").
	RelPath string `json:"relPath" yaml:"relPath"`
}

// Loader converts a discovered route file into a request handler.
type Loader interface {
	Load(route DiscoveredRoute) (http.Handler, error)
}

// LoaderFunc is a function adapter for Loader.
type LoaderFunc func(route DiscoveredRoute) (http.Handler, error)

// Load implements Loader.
func (f LoaderFunc) Load(route DiscoveredRoute) (http.Handler, error) {
	return f(route)
}

// Decorator wraps a loaded handler before it is registered.
// path is the route path the handler is mounted on.
type Decorator func(path string, h http.Handler) http.Handler

// Observer receives scan and mount events, typically for metrics.
type Observer interface {
	// ScanCompleted is called once per traversal with the number of routes
	// produced and the error that ended it, if any.
	ScanCompleted(root string, routes int, duration time.Duration, err error)

	// RouteMounted is called after each registration in mount mode.
	RouteMounted(path string)
}
