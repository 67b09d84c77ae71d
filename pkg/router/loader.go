package router

import (
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// Registry is a Loader backed by an explicit map from route files to
// handlers. Keys are slash-separated paths relative to the root directory,
// e.g. "index.js" or "test-1/other.js".
type Registry struct {
	handlers map[string]http.Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]http.Handler)}
}

// Handle registers h for the route file file.
func (r *Registry) Handle(file string, h http.Handler) *Registry {
	r.handlers[registryKey(file)] = h
	return r
}

// HandleFunc registers f for the route file file.
func (r *Registry) HandleFunc(file string, f http.HandlerFunc) *Registry {
	return r.Handle(file, f)
}

// Len returns the number of registered files.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Load implements Loader.
func (r *Registry) Load(route DiscoveredRoute) (http.Handler, error) {
	h, ok := r.handlers[registryKey(route.RelPath)]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrHandlerNotFound, route.RelPath)
	}
	return h, nil
}

func registryKey(file string) string {
	file = strings.ReplaceAll(filepath.ToSlash(file), `\`, "/")
	return strings.TrimPrefix(path.Clean("/"+file), "/")
}

// FileServer is a Loader whose handlers serve the route file itself.
// It is mainly useful for inspecting a route tree over HTTP.
type FileServer struct {
	fsys fs.FS
}

// NewFileServer creates a loader serving files from fsys, which must be
// rooted at the scanned root directory.
func NewFileServer(fsys fs.FS) *FileServer {
	return &FileServer{fsys: fsys}
}

// Load implements Loader.
func (f *FileServer) Load(route DiscoveredRoute) (http.Handler, error) {
	name := route.RelPath
	info, err := fs.Stat(f.fsys, name)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q", ErrIrregularEntry, route.SourceFile)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, f.fsys, name)
	}), nil
}
