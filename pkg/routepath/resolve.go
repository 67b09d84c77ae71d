package routepath

import (
	"path"
	"path/filepath"
	"strings"
)

// Resolver derives route paths from the location of route files under a
// normalized root directory.
//
// A Resolver holds no I/O state; Resolve is a pure function of its inputs.
type Resolver struct {
	root      string
	basePath  string
	filter    string
	extension string
}

// NewResolver creates a resolver.
//
// root must already be normalized (see NormalizeRoot); basePath is passed
// through NormalizeBasePath. filter is the substring a filename must contain
// and extension is the source-file extension stripped from derived names.
func NewResolver(root, basePath, filter, extension string) *Resolver {
	return &Resolver{
		root:      root,
		basePath:  NormalizeBasePath(basePath),
		filter:    filter,
		extension: extension,
	}
}

// Root returns the normalized root directory.
func (r *Resolver) Root() string {
	return r.root
}

// BasePath returns the normalized base path.
func (r *Resolver) BasePath() string {
	return r.basePath
}

// Resolve converts the path of a discovered file into a route path.
//
// The second return value is false when the file does not qualify: its name
// does not contain the filter, or nothing is left of the name once the
// filter and extension are removed.
//
// Examples (root "/srv/routes", filter ".js"):
//
//	/srv/routes/index.js         → /
//	/srv/routes/other.js         → /other
//	/srv/routes/users/index.js   → /users/
//	/srv/routes/users/show.js    → /users/show
func (r *Resolver) Resolve(filePath string) (string, bool) {
	rel := filePath
	if strings.HasPrefix(rel, r.root) {
		rel = rel[len(r.root):]
	}
	rel = toSlash(rel)

	dir, filename := path.Split(rel)
	requestPath := strings.TrimSuffix(dir, "/")
	if requestPath != "" && !strings.HasPrefix(requestPath, "/") {
		requestPath = "/" + requestPath
	}

	name, ok := r.NamePart(filename)
	if !ok {
		return "", false
	}

	if IsIndex(name) {
		name = ""
	}

	return r.basePath + requestPath + "/" + name, true
}

// NamePart applies the filter to a bare filename and returns the remaining
// route segment. The filter must occur in filename; its first occurrence is
// removed, then a trailing source extension if one is still present.
func (r *Resolver) NamePart(filename string) (string, bool) {
	if !strings.Contains(filename, r.filter) {
		return "", false
	}

	name := strings.Replace(filename, r.filter, "", 1)
	if r.extension != "" {
		name = strings.TrimSuffix(name, r.extension)
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// IsIndex reports whether a filtered name denotes a directory index.
func IsIndex(name string) bool {
	return strings.ToLower(name) == "index"
}

// NormalizeBasePath trims surrounding whitespace and trailing slashes and
// ensures a non-empty result starts with "/".
//
//	""             → ""
//	"/"            → ""
//	"customPath"   → "/customPath"
//	"/customPath/" → "/customPath"
func NormalizeBasePath(basePath string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return basePath
}

// NormalizeRoot anchors rootDir on baseDir and cleans the result, so that
// "test/sunny-day", "./test/sunny-day" and "test/sunny-day/" are the same
// root. An absolute rootDir is used as is.
func NormalizeRoot(baseDir, rootDir string) string {
	rootDir = strings.TrimSpace(rootDir)
	if rootDir == "" {
		rootDir = "."
	}
	if filepath.IsAbs(rootDir) || baseDir == "" {
		return filepath.Clean(rootDir)
	}
	return filepath.Join(baseDir, rootDir)
}

// toSlash normalizes separators regardless of host convention.
func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
