// Package router implements directory-based route mounting.
//
// The router provides:
//   - Route discovery from a directory tree of handler files
//   - Path derivation with index files, base paths and filename filters
//   - Registration of discovered routes with an HTTP router (mount mode)
//   - Route listing without registration (scan mode)
//   - Optional gitignore-style exclusion via a .routeignore file
//
// # File Structure Convention
//
// Routes are defined by files under the root directory (default ./routes).
// With the default filter ".js":
//
//	routes/
//	├── index.js              → /
//	├── other.js              → /other
//	├── test-1/
//	│   ├── index.js          → /test-1/
//	│   └── test-1.1/
//	│       ├── index.js      → /test-1/test-1.1/
//	│       └── other.js      → /test-1/test-1.1/other
//	└── test-2/
//	    └── controller-1.js   → /test-2/controller-1
//
// A directory index keeps its trailing slash. A base path such as
// "/customPath" prefixes every route.
//
// # Filters
//
// The filter is a substring a filename must contain. It is removed from the
// name, followed by the source extension if one is still present, so with
// filter ".route.js" only "users.route.js" qualifies and maps to /users.
// Index files obey the filter like any other file: "index.js" is skipped
// under ".route.js" while "index.route.js" maps to the directory.
//
// # Handlers
//
// Files are never executed. In mount mode a Loader turns each discovered
// file into an http.Handler:
//
//	reg := router.NewRegistry().
//	    HandleFunc("index.js", home).
//	    HandleFunc("users/show.js", showUser)
//
//	r := chi.NewRouter()
//	err := router.Mount(ctx, router.NewChiRouter(r), reg, router.Spec{
//	    BaseDir:  wd,
//	    BasePath: "/api",
//	})
//
// # Usage
//
//	routes, err := router.Scan(ctx, router.Spec{BaseDir: wd, RootDir: "routes"})
//	for _, route := range routes {
//	    fmt.Println(route.Path, route.SourceFile)
//	}
package router
