package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"testing"
)

// echoLoader returns handlers that write the route file they were loaded from.
func echoLoader() LoaderFunc {
	return func(route DiscoveredRoute) (http.Handler, error) {
		rel := route.RelPath
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, rel)
		}), nil
	}
}

func sortedPaths(t *Table) []string {
	paths := t.Paths()
	sort.Strings(paths)
	return paths
}

func TestMountDefaultValues(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "routes"), sunnyDayFiles...)

	table := &Table{}
	if err := Mount(context.Background(), table, echoLoader(), Spec{BaseDir: base}); err != nil {
		t.Fatalf("Mount() error: %v", err)
	}

	want := []string{
		"/",
		"/other",
		"/test-1/",
		"/test-1/test-1.1/",
		"/test-1/test-1.1/other",
		"/test-2/controller-1",
		"/test-2/controller-2",
	}
	if got := sortedPaths(table); !reflect.DeepEqual(got, want) {
		t.Errorf("registered = %v, want %v", got, want)
	}
}

func TestMountCustomBasePath(t *testing.T) {
	for _, basePath := range []string{"/customPath", "/customPath/"} {
		t.Run(basePath, func(t *testing.T) {
			base := t.TempDir()
			writeTree(t, filepath.Join(base, "test", "sunny-day"), sunnyDayFiles...)

			table := &Table{}
			err := Mount(context.Background(), table, echoLoader(), Spec{
				BaseDir:  base,
				RootDir:  "test/sunny-day/",
				BasePath: basePath,
			})
			if err != nil {
				t.Fatalf("Mount() error: %v", err)
			}

			want := []string{
				"/customPath/",
				"/customPath/other",
				"/customPath/test-1/",
				"/customPath/test-1/test-1.1/",
				"/customPath/test-1/test-1.1/other",
				"/customPath/test-2/controller-1",
				"/customPath/test-2/controller-2",
			}
			if got := sortedPaths(table); !reflect.DeepEqual(got, want) {
				t.Errorf("registered = %v, want %v", got, want)
			}
		})
	}
}

func TestMountOneRegistrationPerFile(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "routes"), sunnyDayFiles...)

	table := &Table{}
	if err := Mount(context.Background(), table, echoLoader(), Spec{BaseDir: base}); err != nil {
		t.Fatalf("Mount() error: %v", err)
	}

	entries := table.Entries()
	if len(entries) != len(sunnyDayFiles) {
		t.Fatalf("registrations = %d, want %d", len(entries), len(sunnyDayFiles))
	}
	for i, e := range entries {
		rec := httptest.NewRecorder()
		e.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, e.Path, nil))
		if rec.Body.String() != sunnyDayFiles[i] {
			t.Errorf("handler for %q served %q, want %q", e.Path, rec.Body.String(), sunnyDayFiles[i])
		}
	}
}

func TestMountEmptyRoot(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "routes"), 0755); err != nil {
		t.Fatal(err)
	}

	calls := 0
	app := RouterFunc(func(string, http.Handler) { calls++ })
	if err := Mount(context.Background(), app, echoLoader(), Spec{BaseDir: base}); err != nil {
		t.Fatalf("Mount() error: %v", err)
	}
	if calls != 0 {
		t.Errorf("registrations = %d, want 0", calls)
	}
}

func TestMountInvalidApp(t *testing.T) {
	// The root does not exist: a filesystem error would surface if the
	// router check ran after traversal started.
	spec := Spec{BaseDir: t.TempDir(), RootDir: "does-not-exist"}

	tests := []struct {
		name string
		app  Router
	}{
		{"nil interface", nil},
		{"typed nil chi router", (*ChiRouter)(nil)},
		{"typed nil table", (*Table)(nil)},
		{"nil func", RouterFunc(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Mount(context.Background(), tt.app, echoLoader(), spec)
			if !errors.Is(err, ErrNilRouter) {
				t.Errorf("Mount() error = %v, want ErrNilRouter", err)
			}
		})
	}
}

func TestMountNilLoader(t *testing.T) {
	spec := Spec{BaseDir: t.TempDir(), RootDir: "does-not-exist"}

	err := Mount(context.Background(), &Table{}, nil, spec)
	if !errors.Is(err, ErrNilLoader) {
		t.Errorf("Mount() error = %v, want ErrNilLoader", err)
	}

	err = Mount(context.Background(), &Table{}, (*Registry)(nil), spec)
	if !errors.Is(err, ErrNilLoader) {
		t.Errorf("Mount(typed nil) error = %v, want ErrNilLoader", err)
	}
}

func TestMountLoaderError(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "routes"), "index.js", "other.js")

	reg := NewRegistry().HandleFunc("index.js", func(http.ResponseWriter, *http.Request) {})

	table := &Table{}
	err := Mount(context.Background(), table, reg, Spec{BaseDir: base})
	if !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("Mount() error = %v, want ErrHandlerNotFound", err)
	}
	if got := table.Paths(); !reflect.DeepEqual(got, []string{"/"}) {
		t.Errorf("registered before failure = %v, want [/]", got)
	}
}

func TestMountIrregularEntry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	base := t.TempDir()
	root := filepath.Join(base, "routes")
	writeTree(t, root, "index.js")
	if err := os.Symlink(filepath.Join(root, "gone.js"), filepath.Join(root, "alias.js")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	err := Mount(context.Background(), &Table{}, echoLoader(), Spec{BaseDir: base})
	if !errors.Is(err, ErrIrregularEntry) {
		t.Errorf("Mount() error = %v, want ErrIrregularEntry", err)
	}
}

func TestMountDecoratorsAndObserver(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "routes"), "index.js", "other.js")

	var order []string
	tag := func(name string) Decorator {
		return func(path string, h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+":"+path)
				h.ServeHTTP(w, r)
			})
		}
	}

	obs := &recordingObserver{}
	table := &Table{}
	err := Mount(context.Background(), table, echoLoader(), Spec{BaseDir: base},
		WithDecorators(tag("inner"), tag("outer")),
		WithObserver(obs),
	)
	if err != nil {
		t.Fatalf("Mount() error: %v", err)
	}

	entries := table.Entries()
	entries[1].Handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/other", nil))

	if want := []string{"outer:/other", "inner:/other"}; !reflect.DeepEqual(order, want) {
		t.Errorf("decorator order = %v, want %v", order, want)
	}
	if want := []string{"/", "/other"}; !reflect.DeepEqual(obs.mounted, want) {
		t.Errorf("observed mounts = %v, want %v", obs.mounted, want)
	}
	if !reflect.DeepEqual(obs.scans, []int{2}) {
		t.Errorf("observed scans = %v, want [2]", obs.scans)
	}
}
