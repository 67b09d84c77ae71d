package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/vango-dev/routemount/internal/config"
	"github.com/vango-dev/routemount/internal/errors"
	"github.com/vango-dev/routemount/pkg/router"
	"gopkg.in/yaml.v3"
)

func writeRoutes(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "routes")
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var siteFiles = map[string]string{
	"index.js":        "home",
	"about.js":        "about",
	"users/index.js":  "users",
	"users/show.js":   "show",
	"users/notes.txt": "ignored",
}

func TestScanJSON(t *testing.T) {
	root := writeRoutes(t, siteFiles)

	stdout, stderr, err := execute(t, "scan", "--root", root, "--base-path", "/api", "--format", "json")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}

	var routes []router.DiscoveredRoute
	if err := json.Unmarshal([]byte(stdout), &routes); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}

	var paths []string
	for _, r := range routes {
		paths = append(paths, r.Path)
	}
	want := "/api/about /api/ /api/users/ /api/users/show"
	if got := strings.Join(paths, " "); got != want {
		t.Errorf("paths = %q, want %q", got, want)
	}
	if !strings.Contains(stderr, "4 routes") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestScanYAML(t *testing.T) {
	root := writeRoutes(t, map[string]string{"index.js": ""})

	stdout, _, err := execute(t, "scan", "--root", root, "-o", "yaml")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}

	var routes []router.DiscoveredRoute
	if err := yaml.Unmarshal([]byte(stdout), &routes); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	if len(routes) != 1 || routes[0].Path != "/" || routes[0].RelPath != "index.js" {
		t.Errorf("routes = %+v", routes)
	}
}

func TestScanTable(t *testing.T) {
	root := writeRoutes(t, siteFiles)

	stdout, _, err := execute(t, "scan", "--root", root)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 5 {
		t.Fatalf("table lines = %d, want 5:\n%s", len(lines), stdout)
	}
	if fields := strings.Fields(lines[0]); len(fields) != 2 || fields[0] != "ROUTE" || fields[1] != "FILE" {
		t.Errorf("header = %q", lines[0])
	}
	fields := strings.Fields(lines[1])
	if len(fields) != 2 || fields[0] != "/about" || fields[1] != filepath.Join(root, "about.js") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestScanEmptyRoot(t *testing.T) {
	root := t.TempDir()

	stdout, stderr, err := execute(t, "scan", "--root", root, "--format", "json")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("stdout = %q, want []", stdout)
	}
	if !strings.Contains(stderr, "No routes found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, _, err := execute(t, "scan", "--root", filepath.Join(t.TempDir(), "missing"))

	var re *errors.RouteError
	if !stderrors.As(err, &re) || re.Code != "E201" {
		t.Fatalf("error = %v, want E201", err)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("E201 should wrap fs.ErrNotExist")
	}
}

func TestScanUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "scan", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), `unknown format "xml"`) {
		t.Errorf("error = %v", err)
	}
}

func TestScanConfigFile(t *testing.T) {
	root := writeRoutes(t, siteFiles)
	dir := filepath.Dir(root)
	cfgPath := filepath.Join(dir, config.YAMLConfigFileName)
	if err := os.WriteFile(cfgPath, []byte("routes:\n  root: routes\n  basePath: /v2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "--config", cfgPath, "scan", "--format", "json")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !strings.Contains(stdout, `"/v2/users/show"`) {
		t.Errorf("stdout = %s", stdout)
	}

	// Flags override the file.
	stdout, _, err = execute(t, "--config", cfgPath, "scan", "--format", "json", "--base-path", "/v3")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !strings.Contains(stdout, `"/v3/users/show"`) {
		t.Errorf("stdout = %s", stdout)
	}
}

func TestScanInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "scan", "--ext", "js")

	var re *errors.RouteError
	if !stderrors.As(err, &re) || re.Code != "E103" {
		t.Errorf("error = %v, want E103", err)
	}
}

func TestBuildHandler(t *testing.T) {
	root := writeRoutes(t, siteFiles)

	cfg := config.New()
	cfg.Routes.Root = root

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, paths, err := buildHandler(context.Background(), cfg, "", logger)
	if err != nil {
		t.Fatalf("buildHandler error: %v", err)
	}
	if got := strings.Join(paths, " "); got != "/about / /users/ /users/show" {
		t.Errorf("paths = %q", got)
	}

	srv := httptest.NewServer(handler)
	defer srv.Close()

	tests := []struct {
		path string
		want string
	}{
		{"/", "home"},
		{"/about", "about"},
		{"/users/", "users"},
		{"/users/show", "show"},
		{"/users/42", "users"},
		{"/nothing/here", "home"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK || string(body) != tt.want {
				t.Errorf("GET %s = %d %q, want 200 %q", tt.path, resp.StatusCode, body, tt.want)
			}
		})
	}

	resp, err := http.Get(srv.URL + config.DefaultMetricsPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"routemount_routes_mounted_total 4",
		`routemount_requests_total{code="200",method="get",route="/users/show"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestBuildHandlerIrregularEntry(t *testing.T) {
	root := writeRoutes(t, map[string]string{"index.js": ""})
	if err := os.Symlink(filepath.Join(root, "missing.js"), filepath.Join(root, "link.js")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg := config.New()
	cfg.Routes.Root = root

	_, _, err := buildHandler(context.Background(), cfg, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	var re *errors.RouteError
	if !stderrors.As(err, &re) || re.Code != "E202" {
		t.Errorf("error = %v, want E202", err)
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	_, stderr, err := execute(t, "init", dir, "--format", "yaml", "--base-path", "/api")
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	if !strings.Contains(stderr, config.YAMLConfigFileName) {
		t.Errorf("stderr = %q", stderr)
	}

	cfg, err := config.LoadFile(filepath.Join(dir, config.YAMLConfigFileName))
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Routes.BasePath != "/api" || cfg.Routes.Filter != router.DefaultFilter {
		t.Errorf("routes = %+v", cfg.Routes)
	}
	if fi, err := os.Stat(filepath.Join(dir, "routes")); err != nil || !fi.IsDir() {
		t.Errorf("routes directory not created: %v", err)
	}

	_, _, err = execute(t, "init", dir)
	var re *errors.RouteError
	if !stderrors.As(err, &re) || re.Code != "E106" {
		t.Fatalf("second init error = %v, want E106", err)
	}

	if _, _, err := execute(t, "init", dir, "--force"); err != nil {
		t.Fatalf("init --force error: %v", err)
	}
	if !config.Exists(dir) {
		t.Error("config missing after init --force")
	}
}

func TestErrorsCommand(t *testing.T) {
	stdout, _, err := execute(t, "errors")
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range errors.GetAllCodes() {
		if !strings.Contains(stdout, code) {
			t.Errorf("listing missing %s", code)
		}
	}

	stdout, _, err = execute(t, "errors", "e202")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "E202: Irregular entry in route tree") || !strings.Contains(stdout, "Hint:") {
		t.Errorf("explain = %q", stdout)
	}

	if _, _, err := execute(t, "errors", "E999"); err == nil {
		t.Error("unknown code should fail")
	}
}

func TestNoColorFlag(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })
	color.NoColor = false

	if _, _, err := execute(t, "version", "--short"); err != nil {
		t.Fatal(err)
	}
	if !color.NoColor {
		t.Error("--no-color should disable colors")
	}
}

func TestScanS3WithoutRegion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config", "credentials"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_PROFILE", "")

	_, _, err := execute(t, "scan", "--s3-bucket", "my-site")
	var re *errors.RouteError
	if !stderrors.As(err, &re) || re.Code != "E205" {
		t.Fatalf("error = %v, want E205", err)
	}
	if re.Path != "s3://my-site" {
		t.Errorf("Path = %q", re.Path)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != version {
		t.Errorf("version --short = %q, want %q", stdout, version)
	}

	stdout, _, err = execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Go version:") {
		t.Errorf("version = %q", stdout)
	}
}
