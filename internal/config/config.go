package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/routemount/internal/errors"
	"github.com/vango-dev/routemount/pkg/router"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "routemount.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "routemount.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
)

// configFileNames lists the files Load looks for, in order.
var configFileNames = []string{ConfigFileName, YAMLConfigFileName, "routemount.yml"}

// Config represents a routemount project file.
type Config struct {
	// Routes describes the route tree.
	Routes RoutesConfig `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Serve contains server settings.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// S3 selects a bucket holding the route tree instead of a local directory.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RoutesConfig mirrors router.Spec.
type RoutesConfig struct {
	// Root is the routes directory, relative to the config file.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	// BasePath prefixes every route.
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`

	// Filter is the substring route filenames must contain.
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`

	// Extension is the route source-file extension.
	Extension string `json:"extension,omitempty" yaml:"extension,omitempty"`

	// IgnoreFile names the ignore-rules file in Root ("-" disables it).
	IgnoreFile string `json:"ignoreFile,omitempty" yaml:"ignoreFile,omitempty"`
}

// ServeConfig contains server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// MetricsPath is the URL path of the Prometheus endpoint.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`
}

// S3Config locates a route tree in S3 or an S3-compatible store.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Profile is the AWS shared config profile. Empty uses AWS_PROFILE.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// Anonymous sends unsigned requests, for public buckets.
	Anonymous bool `json:"anonymous,omitempty" yaml:"anonymous,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Routes: RoutesConfig{
			Root:       router.DefaultRootDir,
			BasePath:   router.DefaultBasePath,
			Filter:     router.DefaultFilter,
			Extension:  router.DefaultExtension,
			IgnoreFile: router.DefaultIgnoreFile,
		},
		Serve: ServeConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			MetricsPath: DefaultMetricsPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for routemount.json, then routemount.yaml and routemount.yml.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E101").
		WithPath(dir).
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	unmarshal, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").WithPath(path).Wrap(err)
		}
		return nil, errors.New("E100").WithPath(path).Wrap(err)
	}

	cfg := New()
	if err := unmarshal(data, cfg); err != nil {
		return nil, errors.New("E100").
			WithPath(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func codecFor(path string) (func([]byte, any) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal, nil
	case ".yaml", ".yml":
		return yaml.Unmarshal, nil
	}
	return nil, errors.New("E105").WithPath(path)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension says so and as indented JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E100").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E100").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes.Root == "" {
		c.Routes.Root = router.DefaultRootDir
	}
	if c.Routes.Filter == "" {
		c.Routes.Filter = router.DefaultFilter
	}
	if c.Routes.Extension == "" {
		c.Routes.Extension = router.DefaultExtension
	}
	if c.Routes.IgnoreFile == "" {
		c.Routes.IgnoreFile = router.DefaultIgnoreFile
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("E102").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Serve.Port))
	}
	if c.Routes.Extension != "" && !strings.HasPrefix(c.Routes.Extension, ".") {
		return errors.New("E103").
			WithSuggestion("Use \"." + c.Routes.Extension + "\"")
	}
	if c.Serve.MetricsPath != "" && !strings.HasPrefix(c.Serve.MetricsPath, "/") {
		return errors.New("E104").
			WithSuggestion("Use \"/" + c.Serve.MetricsPath + "\"")
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// HasS3 reports whether the route tree lives in a bucket.
func (c *Config) HasS3() bool {
	return c.S3.Bucket != ""
}

// Spec converts the routes section into a router.Spec. A relative root
// is anchored at baseDir; pass Dir() to resolve it against the config file.
func (c *Config) Spec(baseDir string) router.Spec {
	return router.Spec{
		BaseDir:    baseDir,
		RootDir:    c.Routes.Root,
		BasePath:   c.Routes.BasePath,
		Filter:     c.Routes.Filter,
		Extension:  c.Routes.Extension,
		IgnoreFile: c.Routes.IgnoreFile,
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithPath(startDir).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
