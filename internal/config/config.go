package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/merge"
)

const (
	// ConfigFileName is the name of the project file.
	ConfigFileName = "compose.json"

	// DefaultOutput is the default output directory for composed configuration.
	DefaultOutput = "dist"

	// DefaultPackageManager is the package manager used to install dependencies.
	DefaultPackageManager = "npm"

	// DefaultPrefix is the default S3 key prefix for published configuration.
	DefaultPrefix = "compose"
)

// Config represents the complete compose.json project file.
type Config struct {
	// Project is the project to build.
	Project string `json:"project,omitempty"`

	// Features lists feature identifiers in the order they are composed.
	Features []string `json:"features,omitempty"`

	// Paths overrides configuration registry values, keyed by registry key.
	Paths map[string]string `json:"paths,omitempty"`

	// Base is the path to the base webpack configuration (.json, .yaml or .yml).
	Base string `json:"base,omitempty"`

	// MergeStrategy overrides the default merge strategy per configuration path.
	MergeStrategy map[string]string `json:"mergeStrategy,omitempty"`

	// Projects describes the projects a build may target.
	Projects map[string]Project `json:"projects,omitempty"`

	// AssetFilters are appended to the assetFilters configurable.
	AssetFilters []string `json:"assetFilters,omitempty"`

	// Extensions are appended to the resolveExtensions configurable.
	Extensions []string `json:"extensions,omitempty"`

	// Install contains dependency installation settings.
	Install InstallConfig `json:"install,omitempty"`

	// Output is the directory composed configuration is written to.
	Output string `json:"output,omitempty"`

	// Publish contains S3 publishing settings.
	Publish PublishConfig `json:"publish,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InstallConfig contains dependency installation settings.
type InstallConfig struct {
	// PackageManager is npm, yarn or pnpm.
	PackageManager string `json:"packageManager,omitempty"`

	// BinDir is where standalone tool binaries are cached.
	BinDir string `json:"binDir,omitempty"`

	// Skip disables installation; every feature reports its dependencies as satisfied.
	Skip bool `json:"skip,omitempty"`
}

// PublishConfig contains S3 publishing settings.
type PublishConfig struct {
	// Bucket is the destination bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the region from the AWS shared configuration.
	Region string `json:"region,omitempty"`

	// Endpoint is the URL of an S3-compatible service. Path-style addressing
	// is used when it is set.
	Endpoint string `json:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Output: DefaultOutput,
		Install: InstallConfig{
			PackageManager: DefaultPackageManager,
		},
		Publish: PublishConfig{
			Prefix: DefaultPrefix,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for compose.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No compose.json found in " + filepath.Dir(path)).
				WithSuggestion("Create compose.json with at least a project and a list of features")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse compose.json: " + err.Error()).
			WithSuggestion("Check that compose.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
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
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Install.PackageManager == "" {
		c.Install.PackageManager = DefaultPackageManager
	}
	if c.Publish.Prefix == "" {
		c.Publish.Prefix = DefaultPrefix
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for key := range c.Paths {
		if !Valid(Key(key)) {
			return errors.New("E220").
				WithDetail("compose.json paths: " + key).
				Wrap(&ReferenceError{Op: "set", Key: Key(key)})
		}
	}

	if _, err := c.Strategies(); err != nil {
		return err
	}

	switch c.Install.PackageManager {
	case "npm", "yarn", "pnpm":
	default:
		return errors.New("E120").
			WithDetail("Unsupported package manager: " + c.Install.PackageManager).
			WithSuggestion("Use npm, yarn or pnpm")
	}

	return nil
}

// Strategies returns the default merge table with the file's overrides applied.
func (c *Config) Strategies() (merge.Table, error) {
	overrides, err := merge.ParseTable(c.MergeStrategy)
	if err != nil {
		return nil, errors.New("E122").Wrap(err)
	}
	return merge.DefaultTable().With(overrides), nil
}

// Registry returns a configuration registry rooted at the project directory
// with the file's path overrides applied.
func (c *Config) Registry() (*Registry, error) {
	dir := c.Dir()
	if dir == "" {
		dir = "."
	}

	reg := NewRegistry(dir)
	for key, value := range c.Paths {
		if !filepath.IsAbs(value) && Key(key) != PathPublicAEM {
			value = filepath.Join(dir, value)
		}
		if err := reg.Set(Key(key), value); err != nil {
			return nil, errors.New("E220").Wrap(err)
		}
	}
	return reg, nil
}

// Configurables returns the configurables with the file's additions applied.
func (c *Config) Configurables() (*Configurables, error) {
	cfgs := NewConfigurables()
	if len(c.AssetFilters) > 0 {
		if err := cfgs.Set(AssetFilters, c.AssetFilters); err != nil {
			return nil, err
		}
	}
	if len(c.Extensions) > 0 {
		if err := cfgs.Set(ResolveExtensions, c.Extensions); err != nil {
			return nil, err
		}
	}
	return cfgs, nil
}

// ProjectSet returns the configured projects, or the defaults when none are set.
func (c *Config) ProjectSet() *Projects {
	p := NewProjects()
	p.SetProjects(c.Projects)
	return p
}

// OutputPath returns the absolute path to the output directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(c.Dir(), c.Output)
}

// BasePath returns the absolute path to the base configuration, or "" when unset.
func (c *Config) BasePath() string {
	if c.Base == "" {
		return ""
	}
	if filepath.IsAbs(c.Base) {
		return c.Base
	}
	return filepath.Join(c.Dir(), c.Base)
}

// BinDir returns the absolute tool binary directory, or "" for the default.
func (c *Config) BinDir() string {
	if c.Install.BinDir == "" || filepath.IsAbs(c.Install.BinDir) {
		return c.Install.BinDir
	}
	return filepath.Join(c.Dir(), c.Install.BinDir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing compose.json, or an error if not found.
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
			return "", errors.New("E141").
				WithDetail("No compose.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run compose from a directory containing compose.json")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
