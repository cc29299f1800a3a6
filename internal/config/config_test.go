package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/merge"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if cfg.Install.PackageManager != DefaultPackageManager {
		t.Errorf("Install.PackageManager = %q, want %q", cfg.Install.PackageManager, DefaultPackageManager)
	}
	if cfg.Publish.Prefix != DefaultPrefix {
		t.Errorf("Publish.Prefix = %q, want %q", cfg.Publish.Prefix, DefaultPrefix)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "E141") {
		t.Errorf("Load without compose.json: expected E141, got %v", err)
	}

	configJSON := `{
  "project": "site",
  "features": ["typescript", "vue"],
  "paths": {"paths.source": "frontend/src"},
  "base": "webpack.base.yaml",
  "mergeStrategy": {"resolve.extensions": "prepend"},
  "install": {"packageManager": "yarn", "skip": true},
  "publish": {"bucket": "builds"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Project != "site" {
		t.Errorf("Project = %q, want %q", cfg.Project, "site")
	}
	if diff := cmp.Diff([]string{"typescript", "vue"}, cfg.Features); diff != "" {
		t.Errorf("Features mismatch (-want +got):\n%s", diff)
	}
	if cfg.Install.PackageManager != "yarn" || !cfg.Install.Skip {
		t.Errorf("Install = %+v", cfg.Install)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want default %q", cfg.Output, DefaultOutput)
	}
	if cfg.Publish.Bucket != "builds" || cfg.Publish.Prefix != DefaultPrefix {
		t.Errorf("Publish = %+v", cfg.Publish)
	}
	if got := cfg.BasePath(); got != filepath.Join(tmpDir, "webpack.base.yaml") {
		t.Errorf("BasePath = %q", got)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E120") {
		t.Errorf("Expected E120 error, got: %v", err)
	}
}

func TestLoadFile_InvalidStrategy(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte(`{"mergeStrategy": {"plugins": "shuffle"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if !errors.HasCode(err, "E122") {
		t.Errorf("Expected E122 error, got: %v", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Project = "core"
	cfg.Features = []string{"typescript"}

	// Save should fail without configPath set
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Project != "core" {
		t.Errorf("Project = %q, want %q", loaded.Project, "core")
	}

	loaded.Features = append(loaded.Features, "vue")
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if diff := cmp.Diff([]string{"typescript", "vue"}, reloaded.Features); diff != "" {
		t.Errorf("Features mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown path key", func(c *Config) { c.Paths = map[string]string{"paths.nope": "x"} }, "E220"},
		{"bad strategy", func(c *Config) { c.MergeStrategy = map[string]string{"plugins": "merge"} }, "E122"},
		{"bad package manager", func(c *Config) { c.Install.PackageManager = "bower" }, "E120"},
		{"pnpm", func(c *Config) { c.Install.PackageManager = "pnpm" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestValidate_UnknownPathWrapsReferenceError(t *testing.T) {
	cfg := New()
	cfg.Paths = map[string]string{"paths.nope": "x"}

	var ref *ReferenceError
	if err := cfg.Validate(); !errors.As(err, &ref) {
		t.Fatalf("Validate() = %v, want *ReferenceError in chain", err)
	}
	if ref.Key != "paths.nope" {
		t.Errorf("ReferenceError.Key = %q", ref.Key)
	}
}

func TestStrategies(t *testing.T) {
	cfg := New()
	cfg.MergeStrategy = map[string]string{
		"resolve.extensions": "append",
		"plugins":            "replace",
	}

	table, err := cfg.Strategies()
	if err != nil {
		t.Fatalf("Strategies error: %v", err)
	}

	want := merge.Table{
		"module.rules":       merge.Append,
		"plugins":            merge.Replace,
		"resolve.extensions": merge.Append,
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Errorf("Strategies mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigRegistry(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := New()
	cfg.Paths = map[string]string{
		"paths.source":     "frontend/src",
		"paths.public.aem": "etc.clientlibs",
		"paths.clientlibs": "/abs/clientlibs",
	}
	if err := cfg.SaveTo(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry error: %v", err)
	}

	tests := []struct {
		key  Key
		want string
	}{
		{PathSource, filepath.Join(tmpDir, "frontend/src")},
		{PathPublicAEM, "etc.clientlibs"},
		{PathClientlibs, "/abs/clientlibs"},
		{PathPublic, filepath.Join(tmpDir, "public")},
	}
	for _, tt := range tests {
		got, err := reg.Get(tt.key)
		if err != nil {
			t.Errorf("Get(%s) error: %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestConfigConfigurables(t *testing.T) {
	cfg := New()
	cfg.Extensions = []string{".ts"}

	cfgs, err := cfg.Configurables()
	if err != nil {
		t.Fatalf("Configurables error: %v", err)
	}
	if diff := cmp.Diff([]string{".js", ".ts"}, cfgs.Strings(ResolveExtensions)); diff != "" {
		t.Errorf("resolveExtensions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fontawesome.*"}, cfgs.Strings(AssetFilters)); diff != "" {
		t.Errorf("assetFilters mismatch (-want +got):\n%s", diff)
	}
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatal(err)
	}

	if got := cfg.OutputPath(); got != filepath.Join(tmpDir, "dist") {
		t.Errorf("OutputPath = %q, want %q", got, filepath.Join(tmpDir, "dist"))
	}
	if got := cfg.BasePath(); got != "" {
		t.Errorf("BasePath = %q, want empty", got)
	}
	if got := cfg.BinDir(); got != "" {
		t.Errorf("BinDir = %q, want empty", got)
	}

	cfg.Output = "/absolute/path"
	if got := cfg.OutputPath(); got != "/absolute/path" {
		t.Errorf("OutputPath absolute = %q, want %q", got, "/absolute/path")
	}

	cfg.Install.BinDir = ".bin"
	if got := cfg.BinDir(); got != filepath.Join(tmpDir, ".bin") {
		t.Errorf("BinDir = %q", got)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists should be false for empty directory")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nestedDir); err == nil {
		t.Error("FindProjectRoot should fail when no config exists")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nestedDir)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}

	root, err = FindProjectRoot(filepath.Join(tmpDir, "a"))
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if cfg.Install.PackageManager != DefaultPackageManager {
		t.Errorf("Install.PackageManager = %q, want %q", cfg.Install.PackageManager, DefaultPackageManager)
	}
	if cfg.Publish.Prefix != DefaultPrefix {
		t.Errorf("Publish.Prefix = %q, want %q", cfg.Publish.Prefix, DefaultPrefix)
	}
}
