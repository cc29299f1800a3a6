package dev

import (
	"path/filepath"

	"github.com/aem-design/compose/internal/config"
)

// CollectWatchPaths returns the files whose changes alter the composed
// configuration: compose.json, the base configuration and package.json.
func CollectWatchPaths(cfg *config.Config) []string {
	projectDir := cfg.Dir()
	paths := []string{
		cfg.Path(),
		cfg.BasePath(),
		resolvePath(projectDir, "package.json"),
		resolvePath(projectDir, "tsconfig.json"),
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
