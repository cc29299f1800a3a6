package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/merge"
)

// LoadBase reads the base webpack configuration at path. The format is
// chosen by extension: .json is decoded as JSON, .yaml and .yml as YAML.
// An empty path yields an empty configuration.
func LoadBase(path string) (merge.Config, error) {
	if path == "" {
		return merge.Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E123").
			WithDetail("Failed to read " + path).
			Wrap(err)
	}

	return DecodeBase(data, filepath.Ext(path))
}

// DecodeBase decodes a base configuration in the format named by ext.
func DecodeBase(data []byte, ext string) (merge.Config, error) {
	var out map[string]any

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, errors.New("E123").
				WithDetail("Failed to parse JSON: " + err.Error()).
				Wrap(err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, errors.New("E123").
				WithDetail("Failed to parse YAML: " + err.Error()).
				Wrap(err)
		}
	default:
		return nil, errors.New("E123").
			WithDetail("Unsupported base configuration format " + ext).
			WithSuggestion("Use a .json, .yaml or .yml file")
	}

	if out == nil {
		return merge.Config{}, nil
	}
	return merge.Config(out), nil
}
