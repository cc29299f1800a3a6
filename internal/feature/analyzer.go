package feature

import (
	"path/filepath"

	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/merge"
)

type analyzer struct {
	ctx Context
}

// NewAnalyzer writes a static bundle report next to the public output when
// the analyzer flag is set.
func NewAnalyzer(ctx Context) (Feature, error) {
	return &analyzer{ctx: ctx}, nil
}

func (f *analyzer) Dependencies() []deps.Descriptor {
	if !f.ctx.Env.Analyzer {
		return nil
	}
	return []deps.Descriptor{
		{Name: "webpack-bundle-analyzer", Version: "^4.8.0", Kind: deps.Dev},
	}
}

func (f *analyzer) Fragment() merge.Config {
	if !f.ctx.Env.Analyzer {
		return merge.Config{}
	}
	return merge.Config{
		"plugins": []any{plugin("BundleAnalyzerPlugin", map[string]any{
			"analyzerMode":   "static",
			"openAnalyzer":   false,
			"reportFilename": filepath.Join(f.ctx.Paths.Public, "report.html"),
		})},
	}
}
