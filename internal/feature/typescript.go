package feature

import (
	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/merge"
)

type typeScript struct {
	ctx Context
}

// NewTypeScript compiles .ts and .tsx sources with ts-loader and runs type
// checking in a separate process.
func NewTypeScript(ctx Context) (Feature, error) {
	return &typeScript{ctx: ctx}, nil
}

func (f *typeScript) Dependencies() []deps.Descriptor {
	return []deps.Descriptor{
		{Name: "typescript", Version: "^4.9.5", Kind: deps.Dev},
		{Name: "ts-loader", Version: "^9.4.2", Kind: deps.Dev},
		{Name: "fork-ts-checker-webpack-plugin", Version: "^7.3.0", Kind: deps.Dev},
	}
}

func (f *typeScript) Fragment() merge.Config {
	options := map[string]any{"transpileOnly": true}
	if hasLoader(f.ctx.Config, "vue-loader") {
		options["appendTsSuffixTo"] = []any{`\.vue$`}
	}

	checker := map[string]any{
		"async": f.ctx.Env.Watch,
		"typescript": map[string]any{
			"configFile": "tsconfig.json",
			"context":    f.ctx.Paths.Source,
		},
	}

	frag := merge.Config{}
	merge.Set(frag, "module.rules", []any{
		map[string]any{
			"test":    `\.tsx?$`,
			"loader":  "ts-loader",
			"exclude": "/node_modules/",
			"options": options,
		},
	})
	merge.Set(frag, "resolve.extensions", extensions(f.ctx, ".ts", ".tsx"))
	merge.Set(frag, "plugins", []any{plugin("ForkTsCheckerWebpackPlugin", checker)})
	return frag
}
