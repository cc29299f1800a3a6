package feature

import (
	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/merge"
)

type vue struct {
	ctx Context
}

// NewVue compiles single file components with vue-loader.
func NewVue(ctx Context) (Feature, error) {
	return &vue{ctx: ctx}, nil
}

func (f *vue) Dependencies() []deps.Descriptor {
	return []deps.Descriptor{
		{Name: "vue", Version: "^3.2.47", Kind: deps.Runtime},
		{Name: "vue-loader", Version: "^17.0.1", Kind: deps.Dev},
		{Name: "@vue/compiler-sfc", Version: "^3.2.47", Kind: deps.Dev},
	}
}

func (f *vue) Fragment() merge.Config {
	runtime := "vue/dist/vue.runtime.esm-bundler.js"
	if f.ctx.Env.Development() {
		runtime = "vue/dist/vue.esm-bundler.js"
	}

	frag := merge.Config{}
	merge.Set(frag, "module.rules", []any{
		map[string]any{
			"test":   `\.vue$`,
			"loader": "vue-loader",
		},
	})
	merge.Set(frag, "resolve.extensions", extensions(f.ctx, ".vue"))
	merge.Set(frag, "resolve.alias", map[string]any{"vue$": runtime})
	merge.Set(frag, "plugins", []any{plugin("VueLoaderPlugin", nil)})
	return frag
}
