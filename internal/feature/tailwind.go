package feature

import (
	"fmt"
	"path/filepath"

	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/merge"
)

const (
	// TailwindVersion is the standalone Tailwind CLI release that is installed.
	TailwindVersion = "v3.4.1"

	tailwindReleases = "https://github.com/tailwindlabs/tailwindcss/releases/download"
)

type tailwind struct {
	ctx Context
}

// NewTailwind compiles Tailwind CSS with the standalone CLI before each
// compilation, so no Node toolchain for Tailwind is needed.
func NewTailwind(ctx Context) (Feature, error) {
	if ctx.Paths.Source == "" {
		return nil, fmt.Errorf("tailwind needs a source path")
	}
	return &tailwind{ctx: ctx}, nil
}

func (f *tailwind) tool() deps.Descriptor {
	return deps.Descriptor{
		Name:    "tailwindcss",
		Version: TailwindVersion,
		Kind:    deps.Tool,
		Source:  tailwindReleases,
	}
}

func (f *tailwind) Dependencies() []deps.Descriptor {
	return []deps.Descriptor{
		f.tool(),
		{Name: "webpack-shell-plugin-next", Version: "^2.3.1", Kind: deps.Dev},
	}
}

func (f *tailwind) Fragment() merge.Config {
	bin := "tailwindcss"
	if f.ctx.Tools != nil {
		bin = f.ctx.Tools.Path(f.tool())
	}

	input := filepath.Join(f.ctx.Paths.Source, "styles", "tailwind.css")
	output := filepath.Join(f.ctx.Paths.Public, "css", "tailwind.css")

	cmd := fmt.Sprintf("%s -i %s -o %s", bin, input, output)
	if !f.ctx.Env.Development() {
		cmd += " --minify"
	}

	return merge.Config{
		"plugins": []any{plugin("WebpackShellPluginNext", map[string]any{
			"onBeforeCompile": map[string]any{
				"scripts":  []any{cmd},
				"blocking": true,
			},
		})},
	}
}
