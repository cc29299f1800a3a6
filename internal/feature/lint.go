package feature

import (
	"strings"

	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/merge"
)

type esLint struct {
	ctx Context
}

// NewESLint lints scripts during compilation when ESLint is enabled.
func NewESLint(ctx Context) (Feature, error) {
	return &esLint{ctx: ctx}, nil
}

func (f *esLint) Dependencies() []deps.Descriptor {
	if !f.ctx.Env.ESLint {
		return nil
	}
	return []deps.Descriptor{
		{Name: "eslint", Version: "^8.36.0", Kind: deps.Dev},
		{Name: "eslint-webpack-plugin", Version: "^4.0.0", Kind: deps.Dev},
	}
}

func (f *esLint) Fragment() merge.Config {
	if !f.ctx.Env.ESLint {
		return merge.Config{}
	}

	var exts []any
	for _, e := range extensions(f.ctx) {
		if s, ok := e.(string); ok {
			exts = append(exts, strings.TrimPrefix(s, "."))
		}
	}

	return merge.Config{
		"plugins": []any{plugin("ESLintPlugin", map[string]any{
			"context":     f.ctx.Paths.Source,
			"extensions":  exts,
			"failOnError": !f.ctx.Env.Watch,
		})},
	}
}

type styleLint struct {
	ctx Context
}

// NewStyleLint lints stylesheets during compilation when Stylelint is enabled.
func NewStyleLint(ctx Context) (Feature, error) {
	return &styleLint{ctx: ctx}, nil
}

func (f *styleLint) Dependencies() []deps.Descriptor {
	if !f.ctx.Env.StyleLint {
		return nil
	}
	return []deps.Descriptor{
		{Name: "stylelint", Version: "^15.2.0", Kind: deps.Dev},
		{Name: "stylelint-webpack-plugin", Version: "^4.1.0", Kind: deps.Dev},
	}
}

func (f *styleLint) Fragment() merge.Config {
	if !f.ctx.Env.StyleLint {
		return merge.Config{}
	}
	return merge.Config{
		"plugins": []any{plugin("StylelintPlugin", map[string]any{
			"context":     f.ctx.Paths.Source,
			"files":       "**/*.{css,scss}",
			"failOnError": !f.ctx.Env.Watch,
		})},
	}
}
