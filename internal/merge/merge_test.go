package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMerge_ReplaceLastWriterWins(t *testing.T) {
	table := DefaultTable()
	acc := Config{}

	acc = Merge(acc, Config{"resolve": map[string]any{"extensions": []any{".js"}}}, table)
	acc = Merge(acc, Config{"resolve": map[string]any{"extensions": []any{".ts"}}}, table)

	want := Config{"resolve": map[string]any{"extensions": []any{".ts"}}}
	if diff := cmp.Diff(want, acc); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_Append(t *testing.T) {
	base := Config{"plugins": []any{"P1"}}
	got := Merge(base, Config{"plugins": []any{"P2"}}, DefaultTable())

	want := Config{"plugins": []any{"P1", "P2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_Prepend(t *testing.T) {
	table := Table{"module.rules": Prepend}
	base := Config{"module": map[string]any{"rules": []any{"babel"}}}
	got := Merge(base, Config{"module": map[string]any{"rules": []any{"ts"}}}, table)

	want := Config{"module": map[string]any{"rules": []any{"ts", "babel"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_AppendTwiceDuplicates(t *testing.T) {
	fragment := Config{"plugins": []any{"P2"}}
	base := Config{"plugins": []any{"P1"}}

	once := Merge(base, fragment, DefaultTable())
	twice := Merge(once, fragment, DefaultTable())

	want := Config{"plugins": []any{"P1", "P2", "P2"}}
	if diff := cmp.Diff(want, twice); diff != "" {
		t.Errorf("Merge() twice mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ReplaceTwiceIsIdempotent(t *testing.T) {
	fragment := Config{"devtool": "source-map", "output": map[string]any{"filename": "[name].js"}}
	base := Config{"devtool": "eval"}

	once := Merge(base, fragment, DefaultTable())
	twice := Merge(once, fragment, DefaultTable())

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("replace merge not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMerge_AppendWithoutAccumulatedValue(t *testing.T) {
	got := Merge(Config{}, Config{"plugins": []any{"P1"}}, DefaultTable())
	want := Config{"plugins": []any{"P1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_AppendNonSequenceReplaces(t *testing.T) {
	got := Merge(Config{"plugins": []any{"P1"}}, Config{"plugins": "none"}, DefaultTable())
	if got["plugins"] != "none" {
		t.Errorf("plugins = %v, want none", got["plugins"])
	}
}

func TestMerge_ExplicitReplaceOverwritesObject(t *testing.T) {
	table := Table{"resolve.alias": Replace}
	base := Config{"resolve": map[string]any{"alias": map[string]any{"a": "1", "b": "2"}}}
	got := Merge(base, Config{"resolve": map[string]any{"alias": map[string]any{"c": "3"}}}, table)

	want := Config{"resolve": map[string]any{"alias": map[string]any{"c": "3"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_UnlistedObjectsMergeByKey(t *testing.T) {
	base := Config{"resolve": map[string]any{"alias": map[string]any{"vue$": "vue/dist/vue.esm.js"}}}
	got := Merge(base, Config{"resolve": map[string]any{"extensions": []any{".vue"}}}, DefaultTable())

	want := Config{"resolve": map[string]any{
		"alias":      map[string]any{"vue$": "vue/dist/vue.esm.js"},
		"extensions": []any{".vue"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_LeavesUntouchedPaths(t *testing.T) {
	base := Config{"output": map[string]any{"path": "/dist"}, "target": "web"}
	got := Merge(base, Config{"target": "node"}, DefaultTable())

	if got["target"] != "node" {
		t.Errorf("target = %v, want node", got["target"])
	}
	if v, _ := Get(got, "output.path"); v != "/dist" {
		t.Errorf("output.path = %v, want /dist", v)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := Config{"plugins": []any{"P1"}, "resolve": map[string]any{"extensions": []any{".js"}}}
	fragment := Config{"plugins": []any{"P2"}, "resolve": map[string]any{"symlinks": false}}
	baseCopy := Clone(base)
	fragmentCopy := Clone(fragment)

	got := Merge(base, fragment, DefaultTable())
	got["plugins"].([]any)[0] = "mutated"
	Set(got, "resolve.extensions", []any{".mutated"})

	if diff := cmp.Diff(baseCopy, base); diff != "" {
		t.Errorf("base mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fragmentCopy, fragment); diff != "" {
		t.Errorf("fragment mutated (-want +got):\n%s", diff)
	}
}

func TestMerge_TypedSlicesAreWidened(t *testing.T) {
	got := Merge(Config{"plugins": []string{"P1"}}, Config{"plugins": []string{"P2"}}, DefaultTable())
	want := Config{"plugins": []any{"P1", "P2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_NilAccumulator(t *testing.T) {
	got := Merge(nil, Config{"mode": "production"}, nil)
	if got["mode"] != "production" {
		t.Errorf("mode = %v", got["mode"])
	}
}

func TestGetSet(t *testing.T) {
	c := Config{}
	Set(c, "optimization.splitChunks.chunks", "all")

	v, ok := Get(c, "optimization.splitChunks.chunks")
	if !ok || v != "all" {
		t.Errorf("Get() = %v, %v", v, ok)
	}
	if _, ok := Get(c, "optimization.missing"); ok {
		t.Error("Get() on missing path should report false")
	}
	if _, ok := Get(c, "optimization.splitChunks.chunks.deeper"); ok {
		t.Error("Get() through a scalar should report false")
	}
}

func TestStrip(t *testing.T) {
	c := Config{
		"entry":   "./src/index.js",
		"devtool": "eval",
		"performance": map[string]any{
			"hints": false,
			"keep":  true,
		},
		"plugins": []any{"P1"},
	}

	got := Strip(c, []string{"entry", "devtool", "performance.hints", "resolve.modules"})
	want := Config{
		"performance": map[string]any{"keep": true},
		"plugins":     []any{"P1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Strip() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := c["entry"]; !ok {
		t.Error("Strip() mutated its input")
	}
}
