package config

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aem-design/compose/internal/errors"
)

func TestNewRegistry_Defaults(t *testing.T) {
	wd := filepath.Join("/work", "site")
	reg := NewRegistry(wd)

	tests := []struct {
		key  Key
		want string
	}{
		{MavenParent, "/work/pom.xml"},
		{MavenProject, "/work/site/pom.xml"},
		{PathClientlibs, ""},
		{PathPublic, "/work/site/public"},
		{PathPublicAEM, "/"},
		{PathSource, "/work/site/src"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, err := reg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRegistry_InvalidKey(t *testing.T) {
	reg := NewRegistry("/work")

	for _, key := range []Key{"", "paths", "paths.sources", "maven", "PATHS.SOURCE", "output"} {
		_, err := reg.Get(key)
		var ref *ReferenceError
		if !errors.As(err, &ref) {
			t.Errorf("Get(%q) = %v, want *ReferenceError", key, err)
			continue
		}
		if ref.Key != key || ref.Op != "get" {
			t.Errorf("ReferenceError = %+v", ref)
		}

		if err := reg.Set(key, "x"); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
	}
}

func TestReferenceError_ListsValidKeys(t *testing.T) {
	err := &ReferenceError{Op: "get", Key: "paths.nope"}
	msg := err.Error()

	if !strings.Contains(msg, "paths.nope") {
		t.Errorf("message should name the key: %s", msg)
	}
	for _, k := range Keys() {
		if !strings.Contains(msg, string(k)) {
			t.Errorf("message should list %s: %s", k, msg)
		}
	}
}

func TestRegistry_SetGet(t *testing.T) {
	reg := NewRegistry("/work")
	if err := reg.Set(PathClientlibs, "/apps/site/clientlibs"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := reg.Get(PathClientlibs)
	if err != nil || got != "/apps/site/clientlibs" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestRegistry_ProjectPath(t *testing.T) {
	reg := NewRegistry("/work")

	got, err := reg.ProjectPath(PathSource, "core")
	if err != nil {
		t.Fatalf("ProjectPath error: %v", err)
	}
	if got != "/work/src/core" {
		t.Errorf("ProjectPath = %q, want %q", got, "/work/src/core")
	}

	if _, err := reg.ProjectPath("paths.bogus", "core"); err == nil {
		t.Error("ProjectPath with invalid key should fail")
	}
}

func TestRegistry_RuntimePaths(t *testing.T) {
	reg := NewRegistry("/work")
	if err := reg.Set(PathClientlibs, "/clientlibs"); err != nil {
		t.Fatal(err)
	}

	got, err := reg.RuntimePaths("core")
	if err != nil {
		t.Fatalf("RuntimePaths error: %v", err)
	}
	want := Paths{
		Source:     "/work/src/core",
		Public:     "/work/public/core",
		PublicAEM:  "/",
		Clientlibs: "/clientlibs",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RuntimePaths mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry("/work")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = reg.Set(PathClientlibs, "/c")
				_, _ = reg.Get(PathSource)
			}
		}()
	}
	wg.Wait()
}
