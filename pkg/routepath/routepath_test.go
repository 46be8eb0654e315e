package routepath

import (
	"reflect"
	"testing"
)

func TestMap(t *testing.T) {
	tests := []struct {
		baseRoute string
		name      string
		want      string
	}{
		{"", "index", "/"},
		{"users", "index", "/users"},
		{"users", "[id]", "/users/:id"},
		{"a/[x]/b", "[y]", "/a/:x/b/:y"},
		{"", "about", "/about"},
		{"projects/[id]", "edit", "/projects/:id/edit"},
		{"[org]", "index", "/:org"},
		{`api\v1`, "users", "/api/v1/users"},
		{"docs", "indexes", "/docs/indexes"},
		{"reindex", "page", "/reindex/page"},
		{"", "[slug]", "/:slug"},
		{"a/index", "b", "/a/index/b"},
	}

	for _, tt := range tests {
		got := Map(tt.baseRoute, tt.name)
		if got != tt.want {
			t.Errorf("Map(%q, %q) = %q, want %q", tt.baseRoute, tt.name, got, tt.want)
		}
	}
}

func TestMapAlwaysRooted(t *testing.T) {
	inputs := [][2]string{{"", ""}, {"/", "index"}, {"a/", "/b"}, {"", "x"}}
	for _, in := range inputs {
		got := Map(in[0], in[1])
		if got == "" || got[0] != '/' || (len(got) > 1 && got[1] == '/') {
			t.Errorf("Map(%q, %q) = %q, want single leading slash", in[0], in[1], got)
		}
	}
}

func TestStripExt(t *testing.T) {
	tests := map[string]string{
		"index.html":   "index",
		"[id].json":    "[id]",
		"bucket.s3":    "bucket",
		"archive.d.ts": "archive.d",
		"README":       "README",
		".html":        ".html",
		"..html":       ".",
	}
	for in, want := range tests {
		if got := StripExt(in); got != want {
			t.Errorf("StripExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"index.html":   ".html",
		"archive.d.ts": ".ts",
		"README":       "",
		".html":        "",
		".env.json":    ".json",
	}
	for in, want := range tests {
		if got := Ext(in); got != want {
			t.Errorf("Ext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/_internal/secret", true},
		{"/_layout", true},
		{"/users/_helpers/format", true},
		{"/users/:id", false},
		{"/", false},
		{"/snake_case/route", false},
		{"/trailing_", false},
	}

	for _, tt := range tests {
		if got := IsIgnored(tt.path); got != tt.want {
			t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParams(t *testing.T) {
	got := Params("/orgs/:org/repos/:repo")
	want := []string{"org", "repo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Params = %v, want %v", got, want)
	}
	if Params("/static/path") != nil {
		t.Error("static path has no params")
	}
}

func TestChiPattern(t *testing.T) {
	tests := map[string]string{
		"/":                     "/",
		"/users/:id":            "/users/{id}",
		"/:org/repos/:repo":     "/{org}/repos/{repo}",
		"/a/:x/b/:y":            "/a/{x}/b/{y}",
		"/time:stamp/no-change": "/time:stamp/no-change",
	}
	for in, want := range tests {
		if got := ChiPattern(in); got != want {
			t.Errorf("ChiPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
