package router

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestScannerScan(t *testing.T) {
	root := writeTree(t, sampleTree)

	routes, err := NewScanner(root, testTable()).WithLogger(quietLogger()).Scan()
	if err != nil {
		t.Fatal(err)
	}

	type row struct {
		rel    string
		mount  string
		status Status
		strat  string
	}
	var got []row
	for _, r := range routes {
		got = append(got, row{r.RelPath, r.MountPath, r.Status, r.Strategy})
	}

	want := []row{
		{"_partials/nav.html", "/_partials/nav", StatusIgnored, ""},
		{"broken.json", "/broken", StatusLoadable, "json"},
		{"index.html", "/", StatusLoadable, "template"},
		{"index.json", "/", StatusLoadable, "json"},
		{"notes.txt", "/notes", StatusUnsupported, ""},
		{"users/[id].yaml", "/users/:id", StatusLoadable, "mock"},
		{"users/_draft.json", "/users/_draft", StatusIgnored, ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() =\n%v\nwant\n%v", got, want)
	}

	if n := len(Loadable(routes)); n != 4 {
		t.Errorf("Loadable = %d routes, want 4", n)
	}
}

func TestScannerLazyStrategies(t *testing.T) {
	root := writeTree(t, map[string]string{"assets.s3": "bucket: b\n", "ext.so": ""})
	routes, err := NewScanner(root, testTable()).Scan()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range routes {
		if !r.Lazy {
			t.Errorf("%s should be lazy", r.RelPath)
		}
	}
}

func TestScannerRootErrors(t *testing.T) {
	if _, err := NewScanner(filepath.Join(t.TempDir(), "missing"), testTable()).Scan(); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewScanner(file, testTable()).Scan(); err == nil {
		t.Error("expected error for file root")
	}
}

func TestScannerSkipDir(t *testing.T) {
	root := writeTree(t, map[string]string{"a.json": `{}`, "vendor/b.json": `{}`})
	routes, err := NewScanner(root, testTable()).WithSkipDir(func(name string) bool { return name == "vendor" }).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(routes) != 1 || routes[0].RelPath != "a.json" {
		t.Errorf("routes = %+v", routes)
	}
}
