package walk

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		full := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(f), 0644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
	return dir
}

type visit struct {
	name      string
	baseRoute string
}

func record(visits *[]visit, decide func(name, baseRoute string) Control) VisitFunc {
	return func(name, path, baseRoute string) Control {
		*visits = append(*visits, visit{name, baseRoute})
		if decide == nil {
			return Continue()
		}
		return decide(name, baseRoute)
	}
}

func TestWalkDepthFirstOrder(t *testing.T) {
	dir := writeTree(t,
		"b.txt",
		"a/x.txt",
		"a/nested/y.txt",
		"c.txt",
	)

	var got []visit
	result := Walk(dir, record(&got, nil))

	want := []visit{
		{"y.txt", "a/nested"},
		{"x.txt", "a"},
		{"b.txt", ""},
		{"c.txt", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visits = %v, want %v", got, want)
	}
	if !result.IsContinue() {
		t.Errorf("result = %v, want continue", result)
	}
}

func TestWalkPassesFullPath(t *testing.T) {
	dir := writeTree(t, "users/[id].html")

	var gotPath string
	Walk(dir, func(name, path, baseRoute string) Control {
		gotPath = path
		return Continue()
	})

	want := filepath.Join(dir, "users", "[id].html")
	if gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestWalkAbortStopsEverything(t *testing.T) {
	dir := writeTree(t,
		"a/1.txt",
		"a/2.txt",
		"b/3.txt",
		"z.txt",
	)

	var got []visit
	result := Walk(dir, record(&got, func(name, _ string) Control {
		if name == "1.txt" {
			return Abort()
		}
		return Continue()
	}))

	if len(got) != 1 || got[0].name != "1.txt" {
		t.Errorf("visits = %v, want only 1.txt", got)
	}
	if !result.IsAbort() {
		t.Errorf("result = %v, want abort", result)
	}
}

func TestWalkBreakIsLocal(t *testing.T) {
	dir := writeTree(t,
		"a/1.txt",
		"a/2.txt",
		"a/3.txt",
		"b/4.txt",
		"c.txt",
	)

	var got []visit
	result := Walk(dir, record(&got, func(name, _ string) Control {
		if name == "1.txt" {
			return Break()
		}
		return Continue()
	}))

	var names []string
	for _, v := range got {
		names = append(names, v.name)
	}
	want := []string{"1.txt", "4.txt", "c.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("visited = %v, want %v", names, want)
	}
	if !result.IsContinue() {
		t.Errorf("result = %v, want continue", result)
	}
}

func TestWalkBreakAtRootStopsRootOnly(t *testing.T) {
	dir := writeTree(t, "a.txt", "b.txt", "sub/c.txt")

	var got []visit
	Walk(dir, record(&got, func(name, _ string) Control {
		if name == "a.txt" {
			return Break()
		}
		return Continue()
	}))

	// sub/ sorts after a.txt and b.txt, so nothing else is visited.
	if len(got) != 1 {
		t.Errorf("visits = %v, want only a.txt", got)
	}
}

func TestWalkTerminalPropagates(t *testing.T) {
	dir := writeTree(t,
		"a/deep/er/found.txt",
		"a/later.txt",
		"b.txt",
	)

	var got []visit
	result := Walk(dir, record(&got, func(name, baseRoute string) Control {
		if name == "found.txt" {
			return Terminal(baseRoute)
		}
		return Continue()
	}))

	if !result.IsTerminal() {
		t.Fatalf("result = %v, want terminal", result)
	}
	if result.Value() != "a/deep/er" {
		t.Errorf("Value() = %v, want a/deep/er", result.Value())
	}
	if len(got) != 1 {
		t.Errorf("visits = %v, want only found.txt", got)
	}
}

func TestWalkMissingRootIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	called := false
	result := Walk(filepath.Join(t.TempDir(), "missing"), func(string, string, string) Control {
		called = true
		return Continue()
	}, WithLogger(logger))

	if called {
		t.Error("visitor should not be called")
	}
	if !result.IsContinue() {
		t.Errorf("result = %v, want continue", result)
	}
	out := buf.String()
	if !strings.Contains(out, "code=E100") {
		t.Errorf("log = %q, want E100", out)
	}
	if strings.Contains(out, "no such file") {
		t.Errorf("log = %q, cause must be hidden without debug", out)
	}
}

func TestWalkDebugIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Walk(filepath.Join(t.TempDir(), "missing"), func(string, string, string) Control {
		return Continue()
	}, WithLogger(logger), WithDebug(true))

	if !strings.Contains(buf.String(), "no such file") {
		t.Errorf("log = %q, want cause with debug", buf.String())
	}
}

func TestWalkUnreadableSubtreeIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := writeTree(t, "a/1.txt", "b/2.txt", "c/3.txt")
	locked := filepath.Join(dir, "b")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	var got []visit
	Walk(dir, record(&got, nil), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	var names []string
	for _, v := range got {
		names = append(names, v.name)
	}
	want := []string{"1.txt", "3.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("visited = %v, want %v", names, want)
	}
}

func TestWalkVanishedSubtreeIsSkipped(t *testing.T) {
	dir := writeTree(t, "x/a.txt", "x/b/c.txt", "y/z.txt")

	var buf bytes.Buffer
	var got []visit
	result := Walk(dir, record(&got, func(name, _ string) Control {
		if name == "a.txt" {
			if err := os.RemoveAll(filepath.Join(dir, "x", "b")); err != nil {
				t.Fatal(err)
			}
		}
		return Continue()
	}), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	want := []visit{{"a.txt", "x"}, {"z.txt", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visits = %v, want %v", got, want)
	}
	if !result.IsContinue() {
		t.Errorf("result = %v, want continue", result)
	}
	if !strings.Contains(buf.String(), "code=E100") {
		t.Errorf("log = %q, want E100", buf.String())
	}
}

func TestWalkFailureLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Walk(filepath.Join(t.TempDir(), "missing"), func(string, string, string) Control {
		return Continue()
	}, WithLogger(logger), WithFailureLevel(slog.LevelDebug))

	if buf.Len() != 0 {
		t.Errorf("log = %q, want nothing at info level", buf.String())
	}

	buf.Reset()
	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Walk(filepath.Join(t.TempDir(), "missing"), func(string, string, string) Control {
		return Continue()
	}, WithLogger(logger), WithFailureLevel(slog.LevelDebug))

	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "code=E100") {
		t.Errorf("log = %q, want E100 at debug", buf.String())
	}
}

func TestWalkSymlinkIsVisitedAsFile(t *testing.T) {
	dir := writeTree(t, "real/inner.txt")
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	var got []visit
	Walk(dir, record(&got, nil))

	want := []visit{{"link", ""}, {"inner.txt", "real"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visits = %v, want %v", got, want)
	}
}

func TestWalkSkipDir(t *testing.T) {
	dir := writeTree(t, ".git/config", "node_modules/x/routex.json", "app/routex.yaml")

	var got []visit
	Walk(dir, record(&got, nil), WithSkipDir(func(name string) bool {
		return name == ".git" || name == "node_modules"
	}))

	want := []visit{{"routex.yaml", "app"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visits = %v, want %v", got, want)
	}
}

func TestControlString(t *testing.T) {
	tests := map[string]Control{
		"continue": Continue(),
		"break":    Break(),
		"abort":    Abort(),
		"terminal": Terminal(42),
	}
	for want, c := range tests {
		if c.String() != want {
			t.Errorf("String() = %q, want %q", c.String(), want)
		}
	}
	if Abort().Value() != nil {
		t.Error("Abort carries no value")
	}
}
