package watch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPollDetectsChanges(t *testing.T) {
	root := t.TempDir()
	index := filepath.Join(root, "index.html")
	about := filepath.Join(root, "about.json")
	write(t, index, "home")
	write(t, about, "{}")

	w := New(root)
	if got := w.Poll(); got != nil {
		t.Fatalf("first poll = %v, want nil", got)
	}
	if got := w.Poll(); len(got) != 0 {
		t.Fatalf("unchanged tree reported %v", got)
	}

	added := filepath.Join(root, "users", "[id].yaml")
	write(t, added, "body: user\n")
	write(t, index, "home, now longer")
	if err := os.Remove(about); err != nil {
		t.Fatal(err)
	}

	want := []string{about, index, added}
	if got := w.Poll(); !reflect.DeepEqual(got, want) {
		t.Errorf("Poll() = %v, want %v", got, want)
	}
}

func TestPollIgnores(t *testing.T) {
	root := t.TempDir()
	w := New(root, WithIgnore("node_modules", "*.swp"))
	w.Poll()

	write(t, filepath.Join(root, "node_modules", "x", "index.html"), "x")
	write(t, filepath.Join(root, ".index.html.swp"), "x")

	if got := w.Poll(); len(got) != 0 {
		t.Errorf("ignored files reported: %v", got)
	}
}

func TestRunCallsOnChange(t *testing.T) {
	root := t.TempDir()
	w := New(root, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(changed []string) {
			select {
			case changes <- changed:
			default:
			}
		})
	}()

	path := filepath.Join(root, "index.html")
	deadline := time.After(4 * time.Second)
	for {
		write(t, path, time.Now().String())
		select {
		case got := <-changes:
			if len(got) != 1 || got[0] != path {
				t.Errorf("changed = %v, want [%s]", got, path)
			}
			cancel()
			<-done
			return
		case <-deadline:
			t.Fatal("no change reported")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestRunAfterPollKeepsBaseline(t *testing.T) {
	root := t.TempDir()
	w := New(root, WithInterval(10*time.Millisecond))
	w.Poll()

	path := filepath.Join(root, "added.html")
	write(t, path, "new")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	_ = w.Run(ctx, func(changed []string) {
		got = changed
		cancel()
	})
	if !reflect.DeepEqual(got, []string{path}) {
		t.Errorf("changed = %v, want [%s]", got, path)
	}
}
