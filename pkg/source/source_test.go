package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/gleaner/pkg/fetcher"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func names(sources []Source) string {
	var out []string
	for _, s := range sources {
		out = append(out, filepath.Base(s.Name()))
	}
	return strings.Join(out, ",")
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"catalog_1.txt", "catalog_2.txt", "catalog_10.txt", "other.txt"} {
		writeFile(t, dir, n, "<ul><li>x</li></ul>")
	}

	sources, err := Expand([]string{
		filepath.Join(dir, "catalog_*.txt"),
		filepath.Join(dir, "missing.txt"),
		filepath.Join(dir, "other.txt"),
		"https://example.test/list",
	}, nil, fetcher.Options{}, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := names(sources); got != "catalog_1.txt,catalog_2.txt,catalog_10.txt,other.txt,list" {
		t.Errorf("Expand() = %s", got)
	}
	if _, ok := sources[4].(URL); !ok {
		t.Errorf("expected URL source, got %T", sources[4])
	}

	if _, err := Expand([]string{"[bad"}, nil, fetcher.Options{}, 0); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"a2", "a10", true},
		{"a10", "a2", false},
		{"a02", "a3", true},
		{"a", "b", true},
		{"a", "a1", true},
		{"x", "x", false},
	}
	for _, tt := range tests {
		if got := naturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("naturalLess(%q, %q) = %v", tt.a, tt.b, got)
		}
	}
}

func TestFile_Load(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ok := writeFile(t, dir, "ok.html", "<p>hi</p>")
	if got, err := (File{Path: ok}).Load(ctx); err != nil || got != "<p>hi</p>" {
		t.Errorf("Load() = %q, %v", got, err)
	}

	blank := writeFile(t, dir, "blank.html", "  \n")
	if _, err := (File{Path: blank}).Load(ctx); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}

	if _, err := (File{Path: ok, MaxBytes: 4}).Load(ctx); !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}

	if _, err := (File{Path: filepath.Join(dir, "nope")}).Load(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want not-exist", err)
	}
}

func TestURL_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<ul><li>remote</li></ul>`)
	}))
	defer srv.Close()

	f := fetcher.NewStatic(fetcher.Config{Timeout: 5 * time.Second})
	got, err := URL{Address: srv.URL + "/list", Fetcher: f}.Load(context.Background())
	if err != nil || !strings.Contains(got, "remote") {
		t.Errorf("Load() = %q, %v", got, err)
	}

	_, err = URL{Address: srv.URL + "/gone", Fetcher: f}.Load(context.Background())
	if !errors.Is(err, fetcher.ErrHTTPStatus) {
		t.Errorf("error = %v, want ErrHTTPStatus", err)
	}

	if _, err := (URL{Address: "https://example.test"}).Load(context.Background()); err == nil {
		t.Error("expected error without fetcher")
	}
}

func TestCollect_FailureBoundary(t *testing.T) {
	sources := []Source{
		String{Label: "first", HTML: "a b"},
		String{Label: "empty", HTML: ""},
		String{Label: "boom", HTML: "panic"},
		String{Label: "bad", HTML: "error"},
		String{Label: "last", HTML: "c"},
	}
	extract := func(markup string) ([]string, error) {
		switch markup {
		case "panic":
			panic("unexpected layout")
		case "error":
			return []string{"partial"}, errors.New("broken table")
		}
		return strings.Fields(markup), nil
	}

	results := Collect(context.Background(), sources, extract)
	if len(results) != len(sources) {
		t.Fatalf("len = %d", len(results))
	}
	if got := strings.Join(Records(results), ","); got != "a,b,c" {
		t.Errorf("Records() = %s, want a,b,c", got)
	}

	failed := Failed(results)
	if len(failed) != 3 {
		t.Fatalf("failed = %d, want 3", len(failed))
	}
	if !errors.Is(failed[0].Err, ErrEmptyInput) {
		t.Errorf("empty source error = %v", failed[0].Err)
	}
	if !strings.Contains(failed[1].Err.Error(), "unexpected layout") {
		t.Errorf("panic error = %v", failed[1].Err)
	}
	if failed[2].Records != nil {
		t.Error("a failed source contributes no records")
	}
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Collect(ctx, []Source{String{Label: "x", HTML: "x"}}, func(string) ([]string, error) {
		t.Error("extract should not run")
		return nil, nil
	})
	if len(results) != 1 || !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("results = %+v", results)
	}
}
