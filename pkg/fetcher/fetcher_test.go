package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStaticFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, `<html><head><title> Listing </title></head><body><ul><li>%s</li></ul></body></html>`, r.Header.Get("X-Probe"))
		case "/blocked":
			fmt.Fprint(w, `<html><head><title>Just a moment...</title></head><body></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewStatic(Config{Timeout: 5 * time.Second})
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		c, err := f.Fetch(ctx, srv.URL+"/ok", Options{Headers: map[string]string{"X-Probe": "probe"}})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if c.Title != "Listing" || c.StatusCode != 200 {
			t.Errorf("title = %q, status = %d", c.Title, c.StatusCode)
		}
		if want := "<li>probe</li>"; !strings.Contains(c.HTML, want) {
			t.Errorf("HTML missing %q: %s", want, c.HTML)
		}
	})

	t.Run("not found", func(t *testing.T) {
		c, err := f.Fetch(ctx, srv.URL+"/missing", Options{})
		if !errors.Is(err, ErrHTTPStatus) {
			t.Fatalf("error = %v, want ErrHTTPStatus", err)
		}
		if c.StatusCode != 404 {
			t.Errorf("status = %d", c.StatusCode)
		}
	})

	t.Run("challenge page", func(t *testing.T) {
		if _, err := f.Fetch(ctx, srv.URL+"/blocked", Options{}); !errors.Is(err, ErrAntiBot) {
			t.Errorf("error = %v, want ErrAntiBot", err)
		}
	})
}

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		title string
		html  string
		want  string
	}{
		{"Just a moment...", "", "cloudflare"},
		{"", `<div class="cf-turnstile"></div>`, "cloudflare-turnstile"},
		{"", `<script src="https://hcaptcha.com/1/api.js"></script>`, "hcaptcha"},
		{"", `<div class="g-recaptcha"></div>`, "recaptcha"},
		{"Access Denied", "", "anti-bot"},
		{"쿠팡!", `<ul><li>item</li></ul>`, ""},
	}
	for _, tt := range tests {
		if got := DetectChallenge(tt.title, tt.html); got != tt.want {
			t.Errorf("DetectChallenge(%q, %q) = %q, want %q", tt.title, tt.html, got, tt.want)
		}
	}
}

func TestNeedsJavaScript(t *testing.T) {
	tests := []struct {
		html string
		want bool
	}{
		{`<body><div id="root"></div></body>`, true},
		{`<noscript>Please enable JavaScript to continue</noscript>`, true},
		{`<noscript><img src="pixel"/></noscript><ul><li>x</li></ul>`, false},
		{`<ul><li>x</li></ul>`, false},
	}
	for _, tt := range tests {
		if got := needsJavaScript(Content{HTML: tt.html}); got != tt.want {
			t.Errorf("needsJavaScript(%q) = %v, want %v", tt.html, got, tt.want)
		}
	}
}

type fakeFetcher struct {
	name    string
	content Content
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ Options) (Content, error) {
	f.calls++
	c := f.content
	c.URL = url
	return c, f.err
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return f.name }

func TestAutoFetcher(t *testing.T) {
	tests := []struct {
		name          string
		static        *fakeFetcher
		wantDynamic   bool
		wantErrIsHTTP bool
	}{
		{"static ok", &fakeFetcher{content: Content{HTML: "<ul></ul>"}}, false, false},
		{"app shell", &fakeFetcher{content: Content{HTML: `<div id="app"></div>`}}, true, false},
		{"blocked", &fakeFetcher{err: ErrAntiBot}, true, false},
		{"not found", &fakeFetcher{content: Content{StatusCode: 404}, err: fmt.Errorf("%w: 404", ErrHTTPStatus)}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dynamic := &fakeFetcher{name: "dynamic", content: Content{HTML: "rendered"}}
			f := &AutoFetcher{static: tt.static, dynamic: dynamic}

			_, err := f.Fetch(context.Background(), "https://example.test", Options{})
			if (dynamic.calls == 1) != tt.wantDynamic {
				t.Errorf("dynamic calls = %d, want dynamic = %v", dynamic.calls, tt.wantDynamic)
			}
			if errors.Is(err, ErrHTTPStatus) != tt.wantErrIsHTTP {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	f, err := New(ModeStatic, Config{})
	if err != nil || f.Type() != "static" {
		t.Errorf("New(static) = %v, %v", f, err)
	}
	if _, err := New("carrier-pigeon", Config{}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFindExecutable(t *testing.T) {
	installed := map[string]string{"chromium": "/usr/bin/chromium"}
	lookPath := func(name string) (string, error) {
		if p, ok := installed[name]; ok {
			return p, nil
		}
		return "", errors.New("not found")
	}

	if got := findExecutable([]string{"google-chrome", "chromium"}, lookPath); got != "/usr/bin/chromium" {
		t.Errorf("findExecutable() = %q", got)
	}
	if got := findExecutable([]string{"google-chrome"}, lookPath); got != "" {
		t.Errorf("findExecutable() = %q, want empty", got)
	}
}

func TestNewDynamic_Stealth(t *testing.T) {
	f, err := NewDynamic(Config{Stealth: true, ExecPath: "/opt/chrome/chrome"})
	if err != nil {
		t.Fatalf("NewDynamic() error = %v", err)
	}
	defer f.Close()
	if !f.config.Stealth || f.config.Timeout != DefaultConfig().Timeout {
		t.Errorf("config = %+v", f.config)
	}
	if len(stealthAllocatorOptions()) == 0 || !strings.Contains(stealthScript, "webdriver") {
		t.Error("stealth mode should add browser flags and the init script")
	}
}
