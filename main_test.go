package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REPORT_CSV_PATH", "")
	t.Setenv("POSTGRES_ENABLED", "false")
	t.Setenv("FETCH_BACKEND", "http")
	t.Setenv("LOG_LEVEL", "error")
}

func newSiteServer(t *testing.T, handler func(offset string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/apa" {
			http.NotFound(w, r)
			return
		}
		status, body := handler(r.URL.Query().Get("s"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunReportsMatchingPrices(t *testing.T) {
	isolateEnv(t)
	srv := newSiteServer(t, func(offset string) (int, string) {
		switch offset {
		case "0":
			return http.StatusOK, `<span class="price">$2500</span> <span class="housing">/ 2br - 700ft</span>` +
				`<span class="price">$900</span> <span class="housing">/ 3br - 900ft</span>`
		case "100":
			return http.StatusOK, `<span class="price">$3500</span> <span class="housing">/ 2br - 950ft</span>`
		}
		return http.StatusOK, "<html>no results</html>"
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"--no-cache", "--site", srv.URL, "--bedrooms", "2"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr: %s)", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"Sourced 2 prices", "$3000.00", "707.11"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunSinglePrice(t *testing.T) {
	isolateEnv(t)
	srv := newSiteServer(t, func(offset string) (int, string) {
		if offset == "0" {
			return http.StatusOK, `<span class="price">$2500</span> <span class="housing">/ 2br ...` +
				`<span class="price">$900</span> <span class="housing">/ 3br ...`
		}
		return http.StatusOK, ""
	})

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--no-cache", "--site", srv.URL, "--bedrooms", "2"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	out := stdout.String()
	if !strings.Contains(out, "Sourced 1 price ") || !strings.Contains(out, "$2500.00") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "Not enough data") {
		t.Errorf("expected insufficient sample note:\n%s", out)
	}
}

func TestRunNothingFound(t *testing.T) {
	isolateEnv(t)
	srv := newSiteServer(t, func(string) (int, string) { return http.StatusOK, "<html></html>" })

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--no-cache", "--site", srv.URL, "--bedrooms", "4"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Nothing found for that search.") {
		t.Errorf("output:\n%s", stdout.String())
	}
}

func TestRunFetchFailure(t *testing.T) {
	isolateEnv(t)
	srv := newSiteServer(t, func(offset string) (int, string) {
		if offset == "1200" {
			return http.StatusInternalServerError, "boom"
		}
		return http.StatusOK, ""
	})

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--no-cache", "--site", srv.URL, "--bedrooms", "1"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code: got %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "s=1200") {
		t.Errorf("error should name the failing request:\n%s", stderr.String())
	}
	if strings.Contains(stdout.String(), "Sourced") || strings.Contains(stdout.String(), "Nothing found") {
		t.Errorf("no report expected after a failed fetch:\n%s", stdout.String())
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Errorf("--version exit code: got %d", code)
	}
	if !strings.Contains(stdout.String(), version) {
		t.Errorf("--version output: %q", stdout.String())
	}

	if code := run([]string{"-h"}, &stdout, &stderr); code != 0 {
		t.Errorf("-h exit code: got %d", code)
	}
	if code := run([]string{"--bogus"}, &stdout, &stderr); code != 2 {
		t.Errorf("unknown flag exit code: got %d, want 2", code)
	}
}

func TestParseFlagsNoCache(t *testing.T) {
	opts, err := parseFlags([]string{"--no-cache"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if opts.cache {
		t.Error("--no-cache should disable the cache")
	}

	opts, _ = parseFlags(nil, &bytes.Buffer{})
	if !opts.cache {
		t.Error("cache should be on by default")
	}
}

func TestParseFlagsLastCacheFlagWins(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--no-cache", "--cache"}, true},
		{[]string{"--cache", "--no-cache"}, false},
		{[]string{"--cache"}, true},
	}
	for _, tt := range tests {
		opts, err := parseFlags(tt.args, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("parseFlags(%v): %v", tt.args, err)
		}
		if opts.cache != tt.want {
			t.Errorf("parseFlags(%v).cache = %v; want %v", tt.args, opts.cache, tt.want)
		}
	}
}
