package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/Huahuatgc/ribao/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestClient(t *testing.T, handler http.Handler, maxBody int64) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.FetcherConfig{
		RequestTimeout:  5 * time.Second,
		MaxBodySize:     maxBody,
		UserAgent:       "ribao-test",
		IdleConnTimeout: time.Second,
		MaxIdleConns:    4,
	}
	client := NewClient(cfg, testLogger)
	t.Cleanup(client.Close)
	return client, srv.URL
}

func TestGet(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "ribao-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		_, _ = w.Write([]byte("hello"))
	})
	client, url := newTestClient(t, handler, 1<<20)

	resp, err := client.Get(context.Background(), Request{URL: url})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "hello" || resp.Truncated {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetAppendsQuery(t *testing.T) {
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("{}"))
	})
	client, url := newTestClient(t, handler, 1<<20)

	req := Request{URL: url + "?a=1"}
	req.Query = map[string][]string{"token": {"abc"}}
	if _, err := client.Get(context.Background(), req); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(gotQuery, "a=1") || !strings.Contains(gotQuery, "token=abc") {
		t.Errorf("query = %q, want both existing and added parameters", gotQuery)
	}
}

func TestGetStatusError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	client, url := newTestClient(t, handler, 1<<20)

	_, err := client.Get(context.Background(), Request{URL: url})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", fetchErr.StatusCode)
	}
}

func TestGetTruncatesOversizedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	})
	client, url := newTestClient(t, handler, 10)

	resp, err := client.Get(context.Background(), Request{URL: url})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.Truncated {
		t.Error("Truncated = false, want true")
	}
	if len(resp.Body) != 10 {
		t.Errorf("len(Body) = %d, want 10", len(resp.Body))
	}
}

func TestGetDecompressesBrotli(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write([]byte(`{"ok": true}`))
		_ = bw.Close()
	})
	client, url := newTestClient(t, handler, 1<<20)

	resp, err := client.Get(context.Background(), Request{URL: url})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != `{"ok": true}` {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestGetJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "value", "count": 3}`))
	})
	client, url := newTestClient(t, handler, 1<<20)

	var out struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := client.GetJSON(context.Background(), Request{URL: url}, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Name != "value" || out.Count != 3 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestGetJSONRejectsTruncatedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "` + strings.Repeat("x", 100) + `"}`))
	})
	client, url := newTestClient(t, handler, 16)

	var out map[string]any
	if err := client.GetJSON(context.Background(), Request{URL: url}, &out); err == nil {
		t.Fatal("expected an error for a truncated JSON body")
	}
}

func TestGetJSONParseError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	client, url := newTestClient(t, handler, 1<<20)

	var out map[string]any
	err := client.GetJSON(context.Background(), Request{URL: url}, &out)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}
