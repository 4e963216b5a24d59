package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/morikuni/failure/v2"
)

func TestFetchParsesBody(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"reference":"US-0001"}`))
	}))
	defer srv.Close()

	res, err := Fetch(context.Background(), Request{
		URL: srv.URL,
		Parse: func(body []byte) (any, error) {
			var m map[string]any
			if err := json.Unmarshal(body, &m); err != nil {
				return nil, err
			}
			return m, nil
		},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := map[string]any{"reference": "US-0001"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("Fetch() data mismatch (-want +got):\n%s", diff)
	}
	if res.ETag != `"v1"` {
		t.Errorf("Fetch() etag = %q, want %q", res.ETag, `"v1"`)
	}
	if res.NotModified {
		t.Error("Fetch() reported NotModified for a 200 response")
	}
	if !strings.HasPrefix(gotUserAgent, "app-polo/") {
		t.Errorf("User-Agent = %q, want app-polo/<version>", gotUserAgent)
	}
}

func TestFetchRawPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw bytes"))
	}))
	defer srv.Close()

	res, err := Fetch(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	body, ok := res.Data.([]byte)
	if !ok {
		t.Fatalf("Fetch() data type = %T, want []byte", res.Data)
	}
	if string(body) != "raw bytes" {
		t.Errorf("Fetch() data = %q, want %q", body, "raw bytes")
	}
}

func TestFetchNotModified(t *testing.T) {
	parseCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	res, err := Fetch(context.Background(), Request{
		URL:  srv.URL,
		ETag: `"v1"`,
		Parse: func(body []byte) (any, error) {
			parseCalled = true
			return string(body), nil
		},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !res.NotModified {
		t.Error("Fetch() NotModified = false, want true")
	}
	if res.ETag != `"v1"` {
		t.Errorf("Fetch() etag = %q, want prior etag", res.ETag)
	}
	if parseCalled {
		t.Error("Parse was called for a 304 response")
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), Request{URL: srv.URL})
	if err == nil {
		t.Fatal("Fetch() error = nil, want failure")
	}
	if code := failure.CodeOf(err); code != ErrFetchFailed {
		t.Errorf("Fetch() error code = %v, want %v", code, ErrFetchFailed)
	}
}

func TestFetchParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), Request{
		URL: srv.URL,
		Parse: func(body []byte) (any, error) {
			var m map[string]any
			return m, json.Unmarshal(body, &m)
		},
	})
	if err == nil {
		t.Fatal("Fetch() error = nil, want failure")
	}
	if code := failure.CodeOf(err); code != ErrParseFailed {
		t.Errorf("Fetch() error code = %v, want %v", code, ErrParseFailed)
	}
}
