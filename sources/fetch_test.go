package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFileFetcherLocalAndHTTP(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := (FileFetcher{}).Fetch(ctx, path); err != nil || string(got) != "local" {
		t.Errorf("Fetch(local) = %q, %v", got, err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	f := FileFetcher{Client: srv.Client()}
	if got, err := f.Fetch(ctx, srv.URL+"/a.mp3"); err != nil || string(got) != "remote" {
		t.Errorf("Fetch(http) = %q, %v", got, err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/missing"); err == nil {
		t.Error("Fetch(404) should fail")
	}
}

func TestPlainTextExtractorReportsPagesThenCombined(t *testing.T) {
	var got []Extraction
	err := PlainTextExtractor{}.Extract(context.Background(), []byte(" One. \f\fTwo. "), func(e Extraction) {
		got = append(got, e)
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []Extraction{
		{Page: 1, Text: "One."},
		{Page: 2, Text: ""},
		{Page: 3, Text: "Two."},
		{Text: "One.\n\nTwo.", Combined: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reports, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileFetcherRejectsOversizedSources(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "big.wav")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (FileFetcher{MaxBytes: 4}).Fetch(ctx, path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Fetch(local) err = %v, want ErrTooLarge", err)
	}
	if got, err := (FileFetcher{MaxBytes: 10}).Fetch(ctx, path); err != nil || len(got) != 10 {
		t.Errorf("Fetch(local at limit) = %q, %v", got, err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chunked" {
			for i := 0; i < 5; i++ {
				w.Write([]byte("01"))
				w.(http.Flusher).Flush()
			}
			return
		}
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	f := FileFetcher{Client: srv.Client(), MaxBytes: 4}
	for _, p := range []string{"/sized", "/chunked"} {
		if _, err := f.Fetch(ctx, srv.URL+p); !errors.Is(err, ErrTooLarge) {
			t.Errorf("Fetch(%s) err = %v, want ErrTooLarge", p, err)
		}
	}
}
