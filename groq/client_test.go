package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"notebook/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.GroqBaseURL = srv.URL
	cfg.GroqAPIKey = "test-key"
	cfg.RateLimitPerMin = 0

	c := New(cfg)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func writeChat(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func decodeChat(t *testing.T, r *http.Request) chatRequest {
	t.Helper()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("decode request: %v", err)
	}
	return req
}

func TestTranscribe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("model"); got != "whisper-large-v3-turbo" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("response_format = %q", got)
		}
		if r.FormValue("prompt") == "" {
			t.Error("prompt should be sent")
		}
		_, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file: %v", err)
			return
		}
		if fh.Filename != "audio.wav" {
			t.Errorf("filename = %q", fh.Filename)
		}
		w.Write([]byte(`{"text": "  hola, good morning  "}`))
	})

	got, err := c.Transcribe(context.Background(), []byte("RIFF\x00\x00\x00\x00WAVEfmt "))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "hola, good morning" {
		t.Errorf("Transcribe = %q", got)
	}
}

func TestSummarizeClipsInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		req := decodeChat(t, r)
		if req.Model != "llama-3.3-70b-versatile" {
			t.Errorf("model = %q", req.Model)
		}
		if req.MaxTokens != 300 || req.Temperature != 0.5 {
			t.Errorf("max_tokens = %d, temperature = %v", req.MaxTokens, req.Temperature)
		}
		want := "Summarize this transcript concisely:\n\nabcde..."
		if len(req.Messages) != 2 || req.Messages[1].Content != want {
			t.Errorf("messages = %+v", req.Messages)
		}
		writeChat(w, " A short summary. ")
	})
	c.cfg.SummaryInputLimit = 5

	got, err := c.Summarize(context.Background(), "abcdefghij")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "A short summary." {
		t.Errorf("Summarize = %q", got)
	}
}

func TestHints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeChat(t, r)
		if req.Temperature != 0.2 {
			t.Errorf("temperature = %v", req.Temperature)
		}
		writeChat(w, "2, x, 0,2, 9, -1")
	})

	got, err := c.Hints(context.Background(), "Who?", "One. Two. Three.")
	if err != nil {
		t.Fatalf("Hints: %v", err)
	}
	if want := []int{2, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("Hints = %v, want %v", got, want)
	}
}

func TestHintsEmptyText(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeChat(w, "0")
	})

	got, err := c.Hints(context.Background(), "Who?", "   ")
	if err != nil || got != nil {
		t.Errorf("Hints = %v, %v", got, err)
	}
	if calls.Load() != 0 {
		t.Error("no request expected for empty text")
	}
}

func TestRetriesRateLimitAndServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			http.Error(w, "slow down", http.StatusTooManyRequests)
		case 2:
			http.Error(w, "oops", http.StatusBadGateway)
		default:
			writeChat(w, "fine")
		}
	})
	c.cfg.MaxRetries = 3

	got, err := c.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "fine" {
		t.Errorf("Chat = %q", got)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	c.cfg.MaxRetries = 2

	_, err := c.Chat(context.Background(), "hi")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want 503 StatusError", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := c.Chat(context.Background(), "hi")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 StatusError", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	if _, err := c.Chat(context.Background(), "hi"); !errors.Is(err, errNoChoices) {
		t.Errorf("err = %v, want errNoChoices", err)
	}
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		reply string
		n     int
		want  []int
	}{
		{"1,3", 5, []int{1, 3}},
		{"[4, 0]", 5, []int{4, 0}},
		{"none", 5, nil},
		{"5", 5, nil},
		{"1\n1\n2", 3, []int{1, 2}},
	}
	for _, tt := range tests {
		if got := parseIndices(tt.reply, tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseIndices(%q, %d) = %v, want %v", tt.reply, tt.n, got, tt.want)
		}
	}
}
