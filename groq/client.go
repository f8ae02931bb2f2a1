// Package groq talks to an OpenAI-compatible Groq API for transcription,
// summaries, sentence hints and chat.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"notebook/config"
	"notebook/highlight"
	"notebook/query"
	"notebook/sources"
)

const requestTimeout = 5 * time.Minute

var (
	_ sources.Transcriber = (*Client)(nil)
	_ sources.Summarizer  = (*Client)(nil)
	_ query.Hinter        = (*Client)(nil)
	_ query.Chatter       = (*Client)(nil)
)

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type Client struct {
	cfg     *config.Config
	http    *http.Client
	limiter *rate.Limiter
	backoff func(attempt int) time.Duration

	// Segmenter splits text for Hints. Indices returned by Hints refer to
	// this split.
	Segmenter highlight.Segmenter
}

func New(cfg *config.Config) *Client {
	limit := rate.Inf
	if cfg.RateLimitPerMin > 0 {
		limit = rate.Limit(float64(cfg.RateLimitPerMin) / 60.0)
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: requestTimeout},
		limiter:   rate.NewLimiter(limit, 1),
		backoff:   exponential,
		Segmenter: highlight.PunctuationSegmenter{},
	}
}

// exponential waits 1s, 2s, 4s...
func exponential(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// do sends the request built by newReq, retrying network errors, 429 and 5xx
// up to MaxRetries attempts, and decodes a 200 JSON body into out. newReq is
// called once per attempt so the body can be replayed.
func (c *Client) do(ctx context.Context, op string, newReq func(ctx context.Context) (*http.Request, error), out any) error {
	attempts := max(c.cfg.MaxRetries, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			slog.Warn("groq request failed, retrying",
				"op", op,
				"attempt", attempt,
				"backoff", wait,
				"err", lastErr)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w", op, ctx.Err())
			case <-timer.C:
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limiter: %w", op, err)
		}

		req, err := newReq(ctx)
		if err != nil {
			return fmt.Errorf("%s: create request: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.GroqAPIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", op, ctx.Err())
			}
			lastErr = err
			continue
		}

		err = decode(resp, out)
		if err == nil {
			return nil
		}
		if se, ok := err.(*StatusError); !ok || !se.retryable() {
			return fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.GroqBaseURL, "/") + path
}

// clip cuts s to at most n runes. n <= 0 means no limit.
func clip(s string, n int) (string, bool) {
	if n <= 0 {
		return s, false
	}
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}
