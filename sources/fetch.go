package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrTooLarge is returned by FileFetcher when a source exceeds MaxBytes.
var ErrTooLarge = errors.New("source exceeds size limit")

// FileFetcher reads source bytes from a local path or an http(s) URL. When
// MaxBytes is positive, reading stops and fails once it is exceeded.
type FileFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

var _ Fetcher = FileFetcher{}

func (f FileFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if !strings.HasPrefix(locator, "http://") && !strings.HasPrefix(locator, "https://") {
		file, err := os.Open(locator)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", locator, err)
		}
		defer file.Close()

		data, err := f.read(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", locator, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: status %d", locator, resp.StatusCode)
	}
	if f.MaxBytes > 0 && resp.ContentLength > f.MaxBytes {
		return nil, fmt.Errorf("downloading %s: %d bytes: %w", locator, resp.ContentLength, ErrTooLarge)
	}
	data, err := f.read(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", locator, err)
	}
	return data, nil
}

func (f FileFetcher) read(r io.Reader) ([]byte, error) {
	if f.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("more than %d bytes: %w", f.MaxBytes, ErrTooLarge)
	}
	return data, nil
}

// PlainTextExtractor extracts text documents whose pages are separated by
// form feeds.
type PlainTextExtractor struct{}

var _ Extractor = PlainTextExtractor{}

func (PlainTextExtractor) Extract(ctx context.Context, document []byte, report func(Extraction)) error {
	if !utf8.Valid(document) {
		return errors.New("document is not valid UTF-8 text")
	}

	var pages []string
	for i, p := range bytes.Split(document, []byte{'\f'}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(string(p))
		pages = append(pages, text)
		report(Extraction{Page: i + 1, Text: text})
	}

	report(Extraction{Text: joinPages(pages), Combined: true})
	return nil
}

func joinPages(pages []string) string {
	var nonEmpty []string
	for _, p := range pages {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
