package sources

import "context"

type (
	// Storage is the persisted shadow of the cache and the tracker.
	Storage interface {
		Get(ctx context.Context, key string) (string, bool, error)
		Set(ctx context.Context, key, value string) error
		Delete(ctx context.Context, keys ...string) error
		Scan(ctx context.Context, prefix string) (map[string]string, error)
	}

	Fetcher interface {
		Fetch(ctx context.Context, locator string) ([]byte, error)
	}

	Transcriber interface {
		Transcribe(ctx context.Context, audio []byte) (string, error)
	}

	Summarizer interface {
		Summarize(ctx context.Context, text string) (string, error)
	}

	// Extractor reports document text through report: once per page, then
	// once with the combined text.
	Extractor interface {
		Extract(ctx context.Context, document []byte, report func(Extraction)) error
	}

	Repo interface {
		DeleteSource(ctx context.Context, id string) error
	}
)
