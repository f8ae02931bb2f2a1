// Package sources tracks user sources and the artifacts derived from them:
// transcripts and summaries for audio, extracted text for documents. Each
// source is processed at most once and its artifacts survive restarts.
package sources

import "time"

type Kind string

const (
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindAudio, KindDocument:
		return Kind(s), true
	}
	return "", false
}

type Stage string

const (
	StageIdle         Stage = "idle"
	StageFetching     Stage = "fetching"
	StageTranscribing Stage = "transcribing"
	StageSummarizing  Stage = "summarizing"
	StageExtracting   Stage = "extracting"
	StageCacheHit     Stage = "cache_hit"
	StageDone         Stage = "done"
	StageError        Stage = "error"
)

type (
	Source struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Kind      Kind      `json:"kind"`
		Locator   string    `json:"locator"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Artifact is either a derived text or the reason it could not be
	// produced. An empty transcript is a valid Ok artifact.
	Artifact struct {
		Text string `json:"text"`
		Err  string `json:"err,omitempty"`
	}

	CacheEntry struct {
		SourceID      string    `json:"source_id"`
		Transcript    *Artifact `json:"transcript,omitempty"`
		Summary       *Artifact `json:"summary,omitempty"`
		ExtractedText *Artifact `json:"extracted_text,omitempty"`
	}

	// Fields is a partial CacheEntry. Nil fields are left untouched by an
	// upsert.
	Fields struct {
		Transcript    *Artifact
		Summary       *Artifact
		ExtractedText *Artifact
	}

	// Snapshot is the UI-visible state of the selected source.
	Snapshot struct {
		SourceID string
		Stage    Stage
		Entry    CacheEntry
	}

	// Extraction is one report from a document text extractor: a single page,
	// or the combined text of the whole document.
	Extraction struct {
		Page     int
		Text     string
		Combined bool
	}
)

func Ok(text string) *Artifact {
	return &Artifact{Text: text}
}

func Failed(reason string) *Artifact {
	return &Artifact{Err: reason}
}

func (a *Artifact) OK() bool {
	return a != nil && a.Err == ""
}

// Display returns the text to render: the artifact text, or the failure
// placeholder.
func (a *Artifact) Display() string {
	if a == nil {
		return ""
	}
	if a.Err != "" {
		return a.Err
	}
	return a.Text
}

// ContextText returns the text questions about the source are answered
// against, and false when that text is not available yet.
func (e CacheEntry) ContextText(kind Kind) (string, bool) {
	a := e.Transcript
	if kind == KindDocument {
		a = e.ExtractedText
	}
	if !a.OK() || a.Text == "" {
		return "", false
	}
	return a.Text, true
}
