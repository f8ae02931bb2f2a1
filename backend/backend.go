// Package backend is the client of the question-answering service that
// returns structured sentence highlights for a question over a text.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"notebook/config"
	"notebook/highlight"
	"notebook/query"
)

const requestTimeout = 2 * time.Minute

// defaultScore is used when the service omits a highlight score.
var defaultScore = decimal.RequireFromString("0.8")

var _ query.Answerer = (*Client)(nil)

type (
	queryRequest struct {
		Question              string  `json:"question"`
		Context               string  `json:"context"`
		Threshold             float64 `json:"threshold"`
		MaxHighlightSentences int     `json:"max_highlight_sentences"`
		ChunkSize             int     `json:"chunk_size"`
		ChunkOverlap          int     `json:"chunk_overlap"`
	}

	queryResponse struct {
		Answer           string           `json:"answer"`
		Confidence       *decimal.Decimal `json:"confidence"`
		Highlights       []wireHighlight  `json:"highlights"`
		MergedHighlights []wireSpan       `json:"merged_highlights"`
	}

	wireHighlight struct {
		Index int              `json:"index"`
		Text  string           `json:"text"`
		Score *decimal.Decimal `json:"score"`
	}

	wireSpan struct {
		StartIndex int              `json:"start_index"`
		EndIndex   int              `json:"end_index"`
		Text       string           `json:"text"`
		AvgScore   *decimal.Decimal `json:"avg_score"`
	}
)

type Client struct {
	cfg  *config.Config
	http *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Answer posts the question and text to the query endpoint.
func (c *Client) Answer(ctx context.Context, question, text string) (query.BackendAnswer, error) {
	body, err := json.Marshal(queryRequest{
		Question:              question,
		Context:               text,
		Threshold:             c.cfg.QueryThreshold,
		MaxHighlightSentences: c.cfg.MaxHighlightSentences,
		ChunkSize:             c.cfg.ChunkSize,
		ChunkOverlap:          c.cfg.ChunkOverlap,
	})
	if err != nil {
		return query.BackendAnswer{}, fmt.Errorf("encoding query: %w", err)
	}

	url := strings.TrimRight(c.cfg.BackendURL, "/") + "/api/query"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return query.BackendAnswer{}, fmt.Errorf("creating query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return query.BackendAnswer{}, fmt.Errorf("posting query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return query.BackendAnswer{}, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return query.BackendAnswer{}, fmt.Errorf("decoding query response: %w", err)
	}
	return qr.toAnswer(), nil
}

func (qr queryResponse) toAnswer() query.BackendAnswer {
	res := query.BackendAnswer{
		Text:       qr.Answer,
		Highlights: make([]highlight.Highlight, 0, len(qr.Highlights)),
		Spans:      make([]highlight.Span, 0, len(qr.MergedHighlights)),
	}
	for _, h := range qr.Highlights {
		res.Highlights = append(res.Highlights, highlight.Highlight{
			Index:      h.Index,
			Text:       h.Text,
			Confidence: confidence(h.Score),
			Origin:     highlight.OriginBackend,
		})
	}
	for _, s := range qr.MergedHighlights {
		res.Spans = append(res.Spans, highlight.Span{
			Start:    s.StartIndex,
			End:      s.EndIndex,
			Text:     s.Text,
			AvgScore: confidence(s.AvgScore),
		})
	}
	return res
}

// confidence defaults a missing score and clamps it to [0, 1].
func confidence(score *decimal.Decimal) float64 {
	d := defaultScore
	if score != nil {
		d = *score
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	if one := decimal.NewFromInt(1); d.GreaterThan(one) {
		d = one
	}
	return d.InexactFloat64()
}
