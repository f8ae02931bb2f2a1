package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	summarySystemPrompt = "You are an AI assistant specializing in summarizing conversations and transcripts."
	hintSystemPrompt    = "You are an assistant that finds the sentences of a transcript that answer a question."
	chatSystemPrompt    = "You are an AI assistant."
)

type (
	message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model       string    `json:"model"`
		Messages    []message `json:"messages"`
		MaxTokens   int       `json:"max_tokens,omitempty"`
		Temperature float64   `json:"temperature,omitempty"`
	}

	chatResponse struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
)

var errNoChoices = errors.New("response has no choices")

func (c *Client) complete(ctx context.Context, op string, r chatRequest) (string, error) {
	r.Model = c.cfg.ChatModel
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", op, err)
	}

	var res chatResponse
	err = c.do(ctx, op, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/chat/completions"), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &res)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", op, errNoChoices)
	}
	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}

// Summarize condenses a transcript. Input beyond SummaryInputLimit runes is
// cut and marked with "...".
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if clipped, ok := clip(text, c.cfg.SummaryInputLimit); ok {
		text = clipped + "..."
	}
	return c.complete(ctx, "summarize", chatRequest{
		Messages: []message{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Summarize this transcript concisely:\n\n%s", text)},
		},
		MaxTokens:   300,
		Temperature: 0.5,
	})
}

// Hints asks the model which sentences of text answer question. Only the
// first HintContextLimit runes are sent; indices that do not parse or fall
// outside the sent sentences are dropped.
func (c *Client) Hints(ctx context.Context, question, text string) ([]int, error) {
	text, _ = clip(text, c.cfg.HintContextLimit)
	sentences := c.Segmenter.Split(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	reply, err := c.complete(ctx, "hints", chatRequest{
		Messages: []message{
			{Role: "system", Content: hintSystemPrompt},
			{Role: "user", Content: hintPrompt(question, sentences)},
		},
		MaxTokens:   100,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	return parseIndices(reply, len(sentences)), nil
}

func hintPrompt(question string, sentences []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nSentences:\n", question)
	for i, s := range sentences {
		fmt.Fprintf(&b, "%d: %s\n", i, s)
	}
	b.WriteString("\nReply with the 0-based indices of the sentences that best answer the question, " +
		"as a comma-separated list such as 2,5. Reply with the numbers only.")
	return b.String()
}

// parseIndices keeps unique in-range integers in reply order.
func parseIndices(reply string, n int) []int {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '[' || r == ']'
	})

	seen := make(map[int]bool, len(fields))
	var res []int
	for _, f := range fields {
		idx, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		res = append(res, idx)
	}
	return res
}

func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "chat", chatRequest{
		Messages: []message{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 500,
	})
}
