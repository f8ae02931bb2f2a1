// Package query answers a question about a source's text by combining the QA
// backend, the sentence-hint annotator and a chat model.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"notebook/highlight"
)

var (
	ErrNoContext  = errors.New("unable to extract content from the selected source")
	ErrNoQuestion = errors.New("question is empty")
)

const (
	msgBackendFailed = "Error retrieving information from the backend API."
	msgChatFailed    = "Error getting a response from the chatbot."
)

type (
	// BackendAnswer is the structured response of the QA backend.
	BackendAnswer struct {
		Text       string
		Highlights []highlight.Highlight
		Spans      []highlight.Span
	}

	Answerer interface {
		Answer(ctx context.Context, question, text string) (BackendAnswer, error)
	}

	// Hinter returns indices into the sentence split of text that look
	// relevant to the question.
	Hinter interface {
		Hints(ctx context.Context, question, text string) ([]int, error)
	}

	Chatter interface {
		Chat(ctx context.Context, prompt string) (string, error)
	}

	Options struct {
		Segmenter        highlight.Segmenter
		ChatContextLimit int
	}

	Answer struct {
		ID         string
		Question   string
		Text       string
		Highlights highlight.MergedSet
		Spans      []highlight.Span
		Sentences  []string
	}

	Service struct {
		answerer Answerer
		hinter   Hinter
		chatter  Chatter
		opts     Options
	}
)

func NewService(a Answerer, h Hinter, c Chatter, opts Options) *Service {
	if opts.Segmenter == nil {
		opts.Segmenter = highlight.PunctuationSegmenter{}
	}
	return &Service{answerer: a, hinter: h, chatter: c, opts: opts}
}

// Ask runs the three collaborators concurrently. Only an empty question or
// context, or ctx ending, is an error; collaborator failures degrade the
// answer instead.
func (s *Service) Ask(ctx context.Context, question, text string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, ErrNoQuestion
	}
	if strings.TrimSpace(text) == "" {
		return Answer{}, ErrNoContext
	}

	ans := Answer{
		ID:        uuid.NewString(),
		Question:  question,
		Sentences: s.opts.Segmenter.Split(text),
	}
	log := slog.With("query_id", ans.ID)

	var (
		backend             BackendAnswer
		hints               []int
		chat                string
		backendErr, hintErr error
		chatErr             error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		backend, backendErr = s.answerer.Answer(gctx, question, text)
		return nil
	})
	g.Go(func() error {
		hints, hintErr = s.hinter.Hints(gctx, question, text)
		return nil
	})
	g.Go(func() error {
		chat, chatErr = s.chatter.Chat(gctx, s.chatPrompt(question, text))
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}

	var b strings.Builder
	if backendErr != nil {
		log.Warn("backend query failed", "err", backendErr)
		b.WriteString(msgBackendFailed)
		backend = BackendAnswer{}
	} else {
		b.WriteString(backend.Text)
		ans.Spans = highlight.FilterSpans(backend.Spans, backend.Text)
		if block := highlight.FormatSpans(ans.Spans); block != "" {
			b.WriteString("\n\n")
			b.WriteString(block)
		}
	}

	if hintErr != nil {
		log.Warn("sentence hints failed", "err", hintErr)
		hints = nil
	}
	ans.Highlights = highlight.Combine(backend.Highlights, hints, ans.Sentences)

	b.WriteString("\n\nChatbot Response:\n")
	if chatErr != nil {
		log.Warn("chat failed", "err", chatErr)
		b.WriteString(msgChatFailed)
	} else {
		b.WriteString(chat)
	}
	ans.Text = b.String()

	log.Info("query answered", "highlights", len(ans.Highlights), "spans", len(ans.Spans))
	return ans, nil
}

func (s *Service) chatPrompt(question, text string) string {
	if limit := s.opts.ChatContextLimit; limit > 0 {
		if r := []rune(text); len(r) > limit {
			text = string(r[:limit]) + "..."
		}
	}
	return fmt.Sprintf("Question: %s\n\nContext: %s", question, text)
}
