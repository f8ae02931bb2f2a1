// Package view renders a source's text in the terminal and highlights the
// sentences matching the latest broadcast.
package view

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notebook/highlight"
)

// Model is one text view. Every view subscribed to the same bus re-runs the
// match against its own text, so a transcript view and a summary view can
// both react to one broadcast.
type Model struct {
	title  string
	text   string
	needle string
	seg    highlight.Segmenter
	sub    *highlight.Subscription
	width  int
}

func New(title, text string, seg highlight.Segmenter, sub *highlight.Subscription) Model {
	if seg == nil {
		seg = highlight.PunctuationSegmenter{}
	}
	return Model{title: title, text: text, seg: seg, sub: sub}
}

// Listen waits for the next broadcast on sub. A closed subscription yields a
// nil message, which stops the loop.
func Listen(sub *highlight.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		b, ok := <-sub.C
		if !ok {
			return nil
		}
		return HighlightMsg{Sentence: b.Sentence}
	}
}

func (m Model) Init() tea.Cmd {
	return Listen(m.sub)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HighlightMsg:
		m.needle = msg.Sentence
		return m, Listen(m.sub)

	case TextMsg:
		m.text = msg.Text
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.sub != nil {
				m.sub.Unsubscribe()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) Needle() string {
	return m.needle
}

func (m Model) Matches() []highlight.Match {
	return highlight.Locate(m.seg, m.text, m.needle)
}

// ScrollTarget returns the index of the first highlighted sentence, or -1.
func (m Model) ScrollTarget() int {
	return highlight.FirstMatch(m.Matches())
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	matches := m.Matches()
	if len(matches) == 0 {
		b.WriteString(DimStyle.Render("(empty)"))
		b.WriteString("\n")
		return b.String()
	}

	body := lipgloss.NewStyle()
	if m.width > markerWidth {
		body = body.Width(m.width - markerWidth)
	}

	target := highlight.FirstMatch(matches)
	for _, match := range matches {
		marker := noMarker
		if match.Index == target {
			marker = MarkerStyle.Render(scrollMarker)
		}
		line := match.Sentence
		if match.Matched {
			line = HighlightStyle.Render(line)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, marker, body.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
