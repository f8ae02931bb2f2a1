package highlight

import (
	"strings"
	"unicode"
)

// Segmenter splits text into sentences. Highlight indices, hint prompts and
// view matching must all use the same Segmenter for a given text.
type Segmenter interface {
	Split(text string) []string
}

// PunctuationSegmenter ends a sentence at '.', '!' or '?' followed by
// whitespace. It knows nothing about abbreviations or decimals.
type PunctuationSegmenter struct{}

func (PunctuationSegmenter) Split(text string) []string {
	return split(text, false)
}

// WideSegmenter also ends a sentence at the full-width terminators 。！？,
// which are not followed by whitespace in CJK text.
type WideSegmenter struct{}

func (WideSegmenter) Split(text string) []string {
	return split(text, true)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isWideTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func split(text string, wide bool) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var (
		res   []string
		start int
	)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		boundary := wide && isWideTerminator(r)
		if !boundary && isTerminator(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			boundary = true
		}
		if !boundary {
			continue
		}

		res = append(res, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		res = append(res, string(runes[start:]))
	}
	return res
}
