package highlight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Combine merges structured backend highlights with bare sentence indices
// from the secondary annotator. sentences is the split of the context the
// hints were computed against. Backend entries always win; hints outside the
// split are dropped. The result does not depend on input order.
func Combine(backend []Highlight, hints []int, sentences []string) MergedSet {
	res := make(MergedSet, len(backend)+len(hints))

	for _, h := range backend {
		h.Origin = OriginBackend
		if h.Text == "" && h.Index >= 0 && h.Index < len(sentences) {
			h.Text = sentences[h.Index]
		}
		if cur, ok := res[h.Index]; ok && !outranks(h, cur) {
			continue
		}
		res[h.Index] = h
	}

	for _, idx := range hints {
		if idx < 0 || idx >= len(sentences) {
			continue
		}
		if _, ok := res[idx]; ok {
			continue
		}
		res[idx] = Highlight{
			Index:      idx,
			Text:       sentences[idx],
			Confidence: DefaultHintConfidence,
			Origin:     OriginModel,
		}
	}

	return res
}

// outranks orders duplicate backend entries for the same index.
func outranks(a, b Highlight) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.Text < b.Text
}

// FilterSpans drops spans whose trimmed text is exactly the trimmed answer.
func FilterSpans(spans []Span, answer string) []Span {
	answer = strings.TrimSpace(answer)

	var res []Span
	for _, s := range spans {
		if strings.TrimSpace(s.Text) == answer {
			continue
		}
		res = append(res, s)
	}
	return res
}

var (
	hundred = decimal.NewFromInt(100)
	maxPct  = decimal.NewFromInt(99)
)

// FormatSpans renders spans as a "Relevant passages" block. Confidence is
// shown as a whole percentage capped at 99.
func FormatSpans(spans []Span) string {
	if len(spans) == 0 {
		return ""
	}

	lines := make([]string, len(spans))
	for i, s := range spans {
		pct := decimal.NewFromFloat(s.AvgScore).Mul(hundred)
		if pct.GreaterThan(maxPct) {
			pct = maxPct
		}
		lines[i] = fmt.Sprintf("· %s (confidence: %s%%)", s.Text, pct.StringFixed(0))
	}
	return "Relevant passages:\n" + strings.Join(lines, "\n\n")
}
