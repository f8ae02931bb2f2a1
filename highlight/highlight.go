// Package highlight merges sentence highlights produced for a query and
// locates a highlighted sentence inside any rendered text.
package highlight

import "sort"

// DefaultHintConfidence is assigned to sentences suggested only by the
// free-form annotator.
const DefaultHintConfidence = 0.85

type Origin string

const (
	OriginBackend Origin = "backend"
	OriginModel   Origin = "model"
)

type (
	// Highlight marks one sentence as relevant to an answer. Index is only
	// meaningful against the sentence split of the context it was computed
	// for.
	Highlight struct {
		Index      int
		Text       string
		Confidence float64
		Origin     Origin
	}

	// Span is a backend-merged range of sentences with an averaged score.
	Span struct {
		Start    int
		End      int
		Text     string
		AvgScore float64
	}

	// MergedSet is keyed by sentence index.
	MergedSet map[int]Highlight
)

// Ranked returns the highlights ordered by confidence, highest first, ties
// broken by sentence index.
func (m MergedSet) Ranked() []Highlight {
	res := make([]Highlight, 0, len(m))
	for _, h := range m {
		res = append(res, h)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Confidence != res[j].Confidence {
			return res[i].Confidence > res[j].Confidence
		}
		return res[i].Index < res[j].Index
	})
	return res
}
