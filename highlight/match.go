package highlight

import "strings"

type Match struct {
	Index    int
	Sentence string
	Matched  bool
}

// Normalize trims, collapses whitespace runs to one space and lower-cases.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Matches reports whether sentence and needle overlap after normalization:
// either contains the other. Empty inputs never match.
func Matches(sentence, needle string) bool {
	s, n := Normalize(sentence), Normalize(needle)
	if s == "" || n == "" {
		return false
	}
	return strings.Contains(s, n) || strings.Contains(n, s)
}

// Locate splits haystack with seg and marks every sentence matching needle.
func Locate(seg Segmenter, haystack, needle string) []Match {
	sentences := seg.Split(haystack)
	if len(sentences) == 0 {
		return nil
	}

	res := make([]Match, len(sentences))
	for i, s := range sentences {
		res[i] = Match{Index: i, Sentence: s, Matched: Matches(s, needle)}
	}
	return res
}

// FirstMatch returns the index of the first matched sentence in document
// order, or -1.
func FirstMatch(ms []Match) int {
	for _, m := range ms {
		if m.Matched {
			return m.Index
		}
	}
	return -1
}
