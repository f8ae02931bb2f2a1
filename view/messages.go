package view

// HighlightMsg carries a broadcast sentence to a view.
type HighlightMsg struct {
	Sentence string
}

// TextMsg replaces the text a view renders, keeping the current needle.
type TextMsg struct {
	Text string
}
