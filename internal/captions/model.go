package captions

// Word is one recognized token with millisecond timing. StartMS <= EndMS.
type Word struct {
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// Segment is a run of words in chronological order.
type Segment []Word

// Cue is one caption entry.
type Cue struct {
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// WordCount returns the number of words across all segments.
func WordCount(segments []Segment) int {
	n := 0
	for _, seg := range segments {
		n += len(seg)
	}
	return n
}
