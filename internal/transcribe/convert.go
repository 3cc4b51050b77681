package transcribe

import (
	"math"

	"subnode/internal/captions"
)

// secondsToMS truncates toward zero, matching int(seconds * 1000).
func secondsToMS(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return int64(seconds * 1000)
}

// toSegments converts backend output into caption segments and reports how
// many words were dropped for missing timing.
func toSegments(raw []RawSegment) ([]captions.Segment, int) {
	segments := make([]captions.Segment, 0, len(raw))
	skipped := 0
	for _, seg := range raw {
		words := make(captions.Segment, 0, len(seg.Words))
		for _, w := range seg.Words {
			if w.Start == nil || w.End == nil {
				skipped++
				continue
			}
			start := secondsToMS(*w.Start)
			end := secondsToMS(*w.End)
			if end < start {
				end = start
			}
			words = append(words, captions.Word{StartMS: start, EndMS: end, Text: w.Word})
		}
		segments = append(segments, words)
	}
	return segments, skipped
}
