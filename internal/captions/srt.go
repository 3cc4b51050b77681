package captions

import (
	"bufio"
	"bytes"
	"strconv"
)

// FormatSRT renders cues as SubRip with 1-based indices.
func FormatSRT(cues []Cue) []byte {
	var b bytes.Buffer
	for i, cue := range cues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatSRTTimestamp(cue.StartMS))
		b.WriteString(" --> ")
		b.WriteString(FormatSRTTimestamp(cue.EndMS))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// ParseSRT recovers cues from SubRip content. Index lines are ignored.
func ParseSRT(data []byte) ([]Cue, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return parseCueBlocks(scanner, "srt", 0)
}
