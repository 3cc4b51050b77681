package captions

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// VTTHeader opens every WebVTT file.
const VTTHeader = "WEBVTT"

// FormatVTT renders cues as WebVTT: the header, a blank line, then for each
// cue its timing line, its text, and a blank line.
func FormatVTT(cues []Cue) []byte {
	var b bytes.Buffer
	b.WriteString(VTTHeader)
	b.WriteString("\n\n")
	for _, cue := range cues {
		b.WriteString(FormatTimestamp(cue.StartMS))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.EndMS))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.Bytes()
}

// ParseVTT recovers cues from WebVTT content. Cue identifiers, NOTE blocks,
// and cue settings after the end timestamp are ignored.
func ParseVTT(data []byte) ([]Cue, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read vtt: %w", err)
		}
		return nil, fmt.Errorf("parse vtt: empty input")
	}
	header := strings.TrimRight(strings.TrimPrefix(scanner.Text(), "\ufeff"), "\r")
	if header != VTTHeader && !strings.HasPrefix(header, VTTHeader+" ") && !strings.HasPrefix(header, VTTHeader+"\t") {
		return nil, fmt.Errorf("parse vtt: missing %s header", VTTHeader)
	}
	return parseCueBlocks(scanner, "vtt", 1)
}

// parseCueBlocks reads blocks shaped as optional identifier, timing line, and
// text lines up to a blank line.
func parseCueBlocks(scanner *bufio.Scanner, format string, lineNo int) ([]Cue, error) {
	var (
		cues    []Cue
		current *Cue
		text    []string
		inNote  bool
	)
	flush := func() {
		if current != nil {
			current.Text = strings.Join(text, "\n")
			cues = append(cues, *current)
		}
		current, text = nil, nil
	}
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			inNote = false
			continue
		}
		if inNote {
			continue
		}
		if current != nil {
			text = append(text, line)
			continue
		}
		if strings.HasPrefix(line, "NOTE") && format == "vtt" {
			inNote = true
			continue
		}
		if !strings.Contains(line, "-->") {
			// identifier line preceding the timing line
			continue
		}
		start, end, err := parseTiming(line)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", format, lineNo, err)
		}
		current = &Cue{StartMS: start, EndMS: end}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}
	flush()
	return cues, nil
}

func parseTiming(line string) (int64, int64, error) {
	left, right, _ := strings.Cut(line, "-->")
	start, err := ParseTimestamp(left)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("missing end timestamp")
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
