package captions

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Options controls how word text becomes cue text.
type Options struct {
	// StripLeadingChar drops the first character of each raw word before
	// whitespace is trimmed.
	StripLeadingChar bool
	// Uppercase renders cue text in upper case.
	Uppercase bool
}

// CueText normalizes one word's text: optional first-character strip,
// whitespace collapsed to single spaces, NFC composition, optional upper-casing.
func (o Options) CueText(raw string) string {
	if o.StripLeadingChar && raw != "" {
		_, size := utf8.DecodeRuneInString(raw)
		raw = raw[size:]
	}
	text := strings.Join(strings.Fields(raw), " ")
	text = norm.NFC.String(text)
	if o.Uppercase {
		text = cases.Upper(language.Und).String(text)
	}
	return text
}

// Cues flattens segments into one cue per word in input order.
func Cues(segments []Segment, opts Options) []Cue {
	cues := make([]Cue, 0, WordCount(segments))
	for _, seg := range segments {
		for _, w := range seg {
			end := w.EndMS
			if end < w.StartMS {
				end = w.StartMS
			}
			cues = append(cues, Cue{StartMS: w.StartMS, EndMS: end, Text: opts.CueText(w.Text)})
		}
	}
	return cues
}
