package embed

import (
	"fmt"
	"strconv"
	"strings"

	"subnode/internal/job"
)

// ASS numpad alignments.
const (
	alignBottomCenter = 2
	alignMiddleCenter = 5
	alignTopCenter    = 8

	defaultMarginV = 20
)

// ASSColour converts RRGGBB into the &HBBGGRR& form libass expects.
func ASSColour(rgb string) (string, error) {
	rgb = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(rgb), "#"))
	if len(rgb) != 6 {
		return "", fmt.Errorf("colour %q must be 6 hex digits", rgb)
	}
	if _, err := strconv.ParseUint(rgb, 16, 32); err != nil {
		return "", fmt.Errorf("colour %q must be hexadecimal", rgb)
	}
	return "&H" + rgb[4:6] + rgb[2:4] + rgb[0:2] + "&", nil
}

// ForceStyle renders the ASS override list for style.
func ForceStyle(style job.StyleParameters) (string, error) {
	colour, err := ASSColour(style.FontColor)
	if err != nil {
		return "", err
	}
	alignment, marginV := placement(style.Position)
	parts := []string{
		"Fontname=" + style.FontName,
		"Fontsize=" + strconv.FormatFloat(style.FontSize, 'f', -1, 64),
		"PrimaryColour=" + colour,
		"Alignment=" + strconv.Itoa(alignment),
		"MarginV=" + strconv.Itoa(marginV),
	}
	switch style.Style {
	case job.StyleBold:
		parts = append(parts, "Bold=1")
	case job.StyleItalic:
		parts = append(parts, "Italic=1")
	case job.StyleBoxed:
		parts = append(parts, "BorderStyle=3")
	}
	return strings.Join(parts, ","), nil
}

func placement(position string) (int, int) {
	switch position {
	case job.PositionTop:
		return alignTopCenter, defaultMarginV
	case job.PositionMiddle:
		return alignMiddleCenter, 0
	default:
		return alignBottomCenter, defaultMarginV
	}
}

// SubtitlesFilter builds the -vf value for burning subtitlePath with style.
func SubtitlesFilter(subtitlePath string, style job.StyleParameters) (string, error) {
	forceStyle, err := ForceStyle(style)
	if err != nil {
		return "", err
	}
	return "subtitles=" + escapeFilterValue(subtitlePath) + ":force_style='" + forceStyle + "'", nil
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// escapeFilterValue escapes a value for both the filter option parser and the
// filtergraph parser.
func escapeFilterValue(value string) string {
	return graphEscaper.Replace(optionEscaper.Replace(value))
}
