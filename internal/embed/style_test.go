package embed

import (
	"strings"
	"testing"

	"subnode/internal/job"
)

func TestASSColour(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"FFFFFF", "&HFFFFFF&"},
		{"FF0000", "&H0000FF&"},
		{"#00ff80", "&H80FF00&"},
		{"123456", "&H563412&"},
	}
	for _, tc := range tests {
		got, err := ASSColour(tc.in)
		if err != nil {
			t.Fatalf("ASSColour(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ASSColour(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "FFF", "GGGGGG", "FFFFFFF"} {
		if _, err := ASSColour(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestForceStyleDefaults(t *testing.T) {
	got, err := ForceStyle(job.DefaultStyleParameters())
	if err != nil {
		t.Fatalf("ForceStyle: %v", err)
	}
	want := "Fontname=Arial,Fontsize=24,PrimaryColour=&HFFFFFF&,Alignment=2,MarginV=20"
	if got != want {
		t.Fatalf("ForceStyle = %q, want %q", got, want)
	}
}

func TestForceStyleVariants(t *testing.T) {
	tests := []struct {
		position, style string
		fontSize        float64
		contains        []string
	}{
		{job.PositionTop, job.StyleBold, 18.5, []string{"Alignment=8", "Bold=1", "Fontsize=18.5"}},
		{job.PositionMiddle, job.StyleItalic, 24, []string{"Alignment=5", "MarginV=0", "Italic=1"}},
		{job.PositionBottom, job.StyleBoxed, 30, []string{"Alignment=2", "BorderStyle=3"}},
	}
	for _, tc := range tests {
		style := job.DefaultStyleParameters()
		style.Position, style.Style, style.FontSize = tc.position, tc.style, tc.fontSize
		got, err := ForceStyle(style)
		if err != nil {
			t.Fatalf("ForceStyle: %v", err)
		}
		for _, fragment := range tc.contains {
			if !strings.Contains(got, fragment) {
				t.Errorf("%s/%s: expected %q in %q", tc.position, tc.style, fragment, got)
			}
		}
	}
}

func TestSubtitlesFilterEscapesPath(t *testing.T) {
	got, err := SubtitlesFilter(`/data/it's [a],b:c.vtt`, job.DefaultStyleParameters())
	if err != nil {
		t.Fatalf("SubtitlesFilter: %v", err)
	}
	wantPrefix := `subtitles=/data/it\\\'s \[a\]\,b\\:c.vtt:force_style='`
	if !strings.HasPrefix(got, wantPrefix) {
		t.Fatalf("unexpected filter %q", got)
	}
	plain, _ := SubtitlesFilter("/subs/clip/clip.vtt", job.DefaultStyleParameters())
	if !strings.HasPrefix(plain, "subtitles=/subs/clip/clip.vtt:force_style='Fontname=Arial,") || !strings.HasSuffix(plain, "'") {
		t.Fatalf("unexpected plain filter %q", plain)
	}
}
