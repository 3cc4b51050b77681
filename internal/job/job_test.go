package job

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"subnode/internal/services"
)

var idPattern = regexp.MustCompile(`^clip_1700000000_[0-9a-f]{8}$`)

func TestNewIDFormat(t *testing.T) {
	restore := clock
	clock = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { clock = restore })

	id := NewID("/videos/clip.mp4")
	if !idPattern.MatchString(id) {
		t.Fatalf("unexpected id %q", id)
	}
	if !ValidID(id) {
		t.Fatalf("expected generated id to be valid: %q", id)
	}
}

func TestNewIDUniqueAcrossConcurrentCalls(t *testing.T) {
	const workers = 64
	ids := make(chan string, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewID("same.mp4")
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"", "  ", ".", "..", "a/b", `a\b`} {
		if ValidID(id) {
			t.Errorf("expected %q to be rejected", id)
		}
	}
	if !ValidID("clip_1_deadbeef") {
		t.Error("expected plain id to be accepted")
	}
}

func TestDefaultStyleValidates(t *testing.T) {
	if err := DefaultStyleParameters().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestNormalizeStyle(t *testing.T) {
	got := StyleParameters{FontName: " Arial ", FontSize: 24, FontColor: "#ff8800"}.Normalize()
	if got.FontName != "Arial" || got.FontColor != "FF8800" {
		t.Fatalf("unexpected normalized style: %+v", got)
	}
	if got.Position != PositionBottom || got.Style != StyleNormal {
		t.Fatalf("expected position/style defaults, got %+v", got)
	}
}

func TestStyleValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StyleParameters)
		field  string
	}{
		{"short colour", func(s *StyleParameters) { s.FontColor = "FFF" }, "font_color"},
		{"non hex colour", func(s *StyleParameters) { s.FontColor = "GGGGGG" }, "font_color"},
		{"zero size", func(s *StyleParameters) { s.FontSize = 0 }, "font_size"},
		{"unknown position", func(s *StyleParameters) { s.Position = "left" }, "subtitle_position"},
		{"unknown style", func(s *StyleParameters) { s.Style = "shadow" }, "subtitle_style"},
		{"empty font", func(s *StyleParameters) { s.FontName = "" }, "font_name"},
		{"font with delimiter", func(s *StyleParameters) { s.FontName = "Bad,Font" }, "font_name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			style := DefaultStyleParameters()
			tc.mutate(&style)
			err := style.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error to name %s, got %v", tc.field, err)
			}
		})
	}
}

func TestNewJobNormalizes(t *testing.T) {
	j := New(" /tmp/clip.mp4 ", StyleParameters{FontName: "Arial", FontSize: 24, FontColor: "ffffff"})
	if j.SourcePath != "/tmp/clip.mp4" {
		t.Fatalf("unexpected source path %q", j.SourcePath)
	}
	if j.Style.FontColor != "FFFFFF" {
		t.Fatalf("expected colour upper-cased, got %q", j.Style.FontColor)
	}
	if !strings.HasPrefix(j.ID, "clip_") {
		t.Fatalf("unexpected id %q", j.ID)
	}
}
