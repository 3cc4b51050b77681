package transcribe

import "testing"

func f64(v float64) *float64 { return &v }

func TestToSegmentsTruncatesAndClamps(t *testing.T) {
	raw := []RawSegment{
		{Words: []RawWord{
			{Word: "hello", Start: f64(0.0), End: f64(0.4999)},
			{Word: "world", Start: f64(0.5), End: f64(1.0)},
			{Word: "lost", Start: nil, End: f64(1.2)},
			{Word: "late", Start: f64(2.0019), End: f64(1.5)},
		}},
		{},
		{Words: []RawWord{{Word: "long", Start: f64(3725.0079), End: f64(3725.5)}}},
	}
	segments, skipped := toSegments(raw)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped word, got %d", skipped)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	first := segments[0]
	if len(first) != 3 {
		t.Fatalf("expected 3 timed words, got %d", len(first))
	}
	if first[0].StartMS != 0 || first[0].EndMS != 499 {
		t.Fatalf("expected truncation, got %+v", first[0])
	}
	if first[2].StartMS != 2001 || first[2].EndMS != 2001 {
		t.Fatalf("expected end clamped to start, got %+v", first[2])
	}
	if len(segments[1]) != 0 {
		t.Fatalf("expected empty segment preserved, got %+v", segments[1])
	}
	if segments[2][0].StartMS != 3_725_007 {
		t.Fatalf("unexpected start %d", segments[2][0].StartMS)
	}
}

func TestSecondsToMSRejectsGarbage(t *testing.T) {
	if secondsToMS(-1) != 0 {
		t.Fatal("negative seconds should map to zero")
	}
	if secondsToMS(1.9999) != 1999 {
		t.Fatalf("expected truncation, got %d", secondsToMS(1.9999))
	}
}
