package captions

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1_000
)

// FormatTimestamp renders ms as HH:MM:SS.mmm. Negative values render as zero;
// hours widen past two digits when needed.
func FormatTimestamp(ms int64) string {
	return formatClock(ms, '.')
}

// FormatSRTTimestamp renders ms as HH:MM:SS,mmm.
func FormatSRTTimestamp(ms int64) string {
	return formatClock(ms, ',')
}

func formatClock(ms int64, sep byte) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / msPerHour
	minutes := ms % msPerHour / msPerMinute
	seconds := ms % msPerMinute / msPerSecond
	millis := ms % msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, seconds, sep, millis)
}

// ParseTimestamp accepts HH:MM:SS.mmm or HH:MM:SS,mmm and returns milliseconds.
func ParseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ",", ".")
	clock, fraction, ok := strings.Cut(value, ".")
	if !ok || len(fraction) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.ParseInt(hms[0], 10, 64)
	minutes, errM := strconv.ParseInt(hms[1], 10, 64)
	seconds, errS := strconv.ParseInt(hms[2], 10, 64)
	millis, errMS := strconv.ParseInt(fraction, 10, 64)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return hours*msPerHour + minutes*msPerMinute + seconds*msPerSecond + millis, nil
}
