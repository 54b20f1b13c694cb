package storage

import (
	"testing"
	"time"
)

// TestFormatTime_SortsLexically tests that string order matches time order across sub-second values.
func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2026, 11, 20, 9, 0, 0, 0, time.FixedZone("NZDT", 13*3600))
	times := []time.Time{base, base.Add(500 * time.Millisecond), base.Add(time.Second), base.Add(time.Second + time.Nanosecond)}
	for i := 1; i < len(times); i++ {
		a, b := FormatTime(times[i-1]), FormatTime(times[i])
		if !(a < b) {
			t.Errorf("%q should sort before %q", a, b)
		}
		if len(a) != len(b) {
			t.Errorf("width differs: %q vs %q", a, b)
		}
	}
}

// TestParseTime_RoundTrip tests that FormatTime output parses back to the same instant.
func TestParseTime_RoundTrip(t *testing.T) {
	in := time.Date(2026, 11, 20, 9, 30, 15, 123000000, time.UTC)
	got, err := ParseTime(FormatTime(in))
	if err != nil || !got.Equal(in) {
		t.Errorf("ParseTime = %v, %v", got, err)
	}
	if _, err := ParseTime("2026-11-20 09:30:15"); err != nil {
		t.Errorf("legacy format: %v", err)
	}
}
