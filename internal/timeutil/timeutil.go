// Package timeutil provides utility functions for working with time-related
// operations.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	secondsInAMinute = 60
	secondsInAnHour  = 3600
)

// titleFormat is the layout for default session titles.
const titleFormat = "Jan 2, 2006"

// FormatSeconds expresses a whole-second value as "HH:MM:SS", or "MM:SS" when
// under an hour.
func FormatSeconds(secs int64) string {
	if secs < 0 {
		secs = 0
	}

	hrs := secs / secondsInAnHour
	mins := (secs % secondsInAnHour) / secondsInAMinute
	s := secs % secondsInAMinute

	if hrs > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hrs, mins, s)
	}

	return fmt.Sprintf("%02d:%02d", mins, s)
}

// DayTitle derives the default session title for the given instant.
func DayTitle(t time.Time) string {
	return t.Format(titleFormat)
}

// LapLabel derives the default label for a lap index.
func LapLabel(index int) string {
	return fmt.Sprintf("lap-%d", index)
}

// AlphaSuffix converts a zero-based counter to an alphabetic suffix:
// 0 -> "A", 25 -> "Z", 26 -> "AA", and so on.
func AlphaSuffix(n int) string {
	if n < 0 {
		return ""
	}

	var b strings.Builder

	n++
	for n > 0 {
		n--
		b.WriteByte(byte('A' + n%26))
		n /= 26
	}

	runes := []byte(b.String())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}

	return string(runes)
}

// Max returns the later of two instants.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}

	return b
}
