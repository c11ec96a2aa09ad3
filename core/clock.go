// ABOUTME: Fixed UTC+8 wall-clock policy used wherever times are formatted or
// ABOUTME: parsed for display and storage; identifiers stay epoch-based.
package core

import "time"

// Location is the fixed UTC+8 zone all stored and displayed times use. The
// platform operates in a single market, so no per-user zone handling exists.
var Location = time.FixedZone("UTC+8", 8*60*60)

// TimeLayout is the canonical wall-clock format for storage and API payloads.
const TimeLayout = "2006-01-02 15:04:05"

// Now returns the current time in the platform zone.
func Now() time.Time {
	return time.Now().In(Location)
}

// Localize converts t to the platform zone.
func Localize(t time.Time) time.Time {
	return t.In(Location)
}

// FormatTime renders t in the platform zone using the canonical layout.
func FormatTime(t time.Time) string {
	return t.In(Location).Format(TimeLayout)
}

// ParseTime parses a canonical-layout string as a platform-zone time.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, Location)
}
