// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Type is the catalog category of a track.
type Type string

const (
	TypeShort   Type = "short"   // Short clips
	TypeLong    Type = "long"    // Full versions with lyrics
	TypeEnglish Type = "english" // English songs
	TypeInst    Type = "inst"    // Instrumentals
)

// Types returns all known track types in display order.
func Types() []Type {
	return []Type{TypeShort, TypeLong, TypeEnglish, TypeInst}
}

// ParseType converts a string to a Type.
// Returns false if the string is not a known type.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types() {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// String returns the type name.
func (t Type) String() string {
	return string(t)
}

// Track represents an immutable catalog entry.
type Track struct {
	ID       int      // Unique catalog ID
	Title    string   // Display title
	Type     Type     // Category
	Tags     []string // Free-form tags, in display order
	Duration string   // Display duration (e.g. "3:12"), informational only
	Source   string   // Audio source locator
}

// HasTag reports whether the track carries the given tag (case-insensitive).
func (t Track) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if strings.EqualFold(v, tag) {
			return true
		}
	}
	return false
}

// DisplayDuration returns Duration, or "0:00" when it is empty.
func (t Track) DisplayDuration() string {
	if t.Duration == "" {
		return "0:00"
	}
	return t.Duration
}

// FormatClock formats a position as M:SS.
// Zero, negative and NaN seconds are rendered as "0:00".
func FormatClock(d time.Duration) string {
	sec := d.Seconds()
	if sec <= 0 || math.IsNaN(sec) {
		return "0:00"
	}
	s := int(math.Floor(sec))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// Length parses Duration. Returns false if Duration is empty or malformed.
func (t Track) Length() (time.Duration, bool) {
	return ParseClock(t.Duration)
}

// ParseClock parses "M:SS" or "H:MM:SS".
func ParseClock(s string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	var total int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		if i > 0 && n >= 60 {
			return 0, false
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, true
}
