// Package sanitize provides text sanitization utilities to prevent XSS attacks
// and to coerce untrusted boundary input into safe values.
package sanitize

import (
	"math"
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	// emailRegex accepts simple local@domain.tld addresses
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
// This is a defense-in-depth measure; frontend should also escape output.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	// Decode common HTML entities
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage by stripping HTML
// and normalizing whitespace. Use for user-provided text fields.
func Text(s string) string {
	return StripHTML(s)
}

// TextMax sanitizes a string and truncates it to max runes.
func TextMax(s string, max int) string {
	result := Text(s)
	if max > 0 {
		runes := []rune(result)
		if len(runes) > max {
			result = string(runes[:max])
		}
	}
	return result
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// Email returns the trimmed, lowercased address if it matches a simple
// local@domain.tld pattern, or the empty string otherwise. Invalid
// addresses are dropped rather than rejected.
func Email(s string) string {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if !emailRegex.MatchString(trimmed) {
		return ""
	}
	return trimmed
}

// URL returns the trimmed value only if it is an http(s) URL or a
// root-relative path, or the empty string otherwise.
func URL(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, "//") {
		return trimmed
	}
	return ""
}

// MaxCount caps counter values; converting larger floats to int would
// overflow and turn the counter negative.
const MaxCount = 1_000_000_000

// Count coerces an untrusted value into a non-negative integer counter.
// Non-finite or negative input becomes 0, huge input becomes MaxCount.
func Count(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > MaxCount {
		return MaxCount
	}
	return int(v)
}

// Seconds coerces an untrusted duration value into a non-negative number
// of seconds, capped at an upper bound to keep downstream math sane.
func Seconds(v float64, max float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// Rate clamps an untrusted value to [0,1]. Non-finite input becomes 0.
func Rate(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Percent clamps an untrusted value to [0,100]. Non-finite input becomes 0.
func Percent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
