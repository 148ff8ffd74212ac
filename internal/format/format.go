// Package format holds the pure display helpers shared by the TUI and the
// one-shot CLI output.
package format

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// Ellipsis is appended by Truncate and is not counted toward the limit.
	Ellipsis = "..."

	ImageBaseURL     = "https://image.tmdb.org/t/p/"
	DefaultImageSize = "w500"
	PlaceholderImage = "/placeholder-movie.jpg"

	UnknownYear = "Unknown"

	// SentinelYear is what the backend reports when it has no release date.
	SentinelYear = 1970
)

// Truncate returns s unchanged when it has at most limit runes, otherwise the
// first limit runes followed by Ellipsis.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + Ellipsis
}

// ImageURL builds a poster URL for path at the given size token. An empty
// path yields the placeholder and an empty size falls back to
// DefaultImageSize.
func ImageURL(path, size string) string {
	if path == "" {
		return PlaceholderImage
	}
	if size == "" {
		size = DefaultImageSize
	}
	return ImageBaseURL + size + path
}

var yearLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// FormatYear returns the four-digit year of a date-like value, or
// UnknownYear when the value is empty or cannot be parsed.
func FormatYear(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return UnknownYear
	}
	for _, layout := range yearLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return strconv.Itoa(t.Year())
		}
	}
	// Bare numeric years outside the four-digit layout, e.g. "800".
	if n, err := strconv.Atoi(value); err == nil && n > 0 && n <= 9999 {
		return strconv.Itoa(n)
	}
	return UnknownYear
}

// FormatReleaseYear renders a backend release year, hiding zero and the
// 1970 sentinel.
func FormatReleaseYear(year int) string {
	if year == 0 || year == SentinelYear {
		return ""
	}
	return strconv.Itoa(year)
}

// Cn combines class names. Accepted parts are strings (split on
// whitespace), []string, map[string]bool (keys whose value is true), nested
// []any, and bool/nil which are skipped. A repeated class keeps only its
// last position.
func Cn(parts ...any) string {
	var out []string
	collectClasses(&out, parts)

	seen := make(map[string]int, len(out))
	for i, c := range out {
		seen[c] = i
	}
	merged := make([]string, 0, len(seen))
	for i, c := range out {
		if seen[c] == i {
			merged = append(merged, c)
		}
	}
	return strings.Join(merged, " ")
}

func collectClasses(out *[]string, parts []any) {
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			*out = append(*out, strings.Fields(v)...)
		case []string:
			for _, s := range v {
				*out = append(*out, strings.Fields(s)...)
			}
		case map[string]bool:
			keys := make([]string, 0, len(v))
			for k, on := range v {
				if on {
					keys = append(keys, k)
				}
			}
			// map order is random; keep output stable
			sort.Strings(keys)
			for _, k := range keys {
				*out = append(*out, strings.Fields(k)...)
			}
		case []any:
			collectClasses(out, v)
		}
	}
}
