// File: internal/usecase/classify.go
package usecase

import (
	"net/url"
	"strings"
)

// URLSet partitions submitted URLs into the three processing loops.
// JSON keys match the submission payload.
type URLSet struct {
	Video    []string `json:"youtube"`
	Academic []string `json:"arxiv"`
	Generic  []string `json:"others"`
}

// Total counts all URLs across the three buckets.
func (s URLSet) Total() int {
	return len(s.Video) + len(s.Academic) + len(s.Generic)
}

// Counts returns the per-bucket sizes keyed like the wire payload.
func (s URLSet) Counts() map[string]int {
	return map[string]int{
		"youtube": len(s.Video),
		"arxiv":   len(s.Academic),
		"others":  len(s.Generic),
	}
}

// NormalizeURL strips stray quotes and the trailing slash (which otherwise
// creates duplicates), then requires a scheme and a host. Returns "" for
// anything unusable.
func NormalizeURL(raw string) string {
	raw = strings.Trim(raw, " '\"`")
	raw = strings.TrimRight(raw, "/")
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return raw
}

// NormalizeURLs normalizes a list and drops the invalid entries.
func NormalizeURLs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if u := NormalizeURL(r); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// SplitURLList breaks a comma-separated submission string into a normalized
// URL list.
func SplitURLList(input string) []string {
	parts := strings.Split(input, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return NormalizeURLs(parts)
}

// ClassifyURLs partitions normalized URLs by well-known host/path patterns.
// Everything that is neither an abstract page nor a watch page is generic.
// Pure; input order is preserved within each bucket.
func ClassifyURLs(urls []string) URLSet {
	var set URLSet
	for _, u := range urls {
		switch {
		case strings.Contains(u, "arxiv.org/abs"):
			set.Academic = append(set.Academic, u)
		case strings.Contains(u, "youtube.com/watch"):
			set.Video = append(set.Video, u)
		default:
			set.Generic = append(set.Generic, u)
		}
	}
	return set
}
