// File: internal/usecase/slugs.go
package usecase

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	gslug "github.com/gosimple/slug"
)

// Slugify lowercases, transliterates and strips anything that is not
// URL-safe. Empty input stays empty; callers fall back to URLToSlug.
func Slugify(s string) string {
	return gslug.Make(s)
}

// URLToSlug converts a URL to a slug. Last resort when scraping fails or the
// model cannot produce one; slugs identify documents and are essential for
// routing, so they can never be empty.
func URLToSlug(url string) string {
	s := strings.ToLower(url)
	s = strings.ReplaceAll(s, "http", "")
	return gslug.Make(s)
}

var dateTripletExpr = regexp.MustCompile(`(\d{4}).(\d{2}).(\d{2})`)

// NormalizeDate rewrites a YYYY?MM?DD string (models sometimes pick the
// wrong separator) into YYYY/MM/DD, validating that the triplet is a real
// calendar date. Returns "" when the input does not carry such a triplet.
func NormalizeDate(s string) string {
	m := dateTripletExpr.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	t, err := time.Parse("2006/01/02", m[1]+"/"+m[2]+"/"+m[3])
	if err != nil {
		return ""
	}
	return t.Format("2006/01/02")
}

// ParsePublicationDate turns whatever date text the pipeline collected into
// a calendar date. Tries the normalized YYYY/MM/DD form first, then lenient
// parsing of free-form dates; falls back to today. The fallback matters for
// watch pages, where the static markup rarely exposes a publication date.
func ParsePublicationDate(s string) time.Time {
	if norm := NormalizeDate(s); norm != "" {
		t, _ := time.Parse("2006/01/02", norm)
		return t
	}
	if s = strings.TrimSpace(s); s != "" {
		if t, err := dateparse.ParseAny(s); err == nil {
			return t
		}
	}
	return time.Now()
}
