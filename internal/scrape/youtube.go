// File: internal/scrape/youtube.go
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VideoExtraction holds whatever could be scraped from a watch page.
type VideoExtraction struct {
	Title       string
	Authors     []string
	Categories  []string
	Description string
	DateText    string // raw; normalized later, falls back to today at persist time
}

// ExtractYouTube pulls metadata from a watch page's head tags. The watch
// page is rendered client-side, so several fields (channel name, date) are
// frequently absent from the static markup; absence is normal here.
func ExtractYouTube(doc *goquery.Document) VideoExtraction {
	var out VideoExtraction

	head := doc.Find("head")

	out.Title = strings.TrimSpace(head.Find("title").First().Text())

	if desc, ok := head.Find(`meta[name="description"]`).Attr("content"); ok {
		out.Description = strings.TrimSpace(desc)
	}

	if keywords, ok := head.Find(`meta[name="keywords"]`).Attr("content"); ok {
		for _, k := range strings.Split(keywords, ", ") {
			if k = strings.TrimSpace(k); k != "" {
				out.Categories = append(out.Categories, k)
			}
		}
	}

	if date := strings.TrimSpace(doc.Find(".ytd-watch-metadata #date-text").First().Text()); date != "" {
		out.DateText = date
	}

	if channel := strings.TrimSpace(doc.Find("ytd-channel-name#channel-name").First().Text()); channel != "" {
		out.Authors = []string{channel}
	}

	return out
}
