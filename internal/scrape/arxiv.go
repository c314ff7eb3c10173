// File: internal/scrape/arxiv.go
package scrape

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var arxivDateExpr = regexp.MustCompile(`[A-Za-z]{3}, \d{1,2} [A-Za-z]{3} \d{4}`)

// ArxivExtraction holds whatever could be scraped from an abstract page.
// Empty fields mean "not found"; the caller decides whether the model needs
// to fill the gaps.
type ArxivExtraction struct {
	Title           string
	Authors         []string
	Categories      []string
	PublicationDate string // YYYY/MM/DD
	Abstract        string
}

// Complete reports whether all five fields were scraped, in which case the
// completion backend can be skipped entirely.
func (e ArxivExtraction) Complete() bool {
	return e.Title != "" && e.Abstract != "" && e.PublicationDate != "" &&
		len(e.Authors) > 0 && len(e.Categories) > 0
}

// ExtractArxiv pulls metadata out of an abstract page. Missing or malformed
// sub-elements yield empty fields, never an error.
func ExtractArxiv(doc *goquery.Document) ArxivExtraction {
	var out ArxivExtraction

	content := doc.Find("div.leftcolumn")
	if content.Length() == 0 {
		// some mirrors omit the column wrapper
		content = doc.Selection
	}

	content.Find("div.authors a").Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			out.Authors = append(out.Authors, name)
		}
	})

	title := strings.TrimSpace(content.Find("h1.title").First().Text())
	out.Title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	content.Find(".tablecell.subjects .primary-subject").Each(func(_ int, s *goquery.Selection) {
		if c := strings.TrimSpace(s.Text()); c != "" {
			out.Categories = append(out.Categories, c)
		}
	})

	out.PublicationDate = arxivSubmissionDate(content.Find("div.submission-history").Text())

	abstract := strings.TrimSpace(content.Find("blockquote.abstract").First().Text())
	out.Abstract = strings.TrimSpace(strings.TrimPrefix(abstract, "Abstract:"))

	return out
}

// arxivSubmissionDate finds the original submission ([v1]) date in the
// submission-history block and normalizes it to YYYY/MM/DD.
func arxivSubmissionDate(history string) string {
	history = strings.TrimSpace(history)
	if history == "" {
		return ""
	}
	// Prefer the window right after the [v1] marker; revised papers list
	// later versions too.
	if pos := strings.Index(history, "[v1]"); pos != -1 {
		end := pos + len("[v1]") + 18
		if end > len(history) {
			end = len(history)
		}
		history = history[pos+len("[v1]") : end]
	}
	match := arxivDateExpr.FindString(history)
	if match == "" {
		return ""
	}
	t, err := time.Parse("Mon, 2 Jan 2006", match)
	if err != nil {
		return ""
	}
	return t.Format("2006/01/02")
}
