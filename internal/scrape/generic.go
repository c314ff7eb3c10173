// File: internal/scrape/generic.go
package scrape

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// GenericText extracts the article text of an HTML page for the long
// completion flow. Readability strips navigation and boilerplate; when it
// cannot identify an article the raw body text is used instead.
func GenericText(page *Page) string {
	if page.Kind == KindPDF {
		return page.Text
	}
	if page.Doc == nil {
		return ""
	}

	if len(page.RawHTML) > 0 {
		pageURL, _ := url.Parse(page.URL)
		if article, err := readability.FromReader(bytes.NewReader(page.RawHTML), pageURL); err == nil {
			if text := strings.TrimSpace(article.TextContent); text != "" {
				return text
			}
		}
	}

	return strings.TrimSpace(page.Doc.Find("body").Text())
}

// ImageFetcher retrieves one image URL, returning nil on any failure.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) []byte
}

// FirstImage fetches the first <img> of the page as a thumbnail candidate.
// Best effort; returns nil when there is none or the fetch fails.
func FirstImage(ctx context.Context, f ImageFetcher, page *Page) []byte {
	if page.Doc == nil {
		return nil
	}
	src, ok := page.Doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return nil
	}
	if base, err := url.Parse(page.URL); err == nil {
		if ref, err := url.Parse(src); err == nil {
			src = base.ResolveReference(ref).String()
		}
	}
	return f.FetchImage(ctx, src)
}
