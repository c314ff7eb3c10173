// File: internal/scrape/fetcher.go
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/config"
)

// PageKind tags what the fetch produced.
type PageKind int

const (
	KindHTML PageKind = iota
	KindPDF
)

// Page is a successfully fetched document, parsed according to its content
// type. Exactly one of Doc (HTML) or Text (PDF) is populated at fetch time;
// Thumbnails collects candidate images found along the way.
type Page struct {
	URL        string
	Kind       PageKind
	Doc        *goquery.Document
	RawHTML    []byte
	Text       string
	Thumbnails [][]byte
}

// FailureKind distinguishes a retrieval failure (transport error, bad HTTP
// status) from a parse failure inside a successful response.
type FailureKind int

const (
	FailRetrieve FailureKind = iota
	FailParse
)

// FetchFailure is the terminal outcome for a URL whose content could not be
// used. No retry; the document is persisted with placeholder text so it can
// be completed manually.
type FetchFailure struct {
	URL    string
	Kind   FailureKind
	Status int
	Reason string
}

// Fetcher issues the single GET per URL and branches on content type.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	pdf       *PDFExtractor
	log       *zerolog.Logger
}

func NewFetcher(cfg config.FetchConfig, pdf *PDFExtractor, logger *zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
		pdf:       pdf,
		log:       logger,
	}
}

// Fetch returns exactly one of (page, failure). A non-2xx status or any
// transport error is a failure; parse problems inside a 2xx response fall
// back to an empty page rather than a failure so downstream treats the
// fields as "needs LLM".
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, *FetchFailure) {
	body, contentType, status, err := f.get(ctx, url)
	if err != nil {
		return nil, &FetchFailure{URL: url, Status: status, Reason: err.Error()}
	}

	page := &Page{URL: url}

	if strings.HasPrefix(contentType, "application/pdf") {
		page.Kind = KindPDF
		text, images, err := f.pdf.Extract(ctx, body)
		if err != nil {
			return nil, &FetchFailure{URL: url, Kind: FailParse, Status: status, Reason: fmt.Sprintf("pdf parse: %v", err)}
		}
		page.Text = text
		page.Thumbnails = images
		return page, nil
	}

	page.Kind = KindHTML
	page.RawHTML = body
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchFailure{URL: url, Kind: FailParse, Status: status, Reason: fmt.Sprintf("html parse: %v", err)}
	}
	page.Doc = doc

	// Best effort: the og:image header tag usually points at the article
	// illustration. Failure here is ignored.
	if imgURL, ok := doc.Find(`head meta[property="og:image"]`).Attr("content"); ok && imgURL != "" {
		if data := f.fetchImage(ctx, imgURL); data != nil {
			page.Thumbnails = append(page.Thumbnails, data)
		}
	}

	return page, nil
}

// FetchImage retrieves one image URL, returning nil on any failure.
func (f *Fetcher) FetchImage(ctx context.Context, url string) []byte {
	return f.fetchImage(ctx, url)
}

func (f *Fetcher) fetchImage(ctx context.Context, url string) []byte {
	body, _, _, err := f.get(ctx, url)
	if err != nil {
		f.log.Debug().Str("url", url).Err(err).Msg("illustration fetch failed")
		return nil
	}
	return body
}

func (f *Fetcher) get(ctx context.Context, url string) (body []byte, contentType string, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", resp.StatusCode, fmt.Errorf("http status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, "", resp.StatusCode, err
	}
	return body, resp.Header.Get("Content-Type"), resp.StatusCode, nil
}
