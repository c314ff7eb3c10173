// File: internal/scrape/fetcher_test.go
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/config"
)

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:      2 * time.Second,
		UserAgent:    "test-agent/1.0",
		MaxBodyBytes: 1 << 20,
	}
}

// fakeRunner scripts the poppler CLI without invoking it.
type fakeRunner struct {
	text string
	info string
}

func (r fakeRunner) Run(_ context.Context, name string, _ ...string) ([]byte, []byte, error) {
	switch {
	case strings.Contains(name, "pdfinfo"):
		return []byte(r.info), nil, nil
	case strings.Contains(name, "pdftotext"):
		return []byte(r.text), nil, nil
	default:
		return nil, []byte("not available"), fmt.Errorf("no such tool")
	}
}

func newTestFetcher(runner CommandRunner) *Fetcher {
	logger := zerolog.Nop()
	pdf := NewPDFExtractor(config.PDFConfig{
		Pdftotext: "pdftotext", Pdfinfo: "pdfinfo", Pdfimages: "pdfimages",
		MaxPages: 5, ImagesPerPage: 2,
	}, runner)
	return NewFetcher(testFetchConfig(), pdf, &logger)
}

func TestFetch_HTMLWithIllustration(t *testing.T) {
	t.Parallel()

	var mux http.ServeMux
	server := httptest.NewServer(&mux)
	defer server.Close()

	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><meta property="og:image" content="%s/img.png"></head><body><p>hello</p></body></html>`, server.URL)
	})
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})

	f := newTestFetcher(fakeRunner{})
	page, failure := f.Fetch(context.Background(), server.URL+"/article")
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if page.Kind != KindHTML || page.Doc == nil {
		t.Fatalf("expected parsed HTML page")
	}
	if got := strings.TrimSpace(page.Doc.Find("p").Text()); got != "hello" {
		t.Fatalf("body text = %q", got)
	}
	if len(page.Thumbnails) != 1 || string(page.Thumbnails[0]) != "png-bytes" {
		t.Fatalf("og:image not collected: %v", page.Thumbnails)
	}
}

func TestFetch_NonOKStatusIsFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	f := newTestFetcher(fakeRunner{})
	page, failure := f.Fetch(context.Background(), server.URL+"/gone")
	if page != nil {
		t.Fatalf("expected no page on 404")
	}
	if failure == nil || failure.Status != http.StatusNotFound {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if failure.Kind != FailRetrieve {
		t.Fatalf("expected retrieval failure kind, got %v", failure.Kind)
	}
}

func TestFetch_TransportErrorIsFailure(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(fakeRunner{})
	page, failure := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	if page != nil || failure == nil {
		t.Fatalf("expected a failure outcome")
	}
}

func TestFetch_PDFContentGoesThroughExtractor(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	f := newTestFetcher(fakeRunner{
		info: "Title: A Paper\nPages: 12\n",
		text: "The body of the paper.",
	})
	page, failure := f.Fetch(context.Background(), server.URL+"/doc.pdf")
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if page.Kind != KindPDF {
		t.Fatalf("expected PDF page kind")
	}
	if !strings.Contains(page.Text, "Title: A Paper") {
		t.Fatalf("metadata not prepended: %q", page.Text)
	}
	if !strings.Contains(page.Text, "The body of the paper.") {
		t.Fatalf("text missing: %q", page.Text)
	}
}

// brokenRunner fails every poppler invocation.
type brokenRunner struct{}

func (brokenRunner) Run(context.Context, string, ...string) ([]byte, []byte, error) {
	return nil, []byte("corrupt stream"), fmt.Errorf("exit status 1")
}

func TestFetch_PDFParseErrorIsParseFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("not really a pdf"))
	}))
	defer server.Close()

	f := newTestFetcher(brokenRunner{})
	page, failure := f.Fetch(context.Background(), server.URL+"/doc.pdf")
	if page != nil || failure == nil {
		t.Fatalf("expected a failure outcome")
	}
	if failure.Kind != FailParse {
		t.Fatalf("expected parse failure kind, got %+v", failure)
	}
	if failure.Status != http.StatusOK {
		t.Fatalf("parse failure should keep the 2xx status, got %d", failure.Status)
	}
}

func TestFetchImage_FailureReturnsNil(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(fakeRunner{})
	if data := f.FetchImage(context.Background(), "http://127.0.0.1:1/x.png"); data != nil {
		t.Fatalf("expected nil on fetch failure")
	}
}
