package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/usecase"
)

// ---- Fake use cases ----

type fakeIngestUC struct {
	launched *usecase.LaunchRequest
	snap     *model.ProgressSnapshot
	summary  *model.JobSummary
}

func (f *fakeIngestUC) Launch(req usecase.LaunchRequest) (*usecase.LaunchResult, error) {
	f.launched = &req
	return &usecase.LaunchResult{
		JobID:  "01TESTULID",
		Total:  len(req.URLs),
		Counts: map[string]int{"youtube": 0, "arxiv": 0, "others": len(req.URLs)},
	}, nil
}

func (f *fakeIngestUC) Progress(_ context.Context, _ string) (*model.ProgressSnapshot, error) {
	if f.snap == nil {
		return model.DefaultSnapshot(), nil
	}
	return f.snap, nil
}

func (f *fakeIngestUC) Summary(_ context.Context, _ string) (*model.JobSummary, error) {
	if f.summary == nil {
		return &model.JobSummary{}, nil
	}
	return f.summary, nil
}

type fakeSubmitUC struct {
	infos []model.URLInfo
}

func (f *fakeSubmitUC) Preview(_ context.Context, input string) (*usecase.PreviewResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, domain.ErrInvalidArgument
	}
	result := &usecase.PreviewResult{
		Counts:     map[string]int{"youtube": 0, "arxiv": 0, "others": len(f.infos)},
		Duplicates: make([]model.URLInfo, 0),
		NewEntries: make([]model.URLInfo, 0),
	}
	for _, info := range f.infos {
		if info.Exists {
			result.Duplicates = append(result.Duplicates, info)
		} else {
			result.NewEntries = append(result.NewEntries, info)
		}
	}
	return result, nil
}

func (f *fakeSubmitUC) PreviewBySlug(_ context.Context, slug string) (*model.URLInfo, error) {
	for i := range f.infos {
		if f.infos[i].Slug == slug {
			return &f.infos[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func newTestServer(ingest *fakeIngestUC, submit *fakeSubmitUC) *httptest.Server {
	logger := zerolog.Nop()
	srv := NewServer(ingest, submit, "secret-key", prometheus.NewRegistry(), &logger)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func doRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIngestUC{}, &fakeSubmitUC{})
	defer ts.Close()

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/v1/ingest", "", `{}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/v1/ingest", "wrong-key", `{}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("wrong token: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIngestLaunch(t *testing.T) {
	t.Parallel()

	ingest := &fakeIngestUC{}
	ts := newTestServer(ingest, &fakeSubmitUC{})
	defer ts.Close()

	body := `{"urls":"https://example.com/a, https://example.com/b","client_type":"llama_cpp_server","model":"","chat_format":"chatml"}`
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/v1/ingest", "secret-key", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var payload struct {
		Status string `json:"status"`
		TaskID string `json:"task_id"`
		Total  int    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "processing started" || payload.TaskID != "01TESTULID" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Total != 2 {
		t.Fatalf("expected 2 urls accepted, got %d", payload.Total)
	}

	if ingest.launched == nil || ingest.launched.Backend != "llama_cpp_server" {
		t.Fatalf("launch request not forwarded: %+v", ingest.launched)
	}
	if ingest.launched.ChatFormat != "chatml" {
		t.Fatalf("chat format not forwarded: %+v", ingest.launched)
	}
}

func TestIngestLaunch_BadBody(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIngestUC{}, &fakeSubmitUC{})
	defer ts.Close()

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/v1/ingest", "secret-key", `{"urls":"not a url"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestIngestProgress(t *testing.T) {
	t.Parallel()

	ingest := &fakeIngestUC{snap: &model.ProgressSnapshot{
		Completed:      1,
		Total:          4,
		Progress:       25,
		ProcessingStep: "scraping started",
	}}
	ts := newTestServer(ingest, &fakeSubmitUC{})
	defer ts.Close()

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/ingest/01TESTULID/progress", "secret-key", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snap model.ProgressSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.Completed != 1 || snap.ProcessingStep != "scraping started" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestIngestSummary(t *testing.T) {
	t.Parallel()

	ingest := &fakeIngestUC{summary: &model.JobSummary{Logged: 3, Failed: 1, ProcessedByLLM: 2, Model: "test-model"}}
	ts := newTestServer(ingest, &fakeSubmitUC{})
	defer ts.Close()

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/ingest/01TESTULID/summary", "secret-key", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["logged"] != float64(3) || payload["model"] != "test-model" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestURLsPreview(t *testing.T) {
	t.Parallel()

	submit := &fakeSubmitUC{infos: []model.URLInfo{
		{URL: "https://example.com/a", Exists: true, Slug: "a-doc"},
		{URL: "https://example.com/b"},
	}}
	ts := newTestServer(&fakeIngestUC{}, submit)
	defer ts.Close()

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/v1/urls/preview", "secret-key", `{"urls":"https://example.com/a, https://example.com/b"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Counts     map[string]int  `json:"counts"`
		Duplicates []model.URLInfo `json:"duplicates"`
		NewEntries []model.URLInfo `json:"new_entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Duplicates) != 1 || !payload.Duplicates[0].Exists || payload.Duplicates[0].Slug != "a-doc" {
		t.Fatalf("unexpected duplicates %+v", payload.Duplicates)
	}
	if len(payload.NewEntries) != 1 || payload.NewEntries[0].URL != "https://example.com/b" {
		t.Fatalf("unexpected new entries %+v", payload.NewEntries)
	}
	if payload.Counts["others"] != 2 {
		t.Fatalf("unexpected counts %v", payload.Counts)
	}
}

func TestURLGetBySlug(t *testing.T) {
	t.Parallel()

	submit := &fakeSubmitUC{infos: []model.URLInfo{
		{URL: "https://example.com/a", Exists: true, Slug: "a-doc"},
	}}
	ts := newTestServer(&fakeIngestUC{}, submit)
	defer ts.Close()

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/urls/a-doc", "secret-key", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp2 := doRequest(t, http.MethodGet, ts.URL+"/api/v1/urls/missing", "secret-key", "")
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp2.StatusCode)
	}
}

func TestHealthIsPublic(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIngestUC{}, &fakeSubmitUC{})
	defer ts.Close()

	resp := doRequest(t, http.MethodGet, ts.URL+"/health", "", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&fakeIngestUC{}, &fakeSubmitUC{})
	defer ts.Close()

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/ingest", "secret-key", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
