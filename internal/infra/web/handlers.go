package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/usecase"
)

// A struct to define the expected JSON request body for launching a job.
type ingestLaunchRequest struct {
	URLs       string `json:"urls"` // comma-separated
	ClientType string `json:"client_type"`
	Model      string `json:"model"`
	ChatFormat string `json:"chat_format"`
	TaskID     string `json:"task_id"`
}

// Handler for launching an ingestion job.
func ingestLaunchHandler(ingestUC usecase.IngestUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestLaunchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		urls := usecase.SplitURLList(req.URLs)
		if len(urls) == 0 {
			http.Error(w, "No valid URLs in request", http.StatusBadRequest)
			return
		}

		result, err := ingestUC.Launch(usecase.LaunchRequest{
			URLs:       urls,
			Backend:    req.ClientType,
			Model:      req.Model,
			ChatFormat: req.ChatFormat,
			JobID:      req.TaskID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to launch job", http.StatusConflict)
			return
		}

		response := struct {
			Status string         `json:"status"`
			TaskID string         `json:"task_id"`
			Total  int            `json:"total"`
			Counts map[string]int `json:"counts"`
		}{
			Status: "processing started",
			TaskID: result.JobID,
			Total:  result.Total,
			Counts: result.Counts,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(response)
	}
}

// Handler for polling the live progress snapshot of a job.
func ingestProgressHandler(ingestUC usecase.IngestUseCase, taskID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		snap, err := ingestUC.Progress(ctx, taskID)
		if err != nil {
			http.Error(w, "Failed to get progress", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(snap)
	}
}

// Handler for the per-job attempt log aggregates.
func ingestSummaryHandler(ingestUC usecase.IngestUseCase, taskID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := ingestUC.Summary(ctx, taskID)
		if err != nil {
			http.Error(w, "Failed to get summary", http.StatusInternalServerError)
			return
		}

		response := struct {
			Logged         int    `json:"logged"`
			Failed         int    `json:"failed"`
			ProcessedByLLM int    `json:"processed_by_llm"`
			TwoShotSuccess int    `json:"two_shot_success"`
			FailedJSON     int    `json:"failed_json"`
			Model          string `json:"model,omitempty"`
		}{
			Logged:         summary.Logged,
			Failed:         summary.Failed,
			ProcessedByLLM: summary.ProcessedByLLM,
			TwoShotSuccess: summary.TwoShotSuccess,
			FailedJSON:     summary.FailedJSON,
			Model:          summary.Model,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// A struct to define the expected JSON request body for a URL preview.
type urlsPreviewRequest struct {
	URLs string `json:"urls"` // comma-separated
}

// Handler for previewing a URL list before launching a job.
func urlsPreviewHandler(submitUC usecase.SubmitUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req urlsPreviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		preview, err := submitUC.Preview(ctx, req.URLs)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "No valid URLs in request", http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to preview URLs", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(preview)
	}
}

// Handler for looking up one stored document's URL state by slug.
func urlGetHandler(submitUC usecase.SubmitUseCase, slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		info, err := submitUC.PreviewBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get document", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(info)
	}
}
