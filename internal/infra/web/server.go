package web

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/usecase"
)

type Server struct {
	ingestUC usecase.IngestUseCase
	submitUC usecase.SubmitUseCase
	apiKey   string
	registry *prometheus.Registry
	log      *zerolog.Logger
}

func NewServer(
	ingestUC usecase.IngestUseCase,
	submitUC usecase.SubmitUseCase,
	apiKey string,
	registry *prometheus.Registry,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		ingestUC: ingestUC,
		submitUC: submitUC,
		apiKey:   apiKey,
		registry: registry,
		log:      logger,
	}
}

// RegisterRoutes sets up the routing for the ingestion API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	ingestRouter := s.authMiddleware(s.ingestRouter())
	mux.Handle("/api/v1/ingest", ingestRouter)
	mux.Handle("/api/v1/ingest/", ingestRouter)

	urlsRouter := s.authMiddleware(s.urlsRouter())
	mux.Handle("/api/v1/urls", urlsRouter)
	mux.Handle("/api/v1/urls/", urlsRouter)

	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// authMiddleware provides simple Bearer token authentication for the API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ingestRouter acts as a sub-router for /api/v1/ingest.
func (s *Server) ingestRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/ingest")
		path = strings.Trim(path, "/")

		// Route /api/v1/ingest (no task id)
		if path == "" {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			ingestLaunchHandler(s.ingestUC)(w, r)
			return
		}

		// Route /api/v1/ingest/{task_id}/{progress|summary}
		parts := strings.Split(path, "/")
		if len(parts) != 2 || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		taskID := parts[0]
		switch parts[1] {
		case "progress":
			ingestProgressHandler(s.ingestUC, taskID)(w, r)
		case "summary":
			ingestSummaryHandler(s.ingestUC, taskID)(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// urlsRouter acts as a sub-router for /api/v1/urls.
func (s *Server) urlsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/urls")
		path = strings.Trim(path, "/")

		// Route /api/v1/urls/preview
		if path == "preview" {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			urlsPreviewHandler(s.submitUC)(w, r)
			return
		}

		// Route /api/v1/urls/{slug}
		if path != "" && r.Method == http.MethodGet {
			urlGetHandler(s.submitUC, path)(w, r)
			return
		}

		http.NotFound(w, r)
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
