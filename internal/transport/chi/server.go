// Package chi exposes the HTTP API: document upload, question answering,
// shipment extraction, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/haulware/loadlens/internal/domain"
	healthuc "github.com/haulware/loadlens/internal/usecase/health"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error response codes.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeNoDocuments       = "no_documents"
	CodeUnsupportedFormat = "unsupported_format"
	CodeEmptyDocument     = "empty_document"
	CodePayloadTooLarge   = "payload_too_large"
	CodeGenerationFailed  = "generation_failed"
	CodeEmbeddingFailed   = "embedding_failed"
	CodeInternalError     = "internal_error"
)

// Answerer answers a question against the indexed documents.
type Answerer interface {
	Ask(ctx context.Context, question string) (domain.Answer, error)
}

// Extractor pulls structured shipment fields from the indexed documents.
type Extractor interface {
	Extract(ctx context.Context) (domain.ShipmentExtraction, error)
}

// Uploader ingests a document and reports how many chunks were indexed.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (int, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into HTTP handlers.
type Server struct {
	answers       Answerer
	extractions   Extractor
	ingest        Uploader
	health        HealthReporter
	logger        *zap.Logger
	maxUploadSize int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	answers Answerer,
	extractions Extractor,
	ingest Uploader,
	health HealthReporter,
	maxUploadSize int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		answers:       answers,
		extractions:   extractions,
		ingest:        ingest,
		health:        health,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoDocuments, http.StatusConflict, CodeNoDocuments),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, CodeUnsupportedFormat),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusBadRequest, CodeEmptyDocument),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, CodeGenerationFailed),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusBadGateway, CodeEmbeddingFailed),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.Ask)
	r.Post("/extract", s.Extract)
	r.Post("/upload", s.Upload)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// UploadResponse is the body of a successful POST /upload.
type UploadResponse struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// A blank question gets a direct prompt back, bypassing retrieval.
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusOK, domain.Answer{
			Answer:               "Question required.",
			SupportingSourceText: []string{},
			ConfidenceScore:      0.0,
		})
		return
	}

	answer, err := s.answers.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// Extract handles POST /extract.
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	record, err := s.extractions.Extract(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Upload handles POST /upload. The multipart form must carry the document
// in a "file" field. Uploading replaces the previously indexed document set.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, CodeValidationFailed, `multipart "file" field is required`)
		return
	}
	defer func() { _ = file.Close() }()

	chunks, err := s.ingest.Upload(r.Context(), header.Filename, file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "uploaded file is too large")
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Filename: header.Filename,
		Chunks:   chunks,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoDocuments,
		domain.ErrUnsupportedFormat,
		domain.ErrEmptyDocument,
		domain.ErrGenerationFailed,
		domain.ErrEmbeddingFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
