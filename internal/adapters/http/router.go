package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/noteground/noteground/internal/core/domain"
	"github.com/noteground/noteground/internal/core/ports"
	"github.com/noteground/noteground/internal/observability/metrics"
)

const serviceName = "api"

type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	ingest  ports.NoteIngestor
	reader  ports.NoteReader
	answers ports.QueryAnswerer
	metrics *metrics.HTTPServerMetrics
	options RouterOptions
}

func NewRouter(
	ingest ports.NoteIngestor,
	reader ports.NoteReader,
	answers ports.QueryAnswerer,
	serverMetrics *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	return &Router{
		ingest:  ingest,
		reader:  reader,
		answers: answers,
		metrics: serverMetrics,
		options: options,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/notes", rt.createNote)
	mux.HandleFunc("/v1/notes/", rt.getNoteByID)
	mux.HandleFunc("/v1/query", rt.answerQuery)

	var handler http.Handler = mux
	if rt.options.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.options.MaxInFlight, 50*time.Millisecond)
	}
	if rt.options.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.options.RateLimitRPS, rt.options.RateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		root := http.NewServeMux()
		root.Handle("/metrics", rt.metrics.Handler())
		root.Handle("/", rt.metrics.Middleware(serviceName, handler))
		return root
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createNoteRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (rt *Router) createNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	note, err := rt.ingest.CreateNote(r.Context(), req.Content, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordNoteCreated(serviceName)
	}

	writeJSON(w, http.StatusCreated, note)
}

func (rt *Router) getNoteByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/notes/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "note id is required"})
		return
	}

	note, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type queryRequest struct {
	Question string   `json:"question"`
	NoteIDs  []string `json:"note_ids"`
	Tags     []string `json:"tags"`
	Limit    int      `json:"limit"`
	Model    string   `json:"model"`
}

func (rt *Router) answerQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	result, err := rt.answers.AnswerQuery(r.Context(), req.Question, domain.ContextSelector{
		NoteIDs: req.NoteIDs,
		Tags:    req.Tags,
		Limit:   req.Limit,
	}, req.Model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnswer(
			serviceName,
			string(result.QueryType),
			string(result.Status),
			len(result.Citations),
			result.Confidence,
			time.Since(start),
		)
		if result.QueryType == domain.QueryUnanswerable {
			rt.metrics.RecordEmptyContext(serviceName)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
