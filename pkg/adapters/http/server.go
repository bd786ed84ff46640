package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server exposes an Applier over HTTP.
type Server struct {
	Applier ports.Applier
	Streams *StreamManager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server over applier.
func NewServer(applier ports.Applier, opts ...Option) *Server {
	s := &Server{
		Applier: applier,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the applier.
func NewHandler(applier ports.Applier, opts ...Option) http.Handler {
	return NewServer(applier, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	return enableCORS(s.router())
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/openapi.json", s.GetSpec)
	r.Route("/machines/{machine}/records/{id}", func(r chi.Router) {
		r.Get("/", s.GetRecord)
		r.Get("/history", s.GetHistory)
		r.Get("/transitions", s.GetTransitions)
		r.Post("/transitions/{transition}", s.ApplyTransition)
		r.Get("/events", s.SubscribeEvents)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetRecord handles GET /machines/{machine}/records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// GetHistory handles GET /machines/{machine}/records/{id}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	rec, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	history := rec.History
	if history == nil {
		history = []domain.HistoryRecord{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

// load reads the record addressed by the request, under a configured machine.
func (s *Server) load(r *http.Request) (*domain.Record, error) {
	if err := s.checkMachine(r); err != nil {
		return nil, err
	}
	return s.Applier.Load(r.Context(), chi.URLParam(r, "id"))
}

func (s *Server) checkMachine(r *http.Request) error {
	machine := chi.URLParam(r, "machine")
	if !s.Applier.HasMachine(machine) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMachine, machine)
	}
	return nil
}

// GetTransitions handles GET /machines/{machine}/records/{id}/transitions.
func (s *Server) GetTransitions(w http.ResponseWriter, r *http.Request) {
	possible, err := s.Applier.Possible(r.Context(), chi.URLParam(r, "machine"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if possible == nil {
		possible = []domain.PossibleTransition{}
	}
	s.writeJSON(w, http.StatusOK, possible)
}

// ApplyTransition handles POST /machines/{machine}/records/{id}/transitions/{transition}.
func (s *Server) ApplyTransition(w http.ResponseWriter, r *http.Request) {
	machine := chi.URLParam(r, "machine")
	id := chi.URLParam(r, "id")
	transition := chi.URLParam(r, "transition")

	rec, err := s.Applier.Apply(r.Context(), machine, id, transition)
	if rec != nil && len(rec.History) > 0 && !rejectedBeforeCommit(err) {
		if data, mErr := json.Marshal(rec.History[len(rec.History)-1]); mErr == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}
	if err != nil {
		s.logger.Info("transition rejected",
			"machine", machine,
			"record_id", id,
			"transition", transition,
			"reason", domain.Reason(err),
		)
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// rejectedBeforeCommit reports whether err left the record untouched.
func rejectedBeforeCommit(err error) bool {
	if err == nil {
		return false
	}
	var cbErr *domain.CallbackError
	if errors.As(err, &cbErr) {
		return cbErr.Phase == domain.PhasePre
	}
	return true
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string             `json:"error"`
	Reason string             `json:"reason"`
	Errors domain.FieldErrors `json:"errors,omitempty"`
}

// StatusFor maps an engine error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownTransition),
		errors.Is(err, domain.ErrUnknownMachine),
		errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{
		Error:  err.Error(),
		Reason: domain.Reason(err),
		Errors: domain.ValidationErrors(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", fmt.Errorf("encode: %w", err))
	}
}
