package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/domain"
	"github.com/avax-reflights/refundservice/internal/log"
	"github.com/avax-reflights/refundservice/internal/metrics"
	"github.com/avax-reflights/refundservice/internal/service"
)

// Server is the HTTP API for the refund service
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// New creates the HTTP server with all routes registered
func New(addr string, svc *service.RefundService, logger *zap.Logger) *Server {
	h := &handlers{svc: svc}

	r := mux.NewRouter()
	r.Use(requestMiddleware)

	r.HandleFunc("/v1/refunds/eligibility", h.checkEligibility).Methods(http.MethodPost)
	r.HandleFunc("/v1/refunds", h.submitRefund).Methods(http.MethodPost)
	r.HandleFunc("/v1/airlines/{airline}/refund-policy", h.getPolicy).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type handlers struct {
	svc *service.RefundService
}

// submitRequest is the body of POST /v1/refunds
type submitRequest struct {
	Ticket domain.Ticket `json:"ticket"`
	Reason string        `json:"reason"`
}

// submitResponse is the body returned for an accepted refund submission
type submitResponse struct {
	SubmissionID string  `json:"submission_id"`
	RefundAmount float64 `json:"refund_amount"`
	Status       string  `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *handlers) checkEligibility(w http.ResponseWriter, r *http.Request) {
	var ticket domain.Ticket
	if err := json.NewDecoder(r.Body).Decode(&ticket); err != nil {
		writeError(w, http.StatusBadRequest, domain.NewInvalidInputError("invalid request body", err.Error()))
		return
	}

	eligibility, err := h.svc.CheckEligibility(r.Context(), ticket)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eligibility)
}

func (h *handlers) submitRefund(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.NewInvalidInputError("invalid request body", err.Error()))
		return
	}

	id, refundReq, err := h.svc.SubmitRefund(r.Context(), req.Ticket, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		SubmissionID: id,
		RefundAmount: refundReq.RefundAmount,
		Status:       "accepted",
	})
}

func (h *handlers) getPolicy(w http.ResponseWriter, r *http.Request) {
	airline := mux.Vars(r)["airline"]

	res, err := h.svc.ResolvePolicy(r.Context(), airline)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res.Policy)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, de *domain.DomainError) {
	writeJSON(w, status, errorResponse{
		Error:   de.Message,
		Code:    de.Code,
		Details: de.Details,
	})
}

// writeDomainError maps domain error codes onto HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	de := domain.GetDomainError(err)
	if de == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case domain.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case domain.ErrCodeNotFound:
		status = http.StatusNotFound
	case domain.ErrCodeInvalidState:
		status = http.StatusConflict
	case domain.ErrCodePolicyFetch, domain.ErrCodeSubmitFailed:
		status = http.StatusBadGateway
	}

	writeError(w, status, de)
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware attaches a request id, records metrics and logs the
// request outcome
func requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := log.WithRequestID(r.Context(), uuid.NewString())
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, route, strconv.Itoa(rec.status), duration)

		log.Debug(ctx, "Handled HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration))
	})
}
