// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crimson-sun/talepnlp/internal/engine/loader"
	"github.com/crimson-sun/talepnlp/internal/model"
	"github.com/crimson-sun/talepnlp/internal/output"
)

const (
	maxBodyBytes    = 1 << 20
	maxBatchSize    = 256
	shutdownTimeout = 10 * time.Second
)

// Processor produces prediction records and reports artifact status.
type Processor interface {
	Process(ctx context.Context, text string) model.Record
	ProcessBatch(ctx context.Context, texts []string) ([]model.Record, error)
	Status() []loader.Status
}

// Server serves predictions. Every record is also written to sink, which
// should be a single-writer queue when handlers run concurrently.
type Server struct {
	proc   Processor
	sink   output.Output
	logger *slog.Logger
}

// New creates a Server. sink may be nil to skip persistence.
func New(proc Processor, sink output.Output, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, sink: sink, logger: logger}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/api/v1/health", s.health)
	r.Post("/api/v1/predict", s.predict)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type healthResponse struct {
	Status    string          `json:"status"` // "ok" or "degraded"
	Artifacts []loader.Status `json:"artifacts"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Artifacts: s.proc.Status()}
	for _, a := range resp.Artifacts {
		if !a.Available {
			resp.Status = "degraded"
		}
	}
	writeData(w, resp)
}

type predictRequest struct {
	Text  *string  `json:"text"`
	Texts []string `json:"texts"`
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a text or texts field")
		return
	}

	switch {
	case req.Text != nil && req.Texts != nil:
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Send either text or texts, not both")
	case req.Text != nil:
		rec := s.proc.Process(r.Context(), *req.Text)
		s.persist(r.Context(), rec)
		writeData(w, rec)
	case req.Texts != nil:
		if len(req.Texts) > maxBatchSize {
			writeError(w, http.StatusBadRequest, "BATCH_TOO_LARGE", "At most 256 texts per request")
			return
		}
		recs, err := s.proc.ProcessBatch(r.Context(), req.Texts)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
			return
		}
		for _, rec := range recs {
			s.persist(r.Context(), rec)
		}
		writeData(w, recs)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "text is required")
	}
}

// persist writes rec to the sink. Failures are logged and do not change
// the response.
func (s *Server) persist(ctx context.Context, rec model.Record) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Write(ctx, rec); err != nil {
		s.logger.Warn("prediction not saved", "error", err)
	}
}
