// Package server exposes the annotator over HTTP: GET / serves the app
// metadata, POST / annotates a container, plus healthz and prometheus
// metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"speechmark/internal/app"
	"speechmark/internal/config"
	"speechmark/internal/mmif"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// maxBody bounds the request container size; media bytes live on disk, not
// in the container.
const maxBody = 64 << 20

// Server hosts the annotator.
type Server struct {
	cfg     *config.Config
	logger  *logrus.Logger
	ann     *app.Annotator
	metrics *metrics
}

// New builds a Server around an annotator.
func New(cfg *config.Config, logger *logrus.Logger, ann *app.Annotator) *Server {
	return &Server{cfg: cfg, logger: logger, ann: ann, metrics: newMetrics()}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	r.Get("/", s.handleMetadata)
	r.Post("/", s.handleAnnotate)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.reg, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Infof("listening on http://localhost:%d", s.cfg.Server.Port)
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(app.AppMetadata()); err != nil {
		s.logger.Warnf("write metadata: %v", err)
	}
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	log := s.logger.WithField("request_id", reqID)
	started := time.Now()

	overrides := map[string]string{}
	for k, vals := range r.URL.Query() {
		if len(vals) > 0 {
			overrides[k] = vals[0]
		}
	}
	p, err := config.ParamsFrom(s.cfg, overrides)
	if err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	m, err := mmif.Parse(body)
	if err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	viewsBefore := len(m.Views)
	annErr := s.ann.Annotate(r.Context(), m, p)
	s.metrics.duration.Observe(time.Since(started).Seconds())
	s.metrics.tokens.Add(float64(countTokens(m.Views[viewsBefore:])))

	status := http.StatusOK
	if annErr != nil {
		log.Errorf("annotate: %v", annErr)
		s.metrics.requests.WithLabelValues("error").Inc()
		status = http.StatusInternalServerError
	} else {
		log.Infof("annotated container in %.1fs", time.Since(started).Seconds())
		s.metrics.requests.WithLabelValues("ok").Inc()
	}

	out, err := m.Encode(p.Pretty)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		log.Warnf("write response: %v", err)
	}
}

func countTokens(views []*mmif.View) int {
	n := 0
	for _, v := range views {
		for _, a := range v.Annotations {
			if a.Type == mmif.Token {
				n++
			}
		}
	}
	return n
}
