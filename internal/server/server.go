// Package server exposes the subregion map over HTTP: a Leaflet page plus
// the JSON endpoints it drives.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/engine/geo"
	"github.com/rendis/subregiones/internal/engine/render"
	"github.com/rendis/subregiones/internal/model"
	"github.com/rendis/subregiones/internal/session"
)

//go:embed web/index.html
var indexHTML []byte

type Options struct {
	Port        int
	CORSOrigins []string
}

// Server serves a loaded feature store. The store is read-only once
// serving starts, so handlers share it without locking.
type Server struct {
	store  *features.Store
	opts   Options
	logger *zap.Logger
}

func New(store *features.Store, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{store: store, opts: opts, logger: logger}
}

// Router builds the chi router with every route and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/overlays", s.handleOverlays)
		r.Get("/map", s.handleMap)
		r.Get("/locate", s.handleLocate)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", zap.Int("port", s.opts.Port), zap.Bool("loaded", s.store.Loaded()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": s.store.Loaded(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts := session.Options{
		Departments: s.store.Departments(),
		Subregions:  s.store.Subregions(),
	}
	if opts.Departments == nil {
		opts.Departments = []string{}
	}
	if opts.Subregions == nil {
		opts.Subregions = []string{}
	}
	s.writeJSON(w, http.StatusOK, opts)
}

type overlayJSON struct {
	Rings      [][]model.LatLng   `json:"rings"`
	Popup      string             `json:"popup"`
	Style      model.PolygonStyle `json:"style"`
	Attributes model.Popup        `json:"attributes"`
}

type overlaysResponse struct {
	Count    int           `json:"count"`
	Overlays []overlayJSON `json:"overlays"`
}

// handleOverlays runs one filter/render cycle on a request-local canvas.
func (s *Server) handleOverlays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := model.Criteria{
		Department: q.Get("departamento"),
		Subregion:  q.Get("subregion"),
	}

	canvas := &render.Collector{}
	render.NewRenderer(s.store, canvas).ApplyFilter(c)

	drawn := canvas.Drawn()
	resp := overlaysResponse{
		Count:    len(drawn),
		Overlays: make([]overlayJSON, 0, len(drawn)),
	}
	for _, o := range drawn {
		resp.Overlays = append(resp.Overlays, overlayJSON{
			Rings:      o.Rings,
			Popup:      o.Popup.HTML(),
			Style:      o.Style,
			Attributes: o.Popup,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.DefaultMapOptions)
}

type locateResponse struct {
	Count      int           `json:"count"`
	Subregions []model.Popup `json:"subregiones"`
}

// handleLocate lists the subregions containing lat/lng.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng must be numbers"})
		return
	}

	fs := s.store.Features()
	resp := locateResponse{Subregions: []model.Popup{}}
	for _, i := range geo.Locate(fs, lat, lng) {
		resp.Subregions = append(resp.Subregions, model.NewPopup(fs[i].Attributes))
	}
	resp.Count = len(resp.Subregions)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
