// Package api serves the local status endpoints: health, session status,
// saved recordings, and Prometheus metrics. The server is optional and only
// runs when an HTTP address is configured.
package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/metrics"
	"github.com/voxnote/voxnote/internal/recorder"
	"github.com/voxnote/voxnote/internal/settings"
	"github.com/voxnote/voxnote/internal/watcher"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// NewServer builds the status server. watch may be nil when the process is
// not running in watch mode.
func NewServer(cfg *config.Config, session *recorder.Session, watch *watcher.Watcher, store *settings.Store, version string, startTime time.Time, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	h := &statusHandler{
		cfg:       cfg,
		session:   session,
		watch:     watch,
		store:     store,
		version:   version,
		startTime: startTime,
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/recordings", h.recordings)
	})

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}

type statusHandler struct {
	cfg       *config.Config
	session   *recorder.Session
	watch     *watcher.Watcher
	store     *settings.Store
	version   string
	startTime time.Time
}

type statusResponse struct {
	Version              string         `json:"version"`
	UptimeSeconds        float64        `json:"uptime_seconds"`
	CredentialConfigured bool           `json:"credential_configured"`
	Session              recorder.Stats `json:"session"`
	Watcher              *watcher.Stats `json:"watcher,omitempty"`
}

func (h *statusHandler) status(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Version:              h.version,
		UptimeSeconds:        time.Since(h.startTime).Seconds(),
		CredentialConfigured: h.store.APIKey() != "",
		Session:              h.session.Stats(),
	}
	if h.watch != nil {
		s := h.watch.Stats()
		resp.Watcher = &s
	}
	WriteJSON(w, http.StatusOK, resp)
}

type recordingEntry struct {
	Name          string    `json:"name"`
	SizeBytes     int64     `json:"size_bytes"`
	ModifiedAt    time.Time `json:"modified_at"`
	HasTranscript bool      `json:"has_transcript"`
}

// recordings lists saved WAV assets newest-last, as the directory orders
// them. Chunker temp segments are excluded.
func (h *statusHandler) recordings(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(h.cfg.RecordingsDir())
	if err != nil {
		if os.IsNotExist(err) {
			WriteJSON(w, http.StatusOK, []recordingEntry{})
			return
		}
		WriteError(w, http.StatusInternalServerError, "read recordings directory")
		return
	}

	out := make([]recordingEntry, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".wav") || strings.HasPrefix(name, "chunk_") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		_, terr := os.Stat(filepath.Join(h.cfg.TranscriptsDir(), base+".txt"))
		out = append(out, recordingEntry{
			Name:          name,
			SizeBytes:     info.Size(),
			ModifiedAt:    info.ModTime(),
			HasTranscript: terr == nil,
		})
	}
	WriteJSON(w, http.StatusOK, out)
}
