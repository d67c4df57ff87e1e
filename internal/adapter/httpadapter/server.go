package httpadapter

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/pipeline"
	"github.com/couchcryptid/air-quality-eda/internal/render"
	"github.com/couchcryptid/air-quality-eda/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/plot/vg"
)

// ResultProvider exposes the latest pipeline result. It returns nil until a
// run has completed.
type ResultProvider interface {
	Result() *pipeline.Result
}

// ChartOptions sizes the rendered panel and bounds the image cache.
type ChartOptions struct {
	WidthIn   float64
	HeightIn  float64
	CacheSize int
}

// Server exposes health, readiness, metrics, and the analysis API.
type Server struct {
	httpServer *http.Server
	results    ResultProvider
	width      vg.Length
	height     vg.Length
	images     *lruCache
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /api and
// /charts routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, results ResultProvider, charts ChartOptions, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		results: results,
		width:   vg.Length(charts.WidthIn) * vg.Inch,
		height:  vg.Length(charts.HeightIn) * vg.Inch,
		images:  newLRUCache(charts.CacheSize),
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/measurements", s.handleMeasurements)
	mux.HandleFunc("GET /charts/panel.png", s.handlePanel)
	mux.HandleFunc("GET /charts/{index}", s.handleChart)

	return s
}

// Serve accepts connections on ln until shutdown. Returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server starting", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// result writes a 503 and returns nil when no run has completed.
func (s *Server) result(w http.ResponseWriter) *pipeline.Result {
	res := s.results.Result()
	if res == nil {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no analysis available yet",
		})
	}
	return res
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report.NewSummary(res.Analysis))
}

// handleMeasurements lists the dataset, optionally filtered by ?city= and
// ?season= (both case-insensitive).
func (s *Server) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	city := r.URL.Query().Get("city")
	season := r.URL.Query().Get("season")

	out := make([]domain.Measurement, 0, len(res.Records))
	for _, m := range res.Records {
		if city != "" && !strings.EqualFold(string(m.City), city) {
			continue
		}
		if season != "" && !strings.EqualFold(string(m.Season()), season) {
			continue
		}
		out = append(out, m)
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handlePanel(w http.ResponseWriter, _ *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	if len(res.Panel) == 0 {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "charts are disabled"})
		return
	}
	data, err := s.images.getOrRender(res.Analysis.RunID+":panel", func() ([]byte, error) {
		var buf bytes.Buffer
		err := render.Panel(&buf, res.Panel, s.width, s.height)
		return buf.Bytes(), err
	})
	if err != nil {
		s.logger.Error("render panel failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	writePNG(w, data)
}

// handleChart renders one chart of the panel. index is 1-based and may carry
// a ".png" suffix.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	idx, err := strconv.Atoi(strings.TrimSuffix(r.PathValue("index"), ".png"))
	if err != nil || idx < 1 || idx > len(res.Panel) {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no such chart"})
		return
	}
	data, err := s.images.getOrRender(res.Analysis.RunID+":"+strconv.Itoa(idx), func() ([]byte, error) {
		var buf bytes.Buffer
		err := render.Single(&buf, res.Panel[idx-1], s.width/render.PanelCols, s.height/render.PanelCols)
		return buf.Bytes(), err
	})
	if err != nil {
		s.logger.Error("render chart failed", "index", idx, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	writePNG(w, data)
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client disconnects are not actionable
}
