package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mdgraph/internal/logging"
	"github.com/aretw0/mdgraph/internal/validator"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/aretw0/mdgraph/pkg/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxSourceBytes bounds request bodies.
const maxSourceBytes = 4 << 20

// Engine is the subset of the mdgraph engine served over HTTP.
type Engine interface {
	Validate(text string) (*domain.Diagram, []validator.Finding)
	DOT(d *domain.Diagram) string
	Mermaid(d *domain.Diagram) string
	Render(ctx context.Context, d *domain.Diagram, format string) ([]byte, error)
}

// Server holds the handlers of the HTTP API.
type Server struct {
	Engine  Engine
	Version string

	logger   *slog.Logger
	registry *prometheus.Registry
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry registers the HTTP metrics on reg and serves it at /metrics.
// Other collectors (e.g. the render cache) can share the same registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for the engine.
// It fails when the embedded OpenAPI document does not validate.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s := &Server{
		Engine:   engine,
		logger:   logging.NewNop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	validate, err := validateRequests(doc)
	if err != nil {
		return nil, err
	}
	metrics := newMetrics(s.registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.middleware)
	r.Use(s.logRequests)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(validate)
		r.Get("/healthz", s.Health)
		r.Route("/v1", func(r chi.Router) {
			r.Post("/parse", s.Parse)
			r.Post("/export", s.Export)
			r.Post("/render", s.Render)
		})
	})

	return r, nil
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>mdgraph API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type sourceRequest struct {
	Source string `json:"source"`
	Format string `json:"format"`
}

type parseResponse struct {
	Diagram  *domain.Diagram     `json:"diagram"`
	Findings []validator.Finding `json:"findings"`
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.Version})
}

// Parse handles POST /v1/parse.
func (s *Server) Parse(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r)
	if !ok {
		return
	}
	d, findings := s.Engine.Validate(body.Source)
	if findings == nil {
		findings = []validator.Finding{}
	}
	writeJSON(w, http.StatusOK, parseResponse{Diagram: d, Findings: findings})
}

// Export handles POST /v1/export.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r)
	if !ok {
		return
	}
	d, _ := s.Engine.Validate(body.Source)

	var out string
	switch body.Format {
	case "", "mermaid":
		out = s.Engine.Mermaid(d)
	case "dot":
		out = s.Engine.DOT(d)
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format: "+body.Format)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

// Render handles POST /v1/render.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r)
	if !ok {
		return
	}
	format := body.Format
	if format == "" {
		format = render.FormatSVG
	}

	d, _ := s.Engine.Validate(body.Source)
	start := time.Now()
	out, err := s.Engine.Render(r.Context(), d, format)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("render failed", "format", format, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}
	s.logger.Debug("render done", "format", format, "bytes", len(out), "elapsed", time.Since(start))

	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(out)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (sourceRequest, bool) {
	var body sourceRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSourceBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return body, false
	}
	return body, true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrRenderFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format string) string {
	switch format {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	case render.FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
