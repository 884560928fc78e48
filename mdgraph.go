package mdgraph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/internal/logging"
	"github.com/aretw0/mdgraph/internal/presentation/graph"
	"github.com/aretw0/mdgraph/internal/validator"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/aretw0/mdgraph/pkg/render"
)

// Layout holds the graph-level layout attributes.
type Layout struct {
	RankDir string
	NodeSep float64
	RankSep float64
}

// DefaultLayout returns the layout used when none is configured.
func DefaultLayout() Layout {
	return Layout{
		RankDir: graph.DefaultRankDir,
		NodeSep: graph.DefaultNodeSep,
		RankSep: graph.DefaultRankSep,
	}
}

// Engine is the high-level entry point of the library.
// It parses documents, exports them as DOT or Mermaid and renders them through a Renderer.
// An Engine is safe for concurrent use once built.
type Engine struct {
	logger   *slog.Logger
	strict   bool
	renderer render.Renderer
	layout   Layout
	baseDir  string
	images   *render.ImageFetcher
	parser   *compiler.Parser
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStrict makes Parse fail on any parse diagnostic.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithRenderer replaces the default Graphviz renderer (e.g. with a render.Cache).
func WithRenderer(r render.Renderer) Option {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithLayout sets the graph layout. Zero values keep the defaults.
func WithLayout(rankDir string, nodeSep, rankSep float64) Option {
	return func(e *Engine) {
		if rankDir != "" {
			e.layout.RankDir = rankDir
		}
		if nodeSep > 0 {
			e.layout.NodeSep = nodeSep
		}
		if rankSep > 0 {
			e.layout.RankSep = rankSep
		}
	}
}

// WithBaseDir sets the directory relative stylesheet paths are resolved against.
// Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// WithImageFetcher enables downloading remote node images before rendering.
func WithImageFetcher(f *render.ImageFetcher) Option {
	return func(e *Engine) {
		e.images = f
	}
}

// New initializes an Engine. Without options it renders with the graphviz binary on PATH.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   logging.NewNop(),
		renderer: render.NewGraphviz(),
		layout:   DefaultLayout(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.parser = compiler.NewParser(compiler.WithStrict(e.strict), compiler.WithLogger(e.logger))
	return e
}

// Layout returns the effective layout.
func (e *Engine) Layout() Layout {
	return e.layout
}

// Parse converts a document into a diagram.
// In strict mode parse diagnostics are returned as a *compiler.AggregateError.
func (e *Engine) Parse(text string) (*domain.Diagram, error) {
	return e.parser.Parse(text)
}

// Load reads and parses a document from disk.
func (e *Engine) Load(path string) (*domain.Diagram, error) {
	text, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return e.Parse(text)
}

// Validate parses text and reports parse diagnostics and structural findings.
func (e *Engine) Validate(text string) (*domain.Diagram, []validator.Finding) {
	return validator.ValidateText(e.parser, text)
}

// DOT serializes the diagram with the engine layout and stylesheet resolution.
func (e *Engine) DOT(d *domain.Diagram) string {
	return graph.GenerateDOT(d, e.dotOptions(d, nil))
}

// Mermaid serializes the diagram as a Mermaid flowchart following the engine rank direction.
func (e *Engine) Mermaid(d *domain.Diagram) string {
	return graph.GenerateMermaid(d, graph.MermaidOptions{Direction: e.layout.RankDir})
}

// Render lays out the diagram in the requested format.
// For SVG output the inline stylesheet of the document is embedded into the result.
func (e *Engine) Render(ctx context.Context, d *domain.Diagram, format string) ([]byte, error) {
	var images map[string]string
	if e.images != nil {
		images = e.images.LocalizeImages(ctx, d)
	}

	dot := graph.GenerateDOT(d, e.dotOptions(d, images))
	out, err := e.renderer.RenderDOT(ctx, dot, format)
	if err != nil {
		return nil, err
	}
	if format == render.FormatSVG && d.InlineStylesheet != "" {
		out = render.InjectStylesheet(out, d.InlineStylesheet)
	}
	e.logger.Debug("diagram rendered", "format", format, "nodes", d.Len(), "bytes", len(out))
	return out, nil
}

// RenderFile reads, parses and renders a document.
func (e *Engine) RenderFile(ctx context.Context, path string, format string) ([]byte, error) {
	d, err := e.Load(path)
	if err != nil {
		return nil, err
	}
	return e.Render(ctx, d, format)
}

func (e *Engine) dotOptions(d *domain.Diagram, images map[string]string) graph.DOTOptions {
	return graph.DOTOptions{
		RankDir:        e.layout.RankDir,
		NodeSep:        e.layout.NodeSep,
		RankSep:        e.layout.RankSep,
		StylesheetHref: render.ResolveStylesheetHref(d.Stylesheet, e.baseDir),
		Images:         images,
	}
}

// ReadDocument reads a document, mapping a missing file to domain.ErrInputNotFound.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrInputNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
