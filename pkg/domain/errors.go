package domain

import "errors"

// ErrInputNotFound is returned when the document to parse cannot be read.
var ErrInputNotFound = errors.New("input not found")

// ErrBackendUnavailable is returned when the layout engine (graphviz) cannot be invoked.
var ErrBackendUnavailable = errors.New("rendering backend unavailable")

// ErrUnsupportedFormat is returned when an output format is not known to the renderer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ErrRenderFailed is returned when the layout engine ran but reported a failure.
var ErrRenderFailed = errors.New("render failed")

// ErrEmptyDiagram is returned by consumers that refuse to render a diagram without nodes.
var ErrEmptyDiagram = errors.New("diagram has no nodes")
