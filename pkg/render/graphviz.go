package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aretw0/mdgraph/pkg/domain"
)

// Output formats understood by Graphviz.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// SupportedFormat reports whether format is one of Formats.
func SupportedFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Renderer turns DOT text into bytes of the requested format.
type Renderer interface {
	RenderDOT(ctx context.Context, dot string, format string) ([]byte, error)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(ctx context.Context, dot string, format string) ([]byte, error)

// RenderDOT calls f.
func (f RenderFunc) RenderDOT(ctx context.Context, dot string, format string) ([]byte, error) {
	return f(ctx, dot, format)
}

// Graphviz renders by piping DOT text into the "dot" command.
type Graphviz struct {
	// Binary is the command to run. Defaults to "dot".
	Binary string
}

// NewGraphviz creates a Graphviz renderer using the dot binary on PATH.
func NewGraphviz() *Graphviz {
	return &Graphviz{Binary: "dot"}
}

func (g *Graphviz) binary() string {
	if g == nil || g.Binary == "" {
		return "dot"
	}
	return g.Binary
}

// Available reports whether the graphviz binary can be found.
func (g *Graphviz) Available() bool {
	_, err := exec.LookPath(g.binary())
	return err == nil
}

// RenderDOT renders DOT text. The "dot" format returns the input unchanged and does
// not require graphviz to be installed.
func (g *Graphviz) RenderDOT(ctx context.Context, dot string, format string) ([]byte, error) {
	if !SupportedFormat(format) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", domain.ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
	}
	if format == FormatDOT {
		return []byte(dot), nil
	}

	bin, err := exec.LookPath(g.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found, install graphviz to render %s output", domain.ErrBackendUnavailable, g.binary(), format)
	}

	cmd := exec.CommandContext(ctx, bin, "-T"+format)
	cmd.Stdin = strings.NewReader(dot)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v: %s", domain.ErrRenderFailed, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
