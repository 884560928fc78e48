package mdgraph_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/mdgraph"
	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/aretw0/mdgraph/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const services = `# {UserService} [svc_user]
### OPT COLOR FF00FF
## VAR
- id: int
## END VAR
## F_RELA
- TO [svc_auth] {calls}
## END F_RELA

# {AuthService} [svc_auth]
`

// fakeRenderer records the DOT it receives and wraps it in a minimal SVG.
type fakeRenderer struct {
	dot    string
	format string
	err    error
}

func (f *fakeRenderer) RenderDOT(_ context.Context, dot, format string) ([]byte, error) {
	f.dot, f.format = dot, format
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg"><g/></svg>`), nil
}

func TestEngine_ParseAndExport(t *testing.T) {
	eng := mdgraph.New()

	d, err := eng.Parse(services)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc_user", "svc_auth"}, d.Keys())

	dot := eng.DOT(d)
	assert.True(t, strings.HasPrefix(dot, "digraph G {\n"))
	assert.Contains(t, dot, "rankdir=LR")
	assert.Contains(t, dot, "svc_user -> svc_auth [label=calls]")

	mermaid := eng.Mermaid(d)
	assert.Contains(t, mermaid, "flowchart LR")
	assert.Contains(t, mermaid, `svc_user -->|"calls"| svc_auth`)
}

func TestEngine_Layout(t *testing.T) {
	eng := mdgraph.New(mdgraph.WithLayout("TB", 1.5, 0))

	assert.Equal(t, mdgraph.Layout{RankDir: "TB", NodeSep: 1.5, RankSep: 0.7}, eng.Layout())

	d, err := eng.Parse(services)
	require.NoError(t, err)
	assert.Contains(t, eng.DOT(d), "graph [nodesep=1.5, rankdir=TB, ranksep=0.7]")
	assert.Contains(t, eng.Mermaid(d), "flowchart TB")
}

func TestEngine_Strict(t *testing.T) {
	doc := "# {A} [a]\n### OPT BOGUS x\n"

	_, err := mdgraph.New().Parse(doc)
	assert.NoError(t, err)

	d, err := mdgraph.New(mdgraph.WithStrict(true)).Parse(doc)
	var agg *compiler.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 1)
	assert.Equal(t, 1, d.Len())
}

func TestEngine_Render_InjectsInlineStylesheet(t *testing.T) {
	fake := &fakeRenderer{}
	eng := mdgraph.New(mdgraph.WithRenderer(fake))

	d, err := eng.Parse(services + "### STYLESHEET\n.node { stroke: red; }\n### END STYLESHEET\n")
	require.NoError(t, err)

	out, err := eng.Render(context.Background(), d, render.FormatSVG)
	require.NoError(t, err)

	assert.Equal(t, "svg", fake.format)
	assert.Contains(t, fake.dot, "svc_user")
	assert.Contains(t, string(out), ".node { stroke: red; }")

	png, err := eng.Render(context.Background(), d, render.FormatPNG)
	require.NoError(t, err)
	assert.NotContains(t, string(png), "stroke")
}

func TestEngine_Render_ExternalStylesheet(t *testing.T) {
	fake := &fakeRenderer{}
	eng := mdgraph.New(mdgraph.WithRenderer(fake), mdgraph.WithBaseDir("/srv/docs"))

	d, err := eng.Parse("### STYLESHEET theme/dark.css\n# {A} [a]\n")
	require.NoError(t, err)

	_, err = eng.Render(context.Background(), d, render.FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, fake.dot, `stylesheet="file:///srv/docs/theme/dark.css"`)
}

func TestEngine_Render_PropagatesErrors(t *testing.T) {
	fake := &fakeRenderer{err: domain.ErrBackendUnavailable}
	eng := mdgraph.New(mdgraph.WithRenderer(fake))

	_, err := eng.Render(context.Background(), domain.NewDiagram(), render.FormatSVG)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestEngine_RenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.md")
	require.NoError(t, os.WriteFile(path, []byte(services), 0o644))

	fake := &fakeRenderer{}
	eng := mdgraph.New(mdgraph.WithRenderer(fake))

	out, err := eng.RenderFile(context.Background(), path, render.FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
	assert.Contains(t, fake.dot, "svc_auth")

	_, err = eng.RenderFile(context.Background(), filepath.Join(dir, "missing.md"), render.FormatSVG)
	assert.True(t, errors.Is(err, domain.ErrInputNotFound))
}

func TestEngine_Validate(t *testing.T) {
	_, findings := mdgraph.New().Validate("# {A} [a]\n## F_RELA\n- TO [ghost]\n## END F_RELA\n")
	require.Len(t, findings, 1)
	assert.Equal(t, "dangling_relation", findings[0].Rule)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, mdgraph.Version)
	assert.Equal(t, strings.TrimSpace(mdgraph.Version), mdgraph.Version)
}
