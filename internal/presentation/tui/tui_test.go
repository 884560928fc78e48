package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/internal/presentation/tui"
	"github.com/aretw0/mdgraph/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `# {UserService} [svc_user]
### OPT CLUSTER Backend>Services
## VAR
- id: int
## END VAR
## F_RELA
- TO [svc_auth] {calls}
## END F_RELA
`

func TestSummary(t *testing.T) {
	d := compiler.Parse(doc)
	findings := validator.ValidateDiagram(d)

	md := tui.Summary("services", d, findings)

	assert.Contains(t, md, "# services\n")
	assert.Contains(t, md, "1 nodes, 1 relations")
	assert.Contains(t, md, "| `svc_user` | UserService | Backend > Services | 1 | 0 |")
	assert.Contains(t, md, "- `svc_user` → `svc_auth` _calls_")
	assert.Contains(t, md, "## Findings")
	assert.Contains(t, md, "dangling_relation")
}

func TestSummary_EmptyDiagram(t *testing.T) {
	md := tui.Summary("empty", compiler.Parse(""), nil)

	assert.Contains(t, md, "0 nodes, 0 relations")
	assert.NotContains(t, md, "## Nodes")
	assert.NotContains(t, md, "## Findings")
}

func TestNewRenderer_PlainStyle(t *testing.T) {
	renderFn, err := tui.NewRenderer("notty", 80)
	require.NoError(t, err)

	out, err := renderFn(tui.Summary("services", compiler.Parse(doc), nil))
	require.NoError(t, err)
	assert.Contains(t, out, "svc_user")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
