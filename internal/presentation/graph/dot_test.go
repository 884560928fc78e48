package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/internal/presentation/graph"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDOT_Record(t *testing.T) {
	d := compiler.Parse(`# {UserService} [svc_user]
### OPT COLOR FF00FF
## VAR
- id: int
## END VAR
## FUNC
- create()
## END FUNC
## F_RELA
- TO [svc_auth] {calls}
## END F_RELA
`)

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	want := `digraph G {
  graph [nodesep=0.6, rankdir=LR, ranksep=0.7]
  node [shape=record, style=filled]
  svc_user [fillcolor="#FF00FF", label="{ UserService [svc_user] | { Variables:\n|id: int } | { Functions:\n|create() } }", shape=record]
  svc_user -> svc_auth [label=calls]
}
`
	assert.Equal(t, want, got)
}

func TestGenerateDOT_DefaultsAndEmptySections(t *testing.T) {
	d := domain.NewDiagram()
	d.AddNode(domain.NewNode("Plain Node", "plain"))

	got := graph.GenerateDOT(d, graph.DOTOptions{RankDir: "TB", NodeSep: 1, RankSep: 1.25})

	assert.Contains(t, got, "graph [nodesep=1, rankdir=TB, ranksep=1.25]")
	assert.Contains(t, got, `plain [fillcolor=lightblue, label="{ Plain Node [plain] | { Variables:\n|(None) } }", shape=record]`)
	assert.NotContains(t, got, "Functions")
}

func TestGenerateDOT_EmptyDiagram(t *testing.T) {
	got := graph.GenerateDOT(domain.NewDiagram(), graph.DOTOptions{})
	assert.Equal(t, "digraph G {\n  graph [nodesep=0.6, rankdir=LR, ranksep=0.7]\n  node [shape=record, style=filled]\n}\n", got)
}

func TestGenerateDOT_DescriptionAndEscaping(t *testing.T) {
	n := domain.NewNode("Map<K|V>", "m")
	n.Description = `holds {pairs}`
	n.AddVariable("data: map<string, int>")
	d := domain.NewDiagram()
	d.AddNode(n)

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	assert.Contains(t, got, `label="{ Map\<K\|V\> [m]\nholds \{pairs\} | { Variables:\n|data: map\<string, int\> } }"`)
}

func TestGenerateDOT_QuotesInLabels(t *testing.T) {
	d := domain.NewDiagram()
	d.AddRelation(domain.Relation{SourceKey: "a", TargetKey: "b", Label: `says "hi"`})

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	assert.Contains(t, got, `a -> b [label="says \"hi\""]`)
}

func TestGenerateDOT_Backslashes(t *testing.T) {
	d := compiler.Parse(`# {Files} [files]
## F_RELA
- TO [disk] {C:\dir\}
- TO [tape] {already \"quoted\"}
## END F_RELA
`)

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	assert.Contains(t, got, `files -> disk [label="C:\dir\\"]`)
	assert.Contains(t, got, `files -> tape [label="already \"quoted\""]`)
}

func TestGenerateDOT_EdgeAttributes(t *testing.T) {
	d := compiler.Parse(`# {A} [a]
## F_RELA
- BI [b] {sync} style=dashed color=red arrowhead=dot
- FROM [c]
## END F_RELA
`)

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	assert.Contains(t, got, `a -> b [arrowhead=dot, color=red, label=sync, style=dashed]`)
	assert.Contains(t, got, `b -> a [arrowtail=dot, color=red, label=sync, style=dashed]`)
	assert.Contains(t, got, `c -> a [label=""]`)
}

func TestGenerateDOT_ReservedKeysAreQuoted(t *testing.T) {
	d := domain.NewDiagram()
	d.AddNode(domain.NewNode("Node", "node"))
	d.AddRelation(domain.Relation{SourceKey: "node", TargetKey: "1st"})

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	assert.Contains(t, got, `  "node" [`)
	assert.Contains(t, got, `"node" -> "1st"`)
}

func TestGenerateDOT_Clusters(t *testing.T) {
	d := compiler.Parse(`# {API} [api]
### OPT CLUSTER Backend [class=be style=filled color=FFEEDD bgcolor=white]
# {DB} [db]
### OPT CLUSTER Backend>Storage
# {Cache} [cache]
### OPT CLUSTER Backend
# {UI} [ui]
`)

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	want := `digraph G {
  graph [nodesep=0.6, rankdir=LR, ranksep=0.7]
  node [shape=record, style=filled]
  subgraph cluster_c_0 {
    graph [bgcolor=white, class=be, color="#FFEEDD", label=Backend, style=filled]
    subgraph cluster_c_0_0 {
      graph [label=Storage]
      db [fillcolor=lightblue, label="{ DB [db] | { Variables:\n|(None) } }", shape=record]
    }
    api [fillcolor=lightblue, label="{ API [api] | { Variables:\n|(None) } }", shape=record]
    cache [fillcolor=lightblue, label="{ Cache [cache] | { Variables:\n|(None) } }", shape=record]
  }
  ui [fillcolor=lightblue, label="{ UI [ui] | { Variables:\n|(None) } }", shape=record]
}
`
	assert.Equal(t, want, got)
}

func TestGenerateDOT_SiblingClusters(t *testing.T) {
	a := domain.NewNode("A", "a")
	a.Cluster = "One"
	b := domain.NewNode("B", "b")
	b.Cluster = "Two"
	d := domain.NewDiagram()
	d.AddNode(a)
	d.AddNode(b)

	got := graph.GenerateDOT(d, graph.DOTOptions{})

	assert.Contains(t, got, "subgraph cluster_c_0 {\n    graph [label=One]")
	assert.Contains(t, got, "subgraph cluster_c_1 {\n    graph [label=Two]")
	assert.Less(t, strings.Index(got, "cluster_c_0"), strings.Index(got, "cluster_c_1"))
}

func TestGenerateDOT_ImageNodes(t *testing.T) {
	sized := domain.NewNode("Logo", "logo")
	sized.Image = "https://example.com/logo.png?width=144&height=72"
	plain := domain.NewNode("Photo", "photo")
	plain.Image = "https://example.com/photo.png"
	d := domain.NewDiagram()
	d.AddNode(sized)
	d.AddNode(plain)

	got := graph.GenerateDOT(d, graph.DOTOptions{
		Images: map[string]string{"logo": "/tmp/cache/abc.png"},
	})

	assert.Contains(t, got, `logo [fillcolor=lightblue, fixedsize=true, height=1, image="/tmp/cache/abc.png", imagescale=true, label="", shape=box, width=2, xlabel=Logo]`)
	assert.Contains(t, got, `photo [fillcolor=lightblue, image="https://example.com/photo.png", label="", shape=record, xlabel=Photo]`)
	assert.NotContains(t, got, "Variables")
}

func TestGenerateDOT_Stylesheet(t *testing.T) {
	n := domain.NewNode("A", "a")
	n.CSSClass = "primary"
	d := domain.NewDiagram()
	d.AddNode(n)

	got := graph.GenerateDOT(d, graph.DOTOptions{StylesheetHref: "file:///srv/style.css"})

	require.Contains(t, got, `stylesheet="file:///srv/style.css"`)
	assert.Contains(t, got, `a [class=primary, `)
}
