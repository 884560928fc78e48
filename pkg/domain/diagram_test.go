package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagram_AddNodeKeepsFirstPosition(t *testing.T) {
	d := domain.NewDiagram()
	assert.False(t, d.AddNode(domain.NewNode("A", "a")))
	assert.False(t, d.AddNode(domain.NewNode("B", "b")))

	replacement := domain.NewNode("A again", "a")
	assert.True(t, d.AddNode(replacement))

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"a", "b"}, d.Keys())
	assert.Same(t, replacement, d.Node("a"))
	assert.Equal(t, "A again", d.Nodes()[0].Name)
}

func TestDiagram_ZeroValueIsUsable(t *testing.T) {
	var d domain.Diagram
	assert.True(t, d.Empty())
	assert.Nil(t, d.Node("missing"))
	assert.False(t, d.HasNode("missing"))

	d.AddNode(domain.NewNode("X", "x"))
	assert.True(t, d.HasNode("x"))
}

func TestDiagram_RelationsKeepOrder(t *testing.T) {
	d := domain.NewDiagram()
	d.AddRelation(domain.Relation{SourceKey: "a", TargetKey: "b"})
	d.AddRelation(domain.Relation{SourceKey: "b", TargetKey: "c"})

	rels := d.Relations()
	require.Len(t, rels, 2)
	assert.Equal(t, "a", rels[0].SourceKey)
	assert.Equal(t, "b", rels[1].SourceKey)

	// Returned slice is a copy.
	rels[0].SourceKey = "mutated"
	assert.Equal(t, "a", d.Relations()[0].SourceKey)
}

func TestDiagram_JSONRoundTrip(t *testing.T) {
	d := domain.NewDiagram()
	n := domain.NewNode("User Service", "svc_user")
	n.Color = "#FF00FF"
	n.AddVariable("id: int")
	d.AddNode(n)
	d.AddNode(domain.NewNode("Auth", "svc_auth"))
	d.AddRelation(domain.Relation{SourceKey: "svc_user", TargetKey: "svc_auth", Label: "calls"})
	d.Stylesheet = "theme.css"

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back domain.Diagram
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.Keys(), back.Keys())
	assert.Equal(t, "#FF00FF", back.Node("svc_user").Color)
	assert.Equal(t, d.Relations(), back.Relations())
	assert.Equal(t, "theme.css", back.Stylesheet)
}

func TestNode_Defaults(t *testing.T) {
	n := domain.NewNode("Name", "key")
	assert.Equal(t, domain.DefaultShape, n.Shape)
	assert.Equal(t, domain.DefaultFillColor, n.FillColor())
	assert.Empty(t, n.Variables)
	assert.Empty(t, n.Functions)
	assert.False(t, n.Clustered())
	assert.Nil(t, n.FullClusterPath())

	n.Color = "#123456"
	assert.Equal(t, "#123456", n.FillColor())
}

func TestNode_ImageSize(t *testing.T) {
	tests := []struct {
		name   string
		image  string
		w, h   int
		wantOK bool
	}{
		{"no image", "", 0, 0, false},
		{"no query", "https://example.com/a.png", 0, 0, false},
		{"both", "https://example.com/a.png?width=144&height=72", 144, 72, true},
		{"width only", "https://example.com/a.png?width=100", 100, 0, true},
		{"garbage", "https://example.com/a.png?width=abc", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := domain.NewNode("n", "n")
			n.Image = tt.image
			w, h, ok := n.ImageSize()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestRelation_Reversed(t *testing.T) {
	r := domain.Relation{SourceKey: "a", TargetKey: "b", Label: "x", ArrowHead: "dot", Style: "dashed"}
	rev := r.Reversed()
	assert.Equal(t, "b", rev.SourceKey)
	assert.Equal(t, "a", rev.TargetKey)
	assert.Equal(t, "", rev.ArrowHead)
	assert.Equal(t, "dot", rev.ArrowTail)
	assert.Equal(t, "x", rev.Label)
	assert.Equal(t, "dashed", rev.Style)
}
