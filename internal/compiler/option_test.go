package compiler_test

import (
	"testing"

	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    compiler.OptionKind
		value   string
		wantErr bool
	}{
		{"color", "### OPT COLOR FF00FF", compiler.OptionColor, "#FF00FF", false},
		{"color lowercase with hash", "### OPT COLOR #a1b2c3", compiler.OptionColor, "#a1b2c3", false},
		{"color too short", "### OPT COLOR FFF", compiler.OptionColor, "", true},
		{"color keeps first six digits", "### OPT COLOR FF00FF80", compiler.OptionColor, "#FF00FF", false},
		{"image", "### OPT IMAGE https://cdn.example.com/db.png?width=64", compiler.OptionImage, "https://cdn.example.com/db.png?width=64", false},
		{"image without scheme", "### OPT IMAGE cdn.example.com/db.png", compiler.OptionImage, "", true},
		{"shape", "### OPT SHAPE ellipse", compiler.OptionShape, "ellipse", false},
		{"class", "### OPT CLASS service", compiler.OptionClass, "service", false},
		{"desc quoted", `### OPT DESC "Handles auth"`, compiler.OptionDesc, "Handles auth", false},
		{"desc single quoted", `### OPT DESC 'Handles auth'`, compiler.OptionDesc, "Handles auth", false},
		{"desc unquoted", "### OPT DESC Handles auth", compiler.OptionDesc, "Handles auth", false},
		{"desc mismatched quotes kept", `### OPT DESC "Handles auth'`, compiler.OptionDesc, `"Handles auth'`, false},
		{"tab separated", "### OPT SHAPE\tbox", compiler.OptionShape, "box", false},
		{"unknown keyword", "### OPT SIZE 12", compiler.OptionUnknown, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := compiler.ParseOption(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, opt.Kind)
			assert.Equal(t, tt.value, opt.Value)
		})
	}
}

func TestParseOption_Cluster(t *testing.T) {
	opt, err := compiler.ParseOption("### OPT CLUSTER Infra>Network>DB [color=blue,style=rounded]")
	require.NoError(t, err)
	assert.Equal(t, compiler.OptionCluster, opt.Kind)
	assert.Equal(t, []string{"Infra", "Network"}, opt.Path)
	assert.Equal(t, "DB", opt.Cluster)

	n := domain.NewNode("db", "db")
	opt.Apply(n)
	assert.Equal(t, []string{"Infra", "Network"}, n.ClusterPath)
	assert.Equal(t, "DB", n.Cluster)
	assert.Equal(t, "blue", n.ClusterColor)
	assert.Equal(t, "rounded", n.ClusterStyle)
	assert.Empty(t, n.ClusterClass)
	assert.Empty(t, n.ClusterBgColor)
}

func TestParseOption_ClusterVariants(t *testing.T) {
	t.Run("single name", func(t *testing.T) {
		opt, err := compiler.ParseOption("### OPT CLUSTER Backend")
		require.NoError(t, err)
		assert.Nil(t, opt.Path)
		assert.Equal(t, "Backend", opt.Cluster)
	})

	t.Run("spaces and empty segments", func(t *testing.T) {
		opt, err := compiler.ParseOption("### OPT CLUSTER  Data Center > > Rack 1 [class=rack, bgcolor=eeeeee]")
		require.NoError(t, err)
		assert.Equal(t, []string{"Data Center"}, opt.Path)
		assert.Equal(t, "Rack 1", opt.Cluster)

		n := domain.NewNode("r", "r")
		opt.Apply(n)
		assert.Equal(t, "rack", n.ClusterClass)
		assert.Equal(t, "eeeeee", n.ClusterBgColor)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := compiler.ParseOption("### OPT CLUSTER [color=red]")
		assert.Error(t, err)
	})
}

func TestOptionApply(t *testing.T) {
	n := domain.NewNode("svc", "svc")
	lines := []string{
		"### OPT COLOR 00FF00",
		"### OPT IMAGE https://example.com/x.png",
		"### OPT SHAPE box",
		"### OPT CLASS api",
		"### OPT DESC 'Edge proxy'",
	}
	for _, line := range lines {
		opt, err := compiler.ParseOption(line)
		require.NoError(t, err, line)
		opt.Apply(n)
	}

	assert.Equal(t, "#00FF00", n.Color)
	assert.Equal(t, "https://example.com/x.png", n.Image)
	assert.Equal(t, "box", n.Shape)
	assert.Equal(t, "api", n.CSSClass)
	assert.Equal(t, "Edge proxy", n.Description)
}

func TestIsOptionLine(t *testing.T) {
	assert.True(t, compiler.IsOptionLine("### OPT COLOR FF0000"))
	assert.False(t, compiler.IsOptionLine("  ### OPT COLOR FF0000"))
	assert.False(t, compiler.IsOptionLine("### STYLESHEET a.css"))
}
