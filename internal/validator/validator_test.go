package validator

import (
	"testing"

	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDiagram(t *testing.T) {
	// Scenario A: Valid graph
	valid := compiler.Parse(`# {A} [a]
## F_RELA
- TO [b]
## END F_RELA
# {B} [b]
`)
	findings := ValidateDiagram(valid)
	assert.Empty(t, findings)
	assert.NoError(t, Check(findings))

	// Scenario B: Broken link and an isolated node
	broken := compiler.Parse(`# {A} [a]
## F_RELA
- TO [ghost]
## END F_RELA
# {Lonely} [lonely]
`)
	findings = ValidateDiagram(broken)
	require.Len(t, findings, 2)
	assert.Equal(t, "dangling_relation", findings[0].Rule)
	assert.Equal(t, "ghost", findings[0].NodeKey)
	assert.Equal(t, "isolated_node", findings[1].Rule)

	err := Check(findings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 1 errors")
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidateDiagram_Empty(t *testing.T) {
	findings := ValidateDiagram(compiler.Parse("nothing here"))
	require.Len(t, findings, 1)
	assert.Equal(t, "empty_diagram", findings[0].Rule)
	assert.NoError(t, Check(findings), "an empty document is a warning only")
}

func TestValidateText_IncludesParseDiagnostics(t *testing.T) {
	d, findings := ValidateText(compiler.NewParser(), "# {A} [a]\n### OPT COLOR zz\n")
	require.NotNil(t, d)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Equal(t, compiler.RuleInvalidOption, findings[0].Rule)
	assert.Equal(t, 2, findings[0].Line)
	assert.Contains(t, findings[0].String(), "(line 2)")
}
