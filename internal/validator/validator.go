package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/pkg/domain"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem detected in a document.
type Finding struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`     // 0 when the finding is not tied to a source line
	NodeKey  string   `json:"node_key,omitempty"` // optional
}

func (f Finding) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", f.Severity, f.Rule, f.Message)
	if f.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", f.Line)
	}
	return b.String()
}

// ValidateText parses text and checks the resulting diagram.
// Parse diagnostics are reported as warnings, graph problems via ValidateDiagram.
func ValidateText(parser *compiler.Parser, text string) (*domain.Diagram, []Finding) {
	d, diags := parser.Scan(text)

	findings := make([]Finding, 0, len(diags))
	for _, diag := range diags {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Rule:     diag.Rule,
			Message:  diag.Message,
			Line:     diag.Line,
		})
	}
	return d, append(findings, ValidateDiagram(d)...)
}

// ValidateDiagram checks for dangling relation endpoints and isolated nodes.
func ValidateDiagram(d *domain.Diagram) []Finding {
	var findings []Finding

	if d.Len() == 0 {
		return append(findings, Finding{
			Severity: SeverityWarning,
			Rule:     "empty_diagram",
			Message:  "document contains no node blocks",
		})
	}

	connected := make(map[string]bool)
	for _, r := range d.Relations() {
		connected[r.SourceKey] = true
		connected[r.TargetKey] = true
		for _, key := range []string{r.SourceKey, r.TargetKey} {
			if !d.HasNode(key) {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Rule:     "dangling_relation",
					Message:  fmt.Sprintf("relation %s -> %s references unknown node %q", r.SourceKey, r.TargetKey, key),
					NodeKey:  key,
				})
			}
		}
	}

	if len(d.Relations()) > 0 {
		for _, key := range d.Keys() {
			if !connected[key] {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Rule:     "isolated_node",
					Message:  fmt.Sprintf("node %q has no relations", key),
					NodeKey:  key,
				})
			}
		}
	}

	return findings
}

// Check returns an error summarizing the error-severity findings, or nil.
func Check(findings []Finding) error {
	var errors []string
	for _, f := range findings {
		if f.Severity == SeverityError {
			errors = append(errors, f.String())
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
