package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/mdgraph/internal/validator"
	"github.com/aretw0/mdgraph/pkg/domain"
)

// Summary describes a diagram as markdown: a node table, the relation list and any
// validation findings.
func Summary(title string, d *domain.Diagram, findings []validator.Finding) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d nodes, %d relations\n\n", d.Len(), len(d.Relations()))

	if d.Len() > 0 {
		sb.WriteString("## Nodes\n\n")
		sb.WriteString("| Key | Name | Cluster | Variables | Functions |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, n := range d.Nodes() {
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %d | %d |\n",
				n.Key, cell(n.Name), cell(strings.Join(n.FullClusterPath(), " > ")),
				len(n.Variables), len(n.Functions))
		}
		sb.WriteString("\n")
	}

	if rels := d.Relations(); len(rels) > 0 {
		sb.WriteString("## Relations\n\n")
		for _, r := range rels {
			fmt.Fprintf(&sb, "- `%s` → `%s`", r.SourceKey, r.TargetKey)
			if r.Label != "" {
				fmt.Fprintf(&sb, " _%s_", r.Label)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if d.Stylesheet != "" || d.InlineStylesheet != "" {
		sb.WriteString("## Stylesheet\n\n")
		if d.Stylesheet != "" {
			fmt.Fprintf(&sb, "- external: `%s`\n", d.Stylesheet)
		}
		if d.InlineStylesheet != "" {
			fmt.Fprintf(&sb, "- inline: %d bytes\n", len(d.InlineStylesheet))
		}
		sb.WriteString("\n")
	}

	if len(findings) > 0 {
		sb.WriteString("## Findings\n\n")
		for _, f := range findings {
			fmt.Fprintf(&sb, "- %s\n", f.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
