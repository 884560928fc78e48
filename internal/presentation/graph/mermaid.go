package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mdgraph/pkg/domain"
)

// MermaidOptions controls the generated flowchart.
type MermaidOptions struct {
	// Direction accepts DOT rankdir values (LR, RL, TB, BT) and TD. Defaults to LR.
	Direction string

	// Highlight lists node keys to emphasize with a dedicated class.
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart from a diagram.
// Node shapes follow the graphviz shape name where Mermaid has an equivalent:
// - ellipse, oval: ([Stadium])
// - circle, doublecircle: ((Circle))
// - diamond: {Rhombus}
// - hexagon: {{Hexagon}}
// - parallelogram: [/Parallelogram/]
// - cylinder: [(Database)]
// - default: [Rectangle]
// Clusters become nested subgraphs.
func GenerateMermaid(d *domain.Diagram, opts MermaidOptions) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "flowchart %s\n", mermaidDirection(opts.Direction))

	// Subgraph ids share the namespace of node ids.
	taken := make(map[string]bool)
	for _, n := range d.Nodes() {
		taken[sanitizeMermaidID(n.Key)] = true
	}
	for _, r := range d.Relations() {
		taken[sanitizeMermaidID(r.SourceKey)] = true
		taken[sanitizeMermaidID(r.TargetKey)] = true
	}

	tree := domain.BuildClusterTree(d)
	for i, root := range tree.Roots {
		writeSubgraph(&sb, tree, root, fmt.Sprintf("cluster_%d", i), 1, taken)
	}
	for _, n := range d.Nodes() {
		if !n.Clustered() {
			writeMermaidNode(&sb, n, "    ")
		}
	}

	for _, r := range d.Relations() {
		arrow := "-->"
		switch r.Style {
		case "dashed", "dotted":
			arrow = "-.->"
		case "bold":
			arrow = "==>"
		}
		if r.Label != "" {
			arrow = fmt.Sprintf("%s|\"%s\"|", arrow, escapeMermaid(r.Label))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(r.SourceKey), arrow, sanitizeMermaidID(r.TargetKey))
	}

	// Styles
	for _, n := range d.Nodes() {
		if n.Color != "" {
			fmt.Fprintf(&sb, "    style %s fill:%s\n", sanitizeMermaidID(n.Key), n.Color)
		}
	}
	for _, n := range d.Nodes() {
		if n.CSSClass != "" {
			fmt.Fprintf(&sb, "    class %s %s\n", sanitizeMermaidID(n.Key), n.CSSClass)
		}
	}

	if len(opts.Highlight) > 0 {
		// Force black text for contrast on light fills regardless of theme.
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, key := range opts.Highlight {
			id := sanitizeMermaidID(key)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s highlight;\n", id)
		}
	}

	return sb.String()
}

func writeSubgraph(sb *strings.Builder, tree *domain.ClusterTree, idx int, id string, depth int, taken map[string]bool) {
	id = reserveID(taken, id)
	g := tree.Group(idx)
	indent := strings.Repeat("    ", depth)

	fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, id, escapeMermaid(g.Name))
	for j, child := range g.Children {
		writeSubgraph(sb, tree, child, fmt.Sprintf("%s_%d", id, j), depth+1, taken)
	}
	for _, n := range g.Members {
		writeMermaidNode(sb, n, indent+"    ")
	}
	fmt.Fprintf(sb, "%send\n", indent)
}

// reserveID appends underscores to id until it is unused, then marks it taken.
func reserveID(taken map[string]bool, id string) string {
	for taken[id] {
		id += "_"
	}
	taken[id] = true
	return id
}

func writeMermaidNode(sb *strings.Builder, n *domain.Node, indent string) {
	opener, closer := mermaidShape(n.Shape)
	label := escapeMermaid(n.Name)
	if n.Description != "" {
		label += "<br/>" + escapeMermaid(n.Description)
	}
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(n.Key), opener, label, closer)
}

func mermaidShape(shape string) (string, string) {
	switch strings.ToLower(shape) {
	case "ellipse", "oval":
		return "([", "])"
	case "circle", "doublecircle":
		return "((", "))"
	case "diamond":
		return "{", "}"
	case "hexagon":
		return "{{", "}}"
	case "parallelogram":
		return "[/", "/]"
	case "cylinder":
		return "[(", ")]"
	default:
		return "[", "]"
	}
}

func mermaidDirection(dir string) string {
	switch strings.ToUpper(dir) {
	case "RL":
		return "RL"
	case "TB":
		return "TB"
	case "TD":
		return "TD"
	case "BT":
		return "BT"
	default:
		return "LR"
	}
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// sanitizeMermaidID maps a node key to a Mermaid-safe identifier.
// "end" is reserved by the flowchart grammar.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if strings.EqualFold(s, "end") {
		s += "_"
	}
	return s
}
