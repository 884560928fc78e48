package graph

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/mdgraph/pkg/domain"
)

// Layout defaults applied when DOTOptions leaves a field empty.
const (
	DefaultRankDir = "LR"
	DefaultNodeSep = 0.6
	DefaultRankSep = 0.7
)

// DOTOptions controls graph-level attributes of the generated document.
type DOTOptions struct {
	RankDir string
	NodeSep float64
	RankSep float64

	// StylesheetHref is emitted as the graph "stylesheet" attribute when set.
	StylesheetHref string

	// Images maps node keys to local files that replace the image URL.
	// Graphviz cannot fetch remote images by itself.
	Images map[string]string
}

func (o DOTOptions) withDefaults() DOTOptions {
	if o.RankDir == "" {
		o.RankDir = DefaultRankDir
	}
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
	return o
}

// GenerateDOT serializes a diagram into a Graphviz digraph.
// Clusters come first, then unclustered nodes in iteration order, then edges in
// relation order. Output is deterministic for a given diagram and options.
func GenerateDOT(d *domain.Diagram, opts DOTOptions) string {
	opts = opts.withDefaults()

	var sb strings.Builder
	sb.WriteString("digraph G {\n")

	graphAttrs := map[string]string{
		"rankdir": opts.RankDir,
		"nodesep": formatFloat(opts.NodeSep),
		"ranksep": formatFloat(opts.RankSep),
	}
	if opts.StylesheetHref != "" {
		graphAttrs["stylesheet"] = opts.StylesheetHref
	}
	fmt.Fprintf(&sb, "  graph [%s]\n", formatAttrs(graphAttrs))
	fmt.Fprintf(&sb, "  node [%s]\n", formatAttrs(map[string]string{
		"shape": domain.DefaultShape,
		"style": "filled",
	}))

	tree := domain.BuildClusterTree(d)
	for i, root := range tree.Roots {
		writeCluster(&sb, tree, root, fmt.Sprintf("cluster_c_%d", i), opts, 1)
	}

	for _, n := range d.Nodes() {
		if n.Clustered() {
			continue
		}
		writeNode(&sb, n, opts, "  ")
	}

	for _, r := range d.Relations() {
		writeEdge(&sb, r)
	}

	sb.WriteString("}\n")
	return sb.String()
}

func writeCluster(sb *strings.Builder, tree *domain.ClusterTree, idx int, id string, opts DOTOptions, depth int) {
	g := tree.Group(idx)
	indent := strings.Repeat("  ", depth)

	fmt.Fprintf(sb, "%ssubgraph %s {\n", indent, id)

	attrs := map[string]string{"label": g.Name}
	if meta := g.Meta; meta != nil {
		setIf(attrs, "class", meta.ClusterClass)
		setIf(attrs, "style", meta.ClusterStyle)
		setIf(attrs, "color", hexColor(meta.ClusterColor))
		setIf(attrs, "bgcolor", hexColor(meta.ClusterBgColor))
	}
	fmt.Fprintf(sb, "%s  graph [%s]\n", indent, formatAttrs(attrs))

	for j, child := range g.Children {
		writeCluster(sb, tree, child, fmt.Sprintf("%s_%d", id, j), opts, depth+1)
	}
	for _, n := range g.Members {
		writeNode(sb, n, opts, indent+"  ")
	}

	fmt.Fprintf(sb, "%s}\n", indent)
}

func writeNode(sb *strings.Builder, n *domain.Node, opts DOTOptions, indent string) {
	attrs := map[string]string{
		"fillcolor": n.FillColor(),
		"shape":     n.Shape,
	}
	setIf(attrs, "class", n.CSSClass)

	if n.Image != "" {
		image := n.Image
		if local, ok := opts.Images[n.Key]; ok && local != "" {
			image = local
		}
		attrs["image"] = image
		attrs["label"] = ""
		attrs["xlabel"] = n.Name
		if w, h, ok := n.ImageSize(); ok {
			attrs["shape"] = "box"
			attrs["fixedsize"] = "true"
			attrs["imagescale"] = "true"
			if w > 0 {
				attrs["width"] = inches(w)
			}
			if h > 0 {
				attrs["height"] = inches(h)
			}
		}
	} else {
		attrs["label"] = recordLabel(n)
	}

	fmt.Fprintf(sb, "%s%s [%s]\n", indent, quoteID(n.Key), formatAttrs(attrs))
}

func writeEdge(sb *strings.Builder, r domain.Relation) {
	attrs := map[string]string{"label": r.Label}
	setIf(attrs, "style", r.Style)
	setIf(attrs, "color", r.Color)
	setIf(attrs, "class", r.CSSClass)
	setIf(attrs, "arrowhead", r.ArrowHead)
	setIf(attrs, "arrowtail", r.ArrowTail)
	setIf(attrs, "dir", r.Dir)
	fmt.Fprintf(sb, "  %s -> %s [%s]\n", quoteID(r.SourceKey), quoteID(r.TargetKey), formatAttrs(attrs))
}

// recordLabel builds the three-part record label:
// title (name, key, description), variables, and functions when present.
func recordLabel(n *domain.Node) string {
	title := escapeRecord(n.Name) + " [" + escapeRecord(n.Key) + "]"
	if n.Description != "" {
		title += `\n` + escapeRecord(n.Description)
	}

	vars := "(None)"
	if len(n.Variables) > 0 {
		vars = joinEscaped(n.Variables)
	}
	parts := []string{title, `{ Variables:\n|` + vars + ` }`}
	if len(n.Functions) > 0 {
		parts = append(parts, `{ Functions:\n|`+joinEscaped(n.Functions)+` }`)
	}
	return "{ " + strings.Join(parts, " | ") + " }"
}

func joinEscaped(entries []string) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = escapeRecord(e)
	}
	return strings.Join(out, `\n`)
}

var recordEscaper = strings.NewReplacer(
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// escapeRecord escapes the characters that carry structure inside a record label.
func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}

// hexColor prefixes bare hex colors with "#". Named colors and values that already
// carry the prefix are returned unchanged.
func hexColor(v string) string {
	if v == "" || strings.HasPrefix(v, "#") {
		return v
	}
	switch len(v) {
	case 3, 6, 8:
	default:
		return v
	}
	for _, c := range v {
		if !isHexDigit(c) {
			return v
		}
	}
	return "#" + v
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func setIf(attrs map[string]string, key, value string) {
	if value != "" {
		attrs[key] = value
	}
}

// inches converts a pixel size to graphviz inches (72 dpi), rounded to two places.
func inches(px int) string {
	return formatFloat(math.Round(float64(px)/72*100) / 100)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quoteID(attrs[k]))
	}
	return strings.Join(parts, ", ")
}

var dotKeywords = map[string]bool{
	"node": true, "edge": true, "graph": true, "digraph": true, "subgraph": true, "strict": true,
}

// quoteID returns a DOT-safe identifier. Bare identifiers and numerals are returned
// as-is, anything else is double-quoted. Backslashes are kept so record and label
// escapes like \n and \{ reach graphviz untouched. A quote is escaped unless a
// backslash already escapes it, and a trailing odd backslash is doubled so it cannot
// escape the closing quote.
func quoteID(id string) string {
	if isBareID(id) {
		return id
	}

	var sb strings.Builder
	sb.Grow(len(id) + 2)
	sb.WriteByte('"')
	backslashes := 0
	for _, c := range id {
		switch c {
		case '\\':
			backslashes++
		case '"':
			if backslashes%2 == 0 {
				sb.WriteByte('\\')
			}
			backslashes = 0
		default:
			backslashes = 0
		}
		sb.WriteRune(c)
	}
	if backslashes%2 == 1 {
		sb.WriteByte('\\')
	}
	sb.WriteByte('"')
	return sb.String()
}

func isBareID(id string) bool {
	if id == "" || dotKeywords[strings.ToLower(id)] {
		return false
	}
	if isNumeral(id) {
		return true
	}
	for i, c := range id {
		switch {
		case c == '_', (c >= 'a' && c <= 'z'), (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isNumeral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" || s == "." {
		return false
	}
	dot := false
	for _, c := range s {
		switch {
		case c == '.':
			if dot {
				return false
			}
			dot = true
		case c < '0' || c > '9':
			return false
		}
	}
	return true
}
