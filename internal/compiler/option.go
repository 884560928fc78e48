package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/mdgraph/pkg/domain"
)

// OptionPrefix starts every node option line.
const OptionPrefix = "### OPT "

// OptionKind identifies the capability an option line configures.
type OptionKind int

const (
	OptionUnknown OptionKind = iota
	OptionColor
	OptionImage
	OptionShape
	OptionClass
	OptionDesc
	OptionCluster
)

var optionKeywords = map[string]OptionKind{
	"COLOR":   OptionColor,
	"IMAGE":   OptionImage,
	"SHAPE":   OptionShape,
	"CLASS":   OptionClass,
	"DESC":    OptionDesc,
	"CLUSTER": OptionCluster,
}

func (k OptionKind) String() string {
	for name, kind := range optionKeywords {
		if kind == k {
			return name
		}
	}
	return "UNKNOWN"
}

var (
	errUnknownKeyword = errors.New("unknown option keyword")
	errBadPayload     = errors.New("invalid option payload")
)

var (
	colorPattern = regexp.MustCompile(`^#?([A-Fa-f0-9]{6})`)
	imagePattern = regexp.MustCompile(`^(https?://\S+)`)
	wordPattern  = regexp.MustCompile(`^(\w+)`)
)

// NodeOption is the parsed form of one "### OPT" line.
type NodeOption struct {
	Kind    OptionKind
	Keyword string
	Value   string // COLOR (with leading '#'), IMAGE, SHAPE, CLASS, DESC

	// CLUSTER only
	Path    []string          // ancestors, root first
	Cluster string            // immediate group
	Attrs   map[string]string // bracketed key=value attributes
}

// IsOptionLine reports whether line is a node option line.
func IsOptionLine(line string) bool {
	return strings.HasPrefix(line, OptionPrefix)
}

// ParseOption interprets a single option line. It has no side effects.
// The error is informational: callers in permissive mode drop the line.
func ParseOption(line string) (NodeOption, error) {
	body := strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(OptionPrefix)))
	keyword, rest := body, ""
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		keyword, rest = body[:i], strings.TrimSpace(body[i:])
	}

	opt := NodeOption{Keyword: keyword, Kind: optionKeywords[keyword]}

	switch opt.Kind {
	case OptionColor:
		m := colorPattern.FindStringSubmatch(rest)
		if m == nil {
			return opt, fmt.Errorf("%w: COLOR expects 6 hex digits, got %q", errBadPayload, rest)
		}
		// Longer runs such as RRGGBBAA keep the leading RGB digits.
		opt.Value = "#" + m[1]
	case OptionImage:
		m := imagePattern.FindStringSubmatch(rest)
		if m == nil {
			return opt, fmt.Errorf("%w: IMAGE expects an http(s) URL, got %q", errBadPayload, rest)
		}
		opt.Value = m[1]
	case OptionShape, OptionClass:
		m := wordPattern.FindStringSubmatch(rest)
		if m == nil {
			return opt, fmt.Errorf("%w: %s expects a word, got %q", errBadPayload, keyword, rest)
		}
		opt.Value = m[1]
	case OptionDesc:
		if rest == "" {
			return opt, fmt.Errorf("%w: DESC expects text", errBadPayload)
		}
		opt.Value = unquote(rest)
	case OptionCluster:
		return parseClusterOption(opt, rest)
	default:
		return opt, fmt.Errorf("%w: %q", errUnknownKeyword, keyword)
	}
	return opt, nil
}

// parseClusterOption reads "A>B>C [k=v,...]".
func parseClusterOption(opt NodeOption, rest string) (NodeOption, error) {
	pathPart, attrPart, hasAttrs := strings.Cut(rest, "[")

	var segments []string
	for _, s := range strings.Split(pathPart, ">") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return opt, fmt.Errorf("%w: CLUSTER expects a name or A>B>C path", errBadPayload)
	}

	if len(segments) > 1 {
		opt.Path = segments[:len(segments)-1]
	}
	opt.Cluster = segments[len(segments)-1]
	if hasAttrs {
		opt.Attrs = ParseAttributes(attrPart)
	}
	return opt, nil
}

// Apply copies the option onto the node being built.
func (o NodeOption) Apply(n *domain.Node) {
	switch o.Kind {
	case OptionColor:
		n.Color = o.Value
	case OptionImage:
		n.Image = o.Value
	case OptionShape:
		n.Shape = o.Value
	case OptionClass:
		n.CSSClass = o.Value
	case OptionDesc:
		n.Description = o.Value
	case OptionCluster:
		n.Cluster = o.Cluster
		n.ClusterPath = o.Path
		if v, ok := o.Attrs["class"]; ok {
			n.ClusterClass = v
		}
		if v, ok := o.Attrs["style"]; ok {
			n.ClusterStyle = v
		}
		if v, ok := o.Attrs["color"]; ok {
			n.ClusterColor = v
		}
		if v, ok := o.Attrs["bgcolor"]; ok {
			n.ClusterBgColor = v
		}
	}
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
