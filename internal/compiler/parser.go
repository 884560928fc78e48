package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aretw0/mdgraph/internal/logging"
	"github.com/aretw0/mdgraph/pkg/domain"
)

// Section and directive markers.
const (
	markerVar           = "## VAR"
	markerEndVar        = "## END VAR"
	markerFunc          = "## FUNC"
	markerEndFunc       = "## END FUNC"
	markerRela          = "## F_RELA"
	markerEndRela       = "## END F_RELA"
	markerStylesheet    = "### STYLESHEET"
	markerEndStylesheet = "### END STYLESHEET"
)

// headerPattern matches "# {name} [key]" at the start of a line.
var headerPattern = regexp.MustCompile(`^#\s*\{([^}]+)\}\s+\[(\w+)\]\s*$`)

type scanState int

const (
	stateOutside scanState = iota
	stateHeaderOpts
	stateVar
	stateFunc
	stateRela
	stateStylesheet
)

var sectionMarkers = map[string]scanState{
	markerVar:  stateVar,
	markerFunc: stateFunc,
	markerRela: stateRela,
}

var sectionNames = map[scanState]string{
	stateVar:  "VAR",
	stateFunc: "FUNC",
	stateRela: "F_RELA",
}

// Parser is responsible for converting a diagram document into a domain.Diagram.
type Parser struct {
	strict bool
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrict makes Parse return an error when any diagnostic was collected.
// The diagram is still returned.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithLogger sets the logger used for debug traces and permissive-mode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts text into a diagram in permissive mode. It never fails: malformed
// blocks are skipped and a document without blocks yields an empty diagram.
func Parse(text string) *domain.Diagram {
	d, _ := NewParser().Scan(text)
	return d
}

// Parse converts text into a diagram. In strict mode the collected diagnostics are
// returned as an *AggregateError alongside the diagram.
func (p *Parser) Parse(text string) (*domain.Diagram, error) {
	d, diags := p.Scan(text)
	if len(diags) == 0 {
		return d, nil
	}
	if p.strict {
		return d, &AggregateError{Errors: diags}
	}
	for _, diag := range diags {
		p.logger.Debug("parse diagnostic", "line", diag.Line, "rule", diag.Rule, "message", diag.Message)
	}
	return d, nil
}

// Scan parses text and returns the diagram together with every diagnostic found.
func (p *Parser) Scan(text string) (*domain.Diagram, []*ParseError) {
	s := &scanner{
		logger:  p.logger,
		diagram: domain.NewDiagram(),
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		s.line = i + 1
		s.feed(line)
	}
	s.finish()
	return s.diagram, s.diags
}

// scanner holds the state of a single parse. It is never shared.
type scanner struct {
	logger  *slog.Logger
	diagram *domain.Diagram
	diags   []*ParseError

	state       scanState
	line        int
	node        *domain.Node
	sectionLine int

	// inline stylesheet collection
	css         strings.Builder
	cssLine     int
	cssReturn   scanState
	cssCaptured bool
}

func (s *scanner) feed(raw string) {
	line := strings.TrimRight(raw, " \t\r")
	trimmed := strings.TrimSpace(line)

	switch s.state {
	case stateStylesheet:
		if trimmed == markerEndStylesheet {
			if !s.cssCaptured {
				s.diagram.InlineStylesheet = strings.TrimSpace(s.css.String())
				s.cssCaptured = true
			}
			s.css.Reset()
			s.state = s.cssReturn
			return
		}
		s.css.WriteString(raw)
		s.css.WriteByte('\n')
		return

	case stateVar, stateFunc, stateRela:
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			s.reportUnterminated()
			s.startBlock(m[1], m[2])
			return
		}
		if s.closesSection(trimmed) {
			s.state = stateHeaderOpts
			return
		}
		// A section marker or option line ends a section left open.
		if next, ok := sectionMarkers[trimmed]; ok {
			s.reportUnterminated()
			s.openSection(next)
			return
		}
		if IsOptionLine(line) {
			s.reportUnterminated()
			s.state = stateHeaderOpts
			s.applyOption(line)
			return
		}
		s.sectionEntry(line, trimmed)
		return
	}

	if m := headerPattern.FindStringSubmatch(line); m != nil {
		s.startBlock(m[1], m[2])
		return
	}

	if trimmed == markerStylesheet {
		s.cssReturn = s.state
		s.cssLine = s.line
		s.state = stateStylesheet
		return
	}
	if ref, ok := strings.CutPrefix(trimmed, markerStylesheet+" "); ok {
		if ref = strings.TrimSpace(ref); ref != "" && s.diagram.Stylesheet == "" {
			s.diagram.Stylesheet = ref
		}
		return
	}

	if s.state != stateHeaderOpts {
		return
	}

	if IsOptionLine(line) {
		s.applyOption(line)
		return
	}
	if next, ok := sectionMarkers[trimmed]; ok {
		s.openSection(next)
	}
}

func (s *scanner) finish() {
	switch s.state {
	case stateVar, stateFunc, stateRela:
		s.reportUnterminated()
	case stateStylesheet:
		s.report(s.cssLine, RuleUnterminatedStylesheet, "STYLESHEET block has no END STYLESHEET", nil)
	}
}

func (s *scanner) startBlock(name, key string) {
	node := domain.NewNode(strings.TrimSpace(name), key)
	if s.diagram.AddNode(node) {
		s.report(s.line, RuleDuplicateKey, fmt.Sprintf("key %q redeclared, previous node replaced", key), nil)
	}
	s.logger.Debug("node added", "key", key, "line", s.line)
	s.node = node
	s.state = stateHeaderOpts
}

func (s *scanner) openSection(st scanState) {
	s.state = st
	s.sectionLine = s.line
}

func (s *scanner) closesSection(trimmed string) bool {
	switch s.state {
	case stateVar:
		return trimmed == markerEndVar
	case stateFunc:
		return trimmed == markerEndFunc
	case stateRela:
		return trimmed == markerEndRela
	}
	return false
}

func (s *scanner) sectionEntry(line, trimmed string) {
	if trimmed == "" {
		return
	}
	switch s.state {
	case stateVar:
		s.node.AddVariable(cleanEntry(line))
	case stateFunc:
		s.node.AddFunction(cleanEntry(line))
	case stateRela:
		rels, err := ParseRelation(line, s.node.Key)
		if err != nil {
			s.report(s.line, RuleInvalidRelation, err.Error(), err)
			return
		}
		for _, r := range rels {
			s.diagram.AddRelation(r)
			s.logger.Debug("relation added", "source", r.SourceKey, "target", r.TargetKey, "label", r.Label)
		}
	}
}

func (s *scanner) applyOption(line string) {
	opt, err := ParseOption(line)
	if err != nil {
		rule := RuleInvalidOption
		if errors.Is(err, errUnknownKeyword) {
			rule = RuleUnknownOption
		}
		s.report(s.line, rule, err.Error(), err)
		return
	}
	opt.Apply(s.node)
}

func (s *scanner) reportUnterminated() {
	msg := fmt.Sprintf("%s section of node %q is not closed", sectionNames[s.state], s.node.Key)
	s.report(s.sectionLine, RuleUnterminatedSection, msg, nil)
}

func (s *scanner) report(line int, rule, msg string, cause error) {
	s.diags = append(s.diags, &ParseError{Line: line, Rule: rule, Message: msg, Cause: cause})
}

// cleanEntry strips a leading "-" bullet and surrounding whitespace.
func cleanEntry(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "- \t"))
}
