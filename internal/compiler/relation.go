package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/mdgraph/pkg/domain"
)

var (
	errUnknownDirection = errors.New("unknown relation direction")
	errMissingKey       = errors.New("relation has no [key]")
)

var (
	relationKeyPattern   = regexp.MustCompile(`\[(\w+)\]`)
	relationLabelPattern = regexp.MustCompile(`\{(.*?)\}`)
)

var directions = []string{domain.DirectionTo, domain.DirectionFrom, domain.DirectionBi}

// ParseRelation interprets one line of an F_RELA section declared inside the block of
// node current. TO and FROM yield one relation, BI yields the forward relation followed
// by the reverse one. The line is pure input: nothing is registered anywhere.
func ParseRelation(line, current string) ([]domain.Relation, error) {
	body := strings.TrimSpace(line)
	body = strings.TrimSpace(strings.TrimPrefix(body, "-"))

	direction := matchDirection(body)
	if direction == "" {
		return nil, fmt.Errorf("%w: %q", errUnknownDirection, body)
	}
	body = body[len(direction):]

	label := ""
	if loc := relationLabelPattern.FindStringSubmatchIndex(body); loc != nil {
		label = body[loc[2]:loc[3]]
		body = body[:loc[0]] + " " + body[loc[1]:]
	}

	m := relationKeyPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", errMissingKey, strings.TrimSpace(line))
	}
	other := m[1]

	attrs := ParseAttributes(body)
	forward := domain.Relation{
		SourceKey: current,
		TargetKey: other,
		Label:     label,
		Style:     attrs["style"],
		Color:     attrs["color"],
		CSSClass:  attrs["class"],
		ArrowHead: attrs["arrowhead"],
		ArrowTail: attrs["arrowtail"],
		Dir:       attrs["dir"],
	}

	switch direction {
	case domain.DirectionTo:
		return []domain.Relation{forward}, nil
	case domain.DirectionFrom:
		// The edge points back at the current node, so the arrow ends swap as well.
		return []domain.Relation{forward.Reversed()}, nil
	default:
		return []domain.Relation{forward, forward.Reversed()}, nil
	}
}

// matchDirection returns the direction keyword body starts with, if it is followed by
// whitespace, a bracket or the end of the line.
func matchDirection(body string) string {
	for _, d := range directions {
		if !strings.HasPrefix(body, d) {
			continue
		}
		rest := body[len(d):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '[' {
			return d
		}
	}
	return ""
}
