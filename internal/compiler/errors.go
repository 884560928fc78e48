package compiler

import "fmt"

// Diagnostic rule identifiers.
const (
	RuleUnknownOption          = "unknown_option"
	RuleInvalidOption          = "invalid_option"
	RuleInvalidRelation        = "invalid_relation"
	RuleDuplicateKey           = "duplicate_key"
	RuleUnterminatedSection    = "unterminated_section"
	RuleUnterminatedStylesheet = "unterminated_stylesheet"
)

// ParseError is a single finding reported while scanning a document.
type ParseError struct {
	Line    int    // 1-based line number
	Rule    string // rule identifier (e.g., "duplicate_key")
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Rule, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// AggregateError carries every finding of a strict parse.
type AggregateError struct {
	Errors []*ParseError
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d parse errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ParseErrors returns the findings if err is an AggregateError.
// Otherwise returns nil.
func ParseErrors(err error) []*ParseError {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
