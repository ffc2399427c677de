package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema marks violations of the record schema itself: a field out of
// bounds, a wrong type or a missing required row. Schema violations are
// raised before any connectivity analysis.
var ErrSchema = errors.New("schema violation")

// ErrConnectivity marks an inadmissible connection: an illegal row
// transition, a dangling reference or a type mismatch across an edge.
var ErrConnectivity = errors.New("connectivity violation")

// RuleError is one validator finding. EndPoint is the key of the offending
// endpoint ("" when the finding concerns the graph as a whole) and Rule
// names the violated rule.
type RuleError struct {
	kind     error
	EndPoint string
	Rule     string
	Detail   string
}

func schemaErr(key, rule, format string, args ...any) *RuleError {
	return &RuleError{kind: ErrSchema, EndPoint: key, Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

func connErr(key, rule, format string, args ...any) *RuleError {
	return &RuleError{kind: ErrConnectivity, EndPoint: key, Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

func (e *RuleError) Error() string {
	if e.EndPoint == "" {
		return fmt.Sprintf("%v: %s: %s", e.kind, e.Rule, e.Detail)
	}
	return fmt.Sprintf("%v: %s: endpoint %s: %s", e.kind, e.Rule, e.EndPoint, e.Detail)
}

func (e *RuleError) Unwrap() error {
	return e.kind
}

// ValidationErrors aggregates every finding of one validation pass. The
// graph is admissible only when the slice is empty.
type ValidationErrors []*RuleError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual findings to errors.Is / errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}
