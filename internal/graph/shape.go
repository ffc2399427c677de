package graph

// Shape classifies a connection graph by which rows it populates. The
// shape selects the rule set applied by the validator.
type Shape uint8

const (
	// ShapeCodon is the primitive form: rows I and O (optionally C and U)
	// only. A codon has no embedded sub-codes so rows A, B, F and P are
	// forbidden.
	ShapeCodon Shape = iota
	// ShapeStandard embeds sub-code A and optionally B, with no
	// conditional path. Row P is forbidden.
	ShapeStandard
	// ShapeConditional carries row F: exactly one of the A or B branch
	// executes, with row P supplying outputs on the condition-false path.
	ShapeConditional
)

func (s Shape) String() string {
	switch s {
	case ShapeCodon:
		return "codon"
	case ShapeStandard:
		return "standard"
	case ShapeConditional:
		return "conditional"
	}
	return "unknown"
}

// Classify determines the shape of a connection graph. Classification is
// purely structural: F present selects the conditional shape, otherwise A
// present selects the standard shape, otherwise the graph is codon level.
// Shape specific admissibility is the validator's job.
func Classify(cg *ConnectionGraph) Shape {
	switch {
	case len(cg.F) > 0:
		return ShapeConditional
	case len(cg.A) > 0:
		return ShapeStandard
	default:
		return ShapeCodon
	}
}
