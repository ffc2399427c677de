package graph

// Validation rules, applied schema first then connectivity:
//
//  1. The graph is non-empty and every row holds at most 256 entries with
//     indices in [0,255].
//  2. Every endpoint type is a registered concrete type; constants carry a
//     value string of 1..128 bytes.
//  3. The shape (codon, standard, conditional) admits exactly the rows
//     present: codons forbid A, B, F and P; the standard shape forbids P;
//     the conditional shape requires A, pairs P with O and needs a bool
//     source on row I.
//  4. Row F, when present, is the single destination F000d of type bool
//     fed from row I.
//  5. Every connection runs from an allowed source row to the destination
//     row per the layering tables and carries exactly matching types
//     (row F is exempt from the type match, being schema-bound to bool).
//  6. Source indices per row are contiguous from zero.
//  7. Row U claims each otherwise-unconnected source exactly once and may
//     not claim a constant that does not exist.
//
// Validation never mutates its input and reports every finding, not just
// the first.

const (
	ruleEmptyGraph       = "empty-graph"
	ruleRowOverflow      = "row-overflow"
	ruleIndexBounds      = "index-bounds"
	ruleBadType          = "bad-type"
	ruleBadConstant      = "bad-constant"
	ruleShapeRow         = "shape-row"
	ruleConditionSlot    = "condition-slot"
	ruleConditionSource  = "condition-source"
	ruleRowTransition    = "row-transition"
	ruleTypeMismatch     = "type-mismatch"
	ruleDanglingRef      = "dangling-reference"
	ruleIndexGap         = "index-gap"
	ruleUnclaimedSource  = "unclaimed-source"
	ruleDuplicateClaim   = "duplicate-claim"
	ruleFalsePathOutputs = "false-path-outputs"
)

// Validate decides admissibility of a connection graph. It classifies the
// shape, applies the schema rules for that shape and then checks every
// connection. On success the shape is returned with a nil error; on
// failure the error is a ValidationErrors holding every finding.
func Validate(cg *ConnectionGraph) (Shape, error) {
	shape := Classify(cg)
	var errs ValidationErrors
	errs = append(errs, validateSchema(cg, shape)...)
	if len(errs) > 0 {
		// Connectivity analysis assumes a structurally sane graph.
		return shape, errs
	}
	errs = append(errs, validateConnectivity(cg, shape)...)
	if len(errs) > 0 {
		return shape, errs
	}
	return shape, nil
}

func validateSchema(cg *ConnectionGraph, shape Shape) ValidationErrors {
	var errs ValidationErrors
	if cg.Empty() {
		return append(errs, schemaErr("", ruleEmptyGraph, "a genetic code graph requires at least one row"))
	}

	for _, row := range DestinationRows {
		conns := cg.destinationRow(row)
		if len(conns) > MaxRowEndPoints {
			errs = append(errs, schemaErr("", ruleRowOverflow, "row %s has %d destinations, limit %d", row, len(conns), MaxRowEndPoints))
			continue
		}
		for idx, conn := range conns {
			key := (&EndPoint{Row: row, Idx: idx, Dir: Destination}).Key()
			if !SourceRow(conn.Row) {
				errs = append(errs, schemaErr(key, ruleRowTransition, "referenced row %q is not a source row", conn.Row))
			}
			if conn.Idx < 0 || conn.Idx >= MaxRowEndPoints {
				errs = append(errs, schemaErr(key, ruleIndexBounds, "source index %d out of [0,%d]", conn.Idx, MaxRowEndPoints-1))
			}
			if row == RowF {
				// Row F's type is fixed by schema, not by the connection.
				continue
			}
			if !ValidEndPointType(conn.Typ) {
				errs = append(errs, schemaErr(key, ruleBadType, "type %s is not a registered endpoint type", conn.Typ))
			}
		}
	}
	if len(cg.C) > MaxRowEndPoints {
		errs = append(errs, schemaErr("", ruleRowOverflow, "row C has %d constants, limit %d", len(cg.C), MaxRowEndPoints))
	}
	for idx, c := range cg.C {
		key := (&EndPoint{Row: RowC, Idx: idx, Dir: Source}).Key()
		if !ValidEndPointType(c.Typ) {
			errs = append(errs, schemaErr(key, ruleBadType, "type %s is not a registered endpoint type", c.Typ))
		}
		if len(c.Val) == 0 || len(c.Val) > 128 {
			errs = append(errs, schemaErr(key, ruleBadConstant, "constant value length %d out of [1,128]", len(c.Val)))
		}
	}

	errs = append(errs, validateShapeRows(cg, shape)...)
	return errs
}

func validateShapeRows(cg *ConnectionGraph, shape Shape) ValidationErrors {
	var errs ValidationErrors
	switch shape {
	case ShapeCodon:
		// A absent by classification; B and P have no meaning without
		// embedded sub-codes.
		if len(cg.B) > 0 {
			errs = append(errs, schemaErr("", ruleShapeRow, "codon graph may not populate row B"))
		}
		if len(cg.P) > 0 {
			errs = append(errs, schemaErr("", ruleShapeRow, "codon graph may not populate row P"))
		}
	case ShapeStandard:
		if len(cg.P) > 0 {
			errs = append(errs, schemaErr("", ruleShapeRow, "row P requires row F"))
		}
	case ShapeConditional:
		if len(cg.A) == 0 {
			errs = append(errs, schemaErr("", ruleShapeRow, "conditional graph requires row A"))
		}
		if len(cg.F) != 1 {
			errs = append(errs, schemaErr("", ruleConditionSlot, "row F holds exactly one destination, got %d", len(cg.F)))
		} else {
			f := cg.F[0]
			if f.Row != RowI {
				errs = append(errs, schemaErr("F000d", ruleConditionSource, "row F must be fed from row I, got %q", f.Row))
			}
			if f.Typ != TypeBool {
				errs = append(errs, schemaErr("F000d", ruleConditionSlot, "row F is bool only, got %s", f.Typ))
			}
		}
		if len(cg.P) != len(cg.O) {
			errs = append(errs, schemaErr("", ruleFalsePathOutputs, "row P length %d must equal row O length %d", len(cg.P), len(cg.O)))
		} else {
			for i := range cg.P {
				if cg.P[i].Typ != cg.O[i].Typ {
					key := (&EndPoint{Row: RowP, Idx: i, Dir: Destination}).Key()
					errs = append(errs, schemaErr(key, ruleFalsePathOutputs, "type %s does not mirror O%03d type %s", cg.P[i].Typ, i, cg.O[i].Typ))
				}
			}
		}
	}
	return errs
}

func validateConnectivity(cg *ConnectionGraph, shape Shape) ValidationErrors {
	var errs ValidationErrors
	conditional := shape == ShapeConditional
	ig := cg.Internal()

	for _, ep := range ig.sorted() {
		if ep.Dir != Destination {
			continue
		}
		ref := ep.Refs[0]
		src, ok := ig[ref.Key(Source)]
		if !ok {
			errs = append(errs, connErr(ep.Key(), ruleDanglingRef, "source %c%03d does not exist", ref.Row, ref.Idx))
			continue
		}
		if !AllowedSource(ep.Row, src.Row, conditional) {
			errs = append(errs, connErr(ep.Key(), ruleRowTransition, "row %s may not source from row %s", ep.Row, src.Row))
		}
		switch {
		case ep.Row == RowF:
			if src.Typ != TypeBool {
				errs = append(errs, connErr(ep.Key(), ruleConditionSource, "condition source %s is %s, want bool", src.Key(), src.Typ))
			}
		case src.Typ != ep.Typ:
			errs = append(errs, connErr(ep.Key(), ruleTypeMismatch, "source %s has type %s, destination wants %s", src.Key(), src.Typ, ep.Typ))
		}
	}

	// Constants must exist for every reference into row C.
	for _, ep := range ig {
		if ep.Dir != Destination || ep.Refs[0].Row != RowC {
			continue
		}
		if ep.Refs[0].Idx >= len(cg.C) {
			errs = append(errs, connErr(ep.Key(), ruleDanglingRef, "constant C%03d does not exist", ep.Refs[0].Idx))
		}
	}

	errs = append(errs, validateContiguity(ig)...)
	errs = append(errs, validateRowU(cg, ig)...)
	return errs
}

// validateContiguity checks that source endpoint indices per row are
// contiguous from zero. Destination indices are positional in the wire
// form and cannot gap.
func validateContiguity(ig InternalGraph) ValidationErrors {
	var errs ValidationErrors
	for _, row := range SourceRows {
		seen := map[int]bool{}
		max := -1
		for _, ep := range ig {
			if ep.Dir != Source || ep.Row != row {
				continue
			}
			seen[ep.Idx] = true
			if ep.Idx > max {
				max = ep.Idx
			}
		}
		for i := 0; i <= max; i++ {
			if !seen[i] {
				key := (&EndPoint{Row: row, Idx: i, Dir: Source}).Key()
				errs = append(errs, connErr(key, ruleIndexGap, "row %s source indices gap at %d", row, i))
			}
		}
	}
	return errs
}

// validateRowU checks the unconnected-source accounting: every constant
// that feeds nothing must be claimed by row U, and no source may be
// claimed twice.
func validateRowU(cg *ConnectionGraph, ig InternalGraph) ValidationErrors {
	var errs ValidationErrors
	claims := map[Ref]int{}
	for idx, conn := range cg.U {
		ref := Ref{Row: conn.Row, Idx: conn.Idx}
		claims[ref]++
		if claims[ref] > 1 {
			key := (&EndPoint{Row: RowU, Idx: idx, Dir: Destination}).Key()
			errs = append(errs, connErr(key, ruleDuplicateClaim, "source %c%03d claimed more than once", ref.Row, ref.Idx))
		}
	}
	for _, ep := range ig.sorted() {
		if ep.Dir != Source || ep.Row != RowC {
			continue
		}
		if len(ep.Refs) == 0 && claims[ep.AsRef()] == 0 {
			errs = append(errs, connErr(ep.Key(), ruleUnclaimedSource, "constant feeds nothing and is not claimed by row U"))
		}
	}
	return errs
}
