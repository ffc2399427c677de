package graph

// Row names a category of endpoint in the connectivity layering. Rows I and
// C (and the synthetic F placeholder source side) feed the graph, A and B
// are the embedded sub-code interfaces and O, P and U terminate it. The
// layering I,C < A < B < O,P,U is strictly increasing along every
// connection which makes an admissible graph acyclic by construction.
type Row byte

const (
	RowI Row = 'I' // input interface, source only
	RowC Row = 'C' // constants, source only
	RowF Row = 'F' // conditional placeholder, single bool destination
	RowA Row = 'A' // sub-code A interface
	RowB Row = 'B' // sub-code B interface
	RowO Row = 'O' // outputs, destination only
	RowP Row = 'P' // outputs on the condition-false path, destination only
	RowU Row = 'U' // claims otherwise-unconnected sources
)

// Rows in canonical order. The order is load bearing: canonical encoding
// and validation iterate rows in this sequence.
var Rows = [...]Row{RowI, RowC, RowF, RowA, RowB, RowO, RowP, RowU}

// SourceRows are the rows that may carry source endpoints.
var SourceRows = [...]Row{RowI, RowC, RowA, RowB}

// DestinationRows are the rows that may carry destination endpoints.
var DestinationRows = [...]Row{RowF, RowA, RowB, RowO, RowP, RowU}

// validSources maps a destination row to the source rows it may connect
// from when row F is absent. Row P only exists alongside row F.
var validSources = map[Row][]Row{
	RowA: {RowI, RowC},
	RowB: {RowI, RowC, RowA},
	RowO: {RowI, RowC, RowA, RowB},
	RowU: {RowI, RowC, RowA, RowB},
}

// validSourcesConditional is the transition table when row F is present:
// B may not source from A and O may not source from B because exactly one
// of the two branches executes, while P (the false branch outputs) sources
// from B in place of A.
var validSourcesConditional = map[Row][]Row{
	RowF: {RowI},
	RowA: {RowI, RowC},
	RowB: {RowI, RowC},
	RowO: {RowI, RowC, RowA},
	RowP: {RowI, RowC, RowB},
	RowU: {RowI, RowC, RowA, RowB},
}

// ValidRow reports whether r is one of the eight defined rows.
func ValidRow(r Row) bool {
	switch r {
	case RowI, RowC, RowF, RowA, RowB, RowO, RowP, RowU:
		return true
	}
	return false
}

// SourceRow reports whether r may carry source endpoints.
func SourceRow(r Row) bool {
	return r == RowI || r == RowC || r == RowA || r == RowB
}

// DestinationRow reports whether r may carry destination endpoints.
func DestinationRow(r Row) bool {
	return r == RowF || r == RowA || r == RowB || r == RowO || r == RowP || r == RowU
}

// AllowedSource reports whether a destination endpoint on row dst may be
// fed by a source endpoint on row src, in a graph with or without row F.
func AllowedSource(dst, src Row, conditional bool) bool {
	table := validSources
	if conditional {
		table = validSourcesConditional
	}
	for _, allowed := range table[dst] {
		if allowed == src {
			return true
		}
	}
	return false
}

func (r Row) String() string {
	return string(r)
}
