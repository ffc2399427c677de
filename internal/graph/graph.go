package graph

import (
	"fmt"
	"sort"
)

// Connection is one entry in a destination row of the wire form: the
// destination endpoint at the entry's position is fed by the named source
// endpoint and carries the stated type.
type Connection struct {
	Row Row          `json:"row"`
	Idx int          `json:"idx"`
	Typ EndPointType `json:"typ"`
}

// Constant is one entry in row C of the wire form. The value is an opaque
// expression string; it is carried, bounded and hashed but never evaluated
// here.
type Constant struct {
	Val string       `json:"val"`
	Typ EndPointType `json:"typ"`
}

// ConnectionGraph is the wire and storage form of a genetic code's
// connectivity: one ordered list per destination row plus the constants of
// row C. Source rows are implied by the references. This is the sub-schema
// persisted inside every genetic code record.
type ConnectionGraph struct {
	A []Connection `json:"A,omitempty"`
	B []Connection `json:"B,omitempty"`
	F []Connection `json:"F,omitempty"`
	O []Connection `json:"O,omitempty"`
	P []Connection `json:"P,omitempty"`
	U []Connection `json:"U,omitempty"`
	C []Constant   `json:"C,omitempty"`
}

// Empty reports whether the graph has no rows at all.
func (cg *ConnectionGraph) Empty() bool {
	return len(cg.A) == 0 && len(cg.B) == 0 && len(cg.F) == 0 &&
		len(cg.O) == 0 && len(cg.P) == 0 && len(cg.U) == 0 && len(cg.C) == 0
}

// destinationRow returns the connection list for a destination row.
func (cg *ConnectionGraph) destinationRow(r Row) []Connection {
	switch r {
	case RowA:
		return cg.A
	case RowB:
		return cg.B
	case RowF:
		return cg.F
	case RowO:
		return cg.O
	case RowP:
		return cg.P
	case RowU:
		return cg.U
	}
	return nil
}

// Clone returns a deep copy of the connection graph.
func (cg *ConnectionGraph) Clone() *ConnectionGraph {
	cp := &ConnectionGraph{
		A: append([]Connection(nil), cg.A...),
		B: append([]Connection(nil), cg.B...),
		F: append([]Connection(nil), cg.F...),
		O: append([]Connection(nil), cg.O...),
		P: append([]Connection(nil), cg.P...),
		U: append([]Connection(nil), cg.U...),
		C: append([]Constant(nil), cg.C...),
	}
	return cp
}

// InputTypes returns the types of the row I interface in index order.
// Indices are taken from the references scattered across the destination
// rows; a gap in the indices is reported by the validator, not here.
func (cg *ConnectionGraph) InputTypes() []EndPointType {
	byIdx := map[int]EndPointType{}
	max := -1
	for _, r := range DestinationRows {
		for _, conn := range cg.destinationRow(r) {
			if conn.Row != RowI {
				continue
			}
			byIdx[conn.Idx] = conn.Typ
			if conn.Idx > max {
				max = conn.Idx
			}
		}
	}
	types := make([]EndPointType, 0, len(byIdx))
	for i := 0; i <= max; i++ {
		if t, ok := byIdx[i]; ok {
			types = append(types, t)
		}
	}
	return types
}

// OutputTypes returns the types of row O in index order.
func (cg *ConnectionGraph) OutputTypes() []EndPointType {
	types := make([]EndPointType, len(cg.O))
	for i, conn := range cg.O {
		types[i] = conn.Typ
	}
	return types
}

// InternalGraph is the manipulation form: every endpoint of both directions
// keyed by row+index+direction with bidirectional references. It is derived
// from a ConnectionGraph and optimised for validation and traversal.
type InternalGraph map[string]*EndPoint

// Internal converts the wire form into the internal form. Row C sources are
// materialised first so destination references can attach to them; any
// other referenced source endpoint is materialised on first reference.
// Destinations in row U do not back-reference their source (row U claims a
// source without consuming it).
func (cg *ConnectionGraph) Internal() InternalGraph {
	ig := make(InternalGraph)
	for idx, c := range cg.C {
		ep := &EndPoint{Row: RowC, Idx: idx, Typ: c.Typ, Dir: Source, Val: c.Val}
		ig[ep.Key()] = ep
	}
	for _, row := range DestinationRows {
		for idx, conn := range cg.destinationRow(row) {
			dst := &EndPoint{Row: row, Idx: idx, Typ: conn.Typ, Dir: Destination, Refs: []Ref{{Row: conn.Row, Idx: conn.Idx}}}
			ig[dst.Key()] = dst
			srcKey := dst.Refs[0].Key(Source)
			src, ok := ig[srcKey]
			if !ok {
				src = &EndPoint{Row: conn.Row, Idx: conn.Idx, Typ: conn.Typ, Dir: Source}
				ig[srcKey] = src
			}
			if row != RowU {
				src.Refs = append(src.Refs, Ref{Row: row, Idx: idx})
			}
		}
	}
	return ig
}

// Wire converts the internal form back into the wire form. Destination rows
// are emitted in index order; constants keep their row C index order.
func (ig InternalGraph) Wire() *ConnectionGraph {
	cg := &ConnectionGraph{}
	for _, ep := range ig.sorted() {
		switch {
		case ep.Dir == Destination:
			conn := Connection{Row: ep.Refs[0].Row, Idx: ep.Refs[0].Idx, Typ: ep.Typ}
			switch ep.Row {
			case RowA:
				cg.A = append(cg.A, conn)
			case RowB:
				cg.B = append(cg.B, conn)
			case RowF:
				cg.F = append(cg.F, conn)
			case RowO:
				cg.O = append(cg.O, conn)
			case RowP:
				cg.P = append(cg.P, conn)
			case RowU:
				cg.U = append(cg.U, conn)
			}
		case ep.Row == RowC:
			cg.C = append(cg.C, Constant{Val: ep.Val, Typ: ep.Typ})
		}
	}
	return cg
}

// sorted returns the endpoints ordered by key for deterministic iteration.
func (ig InternalGraph) sorted() []*EndPoint {
	keys := make([]string, 0, len(ig))
	for k := range ig {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	eps := make([]*EndPoint, len(keys))
	for i, k := range keys {
		eps[i] = ig[k]
	}
	return eps
}

// HasRow reports whether any endpoint of the row exists in either
// direction.
func (ig InternalGraph) HasRow(r Row) bool {
	for _, ep := range ig {
		if ep.Row == r {
			return true
		}
	}
	return false
}

// NumEndPoints counts the endpoints of a row and direction.
func (ig InternalGraph) NumEndPoints(r Row, dir Direction) int {
	n := 0
	for _, ep := range ig {
		if ep.Row == r && ep.Dir == dir {
			n++
		}
	}
	return n
}

func (ig InternalGraph) String() string {
	s := ""
	for _, ep := range ig.sorted() {
		s += fmt.Sprintf("%s typ=%s refs=%v\n", ep.Key(), ep.Typ, ep.Refs)
	}
	return s
}
