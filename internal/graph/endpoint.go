package graph

import "fmt"

// Direction distinguishes the two endpoint classes. A connection always
// runs source to destination.
type Direction uint8

const (
	Destination Direction = iota
	Source
)

func (d Direction) String() string {
	if d == Source {
		return "source"
	}
	return "destination"
}

// suffix is the single character key suffix for the direction.
func (d Direction) suffix() byte {
	if d == Source {
		return 's'
	}
	return 'd'
}

// MaxRowEndPoints bounds the number of endpoints per row per direction.
// Endpoint indices therefore fit in a byte.
const MaxRowEndPoints = 256

// Ref identifies the far end of a connection by row and index. A reference
// held by a destination endpoint names a source and vice versa.
type Ref struct {
	Row Row `json:"row"`
	Idx int `json:"idx"`
}

// Key returns the internal graph key of the referenced endpoint given its
// direction.
func (r Ref) Key(dir Direction) string {
	return fmt.Sprintf("%c%03d%c", r.Row, r.Idx, dir.suffix())
}

// EndPoint is one typed connection point in an internal graph, identified
// by (row, index, direction). Destination endpoints carry exactly one
// reference to their feeding source; source endpoints carry zero or more
// references to the destinations they feed. Val is set only on row C.
type EndPoint struct {
	Row  Row          `json:"row"`
	Idx  int          `json:"idx"`
	Typ  EndPointType `json:"typ"`
	Dir  Direction    `json:"dir"`
	Refs []Ref        `json:"refs"`
	Val  string       `json:"val,omitempty"`
}

// Key returns the unique internal graph key for the endpoint, e.g. "A003d".
func (ep *EndPoint) Key() string {
	return fmt.Sprintf("%c%03d%c", ep.Row, ep.Idx, ep.Dir.suffix())
}

// AsRef returns a reference to this endpoint.
func (ep *EndPoint) AsRef() Ref {
	return Ref{Row: ep.Row, Idx: ep.Idx}
}

// Clone returns a deep copy of the endpoint.
func (ep *EndPoint) Clone() *EndPoint {
	cp := *ep
	cp.Refs = append([]Ref(nil), ep.Refs...)
	return &cp
}
