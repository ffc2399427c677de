package graph

import (
	"bytes"
	"reflect"
	"testing"
)

func TestInternalWireRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		graph *ConnectionGraph
	}{
		{"codon", codonGraph()},
		{"standard", standardGraph()},
		{"conditional", conditionalGraph()},
		{"constants", &ConnectionGraph{
			O: []Connection{{Row: RowC, Idx: 0, Typ: TypeFloat}},
			C: []Constant{{Val: "3.14", Typ: TypeFloat}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.graph.Internal().Wire()
			if !reflect.DeepEqual(got, tt.graph) {
				t.Fatalf("round trip drifted:\n got %+v\nwant %+v", got, tt.graph)
			}
		})
	}
}

func TestInterfaceProjections(t *testing.T) {
	cg := conditionalGraph()
	in := cg.InputTypes()
	want := []EndPointType{TypeBool, TypeInt}
	if !reflect.DeepEqual(in, want) {
		t.Fatalf("input types = %v, want %v", in, want)
	}
	out := cg.OutputTypes()
	if !reflect.DeepEqual(out, []EndPointType{TypeInt}) {
		t.Fatalf("output types = %v, want [int]", out)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cg := standardGraph()
	cp := cg.Clone()
	cp.O[0].Typ = TypeFloat
	if cg.O[0].Typ != TypeInt {
		t.Fatal("clone aliased the original")
	}
}

func TestCanonicalBytesDeterministic(t *testing.T) {
	a := conditionalGraph()
	b := conditionalGraph()
	if !bytes.Equal(a.CanonicalBytes(), b.CanonicalBytes()) {
		t.Fatal("equal graphs produced different canonical bytes")
	}
}

func TestCanonicalBytesDistinguish(t *testing.T) {
	base := codonGraph()
	variants := []*ConnectionGraph{
		{O: []Connection{{Row: RowI, Idx: 0, Typ: TypeFloat}}},
		{O: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}}},
		{O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}, {Row: RowI, Idx: 0, Typ: TypeInt}}},
		{O: []Connection{{Row: RowC, Idx: 0, Typ: TypeInt}}, C: []Constant{{Val: "1", Typ: TypeInt}}},
	}
	ref := base.CanonicalBytes()
	for i, v := range variants {
		if bytes.Equal(ref, v.CanonicalBytes()) {
			t.Fatalf("variant %d collided with base encoding", i)
		}
	}
}

func TestEndPointKeys(t *testing.T) {
	ep := &EndPoint{Row: RowA, Idx: 7, Dir: Destination}
	if ep.Key() != "A007d" {
		t.Fatalf("key = %q, want A007d", ep.Key())
	}
	ref := Ref{Row: RowI, Idx: 255}
	if ref.Key(Source) != "I255s" {
		t.Fatalf("key = %q, want I255s", ref.Key(Source))
	}
}

func TestEndPointTypeByName(t *testing.T) {
	got, ok := EndPointTypeByName("bool")
	if !ok || got != TypeBool {
		t.Fatalf("bool resolved to (%v, %v)", got, ok)
	}
	if _, ok := EndPointTypeByName("no-such-type"); ok {
		t.Fatal("unknown name resolved")
	}
	if _, ok := EndPointTypeByName(TypeInvalid.String()); ok {
		t.Fatal("sentinel name resolved")
	}
}
