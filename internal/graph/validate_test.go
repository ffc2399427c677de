package graph

import (
	"errors"
	"strings"
	"testing"
)

func codonGraph() *ConnectionGraph {
	return &ConnectionGraph{
		O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
	}
}

func standardGraph() *ConnectionGraph {
	return &ConnectionGraph{
		A: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
		B: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
		O: []Connection{{Row: RowB, Idx: 0, Typ: TypeInt}},
	}
}

func conditionalGraph() *ConnectionGraph {
	return &ConnectionGraph{
		F: []Connection{{Row: RowI, Idx: 0, Typ: TypeBool}},
		A: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
		O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
		P: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
	}
}

func TestValidateShapes(t *testing.T) {
	tests := []struct {
		name  string
		graph *ConnectionGraph
		shape Shape
	}{
		{"codon", codonGraph(), ShapeCodon},
		{"standard", standardGraph(), ShapeStandard},
		{"conditional", conditionalGraph(), ShapeConditional},
		{"codon with claimed constant", &ConnectionGraph{
			O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			C: []Constant{{Val: "42", Typ: TypeInt}},
			U: []Connection{{Row: RowC, Idx: 0, Typ: TypeInt}},
		}, ShapeCodon},
		{"codon consuming constant", &ConnectionGraph{
			O: []Connection{{Row: RowC, Idx: 0, Typ: TypeFloat}},
			C: []Constant{{Val: "3.14", Typ: TypeFloat}},
		}, ShapeCodon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := Validate(tt.graph)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if shape != tt.shape {
				t.Fatalf("shape = %s, want %s", shape, tt.shape)
			}
		})
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		graph *ConnectionGraph
		rule  string
	}{
		{"empty graph", &ConnectionGraph{}, "empty-graph"},
		{"destination sourcing a non-source row", &ConnectionGraph{
			O: []Connection{{Row: RowO, Idx: 0, Typ: TypeInt}},
		}, "row-transition"},
		{"B feeding A", &ConnectionGraph{
			A: []Connection{{Row: RowB, Idx: 0, Typ: TypeInt}},
			B: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
		}, "row-transition"},
		{"B feeding O under condition", &ConnectionGraph{
			F: []Connection{{Row: RowI, Idx: 0, Typ: TypeBool}},
			A: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
			B: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
			O: []Connection{{Row: RowB, Idx: 0, Typ: TypeInt}},
			P: []Connection{{Row: RowB, Idx: 0, Typ: TypeInt}},
		}, "row-transition"},
		{"conflicting source types", &ConnectionGraph{
			A: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			B: []Connection{{Row: RowI, Idx: 0, Typ: TypeFloat}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
		}, "type-mismatch"},
		{"dangling constant reference", &ConnectionGraph{
			O: []Connection{{Row: RowC, Idx: 0, Typ: TypeInt}},
		}, "dangling-reference"},
		{"constant value too long", &ConnectionGraph{
			O: []Connection{{Row: RowC, Idx: 0, Typ: TypeString}},
			C: []Constant{{Val: strings.Repeat("x", 129), Typ: TypeString}},
		}, "bad-constant"},
		{"unclaimed constant", &ConnectionGraph{
			O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			C: []Constant{{Val: "7", Typ: TypeInt}},
		}, "unclaimed-source"},
		{"double claim", &ConnectionGraph{
			O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			C: []Constant{{Val: "7", Typ: TypeInt}},
			U: []Connection{{Row: RowC, Idx: 0, Typ: TypeInt}, {Row: RowC, Idx: 0, Typ: TypeInt}},
		}, "duplicate-claim"},
		{"claim of missing constant", &ConnectionGraph{
			O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			U: []Connection{{Row: RowC, Idx: 3, Typ: TypeInt}},
		}, "dangling-reference"},
		{"non-bool condition slot", &ConnectionGraph{
			F: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			A: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
			P: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
		}, "condition-slot"},
		{"condition fed from constants", &ConnectionGraph{
			F: []Connection{{Row: RowC, Idx: 0, Typ: TypeBool}},
			A: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
			P: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			C: []Constant{{Val: "true", Typ: TypeBool}},
		}, "row-transition"},
		{"false path missing", &ConnectionGraph{
			F: []Connection{{Row: RowI, Idx: 0, Typ: TypeBool}},
			A: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
		}, "false-path-outputs"},
		{"false path type drift", &ConnectionGraph{
			F: []Connection{{Row: RowI, Idx: 0, Typ: TypeBool}},
			A: []Connection{{Row: RowI, Idx: 1, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
			P: []Connection{{Row: RowI, Idx: 2, Typ: TypeFloat}},
		}, "false-path-outputs"},
		{"row P without row F", &ConnectionGraph{
			A: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
			P: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
		}, "shape-row"},
		{"codon with row B", &ConnectionGraph{
			B: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
			O: []Connection{{Row: RowI, Idx: 0, Typ: TypeInt}},
		}, "shape-row"},
		{"input index gap", &ConnectionGraph{
			A: []Connection{{Row: RowI, Idx: 2, Typ: TypeInt}},
			O: []Connection{{Row: RowA, Idx: 0, Typ: TypeInt}},
		}, "index-gap"},
		{"unregistered type", &ConnectionGraph{
			O: []Connection{{Row: RowI, Idx: 0, Typ: EndPointType(9999)}},
		}, "bad-type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.graph)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			var errs ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("error type %T, want ValidationErrors", err)
			}
			found := false
			for _, e := range errs {
				if e.Rule == tt.rule {
					found = true
				}
			}
			if !found {
				t.Fatalf("no finding with rule %q in: %v", tt.rule, err)
			}
		})
	}
}

func TestValidateCollectsAllFindings(t *testing.T) {
	cg := &ConnectionGraph{
		O: []Connection{
			{Row: RowI, Idx: 0, Typ: EndPointType(9999)},
			{Row: RowO, Idx: 0, Typ: TypeInt},
		},
	}
	_, err := Validate(cg)
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type %T, want ValidationErrors", err)
	}
	if len(errs) < 2 {
		t.Fatalf("got %d findings, want at least 2: %v", len(errs), err)
	}
}

func TestValidationErrorsUnwrapToSentinels(t *testing.T) {
	_, err := Validate(&ConnectionGraph{})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("empty graph should unwrap to ErrSchema, got %v", err)
	}

	_, err = Validate(&ConnectionGraph{O: []Connection{{Row: RowC, Idx: 0, Typ: TypeInt}}})
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("dangling reference should unwrap to ErrConnectivity, got %v", err)
	}
}

func TestRowOverflow(t *testing.T) {
	cg := &ConnectionGraph{}
	for i := 0; i <= MaxRowEndPoints; i++ {
		cg.O = append(cg.O, Connection{Row: RowI, Idx: 0, Typ: TypeInt})
	}
	_, err := Validate(cg)
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type %T, want ValidationErrors", err)
	}
	if errs[0].Rule != "row-overflow" {
		t.Fatalf("rule = %q, want row-overflow", errs[0].Rule)
	}
}
