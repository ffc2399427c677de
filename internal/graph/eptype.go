package graph

import "fmt"

// EndPointType identifies the data type carried by an endpoint. Values are
// signed 16 bit. Negative values are reserved for framework types, zero is
// the none type and positive values are concrete data types. Type matching
// across a connection is exact: there is no coercion or subtyping.
type EndPointType int16

const (
	TypeInvalid EndPointType = -32768
	TypeUnknown EndPointType = -32767
	TypeNone    EndPointType = 0
	TypeBool    EndPointType = 1
	TypeInt     EndPointType = 2
	TypeFloat   EndPointType = 3
	TypeString  EndPointType = 4
	TypeBytes   EndPointType = 5
	TypePair    EndPointType = 6
	TypeList    EndPointType = 7
)

var epTypeNames = map[EndPointType]string{
	TypeInvalid: "invalid",
	TypeUnknown: "unknown",
	TypeNone:    "none",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeString:  "str",
	TypeBytes:   "bytes",
	TypePair:    "pair",
	TypeList:    "list",
}

// ValidEndPointType reports whether t is a registered concrete type usable
// on a connected endpoint. The invalid, unknown and none sentinels are not
// valid connection types.
func ValidEndPointType(t EndPointType) bool {
	if t <= TypeNone {
		return false
	}
	_, ok := epTypeNames[t]
	return ok
}

func (t EndPointType) String() string {
	if name, ok := epTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ep_type(%d)", int16(t))
}

// EndPointTypeByName resolves a registered type name. Only concrete types
// resolve; sentinel names do not.
func EndPointTypeByName(name string) (EndPointType, bool) {
	for t, n := range epTypeNames {
		if n == name && ValidEndPointType(t) {
			return t, true
		}
	}
	return TypeInvalid, false
}
