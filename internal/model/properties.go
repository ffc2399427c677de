package model

// Property bits recorded in GC.Properties. The mask guards against bits we
// do not understand appearing in persisted records.
const (
	PropertyExtended      int64 = 1 << 0
	PropertyConstant      int64 = 1 << 1
	PropertyConditional   int64 = 1 << 2
	PropertyDeterministic int64 = 1 << 3
	PropertyMemoryModify  int64 = 1 << 4
	PropertyObjectModify  int64 = 1 << 5
	PropertyPhysical      int64 = 1 << 6
	PropertyArithmetic    int64 = 1 << 16
	PropertyLogical       int64 = 1 << 17
	PropertyBitwise       int64 = 1 << 18
	PropertyBoolean       int64 = 1 << 19
	PropertySequence      int64 = 1 << 20
)

// ValidPropertyMask is the union of all defined property bits.
const ValidPropertyMask = PropertyExtended | PropertyConstant | PropertyConditional |
	PropertyDeterministic | PropertyMemoryModify | PropertyObjectModify |
	PropertyPhysical | PropertyArithmetic | PropertyLogical | PropertyBitwise |
	PropertyBoolean | PropertySequence

// ValidProperties reports whether p only uses defined property bits.
func ValidProperties(p int64) bool {
	return p&^ValidPropertyMask == 0
}
