// Package entity implements the EntityState fixed schema and its delta
// codec (spec component C3, entity half).
package entity

// MaxEntities bounds entity numbers. A removal is marked on the wire by an
// explicit removed bit in this package's delta format; no encoder in this
// module uses a MaxEntities-1 removal sentinel.
const MaxEntities = 1024

// entityNumBits is the width of an entity number on the wire: 10 bits
// covers [0, 1024).
const entityNumBits = 10

// State is the fixed ~51-field schema transmitted for each networked
// entity. Number identifies the entity and is never part of the delta
// field list; everything else is a delta-coded scalar.
type State struct {
	Number int32

	EntityType      int32
	EntityFlags     int32
	PosTrType       int32
	PosTrTime       int32
	PosTrDuration   int32
	PosBaseX        float32
	PosBaseY        float32
	PosBaseZ        float32
	PosDeltaX       float32
	PosDeltaY       float32
	PosDeltaZ       float32
	AngleBaseX      float32
	AngleBaseY      float32
	AngleBaseZ      float32
	AngleDeltaX     float32
	AngleDeltaY     float32
	AngleDeltaZ     float32
	OriginX         float32
	OriginY         float32
	OriginZ         float32
	OriginOldX      float32
	OriginOldY      float32
	OriginOldZ      float32
	AnglesX         float32
	AnglesY         float32
	AnglesZ         float32
	OtherEntityNum  int32
	OtherEntityNum2 int32
	GroundEntityNum int32
	ConstantLight   int32
	LoopSound       int32
	ModelIndex      int32
	ModelIndex2     int32
	ClientNum       int32
	Frame           int32
	Solid           int32
	Event           int32
	EventParm       int32
	PowerUps        int32
	Weapon          int32
	LegsAnim        int32
	TorsoAnim       int32
	Generic1        int32
	Origin2X        float32
	Origin2Y        float32
	Origin2Z        float32
	Angles2X        float32
	Angles2Y        float32
	Angles2Z        float32
	TeamNum         int32
}

func (s *State) intField(i int) int32 {
	switch i {
	case 0:
		return s.EntityType
	case 1:
		return s.EntityFlags
	case 2:
		return s.PosTrType
	case 3:
		return s.PosTrTime
	case 4:
		return s.PosTrDuration
	case 18:
		return s.OtherEntityNum
	case 19:
		return s.OtherEntityNum2
	case 20:
		return s.GroundEntityNum
	case 21:
		return s.ConstantLight
	case 22:
		return s.LoopSound
	case 23:
		return s.ModelIndex
	case 24:
		return s.ModelIndex2
	case 25:
		return s.ClientNum
	case 26:
		return s.Frame
	case 27:
		return s.Solid
	case 28:
		return s.Event
	case 29:
		return s.EventParm
	case 30:
		return s.PowerUps
	case 31:
		return s.Weapon
	case 32:
		return s.LegsAnim
	case 33:
		return s.TorsoAnim
	case 34:
		return s.Generic1
	case 41:
		return s.TeamNum
	}
	panic("entity: intField: not an integer field")
}

func (s *State) setIntField(i int, v int32) {
	switch i {
	case 0:
		s.EntityType = v
	case 1:
		s.EntityFlags = v
	case 2:
		s.PosTrType = v
	case 3:
		s.PosTrTime = v
	case 4:
		s.PosTrDuration = v
	case 18:
		s.OtherEntityNum = v
	case 19:
		s.OtherEntityNum2 = v
	case 20:
		s.GroundEntityNum = v
	case 21:
		s.ConstantLight = v
	case 22:
		s.LoopSound = v
	case 23:
		s.ModelIndex = v
	case 24:
		s.ModelIndex2 = v
	case 25:
		s.ClientNum = v
	case 26:
		s.Frame = v
	case 27:
		s.Solid = v
	case 28:
		s.Event = v
	case 29:
		s.EventParm = v
	case 30:
		s.PowerUps = v
	case 31:
		s.Weapon = v
	case 32:
		s.LegsAnim = v
	case 33:
		s.TorsoAnim = v
	case 34:
		s.Generic1 = v
	case 41:
		s.TeamNum = v
	default:
		panic("entity: setIntField: not an integer field")
	}
}

func (s *State) floatField(i int) float32 {
	switch i {
	case 5:
		return s.PosBaseX
	case 6:
		return s.PosBaseY
	case 7:
		return s.PosBaseZ
	case 8:
		return s.PosDeltaX
	case 9:
		return s.PosDeltaY
	case 10:
		return s.PosDeltaZ
	case 11:
		return s.AngleBaseX
	case 12:
		return s.AngleBaseY
	case 13:
		return s.AngleBaseZ
	case 14:
		return s.AngleDeltaX
	case 15:
		return s.AngleDeltaY
	case 16:
		return s.AngleDeltaZ
	case 17:
		return 0 // unused padding slot kept for stable indexing; always zero delta
	case 35:
		return s.OriginX
	case 36:
		return s.OriginY
	case 37:
		return s.OriginZ
	case 38:
		return s.OriginOldX
	case 39:
		return s.OriginOldY
	case 40:
		return s.OriginOldZ
	case 42:
		return s.AnglesX
	case 43:
		return s.AnglesY
	case 44:
		return s.AnglesZ
	case 45:
		return s.Origin2X
	case 46:
		return s.Origin2Y
	case 47:
		return s.Origin2Z
	case 48:
		return s.Angles2X
	case 49:
		return s.Angles2Y
	case 50:
		return s.Angles2Z
	}
	panic("entity: floatField: not a float field")
}

func (s *State) setFloatField(i int, v float32) {
	switch i {
	case 5:
		s.PosBaseX = v
	case 6:
		s.PosBaseY = v
	case 7:
		s.PosBaseZ = v
	case 8:
		s.PosDeltaX = v
	case 9:
		s.PosDeltaY = v
	case 10:
		s.PosDeltaZ = v
	case 11:
		s.AngleBaseX = v
	case 12:
		s.AngleBaseY = v
	case 13:
		s.AngleBaseZ = v
	case 14:
		s.AngleDeltaX = v
	case 15:
		s.AngleDeltaY = v
	case 16:
		s.AngleDeltaZ = v
	case 17:
		// intentionally discarded: padding slot, see floatField.
	case 35:
		s.OriginX = v
	case 36:
		s.OriginY = v
	case 37:
		s.OriginZ = v
	case 38:
		s.OriginOldX = v
	case 39:
		s.OriginOldY = v
	case 40:
		s.OriginOldZ = v
	case 42:
		s.AnglesX = v
	case 43:
		s.AnglesY = v
	case 44:
		s.AnglesZ = v
	case 45:
		s.Origin2X = v
	case 46:
		s.Origin2Y = v
	case 47:
		s.Origin2Z = v
	case 48:
		s.Angles2X = v
	case 49:
		s.Angles2Y = v
	case 50:
		s.Angles2Z = v
	default:
		panic("entity: setFloatField: not a float field")
	}
}

// fieldKind tags whether a field slot is an integer (with a declared bit
// width, negative for signed) or a truncate-or-IEEE float.
type fieldKind struct {
	isFloat bool
	bits    int // meaningless when isFloat
}

// fieldKinds is the static schema table, in transmission order. Order
// matters: it determines where the "last changed" truncation (lc) falls.
var fieldKinds = [51]fieldKind{
	0:  {bits: 8},    // EntityType
	1:  {bits: 16},   // EntityFlags
	2:  {bits: 8},    // PosTrType
	3:  {bits: -32},  // PosTrTime
	4:  {bits: -32},  // PosTrDuration
	5:  {isFloat: true},
	6:  {isFloat: true},
	7:  {isFloat: true},
	8:  {isFloat: true},
	9:  {isFloat: true},
	10: {isFloat: true},
	11: {isFloat: true},
	12: {isFloat: true},
	13: {isFloat: true},
	14: {isFloat: true},
	15: {isFloat: true},
	16: {isFloat: true},
	17: {isFloat: true},
	18: {bits: 10},   // OtherEntityNum
	19: {bits: 10},   // OtherEntityNum2
	20: {bits: 10},   // GroundEntityNum
	21: {bits: 32},   // ConstantLight
	22: {bits: 16},   // LoopSound
	23: {bits: 9},    // ModelIndex
	24: {bits: 9},    // ModelIndex2
	25: {bits: 8},    // ClientNum
	26: {bits: 16},   // Frame
	27: {bits: -24},  // Solid
	28: {bits: 10},   // Event
	29: {bits: 8},    // EventParm
	30: {bits: 16},   // PowerUps
	31: {bits: 8},    // Weapon
	32: {bits: 8},    // LegsAnim
	33: {bits: 8},    // TorsoAnim
	34: {bits: -32},  // Generic1
	35: {isFloat: true},
	36: {isFloat: true},
	37: {isFloat: true},
	38: {isFloat: true},
	39: {isFloat: true},
	40: {isFloat: true},
	41: {bits: 4},    // TeamNum
	42: {isFloat: true},
	43: {isFloat: true},
	44: {isFloat: true},
	45: {isFloat: true},
	46: {isFloat: true},
	47: {isFloat: true},
	48: {isFloat: true},
	49: {isFloat: true},
	50: {isFloat: true},
}

// NumFields is the number of delta-coded fields (excludes Number).
const NumFields = len(fieldKinds)
