// Package playerstate implements the PlayerState fixed schema (scalar
// fields plus four bitmap-addressed arrays) and its delta codec, the
// player-state half of spec component C3.
package playerstate

const (
	MaxStats      = 16
	MaxPersistant = 16
	MaxWeapons    = 16
	MaxPowerups   = 16
)

// State is the ~48-scalar-field PlayerState schema plus its four arrays.
type State struct {
	CommandTime     int32
	Pm_Type         int32
	Bob_Cycle       int32
	Pm_Flags        int32
	Pm_Time         int32
	OriginX         float32
	OriginY         float32
	OriginZ         float32
	VelocityX       float32
	VelocityY       float32
	VelocityZ       float32
	WeaponTime      int32
	Gravity         int32
	Speed           int32
	DeltaAngleX     int32
	DeltaAngleY     int32
	DeltaAngleZ     int32
	GroundEntityNum int32
	LegsTimer       int32
	LegsAnim        int32
	TorsoTimer      int32
	TorsoAnim       int32
	MovementDir     int32
	GrappleEntity   int32
	EFlags          int32
	EventSequence   int32
	Events0         int32
	Events1         int32
	EventParms0     int32
	EventParms1     int32
	ExternalEvent   int32
	ExternalEventParm int32
	ExternalEventTime int32
	ClientNum       int32
	Weapon          int32
	WeaponState     int32
	ViewAngleX      float32
	ViewAngleY      float32
	ViewAngleZ      float32
	ViewHeight      int32
	DamageEvent     int32
	DamageYaw       int32
	DamagePitch     int32
	DamageCount     int32
	Generic1        int32
	LoopSound       int32
	Ping            int32
	PMoveFrameCount int32
	EntityEventSeq  int32

	Stats      [MaxStats]int32
	Persistant [MaxPersistant]int32
	Ammo       [MaxWeapons]int32
	Powerups   [MaxPowerups]int32
}

func (s *State) intField(i int) int32 {
	switch i {
	case 0:
		return s.CommandTime
	case 1:
		return s.Pm_Type
	case 2:
		return s.Bob_Cycle
	case 3:
		return s.Pm_Flags
	case 4:
		return s.Pm_Time
	case 8:
		return s.WeaponTime
	case 9:
		return s.Gravity
	case 10:
		return s.Speed
	case 11:
		return s.DeltaAngleX
	case 12:
		return s.DeltaAngleY
	case 13:
		return s.DeltaAngleZ
	case 14:
		return s.GroundEntityNum
	case 15:
		return s.LegsTimer
	case 16:
		return s.LegsAnim
	case 17:
		return s.TorsoTimer
	case 18:
		return s.TorsoAnim
	case 19:
		return s.MovementDir
	case 20:
		return s.GrappleEntity
	case 21:
		return s.EFlags
	case 22:
		return s.EventSequence
	case 23:
		return s.Events0
	case 24:
		return s.Events1
	case 25:
		return s.EventParms0
	case 26:
		return s.EventParms1
	case 27:
		return s.ExternalEvent
	case 28:
		return s.ExternalEventParm
	case 29:
		return s.ExternalEventTime
	case 30:
		return s.ClientNum
	case 31:
		return s.Weapon
	case 32:
		return s.WeaponState
	case 36:
		return s.ViewHeight
	case 37:
		return s.DamageEvent
	case 38:
		return s.DamageYaw
	case 39:
		return s.DamagePitch
	case 40:
		return s.DamageCount
	case 41:
		return s.Generic1
	case 42:
		return s.LoopSound
	case 43:
		return s.Ping
	case 44:
		return s.PMoveFrameCount
	case 45:
		return s.EntityEventSeq
	}
	panic("playerstate: intField: not an integer field")
}

func (s *State) setIntField(i int, v int32) {
	switch i {
	case 0:
		s.CommandTime = v
	case 1:
		s.Pm_Type = v
	case 2:
		s.Bob_Cycle = v
	case 3:
		s.Pm_Flags = v
	case 4:
		s.Pm_Time = v
	case 8:
		s.WeaponTime = v
	case 9:
		s.Gravity = v
	case 10:
		s.Speed = v
	case 11:
		s.DeltaAngleX = v
	case 12:
		s.DeltaAngleY = v
	case 13:
		s.DeltaAngleZ = v
	case 14:
		s.GroundEntityNum = v
	case 15:
		s.LegsTimer = v
	case 16:
		s.LegsAnim = v
	case 17:
		s.TorsoTimer = v
	case 18:
		s.TorsoAnim = v
	case 19:
		s.MovementDir = v
	case 20:
		s.GrappleEntity = v
	case 21:
		s.EFlags = v
	case 22:
		s.EventSequence = v
	case 23:
		s.Events0 = v
	case 24:
		s.Events1 = v
	case 25:
		s.EventParms0 = v
	case 26:
		s.EventParms1 = v
	case 27:
		s.ExternalEvent = v
	case 28:
		s.ExternalEventParm = v
	case 29:
		s.ExternalEventTime = v
	case 30:
		s.ClientNum = v
	case 31:
		s.Weapon = v
	case 32:
		s.WeaponState = v
	case 36:
		s.ViewHeight = v
	case 37:
		s.DamageEvent = v
	case 38:
		s.DamageYaw = v
	case 39:
		s.DamagePitch = v
	case 40:
		s.DamageCount = v
	case 41:
		s.Generic1 = v
	case 42:
		s.LoopSound = v
	case 43:
		s.Ping = v
	case 44:
		s.PMoveFrameCount = v
	case 45:
		s.EntityEventSeq = v
	default:
		panic("playerstate: setIntField: not an integer field")
	}
}

func (s *State) floatField(i int) float32 {
	switch i {
	case 5:
		return s.OriginX
	case 6:
		return s.OriginY
	case 7:
		return s.OriginZ
	case 33:
		return s.ViewAngleX
	case 34:
		return s.ViewAngleY
	case 35:
		return s.ViewAngleZ
	case 46:
		return s.VelocityX
	case 47:
		return s.VelocityY
	case 48:
		return s.VelocityZ
	}
	panic("playerstate: floatField: not a float field")
}

func (s *State) setFloatField(i int, v float32) {
	switch i {
	case 5:
		s.OriginX = v
	case 6:
		s.OriginY = v
	case 7:
		s.OriginZ = v
	case 33:
		s.ViewAngleX = v
	case 34:
		s.ViewAngleY = v
	case 35:
		s.ViewAngleZ = v
	case 46:
		s.VelocityX = v
	case 47:
		s.VelocityY = v
	case 48:
		s.VelocityZ = v
	default:
		panic("playerstate: setFloatField: not a float field")
	}
}

type fieldKind struct {
	isFloat bool
	bits    int
}

var fieldKinds = [49]fieldKind{
	0: {bits: -32}, // CommandTime
	1: {bits: 8},   // Pm_Type
	2: {bits: 8},   // Bob_Cycle
	3: {bits: 16},  // Pm_Flags
	4: {bits: 16},  // Pm_Time
	5: {isFloat: true},
	6: {isFloat: true},
	7: {isFloat: true},
	8:  {bits: -16}, // WeaponTime
	9:  {bits: 16},  // Gravity
	10: {bits: 16},  // Speed
	11: {bits: -16}, // DeltaAngleX
	12: {bits: -16}, // DeltaAngleY
	13: {bits: -16}, // DeltaAngleZ
	14: {bits: 10},  // GroundEntityNum
	15: {bits: -16}, // LegsTimer
	16: {bits: 8},   // LegsAnim
	17: {bits: -16}, // TorsoTimer
	18: {bits: 8},   // TorsoAnim
	19: {bits: 4},   // MovementDir
	20: {bits: 10},  // GrappleEntity
	21: {bits: 16},  // EFlags
	22: {bits: -32}, // EventSequence
	23: {bits: 10},  // Events0
	24: {bits: 10},  // Events1
	25: {bits: 8},   // EventParms0
	26: {bits: 8},   // EventParms1
	27: {bits: 10},  // ExternalEvent
	28: {bits: 8},   // ExternalEventParm
	29: {bits: -32}, // ExternalEventTime
	30: {bits: 8},   // ClientNum
	31: {bits: 5},   // Weapon
	32: {bits: 4},   // WeaponState
	33: {isFloat: true},
	34: {isFloat: true},
	35: {isFloat: true},
	36: {bits: -8}, // ViewHeight
	37: {bits: 8},  // DamageEvent
	38: {bits: 8},  // DamageYaw
	39: {bits: 8},  // DamagePitch
	40: {bits: 8},  // DamageCount
	41: {bits: -32}, // Generic1
	42: {bits: 16}, // LoopSound
	43: {bits: 16}, // Ping
	44: {bits: -32}, // PMoveFrameCount
	45: {bits: -32}, // EntityEventSeq
	46: {isFloat: true},
	47: {isFloat: true},
	48: {isFloat: true},
}

// NumFields is the number of delta-coded scalar fields (excludes arrays).
const NumFields = len(fieldKinds)
