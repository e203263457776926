// Package usercmd implements the UserCommand schema and its key-scrambled
// delta codec, the input half of spec component C3.
package usercmd

// Command is one sampled input frame: movement, view angles, and button
// state for a single server tick.
type Command struct {
	ServerTime  int32
	Angles      [3]int16
	Buttons     uint16
	Weapon      uint8
	Forwardmove int8
	Rightmove   int8
	Upmove      int8
}

// New builds a Command from raw sampled input, applying the movement clamp
// every constructed Command must satisfy before it reaches DeltaEncode.
func New(serverTime int32, angles [3]int16, forward, right, up int8, buttons uint16, weapon uint8) Command {
	return Command{
		ServerTime:  serverTime,
		Angles:      angles,
		Forwardmove: clampMovement(forward),
		Rightmove:   clampMovement(right),
		Upmove:      clampMovement(up),
		Buttons:     buttons,
		Weapon:      weapon,
	}
}

// clampMovement matches the reference's historical -128 edge case: -128 does
// not survive an int8 round trip through certain movement-scaling code
// paths, so it is nudged to -127 before being put on the wire.
func clampMovement(v int8) int8 {
	if v == -128 {
		return -127
	}
	return v
}
