package mathutil

import "math"

// TrType is an entity's trajectory interpolation mode, matching
// EntityState.PosTrType.
type TrType int32

const (
	TrStationary TrType = iota
	TrInterpolate
	TrLinear
	TrLinearStop
	TrSine
	TrGravity
)

// Trajectory is the subset of an EntityState's fields that describe how
// its origin moves over time: a base position plus a delta (velocity or
// direction, depending on Type), keyed to the server time the trajectory
// started.
type Trajectory struct {
	Type     TrType
	Time     int32 // trTime: server time this trajectory started
	Duration int32 // trDuration: meaningful only for TrLinearStop (stop time) and TrSine (period)
	Base     Vector3
	Delta    Vector3
}

const gravity = 800.0 // world units/sec^2, matching the reference game's default sv_gravity

// Evaluate returns the position the trajectory describes at atTime
// (server milliseconds). It lets the server compute an entity's position
// between the discrete states baselines and snapshots carry, e.g. when
// checking a client's aim against where a target "really" was at their
// lag-compensated view time.
func Evaluate(tr Trajectory, atTime int32) Vector3 {
	deltaTime := float64(atTime-tr.Time) / 1000.0

	switch tr.Type {
	case TrStationary, TrInterpolate:
		return tr.Base

	case TrLinear:
		return tr.Base.Add(tr.Delta.Mul(deltaTime))

	case TrLinearStop:
		if atTime > tr.Time+tr.Duration {
			deltaTime = float64(tr.Duration) / 1000.0
		}
		if deltaTime < 0 {
			deltaTime = 0
		}
		return tr.Base.Add(tr.Delta.Mul(deltaTime))

	case TrSine:
		period := float64(tr.Duration)
		if period <= 0 {
			period = 1000
		}
		phase := math.Sin(2 * math.Pi * float64(atTime-tr.Time) / period)
		return tr.Base.Add(tr.Delta.Mul(phase))

	case TrGravity:
		pos := tr.Base.Add(tr.Delta.Mul(deltaTime))
		pos.Z -= 0.5 * gravity * deltaTime * deltaTime
		return pos

	default:
		return tr.Base
	}
}
