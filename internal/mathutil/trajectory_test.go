package mathutil

import "testing"

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func TestStationaryAlwaysReturnsBase(t *testing.T) {
	tr := Trajectory{Type: TrStationary, Base: NewVector3(1, 2, 3)}
	got := Evaluate(tr, 99999)
	if got != tr.Base {
		t.Fatalf("got %+v want %+v", got, tr.Base)
	}
}

func TestLinearAdvancesByDeltaPerSecond(t *testing.T) {
	tr := Trajectory{
		Type:  TrLinear,
		Time:  1000,
		Base:  NewVector3(0, 0, 0),
		Delta: NewVector3(100, 0, 0),
	}
	got := Evaluate(tr, 2000)
	if !almostEqual(got.X, 100) {
		t.Fatalf("got X=%v want 100", got.X)
	}
}

func TestLinearStopFreezesAtDuration(t *testing.T) {
	tr := Trajectory{
		Type:     TrLinearStop,
		Time:     1000,
		Duration: 500,
		Base:     NewVector3(0, 0, 0),
		Delta:    NewVector3(100, 0, 0),
	}
	atDuration := Evaluate(tr, 1500)
	wellPast := Evaluate(tr, 5000)
	if !almostEqual(atDuration.X, wellPast.X) {
		t.Fatalf("expected position to freeze after duration: at-duration=%v well-past=%v", atDuration.X, wellPast.X)
	}
}

func TestGravityPullsDownward(t *testing.T) {
	tr := Trajectory{
		Type:  TrGravity,
		Time:  0,
		Base:  NewVector3(0, 0, 100),
		Delta: NewVector3(0, 0, 0),
	}
	got := Evaluate(tr, 1000)
	if got.Z >= 100 {
		t.Fatalf("expected gravity to pull Z below the base after one second, got %v", got.Z)
	}
}
