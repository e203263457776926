package entity

import (
	"testing"

	"github.com/forgenet/arenacore/internal/bitio"
	"github.com/forgenet/arenacore/internal/huffman"
)

func encodeDecode(t *testing.T, from, to *State, force bool) (*State, bool, bool) {
	t.Helper()
	buf := make([]byte, 512)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	wrote := DeltaEncode(w, from, to, force)

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	got, removed, err := DeltaDecode(r, from)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got, removed, wrote
}

func TestDeltaEncodeNoChangeEmitsNothing(t *testing.T) {
	a := &State{Number: 5, Weapon: 3, OriginX: 12.5}
	buf := make([]byte, 256)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	wrote := DeltaEncode(w, a, a, false)
	if wrote {
		t.Fatalf("expected no bits written for identical states")
	}
	if w.Bit != 0 {
		t.Fatalf("expected zero bits written, got %d", w.Bit)
	}
}

func TestDeltaForceRoundTripIdentity(t *testing.T) {
	from := &State{Number: 1, Weapon: 2, OriginX: 10, OriginY: -5, Frame: 3}
	to := &State{Number: 1, Weapon: 7, OriginX: 10.5, OriginY: -5, Frame: 9, Event: 42}

	got, removed, wrote := encodeDecode(t, from, to, true)
	if !wrote || removed {
		t.Fatalf("expected a forced delta to be written and not a removal")
	}
	if *got != *to {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", *got, *to)
	}
}

func TestDeltaRoundTripVariousPairs(t *testing.T) {
	pairs := []struct{ from, to State }{
		{State{Number: 2}, State{Number: 2, OriginZ: 99}},
		{State{Number: 3, PowerUps: 1}, State{Number: 3, PowerUps: 0}},
		{State{Number: 4, OriginX: 1.25}, State{Number: 4, OriginX: -300.75}},
		{State{Number: 9}, State{Number: 9}},
	}
	for i, p := range pairs {
		got, removed, _ := encodeDecode(t, &p.from, &p.to, true)
		if removed {
			t.Fatalf("case %d: unexpected removal", i)
		}
		if *got != p.to {
			t.Fatalf("case %d: got=%+v want=%+v", i, *got, p.to)
		}
	}
}

func TestDeltaRemoval(t *testing.T) {
	from := &State{Number: 8, Weapon: 1}
	buf := make([]byte, 64)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	if !DeltaEncode(w, from, nil, false) {
		t.Fatalf("expected removal to write bits")
	}

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	got, removed, err := DeltaDecode(r, from)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !removed || got != nil {
		t.Fatalf("expected removed=true, got=nil; got removed=%v got=%v", removed, got)
	}
}

func TestDeltaFloatSmallIntegerPath(t *testing.T) {
	from := &State{Number: 1}
	to := &State{Number: 1, OriginX: 3.0}

	buf := make([]byte, 64)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	DeltaEncode(w, from, to, true)

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	got, _, err := DeltaDecode(r, from)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OriginX != 3.0 {
		t.Fatalf("got %v want 3.0", got.OriginX)
	}
}

// TestDeltaFloatSmallIntegerPathGoldenBits pins down §8 Scenario 5's exact
// wire shape for the float small-integer fast path: encoding 3.0 must emit
// "1 (nonzero), 0 (small-int), (3+4096) in 13 bits" — not the inverted
// zero/nonzero polarity a purely round-trip-based test cannot distinguish
// from the correct one.
func TestDeltaFloatSmallIntegerPathGoldenBits(t *testing.T) {
	to := &State{OriginX: 3.0}

	buf := make([]byte, 16)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	writeFieldValue(w, to, 35) // OriginX's field index

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	if nonzero := r.ReadBits(1); nonzero != 1 {
		t.Fatalf("nonzero bit: got %d want 1", nonzero)
	}
	if smallInt := r.ReadBits(1); smallInt != 0 {
		t.Fatalf("small-int bit: got %d want 0", smallInt)
	}
	if biased := r.ReadBits(FloatIntBits); biased != 3+FloatIntBias {
		t.Fatalf("biased value: got %d want %d", biased, 3+FloatIntBias)
	}
}
