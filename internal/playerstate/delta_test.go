package playerstate

import (
	"testing"

	"github.com/forgenet/arenacore/internal/bitio"
	"github.com/forgenet/arenacore/internal/huffman"
)

func encodeDecode(t *testing.T, from, to *State) *State {
	t.Helper()
	buf := make([]byte, 512)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	DeltaEncode(w, from, to)

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	got, err := DeltaDecode(r, from)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestDeltaNoChangeStillWritesLCByte(t *testing.T) {
	a := &State{ClientNum: 3, OriginX: 12.5}
	buf := make([]byte, 256)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	DeltaEncode(w, a, a)
	if w.Bit == 0 {
		t.Fatalf("expected the lc byte to always be written, even with no changes")
	}
}

func TestDeltaRoundTripIdentity(t *testing.T) {
	pairs := []struct{ from, to State }{
		{State{}, State{OriginZ: 99}},
		{State{ClientNum: 2, Weapon: 1}, State{ClientNum: 2, Weapon: 7}},
		{State{OriginX: 1.25}, State{OriginX: -300.75}},
		{State{}, State{}},
		{State{VelocityX: 10, VelocityY: -5}, State{VelocityX: 10.5, VelocityY: 0}},
	}
	for i, p := range pairs {
		got := encodeDecode(t, &p.from, &p.to)
		if *got != p.to {
			t.Fatalf("case %d: got=%+v want=%+v", i, *got, p.to)
		}
	}
}

func TestDeltaStatsArrayRoundTrip(t *testing.T) {
	from := &State{}
	to := &State{}
	to.Stats[0] = 100
	to.Stats[5] = -3

	got := encodeDecode(t, from, to)
	if got.Stats != to.Stats {
		t.Fatalf("got stats=%v want=%v", got.Stats, to.Stats)
	}
}

func TestDeltaPersistantAmmoPowerupsRoundTrip(t *testing.T) {
	from := &State{}
	to := &State{}
	to.Persistant[1] = 42
	to.Ammo[3] = 1000
	to.Powerups[2] = 123456

	got := encodeDecode(t, from, to)
	if got.Persistant != to.Persistant {
		t.Fatalf("got persistant=%v want=%v", got.Persistant, to.Persistant)
	}
	if got.Ammo != to.Ammo {
		t.Fatalf("got ammo=%v want=%v", got.Ammo, to.Ammo)
	}
	if got.Powerups != to.Powerups {
		t.Fatalf("got powerups=%v want=%v", got.Powerups, to.Powerups)
	}
}

func TestDeltaArraysUnchangedEmitSingleGatingBit(t *testing.T) {
	a := &State{}
	buf := make([]byte, 256)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	DeltaEncode(w, a, a)
	// lc byte (8 bits) + the single any-array-changed bit, nothing else: per
	// §4.2(ii) the four per-array changed bits are only sent when that one
	// gating bit is set.
	if w.Bit != 8+1 {
		t.Fatalf("expected 9 bits written for an all-unchanged state, got %d", w.Bit)
	}
}
