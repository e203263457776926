package usercmd

import (
	"testing"

	"github.com/forgenet/arenacore/internal/bitio"
	"github.com/forgenet/arenacore/internal/huffman"
)

func roundTrip(t *testing.T, key int32, from, to *Command) *Command {
	t.Helper()
	buf := make([]byte, 64)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	DeltaEncode(w, key, from, to)

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	return DeltaDecode(r, key, from)
}

func TestDeltaIdenticalCommandsRoundTrip(t *testing.T) {
	a := New(1000, [3]int16{10, 20, 30}, 127, -127, 0, 5, 2)
	got := roundTrip(t, 0xbeef, &a, &a)
	if *got != a {
		t.Fatalf("got=%+v want=%+v", *got, a)
	}
}

func TestDeltaChangedFieldsRoundTrip(t *testing.T) {
	from := New(1000, [3]int16{0, 0, 0}, 0, 0, 0, 0, 1)
	to := New(1010, [3]int16{1234, -5678, 9999}, 127, -127, 1, 0xfff0, 4)

	got := roundTrip(t, 0x1234, &from, &to)
	if *got != to {
		t.Fatalf("got=%+v want=%+v", *got, to)
	}
}

func TestServerTimeShortPathVersusLongPath(t *testing.T) {
	from := New(1000, [3]int16{}, 0, 0, 0, 0, 0)

	near := New(1200, [3]int16{}, 0, 0, 0, 0, 0)
	got := roundTrip(t, 42, &from, &near)
	if got.ServerTime != 1200 {
		t.Fatalf("short path: got %d want 1200", got.ServerTime)
	}

	far := New(100000, [3]int16{}, 0, 0, 0, 0, 0)
	got = roundTrip(t, 42, &from, &far)
	if got.ServerTime != 100000 {
		t.Fatalf("long path: got %d want 100000", got.ServerTime)
	}
}

func TestMovementClampAppliedAtConstruction(t *testing.T) {
	c := New(0, [3]int16{}, -128, -128, -128, 0, 0)
	if c.Forwardmove != -127 || c.Rightmove != -127 || c.Upmove != -127 {
		t.Fatalf("expected -128 clamped to -127, got %+v", c)
	}
}

func TestDifferentKeysProduceDifferentWireBytes(t *testing.T) {
	from := New(1000, [3]int16{1, 2, 3}, 0, 0, 0, 0, 0)
	to := New(1005, [3]int16{4, 5, 6}, 10, -10, 1, 0x00ff, 3)

	buf1 := make([]byte, 64)
	w1 := bitio.NewMessage(buf1, huffman.NewCodec())
	DeltaEncode(w1, 0x1111, &from, &to)

	buf2 := make([]byte, 64)
	w2 := bitio.NewMessage(buf2, huffman.NewCodec())
	DeltaEncode(w2, 0x2222, &from, &to)

	same := true
	for i := range buf1 {
		if buf1[i] != buf2[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected differing scrambling keys to produce differing wire bytes")
	}

	r := bitio.NewMessage(buf1, huffman.NewCodec())
	r.BeginRead()
	got := DeltaDecode(r, 0x1111, &from)
	if *got != to {
		t.Fatalf("got=%+v want=%+v", *got, to)
	}
}
