package bitio

import (
	"testing"

	"github.com/forgenet/arenacore/internal/huffman"
)

func roundTrip(t *testing.T, value int32, bits int) int32 {
	t.Helper()
	buf := make([]byte, 64)
	w := NewMessage(buf, huffman.NewCodec())
	w.WriteBits(value, bits)
	if w.Overflowed {
		t.Fatalf("unexpected overflow writing %d in %d bits", value, bits)
	}

	r := NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	return r.ReadBits(bits)
}

func TestWriteReadBitsUnsignedRoundTrip(t *testing.T) {
	cases := []struct {
		value int32
		bits  int
	}{
		{0, 1}, {1, 1}, {0, 32}, {1, 32}, {255, 8}, {65535, 16},
		{1 << 30, 31}, {int32(-1), 32},
	}
	for _, c := range cases {
		got := roundTrip(t, c.value, c.bits)
		want := c.value
		if c.bits < 32 {
			mask := int32((uint64(1) << uint(c.bits)) - 1)
			want = c.value & mask
		}
		if got != want {
			t.Errorf("value=%d bits=%d: got %d want %d", c.value, c.bits, got, want)
		}
	}
}

func TestWriteReadBitsSignedRoundTrip(t *testing.T) {
	cases := []struct {
		value int32
		bits  int
	}{
		{-1, -8}, {-100, -8}, {100, -8}, {-5, -16}, {5, -16}, {-1, -31},
	}
	for _, c := range cases {
		got := roundTrip(t, c.value, c.bits)
		if got != c.value {
			t.Errorf("value=%d bits=%d: got %d want %d", c.value, c.bits, got, c.value)
		}
	}
}

func TestOverflowLatches(t *testing.T) {
	buf := make([]byte, 1)
	w := NewMessage(buf, huffman.NewCodec())
	for i := 0; i < 20; i++ {
		w.WriteBits(1, 1)
	}
	if !w.Overflowed {
		t.Fatalf("expected overflow after exceeding max bits")
	}
}

func TestReadPastMaxBitsReturnsZero(t *testing.T) {
	buf := make([]byte, 1)
	r := NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	r.Bit = r.MaxBits
	if v := r.ReadBits(8); v != 0 {
		t.Fatalf("expected 0 reading past max bits, got %d", v)
	}
}

func TestOOBModeAlignedWidths(t *testing.T) {
	buf := make([]byte, 16)
	w := NewMessageOOB(buf)
	w.WriteBits(0x7F, 8)
	w.WriteBits(0x1234, 16)
	w.WriteBits(-1, 32)

	r := NewMessageOOB(buf)
	r.BeginReadOOB()
	if v := r.ReadBits(8); v != 0x7F {
		t.Fatalf("byte: got %d", v)
	}
	if v := r.ReadBits(16); v != 0x1234 {
		t.Fatalf("short: got %d", v)
	}
	if v := r.ReadBits(32); v != -1 {
		t.Fatalf("long: got %d", v)
	}
}

func TestStringRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	w := NewMessage(buf, huffman.NewCodec())
	w.WriteString("hello world")
	w.WriteLong(42)

	r := NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	if s := r.ReadString(64); s != "hello world" {
		t.Fatalf("got %q", s)
	}
	if v := r.ReadLong(); v != 42 {
		t.Fatalf("got %d", v)
	}
}

func TestFloatAndAngleRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	w := NewMessage(buf, huffman.NewCodec())
	w.WriteFloat(3.14159)
	w.WriteAngle(90.0)

	r := NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	if f := r.ReadFloat(); f != 3.14159 {
		t.Fatalf("got %v", f)
	}
	if a := r.ReadAngle(); a < 89.5 || a > 90.5 {
		t.Fatalf("angle got %v", a)
	}
}
