package lzss

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/forgenet/arenacore/internal/bitio"
	"github.com/forgenet/arenacore/internal/huffman"
)

func TestCompressExpandRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		[]byte("the quick brown fox jumps over the lazy dog the quick brown fox"),
		bytes.Repeat([]byte("serverinfo\\mapname\\q3dm17\\"), 20),
	}
	for i, c := range cases {
		tokens := Compress(c)
		got := Expand(tokens)
		if !bytes.Equal(got, c) {
			t.Fatalf("case %d: round trip mismatch: got %q want %q", i, got, c)
		}
	}
}

func TestCompressActuallyShrinksRepetitiveInput(t *testing.T) {
	src := bytes.Repeat([]byte("configstring data repeats here "), 50)
	tokens := Compress(src)
	if len(tokens) >= len(src) {
		t.Fatalf("expected fewer tokens (%d) than source bytes (%d) for highly repetitive input", len(tokens), len(src))
	}
}

func TestWireRoundTrip(t *testing.T) {
	src := []byte("the quick brown fox jumps over the lazy dog the quick brown fox jumps")
	tokens := Compress(src)

	buf := make([]byte, 4096)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	WriteTokens(w, tokens)

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	got := ReadTokens(r, len(tokens))

	if !bytes.Equal(Expand(got), src) {
		t.Fatalf("wire round trip mismatch")
	}
}

func TestZcmdWireRoundTrip(t *testing.T) {
	cmds := []string{
		`cs 12 "q3dm17"`,
		`print "client 3 has connected"`,
		`disconnect "was kicked"`,
	}

	buf := make([]byte, 4096)
	w := bitio.NewMessage(buf, huffman.NewCodec())
	WriteZcmd(w, 5, cmds)

	r := bitio.NewMessage(buf, huffman.NewCodec())
	r.BeginRead()
	seq, got := ReadZcmd(r)

	if seq != 5 {
		t.Fatalf("delta sequence: got %d want 5", seq)
	}
	if len(got) != len(cmds) {
		t.Fatalf("batch size: got %d want %d", len(got), len(cmds))
	}
	for i := range cmds {
		if got[i] != cmds[i] {
			t.Fatalf("command %d: got %q want %q", i, got[i], cmds[i])
		}
	}
}

func TestRandomDataRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := make([]byte, 256)
	rng.Read(src)

	tokens := Compress(src)
	if got := Expand(tokens); !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch on random data")
	}
}
