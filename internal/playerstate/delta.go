package playerstate

import (
	"fmt"
	"math"

	"github.com/forgenet/arenacore/internal/bitio"
)

const (
	FloatIntBits = 13
	FloatIntBias = 1 << 12
)

// ErrProtocol is returned for malformed player-state deltas.
type ErrProtocol struct{ Reason string }

func (e *ErrProtocol) Error() string { return "playerstate: protocol error: " + e.Reason }

// DeltaEncode writes a player-state delta. Unlike entity deltas there is no
// removal bit and no "nothing changed" shortcut: the lc byte is always
// written, per §4.2.
func DeltaEncode(w *bitio.Message, from, to *State) {
	lc := 0
	for i := NumFields - 1; i >= 0; i-- {
		if scalarChanged(from, to, i) {
			lc = i + 1
			break
		}
	}

	w.WriteBits(int32(lc), 8)
	for i := 0; i < lc; i++ {
		if !scalarChanged(from, to, i) {
			w.WriteBits(0, 1)
			continue
		}
		w.WriteBits(1, 1)
		writeScalar(w, to, i)
	}

	// §4.2(ii): a single any-array-changed bit gates all four arrays before
	// any of their individual per-array changed bits are sent.
	anyArray := arrayChanged(from.Stats[:], to.Stats[:]) ||
		arrayChanged(from.Persistant[:], to.Persistant[:]) ||
		arrayChanged(from.Ammo[:], to.Ammo[:]) ||
		arrayChanged(from.Powerups[:], to.Powerups[:])
	if !anyArray {
		w.WriteBits(0, 1)
		return
	}
	w.WriteBits(1, 1)
	writeArray(w, from.Stats[:], to.Stats[:], 16)
	writeArray(w, from.Persistant[:], to.Persistant[:], 16)
	writeArray(w, from.Ammo[:], to.Ammo[:], 16)
	writeArray(w, from.Powerups[:], to.Powerups[:], 32)
}

func arrayChanged(from, to []int32) bool {
	for i := range to {
		if from[i] != to[i] {
			return true
		}
	}
	return false
}

func scalarChanged(from, to *State, i int) bool {
	if fieldKinds[i].isFloat {
		return from.floatField(i) != to.floatField(i)
	}
	return from.intField(i) != to.intField(i)
}

func writeScalar(w *bitio.Message, to *State, i int) {
	k := fieldKinds[i]
	if k.isFloat {
		v := to.floatField(i)
		if v == 0 {
			w.WriteBits(0, 1)
			return
		}
		w.WriteBits(1, 1)
		trunc := float32(int32(v))
		if trunc == v {
			biased := int32(v) + FloatIntBias
			if biased >= 0 && biased < (1<<FloatIntBits) {
				w.WriteBits(0, 1)
				w.WriteBits(biased, FloatIntBits)
				return
			}
		}
		w.WriteBits(1, 1)
		w.WriteBits(int32(math.Float32bits(v)), 32)
		return
	}

	v := to.intField(i)
	if v == 0 {
		w.WriteBits(0, 1)
		return
	}
	w.WriteBits(1, 1)
	w.WriteBits(v, k.bits)
}

// writeArray encodes one of the four bitmap-addressed arrays: an
// any-changed bit, then (if set) one changed bit per slot, each set bit
// followed directly by that slot's valueBits-wide value. The per-slot bits
// are interleaved with the values; they are not sent as one bitmask ahead
// of them.
func writeArray(w *bitio.Message, from, to []int32, valueBits int) {
	if !arrayChanged(from, to) {
		w.WriteBits(0, 1)
		return
	}
	w.WriteBits(1, 1)
	for i := range to {
		if from[i] != to[i] {
			w.WriteBits(1, 1)
			w.WriteBits(to[i], valueBits)
		} else {
			w.WriteBits(0, 1)
		}
	}
}

// DeltaDecode reads a player-state delta against from and returns the
// reconstructed state.
func DeltaDecode(r *bitio.Message, from *State) (*State, error) {
	cp := *from
	to := &cp

	lc := int(r.ReadBits(8))
	if lc < 0 || lc > NumFields {
		return nil, &ErrProtocol{Reason: fmt.Sprintf("bad lc %d", lc)}
	}
	for i := 0; i < lc; i++ {
		if r.ReadBits(1) == 0 {
			continue
		}
		readScalar(r, to, i)
	}

	if r.ReadBits(1) != 0 {
		readArray(r, to.Stats[:], -16)
		readArray(r, to.Persistant[:], -16)
		readArray(r, to.Ammo[:], -16)
		readArray(r, to.Powerups[:], 32)
	}

	return to, nil
}

func readScalar(r *bitio.Message, to *State, i int) {
	k := fieldKinds[i]
	if k.isFloat {
		if r.ReadBits(1) == 0 {
			to.setFloatField(i, 0)
			return
		}
		if r.ReadBits(1) == 0 {
			raw := r.ReadBits(FloatIntBits)
			to.setFloatField(i, float32(raw-FloatIntBias))
			return
		}
		raw := uint32(r.ReadBits(32))
		to.setFloatField(i, math.Float32frombits(raw))
		return
	}
	if r.ReadBits(1) == 0 {
		to.setIntField(i, 0)
		return
	}
	to.setIntField(i, r.ReadBits(k.bits))
}

func readArray(r *bitio.Message, to []int32, valueBits int) {
	if r.ReadBits(1) == 0 {
		return
	}
	for i := range to {
		if r.ReadBits(1) != 0 {
			to[i] = r.ReadBits(valueBits)
		}
	}
}
