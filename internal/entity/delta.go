package entity

import (
	"fmt"
	"math"

	"github.com/forgenet/arenacore/internal/bitio"
)

// FloatIntBits / FloatIntBias implement the "small integer" fast path for
// float fields: a float that happens to be a whole number close to zero is
// sent as a biased 13-bit integer instead of 32 raw IEEE bits.
const (
	FloatIntBits = 13
	FloatIntBias = 1 << 12
)

// ErrProtocol is returned for malformed deltas (bad lc, bad entity number).
type ErrProtocol struct{ Reason string }

func (e *ErrProtocol) Error() string { return "entity: protocol error: " + e.Reason }

// DeltaEncode writes an entity delta from 'from' to 'to' against w. A nil to
// encodes a removal. force bypasses the "no bits if nothing changed"
// shortcut, which baseline transmission (§4.6) relies on. It reports
// whether any bits were written, which tells a frame builder whether this
// entity belongs in its changed-entity list at all.
func DeltaEncode(w *bitio.Message, from *State, to *State, force bool) bool {
	if to == nil {
		w.WriteBits(from.Number, entityNumBits)
		w.WriteBits(1, 1) // removed
		return true
	}

	lc := 0
	for i := NumFields - 1; i >= 0; i-- {
		if fieldChanged(from, to, i) {
			lc = i + 1
			break
		}
	}

	if lc == 0 && !force {
		return false
	}

	w.WriteBits(to.Number, entityNumBits)
	w.WriteBits(0, 1) // not removed

	if lc == 0 {
		w.WriteBits(0, 1) // no delta
		return true
	}

	w.WriteBits(1, 1) // has delta
	w.WriteBits(int32(lc), 8)

	for i := 0; i < lc; i++ {
		if !fieldChanged(from, to, i) {
			w.WriteBits(0, 1)
			continue
		}
		w.WriteBits(1, 1)
		writeFieldValue(w, to, i)
	}
	return true
}

func fieldChanged(from, to *State, i int) bool {
	k := fieldKinds[i]
	if k.isFloat {
		return from.floatField(i) != to.floatField(i)
	}
	return from.intField(i) != to.intField(i)
}

func writeFieldValue(w *bitio.Message, to *State, i int) {
	k := fieldKinds[i]
	if k.isFloat {
		v := to.floatField(i)
		if v == 0 {
			w.WriteBits(0, 1) // zero
			return
		}
		w.WriteBits(1, 1) // nonzero
		trunc := float32(int32(v))
		if trunc == v {
			biased := int32(v) + FloatIntBias
			if biased >= 0 && biased < (1<<FloatIntBits) {
				w.WriteBits(0, 1) // small-int path
				w.WriteBits(biased, FloatIntBits)
				return
			}
		}
		w.WriteBits(1, 1) // raw IEEE path
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

// DeltaDecode reads one entity delta against from. removed reports whether
// the wire record marked this entity for removal (to is nil in that case).
func DeltaDecode(r *bitio.Message, from *State) (to *State, removed bool, err error) {
	number := r.ReadBits(entityNumBits)

	if r.ReadBits(1) != 0 {
		return nil, true, nil
	}

	cp := *from
	to = &cp
	to.Number = number

	if r.ReadBits(1) == 0 {
		return to, false, nil
	}

	lc := int(r.ReadBits(8))
	if lc < 0 || lc > NumFields {
		return nil, false, &ErrProtocol{Reason: fmt.Sprintf("bad lc %d", lc)}
	}

	for i := 0; i < lc; i++ {
		if r.ReadBits(1) == 0 {
			continue // field i unchanged, already holds from's value
		}
		if err := readFieldValue(r, to, i); err != nil {
			return nil, false, err
		}
	}
	return to, false, nil
}

func readFieldValue(r *bitio.Message, to *State, i int) error {
	k := fieldKinds[i]
	if k.isFloat {
		if r.ReadBits(1) == 0 {
			to.setFloatField(i, 0)
			return nil
		}
		if r.ReadBits(1) == 0 {
			raw := r.ReadBits(FloatIntBits)
			to.setFloatField(i, float32(raw-FloatIntBias))
			return nil
		}
		raw := uint32(r.ReadBits(32))
		to.setFloatField(i, math.Float32frombits(raw))
		return nil
	}

	if r.ReadBits(1) == 0 {
		to.setIntField(i, 0)
		return nil
	}
	to.setIntField(i, r.ReadBits(k.bits))
	return nil
}
