package usercmd

import "github.com/forgenet/arenacore/internal/bitio"

// keyMask narrows a scrambling key down to the width of the field it is
// XORed against, mirroring the reference's per-field key masking.
func keyMask(key int32, bits int) int32 {
	return key & ((1 << uint(bits)) - 1)
}

// DeltaEncode writes a delta-keyed usercmd. key is the connection's base
// scrambling key (the server id); DeltaEncode XORs to.ServerTime into it
// itself. XORing every field against the combined key makes the wire encoding of a replayed
// or forged command differ from a legitimate one even when the underlying
// values are identical, without constituting real cryptographic
// authentication (see the non-goals around game-packet auth).
func DeltaEncode(w *bitio.Message, key int32, from, to *Command) {
	// The short path assumes a non-negative, sub-256 delta: serverTime is
	// monotonic in practice, and requiring >= 0 here (stricter than the
	// reference) keeps the unsigned 8-bit wire value unambiguous on decode.
	if delta := to.ServerTime - from.ServerTime; delta >= 0 && delta < 256 {
		w.WriteBits(1, 1)
		w.WriteBits(to.ServerTime-from.ServerTime, 8)
	} else {
		w.WriteBits(0, 1)
		w.WriteBits(to.ServerTime, 32)
	}

	if *from == *to {
		w.WriteBits(0, 1)
		return
	}
	w.WriteBits(1, 1)

	k := key ^ to.ServerTime
	writeDeltaKey(w, k, int32(from.Angles[0]), int32(to.Angles[0]), 16)
	writeDeltaKey(w, k, int32(from.Angles[1]), int32(to.Angles[1]), 16)
	writeDeltaKey(w, k, int32(from.Angles[2]), int32(to.Angles[2]), 16)
	writeDeltaKey(w, k, int32(from.Forwardmove), int32(to.Forwardmove), 8)
	writeDeltaKey(w, k, int32(from.Rightmove), int32(to.Rightmove), 8)
	writeDeltaKey(w, k, int32(from.Upmove), int32(to.Upmove), 8)
	writeDeltaKey(w, k, int32(from.Buttons), int32(to.Buttons), 16)
	writeDeltaKey(w, k, int32(from.Weapon), int32(to.Weapon), 8)
}

func writeDeltaKey(w *bitio.Message, key int32, oldV, newV int32, bits int) {
	if oldV == newV {
		w.WriteBits(0, 1)
		return
	}
	w.WriteBits(1, 1)
	w.WriteBits(newV^keyMask(key, bits), bits)
}

func readDeltaKey(r *bitio.Message, key int32, oldV int32, bits int) int32 {
	if r.ReadBits(1) == 0 {
		return oldV
	}
	return r.ReadBits(bits) ^ keyMask(key, bits)
}

// DeltaDecode reads a delta-keyed usercmd against from, using the same key
// the encoder used.
func DeltaDecode(r *bitio.Message, key int32, from *Command) *Command {
	cp := *from
	to := &cp

	if r.ReadBits(1) != 0 {
		to.ServerTime = from.ServerTime + r.ReadBits(8)
	} else {
		to.ServerTime = r.ReadBits(32)
	}

	if r.ReadBits(1) == 0 {
		return to
	}

	k := key ^ to.ServerTime
	to.Angles[0] = int16(readDeltaKey(r, k, int32(from.Angles[0]), 16))
	to.Angles[1] = int16(readDeltaKey(r, k, int32(from.Angles[1]), 16))
	to.Angles[2] = int16(readDeltaKey(r, k, int32(from.Angles[2]), 16))
	to.Forwardmove = int8(readDeltaKey(r, k, int32(from.Forwardmove), 8))
	to.Rightmove = int8(readDeltaKey(r, k, int32(from.Rightmove), 8))
	to.Upmove = int8(readDeltaKey(r, k, int32(from.Upmove), 8))
	to.Buttons = uint16(readDeltaKey(r, k, int32(from.Buttons), 16))
	to.Weapon = uint8(readDeltaKey(r, k, int32(from.Weapon), 8))

	return to
}
