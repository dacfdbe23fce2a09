// Package snapshot implements the per-tick delta-encoded object snapshot:
// capturing the object pool into a compact packet form, retaining a ring of
// recent snapshots, and encoding/decoding the bit-packed object-delta block
// that both outbound client frames and replay frames embed (§3, §4.6).
package snapshot

import "icehockey/internal/objmodel"

// PacketKind tags an ObjectPacket variant in memory (None=0, Skater=1,
// Puck=2); the 2-bit wire tag is a separate encoding (Skater=0, Puck=1).
type PacketKind uint8

const (
	PacketNone PacketKind = iota
	PacketSkater
	PacketPuck
)

// Bit widths from §3/§6 — wire-compatibility mandated, not tunable.
const (
	PositionBits        = 17
	OrientationBits     = 31
	StickPositionBits   = 13
	StickOrientationBits = 25
	RotBits             = 16
)

// QuantizedVec is a position quantized into three PositionBits (or
// StickPositionBits) fields.
type QuantizedVec struct {
	X, Y, Z uint32
}

// QuantizedRot is an orientation packed into two OrientationBits (or
// StickOrientationBits) axis fields.
type QuantizedRot struct {
	Forward, Up uint32
}

// PuckPacket is the quantized wire form of a Puck.
type PuckPacket struct {
	Position    QuantizedVec
	Orientation QuantizedRot
}

// SkaterPacket is the quantized wire form of a Skater.
type SkaterPacket struct {
	Position         QuantizedVec
	Orientation      QuantizedRot
	StickPosition    QuantizedVec // 3x13 bits
	StickOrientation QuantizedRot // 2x25 bits
	HeadRot          uint32       // 16 bits
	BodyRot          uint32       // 16 bits
}

// ObjectPacket is the tagged wire form of one slot.
type ObjectPacket struct {
	Kind   PacketKind
	Puck   PuckPacket
	Skater SkaterPacket
}

// Snapshot is one tick's worth of all MaxSlots object packets.
type Snapshot struct {
	ID        uint32 // monotonically increasing, wraps at 2^32
	Timestamp int64  // wall-clock Unix nanoseconds at capture, for ping measurement
	Packets   [objmodel.MaxSlots]ObjectPacket
}
