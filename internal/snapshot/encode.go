package snapshot

import (
	"icehockey/internal/objmodel"
	"icehockey/internal/wire"
)

// wireSkaterType/wirePuckType are the 2-bit type tags used on the wire,
// matching the reference server's layout (skater=0, puck=1).
const (
	wireSkaterType = 0
	wirePuckType   = 1
)

// NoAck is the sentinel acked-id value meaning "this session has not yet
// acknowledged any snapshot" (first frame after JOIN).
const NoAck = 0xFFFFFFFF

// EncodeDeltaBlock writes the snapshot_id, acked_id, and the 32-slot
// object-delta block (§4.6). ackedID is the client-reported acked snapshot
// id (NoAck if none yet), written verbatim. prior is the resolved acked
// snapshot to diff against, or nil when ackedID is NoAck or is stale
// (outside the ring) — §7's stale-ack fallback: every field absolute-encodes.
func EncodeDeltaBlock(w *wire.Writer, current Snapshot, ackedID uint32, prior *Snapshot) {
	w.WriteU32Aligned(current.ID)
	w.WriteU32Aligned(ackedID)

	for i := 0; i < objmodel.MaxSlots; i++ {
		pkt := current.Packets[i]
		var old *ObjectPacket
		if prior != nil && prior.Packets[i].Kind == pkt.Kind {
			old = &prior.Packets[i]
		}
		encodePacket(w, pkt, old)
	}
}

func encodePacket(w *wire.Writer, pkt ObjectPacket, old *ObjectPacket) {
	switch pkt.Kind {
	case PacketPuck:
		w.WriteBits(1, 1)
		w.WriteBits(2, wirePuckType)
		var op *PuckPacket
		if old != nil && old.Kind == PacketPuck {
			op = &old.Puck
		}
		encodePuck(w, pkt.Puck, op)
	case PacketSkater:
		w.WriteBits(1, 1)
		w.WriteBits(2, wireSkaterType)
		var os *SkaterPacket
		if old != nil && old.Kind == PacketSkater {
			os = &old.Skater
		}
		encodeSkater(w, pkt.Skater, os)
	default:
		w.WriteBits(1, 0)
	}
}

func encodePuck(w *wire.Writer, p PuckPacket, old *PuckPacket) {
	var ox, oy, oz, ofwd, oup *uint32
	if old != nil {
		ox, oy, oz = &old.Position.X, &old.Position.Y, &old.Position.Z
		ofwd, oup = &old.Orientation.Forward, &old.Orientation.Up
	}
	w.WritePos(PositionBits, p.Position.X, ox)
	w.WritePos(PositionBits, p.Position.Y, oy)
	w.WritePos(PositionBits, p.Position.Z, oz)
	w.WritePos(OrientationBits, p.Orientation.Forward, ofwd)
	w.WritePos(OrientationBits, p.Orientation.Up, oup)
}

func encodeSkater(w *wire.Writer, s SkaterPacket, old *SkaterPacket) {
	var ox, oy, oz, ofwd, oup *uint32
	var osx, osy, osz, osfwd, osup *uint32
	var ohead, obody *uint32
	if old != nil {
		ox, oy, oz = &old.Position.X, &old.Position.Y, &old.Position.Z
		ofwd, oup = &old.Orientation.Forward, &old.Orientation.Up
		osx, osy, osz = &old.StickPosition.X, &old.StickPosition.Y, &old.StickPosition.Z
		osfwd, osup = &old.StickOrientation.Forward, &old.StickOrientation.Up
		ohead, obody = &old.HeadRot, &old.BodyRot
	}
	w.WritePos(PositionBits, s.Position.X, ox)
	w.WritePos(PositionBits, s.Position.Y, oy)
	w.WritePos(PositionBits, s.Position.Z, oz)
	w.WritePos(OrientationBits, s.Orientation.Forward, ofwd)
	w.WritePos(OrientationBits, s.Orientation.Up, oup)
	w.WritePos(StickPositionBits, s.StickPosition.X, osx)
	w.WritePos(StickPositionBits, s.StickPosition.Y, osy)
	w.WritePos(StickPositionBits, s.StickPosition.Z, osz)
	w.WritePos(StickOrientationBits, s.StickOrientation.Forward, osfwd)
	w.WritePos(StickOrientationBits, s.StickOrientation.Up, osup)
	w.WritePos(RotBits, s.HeadRot, ohead)
	w.WritePos(RotBits, s.BodyRot, obody)
}

// DecodeDeltaBlock reverses EncodeDeltaBlock. lookupPrior resolves a prior
// snapshot id to its packets (e.g. backed by a History ring); it may
// return false to force absolute decoding.
func DecodeDeltaBlock(r *wire.Reader, lookupPrior func(id uint32) (Snapshot, bool)) (snapshotID, ackedID uint32, packets [objmodel.MaxSlots]ObjectPacket) {
	snapshotID = r.ReadU32Aligned()
	ackedID = r.ReadU32Aligned()

	var prior *Snapshot
	if ackedID != NoAck && lookupPrior != nil {
		if snap, ok := lookupPrior(ackedID); ok {
			prior = &snap
		}
	}

	for i := 0; i < objmodel.MaxSlots; i++ {
		var old *ObjectPacket
		if prior != nil {
			old = &prior.Packets[i]
		}
		packets[i] = decodePacket(r, old)
	}
	return
}

func decodePacket(r *wire.Reader, old *ObjectPacket) ObjectPacket {
	present := r.ReadBits(1)
	if present == 0 {
		return ObjectPacket{Kind: PacketNone}
	}
	kind := r.ReadBits(2)
	switch kind {
	case wirePuckType:
		var op *PuckPacket
		if old != nil && old.Kind == PacketPuck {
			op = &old.Puck
		}
		return ObjectPacket{Kind: PacketPuck, Puck: decodePuck(r, op)}
	default:
		var os *SkaterPacket
		if old != nil && old.Kind == PacketSkater {
			os = &old.Skater
		}
		return ObjectPacket{Kind: PacketSkater, Skater: decodeSkater(r, os)}
	}
}

func decodePuck(r *wire.Reader, old *PuckPacket) PuckPacket {
	var ox, oy, oz, ofwd, oup *uint32
	if old != nil {
		ox, oy, oz = &old.Position.X, &old.Position.Y, &old.Position.Z
		ofwd, oup = &old.Orientation.Forward, &old.Orientation.Up
	}
	return PuckPacket{
		Position: QuantizedVec{
			X: r.ReadPos(PositionBits, ox),
			Y: r.ReadPos(PositionBits, oy),
			Z: r.ReadPos(PositionBits, oz),
		},
		Orientation: QuantizedRot{
			Forward: r.ReadPos(OrientationBits, ofwd),
			Up:      r.ReadPos(OrientationBits, oup),
		},
	}
}

func decodeSkater(r *wire.Reader, old *SkaterPacket) SkaterPacket {
	var ox, oy, oz, ofwd, oup *uint32
	var osx, osy, osz, osfwd, osup *uint32
	var ohead, obody *uint32
	if old != nil {
		ox, oy, oz = &old.Position.X, &old.Position.Y, &old.Position.Z
		ofwd, oup = &old.Orientation.Forward, &old.Orientation.Up
		osx, osy, osz = &old.StickPosition.X, &old.StickPosition.Y, &old.StickPosition.Z
		osfwd, osup = &old.StickOrientation.Forward, &old.StickOrientation.Up
		ohead, obody = &old.HeadRot, &old.BodyRot
	}
	return SkaterPacket{
		Position: QuantizedVec{
			X: r.ReadPos(PositionBits, ox),
			Y: r.ReadPos(PositionBits, oy),
			Z: r.ReadPos(PositionBits, oz),
		},
		Orientation: QuantizedRot{
			Forward: r.ReadPos(OrientationBits, ofwd),
			Up:      r.ReadPos(OrientationBits, oup),
		},
		StickPosition: QuantizedVec{
			X: r.ReadPos(StickPositionBits, osx),
			Y: r.ReadPos(StickPositionBits, osy),
			Z: r.ReadPos(StickPositionBits, osz),
		},
		StickOrientation: QuantizedRot{
			Forward: r.ReadPos(StickOrientationBits, osfwd),
			Up:      r.ReadPos(StickOrientationBits, osup),
		},
		HeadRot: r.ReadPos(RotBits, ohead),
		BodyRot: r.ReadPos(RotBits, obody),
	}
}
