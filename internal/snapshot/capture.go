package snapshot

import "icehockey/internal/objmodel"

// Capture builds one tick's Snapshot from the object pool.
func Capture(pool *objmodel.ObjectPool, id uint32, timestamp int64) Snapshot {
	snap := Snapshot{ID: id, Timestamp: timestamp}
	for i := 0; i < objmodel.MaxSlots; i++ {
		snap.Packets[i] = capturePacket(pool.Get(i))
	}
	return snap
}

func capturePacket(obj objmodel.Object) ObjectPacket {
	switch obj.Kind {
	case objmodel.KindPuck:
		p := obj.Puck
		return ObjectPacket{
			Kind: PacketPuck,
			Puck: PuckPacket{
				Position:    QuantizeVec(p.Position, PositionBits),
				Orientation: QuantizeRot(p.Orientation, OrientationBits),
			},
		}
	case objmodel.KindSkater:
		s := obj.Skater
		return ObjectPacket{
			Kind: PacketSkater,
			Skater: SkaterPacket{
				Position:         QuantizeVec(s.Position, PositionBits),
				Orientation:      QuantizeRot(s.Orientation, OrientationBits),
				StickPosition:    QuantizeVec(s.StickPosition, StickPositionBits),
				StickOrientation: QuantizeRot(s.StickOrientation, StickOrientationBits),
				HeadRot:          quantizeAngle16(s.HeadRot),
				BodyRot:          quantizeAngle16(s.BodyRot),
			},
		}
	default:
		return ObjectPacket{Kind: PacketNone}
	}
}
