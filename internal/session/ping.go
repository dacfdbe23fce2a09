package session

import "icehockey/internal/snapshot"

// MeasurePing implements §4.6's ping sampling: when a session's client-ack
// has moved forward since the last UPDATE, resolve the acked snapshot
// against the history ring and, if it's still retained, push the elapsed
// time since it was captured onto the session's ping ring.
func MeasurePing(s *Session, history *snapshot.History, previousAcked uint32, previouslyAcked bool, nowNanos int64) {
	if !s.HasAcked {
		return
	}
	if previouslyAcked && s.KnownSnapshotID == previousAcked {
		return
	}
	snap, ok := history.Acked(s.KnownSnapshotID)
	if !ok {
		return
	}
	elapsedSeconds := float64(nowNanos-snap.Timestamp) / 1e9
	if elapsedSeconds < 0 {
		return
	}
	s.PushPing(elapsedSeconds)
}
