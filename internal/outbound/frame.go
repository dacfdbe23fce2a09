// Package outbound assembles the per-tick, per-session outbound UDP frame:
// the game-id resync frame, the main status+object-delta+message frame, and
// the message sub-framing both it and the replay writer share (§4.8).
package outbound

import (
	"icehockey/internal/messagebus"
	"icehockey/internal/rules"
	"icehockey/internal/session"
	"icehockey/internal/snapshot"
	"icehockey/internal/wire"
)

// FrameCommand tags the outbound command byte.
const (
	CommandGameIDSync byte = 0x06
	CommandMain       byte = 0x05
)

// none6 is the 6-bit all-ones sentinel used for absent session/slot
// references within message framing (mirroring "sender all-ones for
// server" for chat, §4.8).
const none6 = 0x3F

// RulesStateBits packs the rule-engine warning/called flags into the
// protocol-2+ rules_state bitmap (§4.8).
func RulesStateBits(m *rules.MatchState) uint32 {
	var bits uint32
	if m.Offside.Kind == rules.OffsideWarning {
		bits |= 1
	}
	if m.Icing.Kind == rules.IcingWarning {
		bits |= 2
	}
	if m.Offside.Kind == rules.OffsideCalled {
		bits |= 4
	}
	if m.Icing.Kind == rules.IcingCalled {
		bits |= 8
	}
	return bits
}

// GameHeader carries the fields common to every main frame (§4.8).
type GameHeader struct {
	GameID           uint32
	GameStep         uint32
	GameOver         bool
	RedScore         uint8
	BlueScore        uint8
	Time             uint16
	BreakTime        uint16 // only non-zero when IsIntermissionGoal
	Period           uint8
	ViewTargetSession uint8
}

// BuildGameIDSync writes the 0x06 resync frame sent when a session's last
// known game_id doesn't match the server's current one.
func BuildGameIDSync(gameID uint32) []byte {
	w := wire.NewWriter()
	w.WriteBytesAligned(session.Magic[:])
	w.WriteByteAligned(CommandGameIDSync)
	w.WriteU32Aligned(gameID)
	return w.Bytes()
}

// BuildMainFrame assembles the full 0x05 frame for one session: header,
// optional deltatime echo, optional rules_state bitmap (protocol>=2, read
// from match), the object delta block, and the trailing message suffix.
func BuildMainFrame(s *session.Session, header GameHeader, match *rules.MatchState, snap snapshot.Snapshot, prior *snapshot.Snapshot, bus *messagebus.MessageBus) []byte {
	w := wire.NewWriter()
	w.WriteBytesAligned(session.Magic[:])
	w.WriteByteAligned(CommandMain)
	w.WriteU32Aligned(header.GameID)
	w.WriteU32Aligned(header.GameStep)
	w.WriteBits(1, boolBit(header.GameOver))
	w.WriteBits(8, uint32(header.RedScore))
	w.WriteBits(8, uint32(header.BlueScore))
	w.WriteBits(16, uint32(header.Time))
	w.WriteBits(16, uint32(header.BreakTime))
	w.WriteBits(8, uint32(header.Period))
	w.WriteBits(8, uint32(header.ViewTargetSession))

	if s.ClientProtocol >= session.ClientProtoPing {
		w.WriteU32Aligned(s.Input.DeltaTime)
	}
	if s.ClientProtocol >= session.ClientProtoRules {
		w.WriteU32Aligned(RulesStateBits(match))
	}

	ackedID := uint32(session.NoAck)
	if s.HasAcked {
		ackedID = s.KnownSnapshotID
	}
	snapshot.EncodeDeltaBlock(w, snap, ackedID, prior)

	from := s.KnownMsgPos
	msgs := bus.Slice(from)
	remaining := len(msgs)
	if remaining > messagebus.MaxPerTickPush {
		remaining = messagebus.MaxPerTickPush
	}
	w.WriteBits(4, uint32(remaining))
	w.WriteBits(16, from)
	for i := 0; i < remaining; i++ {
		writeMessage(w, msgs[i])
	}

	return w.Bytes()
}

// BuildReplayFrame assembles one replay-file frame (§6): the 0x05 command
// byte (no magic prefix — replay frames are never sent over the wire),
// the game header, optional deltatime/rules_state fields gated by
// protocol, the object delta block, and the suffix of messages appended
// since the last frame was written (the caller tracks replay_msg_pos and
// passes exactly the unwritten slice).
// Returns the frame bytes and the number of pendingMsgs actually written,
// so the caller can advance replay_msg_pos by exactly that many.
func BuildReplayFrame(protocol session.ClientProtocolVersion, deltaTime uint32, header GameHeader, match *rules.MatchState, snap snapshot.Snapshot, prior *snapshot.Snapshot, pendingMsgs []messagebus.Message) ([]byte, int) {
	w := wire.NewWriter()
	w.WriteByteAligned(CommandMain)
	w.WriteU32Aligned(header.GameID)
	w.WriteU32Aligned(header.GameStep)
	w.WriteBits(1, boolBit(header.GameOver))
	w.WriteBits(8, uint32(header.RedScore))
	w.WriteBits(8, uint32(header.BlueScore))
	w.WriteBits(16, uint32(header.Time))
	w.WriteBits(16, uint32(header.BreakTime))
	w.WriteBits(8, uint32(header.Period))
	w.WriteBits(8, uint32(header.ViewTargetSession))

	if protocol >= session.ClientProtoPing {
		w.WriteU32Aligned(deltaTime)
	}
	if protocol >= session.ClientProtoRules {
		w.WriteU32Aligned(RulesStateBits(match))
	}

	snapshot.EncodeDeltaBlock(w, snap, session.NoAck, prior)

	remaining := len(pendingMsgs)
	if remaining > messagebus.MaxPerTickPush {
		remaining = messagebus.MaxPerTickPush
	}
	w.WriteBits(4, uint32(remaining))
	w.WriteBits(16, 0)
	for i := 0; i < remaining; i++ {
		writeMessage(w, pendingMsgs[i])
	}

	return w.Bytes(), remaining
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func writeMessage(w *wire.Writer, m messagebus.Message) {
	switch m.Kind {
	case messagebus.KindChat:
		w.WriteBits(6, 2)
		sender := uint32(none6)
		if m.ChatSender != messagebus.ServerSender {
			sender = uint32(m.ChatSender)
		}
		w.WriteBits(6, sender)
		text := []byte(m.ChatText)
		if len(text) > 63 {
			text = text[:63]
		}
		w.WriteBits(6, uint32(len(text)))
		for _, c := range text {
			w.WriteBits(7, uint32(c&0x7F))
		}
	case messagebus.KindGoal:
		w.WriteBits(6, 1)
		w.WriteBits(2, uint32(m.GoalTeam))
		w.WriteBits(6, sentinel6(m.GoalScorer))
		w.WriteBits(6, sentinel6(m.GoalAssist))
	case messagebus.KindPlayerUpdate:
		w.WriteBits(6, 0)
		w.WriteBits(6, uint32(m.PUSession))
		w.WriteBits(1, boolBit(m.PUInServer))
		w.WriteBits(2, uint32(m.PUTeam))
		w.WriteBits(6, sentinel6(m.PUObjectSlot))
		writeName31(w, m.PUName)
	}
}

func sentinel6(v int) uint32 {
	if v < 0 {
		return none6
	}
	return uint32(v) & none6
}

func writeName31(w *wire.Writer, name string) {
	runes := []byte(name)
	for i := 0; i < 31; i++ {
		var c byte
		if i < len(runes) {
			c = runes[i] & 0x7F
		}
		w.WriteBits(7, uint32(c))
	}
}
