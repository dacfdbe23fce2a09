package outbound

import (
	"net"
	"testing"

	"icehockey/internal/messagebus"
	"icehockey/internal/rules"
	"icehockey/internal/session"
	"icehockey/internal/snapshot"
	"icehockey/internal/wire"
)

func newSession() *session.Session {
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9000}
	s := session.NewSession(0, addr, "Tester")
	s.ClientProtocol = session.ClientProtoRules
	s.HasAcked = true
	s.KnownSnapshotID = session.NoAck
	return s
}

func TestBuildGameIDSyncLayout(t *testing.T) {
	buf := BuildGameIDSync(7)
	r := wire.NewReader(buf)
	header := r.ReadBytesAligned(4)
	if string(header) != "Hock" {
		t.Fatalf("expected Hock magic, got %q", header)
	}
	if r.ReadByteAligned() != CommandGameIDSync {
		t.Fatal("expected command 0x06")
	}
	if r.ReadU32Aligned() != 7 {
		t.Fatal("expected echoed game id 7")
	}
}

func TestBuildMainFrameRoundTripsHeaderAndMessages(t *testing.T) {
	s := newSession()
	bus := messagebus.New()
	bus.AppendChat(messagebus.ServerSender, "hi")

	state := rules.NewMatchState()
	history := snapshot.NewHistory()
	snap := history.Push(snapshot.Snapshot{})

	header := GameHeader{GameID: 3, GameStep: 99, RedScore: 2, BlueScore: 1, Time: 500, Period: 2, ViewTargetSession: 0}
	buf := BuildMainFrame(s, header, state, snap, nil, bus)

	r := wire.NewReader(buf)
	magic := r.ReadBytesAligned(4)
	if string(magic) != "Hock" {
		t.Fatal("expected magic")
	}
	if r.ReadByteAligned() != CommandMain {
		t.Fatal("expected command 0x05")
	}
	if r.ReadU32Aligned() != 3 {
		t.Fatal("expected game_id 3")
	}
	if r.ReadU32Aligned() != 99 {
		t.Fatal("expected game_step 99")
	}
	if r.ReadBits(1) != 0 {
		t.Fatal("expected game_over false")
	}
	if r.ReadBits(8) != 2 {
		t.Fatal("expected red_score 2")
	}
	if r.ReadBits(8) != 1 {
		t.Fatal("expected blue_score 1")
	}
	if r.ReadBits(16) != 500 {
		t.Fatal("expected time 500")
	}
	if r.ReadBits(16) != 0 {
		t.Fatal("expected break_time 0 (not an intermission goal)")
	}
	if r.ReadBits(8) != 2 {
		t.Fatal("expected period 2")
	}
	if r.ReadBits(8) != 0 {
		t.Fatal("expected view_target_session 0")
	}
	// deltatime echo (protocol >= ping)
	r.ReadU32Aligned()
	// rules_state bitmap (protocol >= rules)
	rulesBits := r.ReadU32Aligned()
	if rulesBits != 0 {
		t.Fatalf("expected zero rules_state for a fresh match, got %d", rulesBits)
	}

	snapshotID, ackedID, _ := snapshot.DecodeDeltaBlock(r, nil)
	if snapshotID != snap.ID {
		t.Fatalf("expected decoded snapshot id %d, got %d", snap.ID, snapshotID)
	}
	if ackedID != session.NoAck {
		t.Fatalf("expected decoded acked id NoAck, got %d", ackedID)
	}

	remaining := r.ReadBits(4)
	if remaining != 1 {
		t.Fatalf("expected 1 trailing message, got %d", remaining)
	}
	knownPos := r.ReadBits(16)
	if knownPos != 0 {
		t.Fatalf("expected known_msgpos 0, got %d", knownPos)
	}
	msgType := r.ReadBits(6)
	if msgType != 2 {
		t.Fatalf("expected chat message type 2, got %d", msgType)
	}
}

func TestBuildReplayFrameHasNoMagicAndCapsMessages(t *testing.T) {
	state := rules.NewMatchState()
	history := snapshot.NewHistory()
	snap := history.Push(snapshot.Snapshot{})

	var pending []messagebus.Message
	for i := 0; i < 20; i++ {
		pending = append(pending, messagebus.Message{Kind: messagebus.KindChat, ChatSender: messagebus.ServerSender, ChatText: "x"})
	}

	buf, written := BuildReplayFrame(session.ClientProtoRules, 0, GameHeader{}, state, snap, nil, pending)
	if written != messagebus.MaxPerTickPush {
		t.Fatalf("expected replay frame to cap at %d messages, wrote %d", messagebus.MaxPerTickPush, written)
	}
	if buf[0] != CommandMain {
		t.Fatalf("expected replay frame to start with 0x05, got %#x", buf[0])
	}
}

func TestRulesStateBitsReflectsWarningsAndCalls(t *testing.T) {
	state := rules.NewMatchState()
	state.Offside.Kind = rules.OffsideWarning
	bits := RulesStateBits(state)
	if bits&1 == 0 {
		t.Fatal("expected offside_warning bit set")
	}

	state2 := rules.NewMatchState()
	state2.Icing.Kind = rules.IcingCalled
	bits2 := RulesStateBits(state2)
	if bits2&8 == 0 {
		t.Fatal("expected Icing bit set")
	}
}
