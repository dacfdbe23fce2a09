package session

import (
	"net"
	"testing"

	"icehockey/internal/config"
	"icehockey/internal/messagebus"
	"icehockey/internal/wire"
)

func testAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
}

func buildJoinDatagram(name string) []byte {
	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(byte(CommandJoin))
	w.WriteBits(8, ProtocolVersion)
	w.WriteBytesAlignedPadded(32, []byte(name))
	return w.Bytes()
}

func newDispatcher() (*Dispatcher, *Table, *messagebus.MessageBus) {
	table := NewTable()
	cfg := config.DefaultServer()
	bus := messagebus.New()
	return NewDispatcher(table, &cfg, bus), table, bus
}

func TestJoinAllocatesSessionAndBroadcastsUpdate(t *testing.T) {
	d, table, bus := newDispatcher()
	addr := testAddr(9001)

	d.HandleDatagram(buildJoinDatagram("Gordie"), addr)

	if table.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", table.Count())
	}
	s := table.ByAddr(addr)
	if s == nil || s.Name != "Gordie" {
		t.Fatalf("expected session named Gordie, got %+v", s)
	}

	msgs := bus.Slice(0)
	if len(msgs) != 1 || msgs[0].Kind != messagebus.KindPlayerUpdate || !msgs[0].PUInServer {
		t.Fatalf("expected a PlayerUpdate(in_server=true) broadcast, got %+v", msgs)
	}
}

func TestJoinRejectedWhenBanned(t *testing.T) {
	d, table, _ := newDispatcher()
	addr := testAddr(9002)
	table.Ban(addr)

	d.HandleDatagram(buildJoinDatagram("Bannedguy"), addr)

	if table.Count() != 0 {
		t.Fatalf("expected banned join to be rejected, got count %d", table.Count())
	}
}

func TestJoinTruncatesNameAtNulAndDefaultsEmptyToNoname(t *testing.T) {
	d, table, _ := newDispatcher()
	addr := testAddr(9003)

	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(byte(CommandJoin))
	w.WriteBits(8, ProtocolVersion)
	raw := make([]byte, 32)
	w.WriteBytesAlignedPadded(32, raw) // all-NUL name
	d.HandleDatagram(w.Bytes(), addr)

	s := table.ByAddr(addr)
	if s == nil || s.Name != "Noname" {
		t.Fatalf("expected fallback name Noname, got %+v", s)
	}
}

func TestDuplicateAddressJoinIgnored(t *testing.T) {
	d, table, _ := newDispatcher()
	addr := testAddr(9004)
	d.HandleDatagram(buildJoinDatagram("First"), addr)
	d.HandleDatagram(buildJoinDatagram("Second"), addr)

	if table.Count() != 1 {
		t.Fatalf("expected duplicate join to be ignored, got count %d", table.Count())
	}
	if table.ByAddr(addr).Name != "First" {
		t.Fatal("expected original session to survive duplicate join")
	}
}

func TestUpdateParsesInputAndAck(t *testing.T) {
	d, table, _ := newDispatcher()
	addr := testAddr(9005)
	d.HandleDatagram(buildJoinDatagram("Player"), addr)

	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(byte(CommandUpdatePing))
	w.WriteU32Aligned(42) // game_id
	for i := 0; i < 8; i++ {
		w.WriteF32Aligned(float32(i) * 0.5)
	}
	w.WriteU32Aligned(7)     // keys
	w.WriteU32Aligned(16)    // deltatime (protocol >= 1)
	w.WriteU32Aligned(NoAck) // acked snapshot id
	w.WriteU16Aligned(0)     // known_msgpos
	w.WriteBits(1, 0)        // no chat

	d.HandleDatagram(w.Bytes(), addr)

	s := table.ByAddr(addr)
	if s.GameID != 42 {
		t.Fatalf("expected game_id 42, got %d", s.GameID)
	}
	if s.Input.Keys != 7 {
		t.Fatalf("expected keys bitmask 7, got %d", s.Input.Keys)
	}
	if s.ClientProtocol != ClientProtoPing {
		t.Fatalf("expected ClientProtoPing, got %v", s.ClientProtocol)
	}
	if !s.HasAcked || s.KnownSnapshotID != NoAck {
		t.Fatalf("expected acked NoAck sentinel, got %d hasAcked=%v", s.KnownSnapshotID, s.HasAcked)
	}
	if s.Inactivity != 0 {
		t.Fatalf("expected inactivity reset to 0, got %d", s.Inactivity)
	}
}

func TestChatDedupeByRep(t *testing.T) {
	d, table, bus := newDispatcher()
	addr := testAddr(9006)
	d.HandleDatagram(buildJoinDatagram("Chatter"), addr)

	send := func(rep uint32, text string) {
		w := wire.NewWriter()
		w.WriteBytesAligned(Magic[:])
		w.WriteByteAligned(byte(CommandUpdateBase))
		w.WriteU32Aligned(1)
		for i := 0; i < 8; i++ {
			w.WriteF32Aligned(0)
		}
		w.WriteU32Aligned(0)
		w.WriteU32Aligned(NoAck)
		w.WriteU16Aligned(0)
		w.WriteBits(1, 1)
		w.WriteBits(3, rep)
		w.WriteBits(8, uint32(len(text)))
		w.WriteBytesAligned([]byte(text))
		d.HandleDatagram(w.Bytes(), addr)
	}

	send(1, "hello")
	send(1, "hello-retransmit") // same rep: deduped, ignored
	send(2, "world")

	s := table.ByAddr(addr)
	_ = s
	msgs := bus.Slice(0)
	chatCount := 0
	for _, m := range msgs {
		if m.Kind == messagebus.KindChat {
			chatCount++
		}
	}
	if chatCount != 2 {
		t.Fatalf("expected 2 distinct chat messages (dedup on repeat rep), got %d", chatCount)
	}
}

func TestAdminCommandRoutedNotAppendedAsChat(t *testing.T) {
	d, table, bus := newDispatcher()
	addr := testAddr(9007)
	d.HandleDatagram(buildJoinDatagram("Admin"), addr)

	var gotCmd, gotArgs string
	var gotSession int
	d.AdminDispatch = func(sessionIndex int, cmd, args string) {
		gotSession = sessionIndex
		gotCmd = cmd
		gotArgs = args
	}

	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(byte(CommandUpdateBase))
	w.WriteU32Aligned(1)
	for i := 0; i < 8; i++ {
		w.WriteF32Aligned(0)
	}
	w.WriteU32Aligned(0)
	w.WriteU32Aligned(NoAck)
	w.WriteU16Aligned(0)
	w.WriteBits(1, 1)
	w.WriteBits(3, 1)
	text := "/mute 3"
	w.WriteBits(8, uint32(len(text)))
	w.WriteBytesAligned([]byte(text))
	d.HandleDatagram(w.Bytes(), addr)

	if gotCmd != "mute" || gotArgs != "3" {
		t.Fatalf("expected admin dispatch mute/3, got cmd=%q args=%q", gotCmd, gotArgs)
	}
	if gotSession != table.ByAddr(addr).Index {
		t.Fatal("expected admin dispatch with the sender's session index")
	}
	for _, m := range bus.Slice(0) {
		if m.Kind == messagebus.KindChat {
			t.Fatal("expected admin command not to be appended as a chat message")
		}
	}
}

func TestExitRemovesSessionAndBroadcasts(t *testing.T) {
	d, table, bus := newDispatcher()
	addr := testAddr(9008)
	d.HandleDatagram(buildJoinDatagram("Leaving"), addr)

	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(byte(CommandExit))
	d.HandleDatagram(w.Bytes(), addr)

	if table.Count() != 0 {
		t.Fatalf("expected session removed on exit, got count %d", table.Count())
	}
	msgs := bus.Slice(0)
	last := msgs[len(msgs)-1]
	if last.Kind != messagebus.KindPlayerUpdate || last.PUInServer {
		t.Fatalf("expected trailing PlayerUpdate(in_server=false), got %+v", last)
	}
}

func TestRequestInfoRespondsWithServerSummary(t *testing.T) {
	d, _, _ := newDispatcher()
	addr := testAddr(9009)

	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(byte(CommandRequestInfo))
	w.WriteBits(8, 55)
	w.WriteU32Aligned(1234)

	reply := d.HandleDatagram(w.Bytes(), addr)
	if reply == nil {
		t.Fatal("expected a REQUEST_INFO reply")
	}

	r := wire.NewReader(reply)
	header := r.ReadBytesAligned(4)
	if header[0] != 'H' {
		t.Fatal("expected Hock magic in reply")
	}
	if r.ReadByteAligned() != 0x01 {
		t.Fatal("expected reply command byte 0x01")
	}
	if r.ReadBits(8) != ProtocolVersion {
		t.Fatal("expected echoed protocol version 55")
	}
	if r.ReadU32Aligned() != 1234 {
		t.Fatal("expected echoed ping token")
	}
}

func TestUnbanAllowsRejoinAfterBan(t *testing.T) {
	table := NewTable()
	addr := testAddr(9011)

	table.Ban(addr)
	if !table.IsBanned(addr) {
		t.Fatalf("expected address banned")
	}

	table.Unban(addr.IP.String())
	if table.IsBanned(addr) {
		t.Fatalf("expected address unbanned")
	}

	if table.Join(addr, "Returner") == nil {
		t.Fatalf("expected join to succeed after unban")
	}
}

func TestInactivityTimeoutFlagsStaleSessions(t *testing.T) {
	table := NewTable()
	addr := testAddr(9010)
	table.Join(addr, "Idle")

	var timedOut []*Session
	for i := 0; i < InactivityLimit+1; i++ {
		timedOut = table.TickInactivity()
	}
	if len(timedOut) != 1 {
		t.Fatalf("expected exactly one timed-out session, got %d", len(timedOut))
	}
}
