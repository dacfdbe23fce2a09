package admincmd

import (
	"net"
	"testing"

	"icehockey/internal/messagebus"
	"icehockey/internal/rules"
	"icehockey/internal/session"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *session.Table, *messagebus.MessageBus, *session.Session) {
	t.Helper()
	table := session.NewTable()
	bus := messagebus.New()
	match := rules.NewMatchState()
	d := New(table, bus, match)

	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9000}
	s := table.Join(addr, "Admin")
	return d, table, bus, s
}

func lastChat(t *testing.T, bus *messagebus.MessageBus) string {
	t.Helper()
	msgs := bus.Slice(0)
	if len(msgs) == 0 {
		t.Fatal("expected at least one bus message")
	}
	return msgs[len(msgs)-1].ChatText
}

func TestPrivilegedCommandRejectedWithoutAdmin(t *testing.T) {
	d, _, bus, s := newTestDispatcher(t)
	s.IsAdmin = false

	d.Dispatch(s.Index, "pause", "")

	if got := lastChat(t, bus); got != "Please log in before using that command" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestPrivilegedCommandAllowedForAdmin(t *testing.T) {
	d, _, _, s := newTestDispatcher(t)
	s.IsAdmin = true

	d.Dispatch(s.Index, "pause", "")

	if !d.match.Paused {
		t.Fatal("expected match to be paused")
	}
}

func TestHelpAndLoginAreUnprivileged(t *testing.T) {
	d, _, bus, s := newTestDispatcher(t)
	s.IsAdmin = false

	d.Dispatch(s.Index, "help", "")
	if got := lastChat(t, bus); got == "Please log in before using that command" {
		t.Fatal("expected help to be reachable without admin")
	}

	d.Dispatch(s.Index, "login", "secret")
	if got := lastChat(t, bus); got == "Please log in before using that command" {
		t.Fatal("expected login to be reachable without admin")
	}
}

func TestKickRemovesTargetSession(t *testing.T) {
	d, table, _, admin := newTestDispatcher(t)
	admin.IsAdmin = true

	target := table.Join(&net.UDPAddr{IP: net.ParseIP("127.0.0.2"), Port: 9001}, "Victim")

	d.Dispatch(admin.Index, "kick", itoa(target.Index))

	if table.Get(target.Index) != nil {
		t.Fatal("expected target session to be removed")
	}
}

func TestBanAlsoBlocksRejoin(t *testing.T) {
	d, table, _, admin := newTestDispatcher(t)
	admin.IsAdmin = true

	victimAddr := &net.UDPAddr{IP: net.ParseIP("127.0.0.3"), Port: 9002}
	target := table.Join(victimAddr, "Victim")

	d.Dispatch(admin.Index, "ban", itoa(target.Index))

	if !table.IsBanned(victimAddr) {
		t.Fatal("expected victim's address to be banned")
	}
	if table.Join(victimAddr, "Victim") != nil {
		t.Fatal("expected banned address to be rejected on rejoin")
	}
}

func TestMuteSetsSessionMuteState(t *testing.T) {
	d, table, _, admin := newTestDispatcher(t)
	admin.IsAdmin = true

	target := table.Join(&net.UDPAddr{IP: net.ParseIP("127.0.0.4"), Port: 9003}, "Chatty")

	d.Dispatch(admin.Index, "mute", itoa(target.Index))

	if target.Mute != session.Muted {
		t.Fatalf("expected target to be muted, got %v", target.Mute)
	}
}

func TestUnknownCommandRejectedGracefully(t *testing.T) {
	d, _, bus, admin := newTestDispatcher(t)
	admin.IsAdmin = true

	d.Dispatch(admin.Index, "nonsense", "")

	if got := lastChat(t, bus); got != "Unknown command: /nonsense" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestCommandRateLimited(t *testing.T) {
	d, _, _, admin := newTestDispatcher(t)

	allowed := 0
	for i := 0; i < 20; i++ {
		if d.allow(admin.Index) {
			allowed++
		}
	}
	if allowed >= 20 {
		t.Fatal("expected rate limiter to reject some rapid-fire attempts")
	}
	if allowed < commandRateBurst {
		t.Fatalf("expected at least the burst allowance (%d) through, got %d", commandRateBurst, allowed)
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}
