package messagebus

import "testing"

func TestAppendAssignsMonotonicCursor(t *testing.T) {
	b := New()
	c1, _ := b.AppendChat(ServerSender, "Alice joined")
	c2 := b.AppendGoal(0, 5, 7)
	if c2 != c1+1 {
		t.Fatalf("expected monotonic cursor, got %d then %d", c1, c2)
	}
}

func TestSliceClampsToBoundsAndCap(t *testing.T) {
	b := New()
	for i := 0; i < 20; i++ {
		b.AppendGoal(0, 0, -1)
	}
	msgs := b.Slice(0)
	if len(msgs) != MaxPerTickPush {
		t.Fatalf("expected slice capped at %d, got %d", MaxPerTickPush, len(msgs))
	}
	tailMsgs := b.Slice(b.Len())
	if len(tailMsgs) != 0 {
		t.Fatalf("expected empty slice past the end, got %d", len(tailMsgs))
	}
}

func TestChatRateLimitDropsExcess(t *testing.T) {
	b := New()
	allowed := 0
	for i := 0; i < ChatRateBurst+5; i++ {
		if _, ok := b.AppendChat(3, "spam"); ok {
			allowed++
		}
	}
	if allowed > ChatRateBurst {
		t.Fatalf("expected rate limiter to cap burst at %d, allowed %d", ChatRateBurst, allowed)
	}
}

func TestReplayPendingAdvances(t *testing.T) {
	b := New()
	b.AppendChat(ServerSender, "hi")
	pending, pos := b.ReplayPending(0)
	if len(pending) != 1 || pos != 1 {
		t.Fatalf("expected 1 pending message at pos 1, got %d at %d", len(pending), pos)
	}
	pending2, pos2 := b.ReplayPending(pos)
	if len(pending2) != 0 || pos2 != 1 {
		t.Fatalf("expected no new pending messages, got %d at %d", len(pending2), pos2)
	}
}
