package messagebus

import (
	"sync"

	"golang.org/x/time/rate"
)

// MaxPerTickPush is the wire-protocol cap on how many messages a single
// outbound frame can carry (§4.8: 4-bit `remaining`, clamped to 15).
const MaxPerTickPush = 15

// ChatRateLimit bounds chat throughput per session, mirroring the
// teacher's per-player event-log limiter (event_log.go).
const ChatRateLimit = 5 // messages per second
const ChatRateBurst = 5

// MessageBus owns the persistent log (replayed to new joiners) and mirrors
// every append into the replay-only stream for the replay file writer.
// Cursor is monotonically increasing and never reused.
type MessageBus struct {
	mu          sync.RWMutex
	persistent  []Message
	replayOnly  []Message
	nextCursor  uint32
	chatLimiter sync.Map // map[int]*rate.Limiter, keyed by session index
}

// New creates an empty message bus.
func New() *MessageBus {
	return &MessageBus{}
}

// Append adds msg to both streams, assigns it the next cursor, and returns
// the assigned cursor.
func (b *MessageBus) Append(msg Message) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg.Cursor = b.nextCursor
	b.nextCursor++
	b.persistent = append(b.persistent, msg)
	b.replayOnly = append(b.replayOnly, msg)
	return msg.Cursor
}

// AppendChat appends a chat message, subject to the per-session rate
// limiter. Returns false if the sender is being rate limited (§7 does not
// classify this as an error; callers should simply drop the chat).
func (b *MessageBus) AppendChat(sender int, text string) (uint32, bool) {
	if sender != ServerSender && !b.allowChat(sender) {
		return 0, false
	}
	return b.Append(Message{Kind: KindChat, ChatSender: sender, ChatText: text}), true
}

func (b *MessageBus) allowChat(session int) bool {
	limiter := b.chatLimiterFor(session)
	return limiter.Allow()
}

func (b *MessageBus) chatLimiterFor(session int) *rate.Limiter {
	if v, ok := b.chatLimiter.Load(session); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(ChatRateLimit, ChatRateBurst)
	actual, _ := b.chatLimiter.LoadOrStore(session, l)
	return actual.(*rate.Limiter)
}

// AppendGoal appends a goal message.
func (b *MessageBus) AppendGoal(team, scorer, assist int) uint32 {
	return b.Append(Message{Kind: KindGoal, GoalTeam: team, GoalScorer: scorer, GoalAssist: assist})
}

// AppendPlayerUpdate appends a player-update message.
func (b *MessageBus) AppendPlayerUpdate(name string, session int, hasObject bool, slot, team int, inServer bool) uint32 {
	return b.Append(Message{
		Kind:         KindPlayerUpdate,
		PUName:       name,
		PUSession:    session,
		PUHasObject:  hasObject,
		PUObjectSlot: slot,
		PUTeam:       team,
		PUInServer:   inServer,
	})
}

// Len returns the number of messages in the persistent log.
func (b *MessageBus) Len() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.persistent))
}

// Slice returns up to MaxPerTickPush messages starting at from, clamped to
// the log length (§8 I6: known_msgpos + remaining <= len, remaining <= 15).
func (b *MessageBus) Slice(from uint32) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := uint32(len(b.persistent))
	if from >= n {
		return nil
	}
	end := from + MaxPerTickPush
	if end > n {
		end = n
	}
	out := make([]Message, end-from)
	copy(out, b.persistent[from:end])
	return out
}

// ReplayPending returns replay-only messages appended since pos and the
// new position, used by the replay writer to track replay_msg_pos.
func (b *MessageBus) ReplayPending(pos uint32) ([]Message, uint32) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := uint32(len(b.replayOnly))
	if pos >= n {
		return nil, pos
	}
	out := make([]Message, n-pos)
	copy(out, b.replayOnly[pos:])
	return out, n
}
