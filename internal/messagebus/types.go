// Package messagebus implements the append-only message log: chat, goal,
// and player-update entries, shared by value across the persistent log
// (replayed to new joiners), every session's own cursor into that log, and
// the replay-only stream (§3, §9).
package messagebus

// Kind tags a Message variant.
type Kind uint8

const (
	KindChat Kind = iota
	KindGoal
	KindPlayerUpdate
)

// ChatSender is an optional session index; -1 means the server itself.
const ServerSender = -1

// Message is one immutable, append-only log entry. The contract is
// immutability after append: once assigned a Cursor, a Message's fields
// never change (§9 design note).
type Message struct {
	Cursor uint32
	Kind   Kind

	// Chat
	ChatSender int // ServerSender for server-originated messages
	ChatText   string

	// Goal
	GoalTeam    int
	GoalScorer  int // -1 if none
	GoalAssist  int // -1 if none

	// PlayerUpdate
	PUName      string
	PUSession   int
	PUHasObject bool
	PUObjectSlot int
	PUTeam       int
	PUInServer   bool
}
