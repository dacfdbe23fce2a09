// Package session implements the UDP session layer: the fixed-size session
// table, datagram command dispatch (REQUEST_INFO/JOIN/UPDATE/EXIT), the
// banlist, and per-session ping/inactivity bookkeeping (§4.7).
package session

import (
	"net"
	"time"

	"icehockey/internal/objmodel"
)

// MaxSessions is the hard cap on concurrent sessions (§7).
const MaxSessions = 64

// ProtocolVersion is the only client protocol version this server accepts
// on JOIN (§4.7).
const ProtocolVersion = 55

// InactivityLimit is the tick count after which an idle session is force
// removed (§5 "Cancellation").
const InactivityLimit = 500

// PingRingCapacity bounds the per-session ping sample ring (§4.6).
const PingRingCapacity = 100

// ClientProtocolVersion tags which UPDATE command variant a session's
// client last used, selecting optional trailing fields (§4.7).
type ClientProtocolVersion uint8

const (
	ClientProtoBase ClientProtocolVersion = iota // command 0x04
	ClientProtoPing                              // command 0x08
	ClientProtoRules                             // command 0x10
)

// MuteState gates whether a session's chat reaches other clients (§1, §7).
type MuteState uint8

const (
	NotMuted MuteState = iota
	ShadowMuted // sender believes the message sent; nobody else receives it
	Muted       // message dropped; the sender gets no notice, same as ShadowMuted
)

// Session is one connected client's server-side state.
type Session struct {
	Index      int
	Addr       *net.UDPAddr
	Name       string
	Team       objmodel.Team
	ObjectSlot int // -1 when spectating
	InServer   bool

	ClientProtocol ClientProtocolVersion
	GameID         uint32
	Input          objmodel.SkaterInput
	LastKeys       uint32 // previous tick's Input.Keys, for edge-triggering KeySpectate
	Hand           objmodel.Hand

	KnownSnapshotID uint32 // last snapshot_id the client acked; meaningful only while HasAcked is true
	HasAcked        bool
	KnownMsgPos     uint32 // client's acked message_cursor

	ChatRep    int // -1 until the first chat rep is seen
	HasChatRep bool

	Inactivity int // ticks since last UPDATE

	PingRing []float64 // front = most recent, seconds
	IsAdmin  bool

	Mute               MuteState
	ViewTargetSession  int // session index the spectator camera follows; defaults to self
	TeamSwitchCooldown int // ticks remaining before another team switch is allowed
	Mass               float64
}

// NewSession constructs a freshly joined session.
func NewSession(index int, addr *net.UDPAddr, name string) *Session {
	return &Session{
		Index:             index,
		Addr:              addr,
		Name:              name,
		Team:              objmodel.TeamSpectator,
		ObjectSlot:        -1,
		InServer:          true,
		ChatRep:           -1,
		ViewTargetSession: index,
		Mass:              80.0,
	}
}

// PushPing records a new round-trip sample, evicting the oldest once the
// ring is full (§4.6 "bounded ping ring, capacity 100, eviction FIFO").
func (s *Session) PushPing(sample float64) {
	s.PingRing = append([]float64{sample}, s.PingRing...)
	if len(s.PingRing) > PingRingCapacity {
		s.PingRing = s.PingRing[:PingRingCapacity]
	}
}

// AveragePing returns the mean of the retained ping samples, or 0 if none.
func (s *Session) AveragePing() float64 {
	if len(s.PingRing) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.PingRing {
		sum += p
	}
	return sum / float64(len(s.PingRing))
}

// Clock is a seam for ping measurement timestamps; production wiring passes
// time.Now, tests can substitute a fixed clock.
type Clock func() time.Time
