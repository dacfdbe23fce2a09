// Package rules implements the icing/offside/goal/faceoff state machines,
// the match clock, and shootout progression (§4.3, §4.4, §4.5). Rule
// state is modeled as tagged variants rather than boolean flags so the
// Warning states can carry the captured coordinates (and, for offside, the
// passer's session index) the event handler needs to disambiguate pass
// origin (§9 design note).
package rules

import "icehockey/internal/objmodel"

// IcingKind tags an IcingStatus variant.
type IcingKind uint8

const (
	IcingNone IcingKind = iota
	IcingNotTouched
	IcingWarning
	IcingCalled
)

// IcingStatus is one of {None, NotTouched(team, origin), Warning(team,
// origin), Icing(team)}.
type IcingStatus struct {
	Kind   IcingKind
	Team   objmodel.Team
	Origin objmodel.Vec3
}

// OffsideKind tags an OffsideStatus variant.
type OffsideKind uint8

const (
	OffsideInNeutralZone OffsideKind = iota
	OffsideInOffensiveZone
	OffsideWarning
	OffsideCalled
)

// OffsideStatus is one of {InNeutralZone, InOffensiveZone(team),
// Warning(team, origin, passer), Offside(team)}.
type OffsideStatus struct {
	Kind          OffsideKind
	Team          objmodel.Team
	Origin        objmodel.Vec3
	PasserSession int
}

// FaceoffSpot is a named rink location with a base position; per-team,
// per-position spawn offsets are applied on top of it by the faceoff
// procedure. Exact rink geometry is an external constant
// table (§1 out of scope) — this book supplies deterministic placeholder
// coordinates sufficient to drive the state machine and wire protocol.
type FaceoffSpot struct {
	Name     string
	Position objmodel.Vec3
}

// MatchState is the shared, Server-owned state the rule engine and match
// clock both mutate over the span of one tick (§3 "Match state").
type MatchState struct {
	Period   int
	TickTime int // centiseconds remaining in period
	BreakTime int
	RedScore  int
	BlueScore int
	Paused    bool
	GameOver  bool

	Icing   IcingStatus
	Offside OffsideStatus

	NextFaceoffSpot FaceoffSpot

	Shootout ShootoutState

	// IsIntermissionGoal tags the current break as long-form (post-goal
	// mercy/OT ending) for the outbound frame's break_time gating (§4.8).
	IsIntermissionGoal bool
}

// NewMatchState returns a fresh warmup-period match state.
func NewMatchState() *MatchState {
	return &MatchState{
		Period:          0,
		Offside:         OffsideStatus{Kind: OffsideInNeutralZone},
		NextFaceoffSpot: FaceoffSpot{Name: "center"},
	}
}

// score returns the current score for team.
func (m *MatchState) score(team objmodel.Team) int {
	if team == objmodel.TeamRed {
		return m.RedScore
	}
	return m.BlueScore
}

func (m *MatchState) addScore(team objmodel.Team) {
	if team == objmodel.TeamRed {
		m.RedScore++
	} else {
		m.BlueScore++
	}
}
