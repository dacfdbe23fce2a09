// Package objmodel owns the fixed-slot world object model: the 32-slot
// object pool, puck and skater variants, and the rink geometry used to
// decide offensive-zone occupancy. The rigid-body integrator itself is an
// injected collaborator (see PhysicsStepper) — this package owns object
// identity and lifecycle, not the physics math.
package objmodel

import "math"

// MaxSlots is the fixed size of the object pool. Slot indices are stable
// for the lifetime of the object they hold and are what clients reference
// on the wire; a freed slot becomes Empty and may be reused.
const MaxSlots = 32

// Team identifies one of the two sides, or no side at all.
type Team uint8

const (
	TeamRed Team = iota
	TeamBlue
	// TeamSpectator marks a session with no skater on the ice — the Go
	// equivalent of the original server's Option<HQMTeam> == None.
	TeamSpectator
)

// Other returns the opposing team. Calling it on TeamSpectator is a
// programming error in the caller; it returns TeamBlue.
func (t Team) Other() Team {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

// IsPlaying reports whether t is an actual side, as opposed to spectating.
func (t Team) IsPlaying() bool {
	return t == TeamRed || t == TeamBlue
}

// Vec3 is a plain 3-component vector, shared by position and axis fields.
type Vec3 struct {
	X, Y, Z float64
}

// Rot represents a packed two-axis orientation the same way the wire
// protocol does: a forward and an up axis, each itself a Vec3.
type Rot struct {
	Forward Vec3
	Up      Vec3
}

// Hand is the skater's stick-handedness.
type Hand uint8

const (
	HandLeft Hand = iota
	HandRight
)

// ObjectKind tags the variant stored in a slot.
type ObjectKind uint8

const (
	KindEmpty ObjectKind = iota
	KindPuck
	KindSkater
)

// Touch is one entry in a puck's bounded touch history, used for goal
// credit and icing/offside pass-origin resolution.
type Touch struct {
	SessionIndex int
	Team         Team
	TickTime     int
	Position     Vec3
}

// maxTouchHistory bounds the puck touch list; front-push, oldest dropped.
const maxTouchHistory = 16

// Puck is the movable scoring object.
type Puck struct {
	Position              Vec3
	Orientation           Rot
	LinearVelocity        Vec3
	AngularVelocity       Vec3
	CylinderPostCollision bool
	touches               []Touch // front = most recent
}

// PushTouch records a new contact at the front of the touch history,
// dropping the oldest entry once the bound is reached.
func (p *Puck) PushTouch(t Touch) {
	p.touches = append([]Touch{t}, p.touches...)
	if len(p.touches) > maxTouchHistory {
		p.touches = p.touches[:maxTouchHistory]
	}
}

// Touches returns the touch history, most recent first.
func (p *Puck) Touches() []Touch {
	return p.touches
}

// MostRecentToucher returns the front-most touch by the given team, if any.
func (p *Puck) MostRecentToucher(team Team) (Touch, bool) {
	for _, t := range p.touches {
		if t.Team == team {
			return t, true
		}
	}
	return Touch{}, false
}

// NextDistinctToucher returns the next front-most touch by team that is not
// the given session, used to find the assist after the scorer is known.
func (p *Puck) NextDistinctToucher(team Team, excludeSession int) (Touch, bool) {
	for _, t := range p.touches {
		if t.Team == team && t.SessionIndex != excludeSession {
			return t, true
		}
	}
	return Touch{}, false
}

// FrontMostToucher returns the single most recent touch overall, if any.
func (p *Puck) FrontMostToucher() (Touch, bool) {
	if len(p.touches) == 0 {
		return Touch{}, false
	}
	return p.touches[0], true
}

// FaceoffPosition is a rink position label ("C", "LW", "RW", "LD", "RD", "G", ...).
type FaceoffPosition string

// KeySpectate is the input-key bit a client sets to request leaving the ice
// to spectate, or rejoining a team from the spectator list — the Go
// equivalent of the original server's player.input.spectate() bit. The
// filtered original source (hqm_server.rs) tests this bit but never defines
// HQMPlayerInput's bit layout (that lived in hqm_game.rs, not in the
// retrieved sources), so the bit index below is this server's own choice.
const KeySpectate uint32 = 1 << 16

// SkaterInput is the per-tick player input applied before the physics step.
type SkaterInput struct {
	StickAngle float32
	Turn       float32
	Unknown    float32
	FwBw       float32
	StickRotX  float32
	StickRotY  float32
	HeadRot    float32
	BodyRot    float32
	Keys       uint32
	DeltaTime  uint32
}

// CollisionBall is one of a skater's body collision primitives.
type CollisionBall struct {
	Offset Vec3
	Radius float64
}

// Skater is a player-controlled object.
type Skater struct {
	Team                  Team
	Position              Vec3
	Orientation           Rot
	StickPosition         Vec3
	StickOrientation      Rot
	HeadRot               float64
	BodyRot               float64
	Hand                  Hand
	ConnectedPlayerIndex  int
	FaceoffPositionLabel  FaceoffPosition
	CollisionBalls        []CollisionBall
	Mass                  float64
	Input                 SkaterInput
}

// Object is a tagged-variant slot: exactly one of Puck/Skater is non-nil
// when Kind says so; both are nil when Kind == KindEmpty.
type Object struct {
	Kind   ObjectKind
	Puck   *Puck
	Skater *Skater
}

// IsEmpty reports whether the slot currently holds nothing.
func (o Object) IsEmpty() bool { return o.Kind == KindEmpty }

// RinkGeometry holds the constants needed for zone-occupancy projection.
// Concrete dimensions are out of spec scope (treated as an external
// collaborator's constant table); a regulation-sized default is provided.
type RinkGeometry struct {
	Length               float64 // along Z, goal line to goal line
	Width                float64 // along X
	OffensiveBlueLineRed float64 // Z position of red's offensive blue line
	OffensiveBlueLineBlue float64
	BlueLineWidth        float64 // full line thickness; half of it is the "leading edge" offset
	CenterZ              float64
	RedGoalLineZ         float64
	BlueGoalLineZ        float64
}

// DefaultRink returns a regulation-scale rink geometry.
func DefaultRink() RinkGeometry {
	const length = 61.0
	return RinkGeometry{
		Length:                length,
		Width:                 30.0,
		OffensiveBlueLineRed:  length*0.25 + length/2,
		OffensiveBlueLineBlue: -(length*0.25) + length/2,
		BlueLineWidth:         0.3,
		CenterZ:               length / 2,
		RedGoalLineZ:          length,
		BlueGoalLineZ:         0,
	}
}

// offensiveBlueLineZ returns the Z coordinate of team's own offensive blue
// line (the line it must cross to enter the attacking zone).
func (g RinkGeometry) offensiveBlueLineZ(team Team) float64 {
	if team == TeamRed {
		return g.OffensiveBlueLineRed
	}
	return g.OffensiveBlueLineBlue
}

// InOffensiveZone projects a skater's position onto the offensive blue
// line's normal (the rink's Z axis) and checks the sign against the leading
// edge, half the line width, the same projection spec §4.3 describes.
func (g RinkGeometry) InOffensiveZone(team Team, pos Vec3) bool {
	lineZ := g.offensiveBlueLineZ(team)
	half := g.BlueLineWidth / 2
	if team == TeamRed {
		return pos.Z > lineZ+half
	}
	return pos.Z < lineZ-half
}

// AnySkaterInOffensiveZone reports whether at least one of team's skaters
// is already past its offensive blue line.
func AnySkaterInOffensiveZone(geo RinkGeometry, pool *ObjectPool, team Team) bool {
	for i := 0; i < MaxSlots; i++ {
		obj := pool.slots[i]
		if obj.Kind != KindSkater || obj.Skater.Team != team {
			continue
		}
		if geo.InOffensiveZone(team, obj.Skater.Position) {
			return true
		}
	}
	return false
}

// distance is a small helper used by faceoff spawn placement.
func distance(a, b Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
