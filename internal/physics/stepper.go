// Package physics provides the default objmodel.PhysicsStepper
// implementation: a fixed-timestep Euler integrator in the style of the
// teacher's projectile position/velocity update, extended with the puck/
// skater collision and zone-crossing detection the rule engine consumes.
//
// The wire protocol and object model treat the integrator as an injected
// collaborator (objmodel.PhysicsStepper); this package is the concrete
// implementation cmd/server wires in, not a requirement of the object
// model itself.
package physics

import (
	"math"

	"icehockey/internal/objmodel"
)

// dt is the fixed simulation timestep, matching the 10ms/100Hz tick rate.
const dt = 0.01

const (
	puckRadius   = 0.08
	touchRadius  = 0.9 // skater stick reach used for puck touch detection
	netHalfWidth = 1.83
	netHeight    = 1.22
	maxSpeed     = 12.0
)

// Stepper is a deterministic, dependency-free rigid-body integrator. It
// keeps no state across ticks other than the per-puck zone membership
// needed to turn a position check into an edge-triggered
// EventPuckEnteredOffensiveZone/EventPuckLeftOffensiveZone transition.
type Stepper struct {
	inOffensiveZone map[int]bool // puck slot -> zone membership, last tick
}

// New returns a ready-to-use Stepper.
func New() *Stepper {
	return &Stepper{inOffensiveZone: make(map[int]bool)}
}

// SimulateStep implements objmodel.PhysicsStepper. It integrates every
// puck's linear velocity under gravity, moves skaters from their per-tick
// input, clamps pucks to the rink bounds (skaters are not clamped), and
// emits the events the
// rule engine needs: touches, zone transitions, goal-line crossings, and
// net entries.
func (s *Stepper) SimulateStep(pool *objmodel.ObjectPool, gravity float64) []objmodel.SimulationEvent {
	var events []objmodel.SimulationEvent
	rink := objmodel.DefaultRink()

	pool.ForEach(func(idx int, obj objmodel.Object) {
		switch obj.Kind {
		case objmodel.KindPuck:
			events = append(events, s.stepPuck(idx, obj.Puck, rink, gravity)...)
		case objmodel.KindSkater:
			stepSkater(obj.Skater)
		}
	})

	pool.ForEach(func(puckIdx int, obj objmodel.Object) {
		if obj.Kind != objmodel.KindPuck {
			return
		}
		pool.ForEach(func(skaterIdx int, other objmodel.Object) {
			if other.Kind != objmodel.KindSkater {
				return
			}
			if distance(obj.Puck.Position, other.Skater.Position) <= touchRadius+puckRadius {
				obj.Puck.PushTouch(objmodel.Touch{
					SessionIndex: other.Skater.ConnectedPlayerIndex,
					Team:         other.Skater.Team,
					Position:     obj.Puck.Position,
				})
				events = append(events, objmodel.SimulationEvent{
					Kind:       objmodel.EventPuckTouch,
					Team:       other.Skater.Team,
					PuckSlot:   puckIdx,
					SkaterSlot: skaterIdx,
				})
			}
		})
	})

	return events
}

func (s *Stepper) stepPuck(idx int, p *objmodel.Puck, rink objmodel.RinkGeometry, gravity float64) []objmodel.SimulationEvent {
	var events []objmodel.SimulationEvent

	p.LinearVelocity.Y += gravity * dt
	p.Position.X += p.LinearVelocity.X * dt
	p.Position.Y += p.LinearVelocity.Y * dt
	p.Position.Z += p.LinearVelocity.Z * dt

	if p.Position.Y < 0 {
		p.Position.Y = 0
		p.LinearVelocity.Y = -p.LinearVelocity.Y * 0.3
	}
	clampSpeed(&p.LinearVelocity)

	halfWidth := rink.Width / 2
	if p.Position.X < -halfWidth || p.Position.X > halfWidth {
		p.Position.X = clampAbs(p.Position.X, halfWidth)
		p.LinearVelocity.X = -p.LinearVelocity.X * 0.7
	}

	for _, team := range [...]objmodel.Team{objmodel.TeamRed, objmodel.TeamBlue} {
		now := rink.InOffensiveZone(team, p.Position)
		key := idx*2 + int(team)
		was := s.inOffensiveZone[key]
		if now && !was {
			events = append(events, objmodel.SimulationEvent{Kind: objmodel.EventPuckEnteredOffensiveZone, Team: team, PuckSlot: idx})
		} else if !now && was {
			events = append(events, objmodel.SimulationEvent{Kind: objmodel.EventPuckLeftOffensiveZone, Team: team, PuckSlot: idx})
		}
		s.inOffensiveZone[key] = now
	}

	if p.Position.Z <= 0 || p.Position.Z >= rink.Length {
		scoringTeam := objmodel.TeamBlue
		goalLineZ := rink.BlueGoalLineZ
		if p.Position.Z >= rink.Length {
			scoringTeam = objmodel.TeamRed
			goalLineZ = rink.RedGoalLineZ
		}
		events = append(events, objmodel.SimulationEvent{Kind: objmodel.EventPuckPassedGoalLine, Team: scoringTeam, PuckSlot: idx})

		inNet := math.Abs(p.Position.X) <= netHalfWidth && p.Position.Y <= netHeight
		if inNet {
			events = append(events, objmodel.SimulationEvent{Kind: objmodel.EventPuckEnteredNet, Team: scoringTeam, PuckSlot: idx})
		}
		p.Position.Z = clampAbs(p.Position.Z-goalLineZ, rink.Length/2) + goalLineZ
	}

	if p.Position.Z <= 0 {
		events = append(events, objmodel.SimulationEvent{Kind: objmodel.EventPuckEnteredOtherHalf, Team: objmodel.TeamBlue, PuckSlot: idx})
	} else if p.Position.Z >= rink.CenterZ {
		events = append(events, objmodel.SimulationEvent{Kind: objmodel.EventPuckEnteredOtherHalf, Team: objmodel.TeamRed, PuckSlot: idx})
	}

	return events
}

// stepSkater applies the per-tick input the session layer decoded,
// in the teacher's direction-normalize-then-scale style (see
// projectile.go's NewProjectile direction math).
func stepSkater(sk *objmodel.Skater) {
	const skateSpeed = 8.0

	angle := float64(sk.Input.StickAngle)
	fwbw := float64(sk.Input.FwBw)
	turn := float64(sk.Input.Turn)

	sk.Position.X += math.Sin(angle) * fwbw * skateSpeed * dt
	sk.Position.Z += math.Cos(angle) * fwbw * skateSpeed * dt
	sk.BodyRot += turn * dt
}

func clampSpeed(v *objmodel.Vec3) {
	speed := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if speed > maxSpeed {
		scale := maxSpeed / speed
		v.X *= scale
		v.Y *= scale
		v.Z *= scale
	}
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func distance(a, b objmodel.Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
