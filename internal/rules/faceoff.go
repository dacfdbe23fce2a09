package rules

import "icehockey/internal/objmodel"

// AllowedFaceoffLabels is the default set of position labels a rink
// offers for faceoff assignment; exact rink geometry/roster composition is
// out of scope (§1), so a standard hockey lineup is used.
var AllowedFaceoffLabels = []objmodel.FaceoffPosition{"C", "LW", "RW", "LD", "RD", "G"}

// teamSpawnOffset returns the team-specific offset applied on top of a
// faceoff spot's base position for a given label — mirrored across center
// ice for the two teams, per §4.4 "team-specific red/blue position offset".
func teamSpawnOffset(team objmodel.Team, label objmodel.FaceoffPosition) objmodel.Vec3 {
	base := labelOffset(label)
	if team == objmodel.TeamBlue {
		base.Z = -base.Z
	}
	return base
}

func labelOffset(label objmodel.FaceoffPosition) objmodel.Vec3 {
	switch label {
	case "C":
		return objmodel.Vec3{X: 0, Z: 3}
	case "LW":
		return objmodel.Vec3{X: -6, Z: 5}
	case "RW":
		return objmodel.Vec3{X: 6, Z: 5}
	case "LD":
		return objmodel.Vec3{X: -3, Z: 9}
	case "RD":
		return objmodel.Vec3{X: 3, Z: 9}
	case "G":
		return objmodel.Vec3{X: 0, Z: 18}
	default:
		return objmodel.Vec3{}
	}
}

func teamSpawnRotation(team objmodel.Team) objmodel.Rot {
	if team == objmodel.TeamRed {
		return objmodel.Rot{Forward: objmodel.Vec3{Z: -1}, Up: objmodel.Vec3{Y: 1}}
	}
	return objmodel.Rot{Forward: objmodel.Vec3{Z: 1}, Up: objmodel.Vec3{Y: 1}}
}

// FaceoffProcedure runs the stoppage-to-play faceoff sequence (§4.4):
// clear the pool, spawn a puck at the spot, spawn every candidate's
// skater at their assigned slot/offset/rotation, clear icing, and set
// offside by comparing the puck's position against the offensive blue
// lines.
func FaceoffProcedure(pool *objmodel.ObjectPool, rink objmodel.RinkGeometry, state *MatchState, candidates []FaceoffCandidate, cylinderPuck bool, skip func(session int)) {
	spot := state.NextFaceoffSpot
	assignments := AssignPositions(candidates, AllowedFaceoffLabels)

	pool.ClearAll()

	puckPos := objmodel.Vec3{X: spot.Position.X, Y: spot.Position.Y + 1.5, Z: spot.Position.Z}
	pool.CreatePuck(puckPos, objmodel.Rot{Up: objmodel.Vec3{Y: 1}}, cylinderPuck)

	for _, a := range assignments {
		offset := teamSpawnOffset(a.Team, a.Label)
		pos := objmodel.Vec3{X: spot.Position.X + offset.X, Y: spot.Position.Y, Z: spot.Position.Z + offset.Z}
		rot := teamSpawnRotation(a.Team)
		mass := defaultSkaterMass
		if _, ok := pool.CreateSkater(a.Team, pos, rot, a.Hand, a.SessionIndex, a.Label, mass); !ok {
			// §7: object-pool exhaustion on faceoff aborts that specific
			// spawn; the session is left spectating.
			if skip != nil {
				skip(a.SessionIndex)
			}
		}
	}

	state.Icing = IcingStatus{Kind: IcingNone}

	switch {
	case rink.InOffensiveZone(objmodel.TeamRed, puckPos):
		state.Offside = OffsideStatus{Kind: OffsideInOffensiveZone, Team: objmodel.TeamRed}
	case rink.InOffensiveZone(objmodel.TeamBlue, puckPos):
		state.Offside = OffsideStatus{Kind: OffsideInOffensiveZone, Team: objmodel.TeamBlue}
	default:
		state.Offside = OffsideStatus{Kind: OffsideInNeutralZone}
	}
}

const defaultSkaterMass = 80.0
