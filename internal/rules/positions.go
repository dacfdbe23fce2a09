package rules

import "icehockey/internal/objmodel"

// FaceoffCandidate is one player eligible for a faceoff assignment.
type FaceoffCandidate struct {
	SessionIndex   int
	Team           objmodel.Team
	PreferredLabel objmodel.FaceoffPosition
	Hand           objmodel.Hand
}

// AssignedPosition is the resolved outcome for one candidate.
type AssignedPosition struct {
	SessionIndex int
	Team         objmodel.Team
	Label        objmodel.FaceoffPosition
	Hand         objmodel.Hand
}

// preferredFirst is the preference order for the second assignment pass:
// "C" is preferred when available, per §4.4.
const preferredFirst = objmodel.FaceoffPosition("C")

// AssignPositions deterministically assigns faceoff labels to candidates,
// per team, given the rink's allowed labels (§4.4 "Position assignment"):
// first pass gives each player their preferred label if it's available;
// second pass assigns the remaining players the first available label
// (preferring "C"); if none remain, reuse the player's preferred label or
// default to "C".
func AssignPositions(candidates []FaceoffCandidate, allowed []objmodel.FaceoffPosition) []AssignedPosition {
	out := make([]AssignedPosition, 0, len(candidates))

	for _, team := range []objmodel.Team{objmodel.TeamRed, objmodel.TeamBlue} {
		teamCandidates := filterTeam(candidates, team)
		out = append(out, assignTeam(teamCandidates, allowed)...)
	}
	return out
}

func filterTeam(candidates []FaceoffCandidate, team objmodel.Team) []FaceoffCandidate {
	var out []FaceoffCandidate
	for _, c := range candidates {
		if c.Team == team {
			out = append(out, c)
		}
	}
	return out
}

func assignTeam(candidates []FaceoffCandidate, allowed []objmodel.FaceoffPosition) []AssignedPosition {
	taken := make(map[objmodel.FaceoffPosition]bool, len(allowed))
	assigned := make([]AssignedPosition, len(candidates))
	unassigned := make([]bool, len(candidates))

	// First pass: preferred label if available.
	for i, c := range candidates {
		if labelAvailable(c.PreferredLabel, allowed, taken) {
			assigned[i] = AssignedPosition{SessionIndex: c.SessionIndex, Team: c.Team, Label: c.PreferredLabel, Hand: c.Hand}
			taken[c.PreferredLabel] = true
		} else {
			unassigned[i] = true
		}
	}

	// Second pass: first available label, preferring "C"; else reuse the
	// preferred label; else default to "C".
	ordered := orderedWithPreferredFirst(allowed)
	for i, c := range candidates {
		if !unassigned[i] {
			continue
		}
		label, ok := firstAvailable(ordered, taken)
		if !ok {
			label = c.PreferredLabel
			if label == "" {
				label = preferredFirst
			}
		}
		taken[label] = true
		assigned[i] = AssignedPosition{SessionIndex: c.SessionIndex, Team: c.Team, Label: label, Hand: c.Hand}
	}

	return assigned
}

func labelAvailable(label objmodel.FaceoffPosition, allowed []objmodel.FaceoffPosition, taken map[objmodel.FaceoffPosition]bool) bool {
	if label == "" || taken[label] {
		return false
	}
	for _, a := range allowed {
		if a == label {
			return true
		}
	}
	return false
}

func orderedWithPreferredFirst(allowed []objmodel.FaceoffPosition) []objmodel.FaceoffPosition {
	out := make([]objmodel.FaceoffPosition, 0, len(allowed))
	for _, a := range allowed {
		if a == preferredFirst {
			out = append(out, a)
		}
	}
	for _, a := range allowed {
		if a != preferredFirst {
			out = append(out, a)
		}
	}
	return out
}

func firstAvailable(ordered []objmodel.FaceoffPosition, taken map[objmodel.FaceoffPosition]bool) (objmodel.FaceoffPosition, bool) {
	for _, a := range ordered {
		if !taken[a] {
			return a, true
		}
	}
	return "", false
}
