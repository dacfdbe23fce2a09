package rules

import "icehockey/internal/objmodel"

// ShootoutState tracks the post-overtime shootout sequence (§4.5): teams
// alternate attempts, each attempt's result is appended to that team's
// score pattern, and attacker/goalie assignment rotates through the
// roster. A scored attempt is 'G', a missed one '-'.
type ShootoutState struct {
	Active bool

	AttemptIndex int // 0-based count of attempts taken so far, this team-pair included
	RedStarts    bool

	RedPattern  []byte
	BluePattern []byte

	RedRotationCursor  int
	BlueRotationCursor int
}

// NewShootoutState starts a shootout with redStarts choosing who shoots
// first.
func NewShootoutState(redStarts bool) ShootoutState {
	return ShootoutState{Active: true, RedStarts: redStarts}
}

// shooterForAttempt reports which team shoots on the given 0-based attempt
// index, alternating starting with RedStarts.
func (s *ShootoutState) shooterForAttempt(attempt int) objmodel.Team {
	redShoots := (attempt%2 == 0) == s.RedStarts
	if redShoots {
		return objmodel.TeamRed
	}
	return objmodel.TeamBlue
}

// CurrentShooter returns the team due to shoot next.
func (s *ShootoutState) CurrentShooter() objmodel.Team {
	return s.shooterForAttempt(s.AttemptIndex)
}

// RecordAttempt appends the attempt's outcome to the shooting team's
// pattern, advances the rotation cursor for that team, and advances
// AttemptIndex.
func (s *ShootoutState) RecordAttempt(scored bool) {
	team := s.CurrentShooter()
	mark := byte('-')
	if scored {
		mark = 'G'
	}
	if team == objmodel.TeamRed {
		s.RedPattern = append(s.RedPattern, mark)
		s.RedRotationCursor++
	} else {
		s.BluePattern = append(s.BluePattern, mark)
		s.BlueRotationCursor++
	}
	s.AttemptIndex++
}

// countGoals reports how many 'G' marks a pattern holds.
func countGoals(pattern []byte) int {
	n := 0
	for _, b := range pattern {
		if b == 'G' {
			n++
		}
	}
	return n
}

// roundsComplete reports how many full round-pairs (one attempt per team)
// have been taken so far.
func (s *ShootoutState) roundsComplete() int {
	return s.AttemptIndex / 2
}

// Decided reports whether the shootout has a winner yet, and if so which
// team: a difference becomes mathematically certain once one team has
// scored more goals than the other could still reach given remaining
// attempts in the initial best-of-5 allotment, OR — once the initial 5
// rounds are exhausted tied — the first round-pair boundary (both teams
// having taken an equal number of attempts) where the two patterns'
// goal counts differ (sudden death), per the Open Question resolution
// that extra rounds continue until a difference is seen at a matched
// attempt count.
func (s *ShootoutState) Decided() (objmodel.Team, bool) {
	redGoals := countGoals(s.RedPattern)
	blueGoals := countGoals(s.BluePattern)

	const initialRounds = 5
	if s.roundsComplete() < initialRounds {
		redRemaining := initialRounds - len(s.RedPattern)
		blueRemaining := initialRounds - len(s.BluePattern)
		if redRemaining < 0 {
			redRemaining = 0
		}
		if blueRemaining < 0 {
			blueRemaining = 0
		}
		if redGoals > blueGoals+blueRemaining {
			return objmodel.TeamRed, true
		}
		if blueGoals > redGoals+redRemaining {
			return objmodel.TeamBlue, true
		}
		return objmodel.TeamRed, false
	}

	// Sudden death: only ever check at a matched-attempt boundary.
	if len(s.RedPattern) != len(s.BluePattern) {
		return objmodel.TeamRed, false
	}
	if redGoals == blueGoals {
		return objmodel.TeamRed, false
	}
	if redGoals > blueGoals {
		return objmodel.TeamRed, true
	}
	return objmodel.TeamBlue, true
}

// RotationAttacker returns the session index of the attacking team's next
// shooter, cycling through roster in order; callers supply the ordered
// roster of that team's eligible skaters.
func RotationAttacker(roster []int, cursor int) (int, bool) {
	if len(roster) == 0 {
		return 0, false
	}
	return roster[cursor%len(roster)], true
}
