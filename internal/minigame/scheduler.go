// Package minigame implements the between-match voting envelope and the
// warmup/run/cleanup lifecycle shared by every mini-game script. Individual
// game rules are out of scope (§1) — this package owns scheduling only: when
// a vote opens, who's eligible, when a script's run phase starts and ends,
// and the gravity-tweak hook a running script may use.
package minigame

import (
	"math/rand"
)

// Phase tags the scheduler's current state.
type Phase uint8

const (
	PhaseVoting Phase = iota
	PhaseWarmup
	PhaseRunning
	PhaseCleanup
)

// Script describes one selectable mini-game: its display name and the
// gravity scalar it wants applied for the duration of its run phase.
type Script struct {
	Name    string
	Gravity float64
}

// Ballot tracks one session's vote for a script index into Candidates.
type Ballot struct {
	SessionIndex int
	ScriptIndex  int
}

// Scheduler drives the voting → warmup → running → cleanup envelope (§2
// "MiniGameScheduler: between-match voting, per-game warmup/run/cleanup
// envelope"). Random draws (script tie-break, eligible-player selection)
// use a seeded generator so a replay can reproduce them deterministically
// given the same seed.
type Scheduler struct {
	rng *rand.Rand

	Phase      Phase
	Candidates []Script
	Ballots    []Ballot

	Active Script

	votingTicksRemaining  int
	warmupTicksRemaining  int
	runningTicksRemaining int
	cleanupTicksRemaining int

	DefaultGravity float64
}

// NewScheduler constructs a scheduler seeded for deterministic replay.
func NewScheduler(seed int64, candidates []Script, defaultGravity float64) *Scheduler {
	return &Scheduler{
		rng:            rand.New(rand.NewSource(seed)),
		Phase:          PhaseVoting,
		Candidates:     candidates,
		DefaultGravity: defaultGravity,
	}
}

// OpenVote resets the ballot box and starts a voting window of the given
// tick length.
func (s *Scheduler) OpenVote(durationTicks int) {
	s.Phase = PhaseVoting
	s.Ballots = nil
	s.votingTicksRemaining = durationTicks
}

// CastVote records sessionIndex's vote for the candidate at scriptIndex,
// replacing any prior vote from the same session.
func (s *Scheduler) CastVote(sessionIndex, scriptIndex int) {
	if scriptIndex < 0 || scriptIndex >= len(s.Candidates) {
		return
	}
	for i, b := range s.Ballots {
		if b.SessionIndex == sessionIndex {
			s.Ballots[i].ScriptIndex = scriptIndex
			return
		}
	}
	s.Ballots = append(s.Ballots, Ballot{SessionIndex: sessionIndex, ScriptIndex: scriptIndex})
}

// tally returns the winning candidate index, breaking ties uniformly at
// random via the scheduler's seeded generator.
func (s *Scheduler) tally() int {
	if len(s.Candidates) == 0 {
		return -1
	}
	counts := make([]int, len(s.Candidates))
	for _, b := range s.Ballots {
		counts[b.ScriptIndex]++
	}
	best := counts[0]
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	var leaders []int
	for i, c := range counts {
		if c == best {
			leaders = append(leaders, i)
		}
	}
	return leaders[s.rng.Intn(len(leaders))]
}

// Advance runs one tick of the scheduler's phase countdown, invoking the
// provided hooks when a phase transition fires. applyGravity is called with
// the gravity scalar to apply for the new phase (World.Gravity, per §3).
func (s *Scheduler) Advance(warmupTicks, runningTicks, cleanupTicks int, applyGravity func(float64), onRunStart func(Script)) {
	switch s.Phase {
	case PhaseVoting:
		if s.votingTicksRemaining > 0 {
			s.votingTicksRemaining--
			return
		}
		winner := s.tally()
		if winner < 0 {
			s.votingTicksRemaining = warmupTicks
			return
		}
		s.Active = s.Candidates[winner]
		s.Phase = PhaseWarmup
		s.warmupTicksRemaining = warmupTicks
		applyGravity(s.DefaultGravity)

	case PhaseWarmup:
		if s.warmupTicksRemaining > 1 {
			s.warmupTicksRemaining--
			return
		}
		s.Phase = PhaseRunning
		s.runningTicksRemaining = runningTicks
		applyGravity(s.Active.Gravity)
		if onRunStart != nil {
			onRunStart(s.Active)
		}

	case PhaseRunning:
		if s.runningTicksRemaining > 1 {
			s.runningTicksRemaining--
			return
		}
		s.Phase = PhaseCleanup
		s.cleanupTicksRemaining = cleanupTicks
		applyGravity(s.DefaultGravity)

	case PhaseCleanup:
		if s.cleanupTicksRemaining > 1 {
			s.cleanupTicksRemaining--
			return
		}
		s.OpenVote(warmupTicks)
	}
}

// SelectEligible returns a random sample of up to n session indices from
// candidates, used by scripts that need a subset of connected players
// (e.g. a shootout rotation seed or a limited-entrant mini-game).
func (s *Scheduler) SelectEligible(candidates []int, n int) []int {
	if n >= len(candidates) {
		out := make([]int, len(candidates))
		copy(out, candidates)
		return out
	}
	shuffled := make([]int, len(candidates))
	copy(shuffled, candidates)
	s.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}
