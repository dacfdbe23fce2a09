package minigame

import "testing"

func TestVotingTallyPicksMajority(t *testing.T) {
	s := NewScheduler(1, []Script{{Name: "puck-rain", Gravity: 0.5}, {Name: "low-grav", Gravity: 0.1}}, 1.0)
	s.OpenVote(0)
	s.CastVote(1, 0)
	s.CastVote(2, 0)
	s.CastVote(3, 1)

	var gravityApplied float64
	s.Advance(5, 10, 3, func(g float64) { gravityApplied = g }, nil)

	if s.Phase != PhaseWarmup {
		t.Fatalf("expected PhaseWarmup after tally, got %v", s.Phase)
	}
	if s.Active.Name != "puck-rain" {
		t.Fatalf("expected puck-rain to win majority vote, got %s", s.Active.Name)
	}
	if gravityApplied != s.DefaultGravity {
		t.Fatalf("expected default gravity during warmup, got %v", gravityApplied)
	}
}

func TestPhaseEnvelopeAdvancesThroughRunAndCleanup(t *testing.T) {
	s := NewScheduler(2, []Script{{Name: "only", Gravity: 2.0}}, 1.0)
	s.OpenVote(0)
	s.CastVote(1, 0)

	var started bool
	var runGravity float64
	s.Advance(1, 1, 1, func(float64) {}, nil) // tally -> warmup
	s.Advance(1, 1, 1, func(g float64) { runGravity = g }, func(Script) { started = true })

	if s.Phase != PhaseRunning {
		t.Fatalf("expected PhaseRunning, got %v", s.Phase)
	}
	if !started {
		t.Fatal("expected onRunStart to fire")
	}
	if runGravity != 2.0 {
		t.Fatalf("expected script gravity 2.0 applied, got %v", runGravity)
	}

	s.Advance(1, 1, 1, func(float64) {}, nil) // running -> cleanup
	if s.Phase != PhaseCleanup {
		t.Fatalf("expected PhaseCleanup, got %v", s.Phase)
	}

	s.Advance(1, 1, 1, func(float64) {}, nil) // cleanup -> voting
	if s.Phase != PhaseVoting {
		t.Fatalf("expected cycle back to PhaseVoting, got %v", s.Phase)
	}
}

func TestSelectEligibleCapsAtN(t *testing.T) {
	s := NewScheduler(3, nil, 1.0)
	out := s.SelectEligible([]int{1, 2, 3, 4, 5}, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(out))
	}
}
