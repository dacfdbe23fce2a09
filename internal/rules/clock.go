package rules

import "icehockey/internal/config"

// MatchClock advances the period/time/break countdown, handles
// intermission, and starts a new game once a finished game's break elapses
// (§4.4). Mercy-rule game-over and shootout scoring are set by RuleEngine;
// the clock only reacts to GameOver. Countdown units are centiseconds.
type MatchClock struct {
	cfg config.MatchConfig
}

// NewMatchClock constructs a clock bound to the given match timing config.
func NewMatchClock(cfg config.MatchConfig) *MatchClock {
	return &MatchClock{cfg: cfg}
}

// periodLength returns the countdown length for the given period: the
// configured period length, or the overtime/shootout length once
// period > 3.
func (c *MatchClock) periodLength(period int) int {
	if period > 3 {
		return c.cfg.TimeOvertime
	}
	return c.cfg.TimePeriod
}

// PeriodLength exposes periodLength for callers outside the package that
// need to start a period directly (the warmup-to-period-1 transition).
func (c *MatchClock) PeriodLength(period int) int {
	return c.periodLength(period)
}

// Advance runs one tick of the match clock. onNewGame is invoked when a
// finished game's intermission elapses; onFaceoff is invoked whenever a
// stoppage's break elapses and play is about to resume.
func (c *MatchClock) Advance(state *MatchState, onNewGame func(), onFaceoff func()) {
	if state.Paused {
		return
	}

	if state.BreakTime > 0 {
		state.BreakTime--
		if state.BreakTime == 0 {
			switch {
			case state.GameOver:
				if onNewGame != nil {
					onNewGame()
				}
			case state.TickTime == 0:
				state.TickTime = c.periodLength(state.Period)
				if onFaceoff != nil {
					onFaceoff()
				}
			default:
				if onFaceoff != nil {
					onFaceoff()
				}
			}
		}
		return
	}

	// Warmup (period == 0) cadence is driven by the mini-game scheduler,
	// not the period/intermission machinery below.
	if state.Period == 0 {
		return
	}

	if state.TickTime > 0 {
		state.TickTime--
		if state.TickTime == 0 {
			if state.Period != 4 {
				state.Period++
			}
			state.BreakTime = c.cfg.TimeIntermission
		}
	}
}

// NewGame resets scores, period, and rule state for a fresh match, keeping
// the same configuration.
func (c *MatchClock) NewGame(state *MatchState) {
	*state = *NewMatchState()
	state.TickTime = c.cfg.TimeWarmup
}
