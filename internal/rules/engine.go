package rules

import (
	"icehockey/internal/config"
	"icehockey/internal/messagebus"
	"icehockey/internal/objmodel"
)

// RuleEngine consumes SimulationEvents in deterministic order and mutates
// MatchState plus the object pool's puck touch histories (§4.3). It
// borrows the world/pool mutably for the span of one tick only.
type RuleEngine struct {
	cfg   config.RuleConfig
	match config.MatchConfig
}

// NewRuleEngine constructs a rule engine with the given policy configuration.
func NewRuleEngine(cfg config.RuleConfig, match config.MatchConfig) *RuleEngine {
	return &RuleEngine{cfg: cfg, match: match}
}

// isNoop reports whether a rule tick must be a no-op per §4.3.
func isNoop(state *MatchState) bool {
	if state.Period == 0 || state.TickTime == 0 || state.BreakTime > 0 || state.Paused {
		return true
	}
	if state.Icing.Kind == IcingCalled || state.Offside.Kind == OffsideCalled {
		return true
	}
	return false
}

// HandleEvents processes one tick's worth of SimulationEvents against the
// object pool and match state, mutating both and appending any resulting
// Goal/Chat messages to the bus.
func (e *RuleEngine) HandleEvents(events []objmodel.SimulationEvent, pool *objmodel.ObjectPool, rink objmodel.RinkGeometry, state *MatchState, bus *messagebus.MessageBus, tickTime int) {
	if isNoop(state) {
		return
	}

	for _, ev := range events {
		switch ev.Kind {
		case objmodel.EventPuckEnteredNet:
			e.handlePuckEnteredNet(ev, pool, state, bus)
		case objmodel.EventPuckTouch:
			e.handlePuckTouch(ev, pool, state, bus, tickTime)
		case objmodel.EventPuckEnteredOtherHalf:
			e.handlePuckEnteredOtherHalf(ev, pool, state)
		case objmodel.EventPuckPassedGoalLine:
			e.handlePuckPassedGoalLine(ev, pool, state, bus)
		case objmodel.EventPuckEnteredOffensiveZone:
			e.handlePuckEnteredOffensiveZone(ev, pool, rink, state, bus)
		case objmodel.EventPuckLeftOffensiveZone:
			e.handlePuckLeftOffensiveZone(state, bus)
		}

		// Once a call lands, spec's no-op gate takes over for the rest of
		// this tick's events too.
		if isNoop(state) {
			break
		}
	}

	// "After processing, if offside is Warning but no attacker remains in
	// the offensive zone, drop to InOffensiveZone and wave off."
	if state.Offside.Kind == OffsideWarning && !objmodel.AnySkaterInOffensiveZone(rink, pool, state.Offside.Team) {
		state.Offside = OffsideStatus{Kind: OffsideInOffensiveZone, Team: state.Offside.Team}
		bus.AppendChat(messagebus.ServerSender, "Offside waved off")
	}
}

func (e *RuleEngine) handlePuckEnteredNet(ev objmodel.SimulationEvent, pool *objmodel.ObjectPool, state *MatchState, bus *messagebus.MessageBus) {
	team := ev.Team

	if state.Offside.Kind == OffsideWarning && state.Offside.Team == team {
		// Convert the prior pass into an offside call: no goal.
		e.callOffside(team, state.Offside.Origin, state, bus)
		return
	}
	if state.Offside.Kind == OffsideCalled {
		return
	}

	e.creditGoal(team, ev.PuckSlot, pool, state, bus)
}

func (e *RuleEngine) creditGoal(team objmodel.Team, puckSlot int, pool *objmodel.ObjectPool, state *MatchState, bus *messagebus.MessageBus) {
	puck, ok := pool.Puck(puckSlot)
	if !ok {
		return
	}

	scorer := -1
	assist := -1
	if touch, ok := puck.MostRecentToucher(team); ok {
		scorer = touch.SessionIndex
		if a, ok := puck.NextDistinctToucher(team, scorer); ok {
			assist = a.SessionIndex
		}
	}

	if state.Period > 3 {
		e.creditShootoutAttempt(scorer, state, bus)
		return
	}

	state.addScore(team)
	bus.AppendGoal(int(team), scorer, assist)

	state.BreakTime = e.match.TimeBreak
	state.NextFaceoffSpot = FaceoffSpot{Name: "center"}
	state.IsIntermissionGoal = false

	diff := state.RedScore - state.BlueScore
	if diff < 0 {
		diff = -diff
	}
	if e.match.MercyRule > 0 && diff >= e.match.MercyRule {
		state.GameOver = true
		state.BreakTime = e.match.TimeIntermission
		state.IsIntermissionGoal = true
	}
}

// creditShootoutAttempt records a scored shootout attempt against whichever
// team is on the clock (§4.5) rather than the main score, and only ends the
// game once the alternating-attempt/5-attempt/tie-break procedure decides a
// winner — mirroring call_goal's period > 3 branch (hqm_server.rs) which
// writes to shootout_red_score/shootout_blue_score instead of red_score/
// blue_score, with game_over decided separately by the tie-check block.
func (e *RuleEngine) creditShootoutAttempt(scorer int, state *MatchState, bus *messagebus.MessageBus) {
	if !state.Shootout.Active {
		state.Shootout = NewShootoutState(true)
	}

	shooter := state.Shootout.CurrentShooter()
	state.Shootout.RecordAttempt(true)
	bus.AppendGoal(int(shooter), scorer, -1)

	state.BreakTime = e.match.TimeBreak
	state.NextFaceoffSpot = FaceoffSpot{Name: "center"}
	state.IsIntermissionGoal = false

	if winner, decided := state.Shootout.Decided(); decided {
		state.GameOver = true
		state.BreakTime = e.match.TimeIntermission
		state.IsIntermissionGoal = true
		state.addScore(winner)
	}
}

func (e *RuleEngine) handlePuckTouch(ev objmodel.SimulationEvent, pool *objmodel.ObjectPool, state *MatchState, bus *messagebus.MessageBus, tickTime int) {
	puck, ok := pool.Puck(ev.PuckSlot)
	if !ok {
		return
	}
	skater, ok := pool.Skater(ev.SkaterSlot)
	if !ok {
		return
	}

	puck.PushTouch(objmodel.Touch{
		SessionIndex: skater.ConnectedPlayerIndex,
		Team:         skater.Team,
		TickTime:     tickTime,
		Position:     puck.Position,
	})

	// (a) Offside warning resolution.
	if state.Offside.Kind == OffsideWarning && skater.Team == state.Offside.Team {
		if skater.ConnectedPlayerIndex == state.Offside.PasserSession {
			e.callOffside(skater.Team, puck.Position, state, bus)
		} else {
			e.callOffside(skater.Team, state.Offside.Origin, state, bus)
		}
		return
	}

	// (b) Icing warning resolution.
	if state.Icing.Kind == IcingWarning {
		opposing := skater.Team != state.Icing.Team
		if opposing && skater.FaceoffPositionLabel == "G" {
			state.Icing = IcingStatus{Kind: IcingNone}
			bus.AppendChat(messagebus.ServerSender, "Icing waved off")
		} else if opposing {
			e.callIcing(state.Icing.Team, state.Icing.Origin, state, bus)
			return
		} else {
			state.Icing = IcingStatus{Kind: IcingNone}
			bus.AppendChat(messagebus.ServerSender, "Icing waved off")
		}
	} else if state.Icing.Kind == IcingNotTouched {
		state.Icing = IcingStatus{Kind: IcingNone}
	}
}

func (e *RuleEngine) handlePuckEnteredOtherHalf(ev objmodel.SimulationEvent, pool *objmodel.ObjectPool, state *MatchState) {
	if state.Icing.Kind != IcingNone {
		return
	}
	puck, ok := pool.Puck(ev.PuckSlot)
	if !ok {
		return
	}
	front, ok := puck.FrontMostToucher()
	if !ok || front.Team != ev.Team {
		return
	}
	state.Icing = IcingStatus{Kind: IcingNotTouched, Team: ev.Team, Origin: front.Position}
}

func (e *RuleEngine) handlePuckPassedGoalLine(ev objmodel.SimulationEvent, pool *objmodel.ObjectPool, state *MatchState, bus *messagebus.MessageBus) {
	if state.Icing.Kind != IcingNotTouched || state.Icing.Team != ev.Team {
		return
	}
	switch e.cfg.Icing {
	case config.IcingTouch:
		state.Icing = IcingStatus{Kind: IcingWarning, Team: ev.Team, Origin: state.Icing.Origin}
		bus.AppendChat(messagebus.ServerSender, "Icing warning")
	case config.IcingNoTouch:
		e.callIcing(ev.Team, state.Icing.Origin, state, bus)
	case config.IcingOff:
		// ignored
	}
}

func (e *RuleEngine) handlePuckEnteredOffensiveZone(ev objmodel.SimulationEvent, pool *objmodel.ObjectPool, rink objmodel.RinkGeometry, state *MatchState, bus *messagebus.MessageBus) {
	if state.Offside.Kind != OffsideInNeutralZone {
		return
	}
	puck, ok := pool.Puck(ev.PuckSlot)
	if !ok {
		return
	}
	front, ok := puck.FrontMostToucher()
	sameTeam := ok && front.Team == ev.Team
	attackerInZone := objmodel.AnySkaterInOffensiveZone(rink, pool, ev.Team)

	if sameTeam && attackerInZone {
		switch e.cfg.Offside {
		case config.OffsideDelayed:
			state.Offside = OffsideStatus{Kind: OffsideWarning, Team: ev.Team, Origin: front.Position, PasserSession: front.SessionIndex}
		case config.OffsideImmediate:
			e.callOffside(ev.Team, front.Position, state, bus)
		case config.OffsideOff:
			state.Offside = OffsideStatus{Kind: OffsideInOffensiveZone, Team: ev.Team}
		}
		return
	}
	state.Offside = OffsideStatus{Kind: OffsideInOffensiveZone, Team: ev.Team}
}

func (e *RuleEngine) handlePuckLeftOffensiveZone(state *MatchState, bus *messagebus.MessageBus) {
	if state.Offside.Kind == OffsideWarning {
		bus.AppendChat(messagebus.ServerSender, "Offside waved off")
	}
	state.Offside = OffsideStatus{Kind: OffsideInNeutralZone}
}

func (e *RuleEngine) callIcing(team objmodel.Team, origin objmodel.Vec3, state *MatchState, bus *messagebus.MessageBus) {
	state.Icing = IcingStatus{Kind: IcingCalled, Team: team, Origin: origin}
	state.BreakTime = e.match.TimeBreak
	state.NextFaceoffSpot = FaceoffSpot{Name: "defensive_" + teamName(team)}
	bus.AppendChat(messagebus.ServerSender, "Icing")
}

func (e *RuleEngine) callOffside(team objmodel.Team, origin objmodel.Vec3, state *MatchState, bus *messagebus.MessageBus) {
	state.Offside = OffsideStatus{Kind: OffsideCalled, Team: team}
	state.BreakTime = e.match.TimeBreak
	state.NextFaceoffSpot = FaceoffSpot{Name: "neutral"}
	bus.AppendChat(messagebus.ServerSender, "Offside")
}

func teamName(t objmodel.Team) string {
	if t == objmodel.TeamRed {
		return "red"
	}
	return "blue"
}
