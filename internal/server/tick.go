package server

import (
	"time"

	"icehockey/internal/adminhttp"
	"icehockey/internal/config"
	"icehockey/internal/messagebus"
	"icehockey/internal/metrics"
	"icehockey/internal/minigame"
	"icehockey/internal/objmodel"
	"icehockey/internal/outbound"
	"icehockey/internal/rules"
	"icehockey/internal/scoredb"
	"icehockey/internal/session"
	"icehockey/internal/snapshot"
)

// tick runs one 10ms step of the simulation: inactivity eviction, the
// physics/rule pass, clock/mini-game advancement, snapshot capture, and the
// per-session outbound send (§5 ordering guarantees 1-4).
func (s *Server) tick() {
	start := time.Now()

	if s.table.Count() == 0 && (s.match.Period != 0 || s.match.GameOver) {
		s.newGame()
	}

	for _, timedOut := range s.table.TickInactivity() {
		s.forceRemove(timedOut)
	}
	s.processTeamSwitches()

	s.world.Gravity = objmodel.DefaultGravity * s.scheduler.DefaultGravity
	if s.scheduler.Phase == minigame.PhaseRunning {
		s.world.Gravity = objmodel.DefaultGravity * s.scheduler.Active.Gravity
	}

	events := s.world.SimulateStep()
	for _, ev := range events {
		metrics.RecordRuleEvent(eventKindName(ev.Kind))
	}

	busLenBefore := s.bus.Len()
	s.engine.HandleEvents(events, s.world.Pool, s.world.Rink, s.match, s.bus, int(s.gameStep))
	s.creditGoals(busLenBefore)

	if s.cfg.Server.Mode == config.ModeMatch && s.match.Period == 0 && !s.match.GameOver && s.match.BreakTime == 0 {
		if s.warmupRemaining > 0 {
			s.warmupRemaining--
		}
		if s.warmupRemaining == 0 && s.table.Count() > 0 {
			s.startFirstPeriod()
		}
	}

	s.clock.Advance(s.match, s.newGame, s.onFaceoff)

	if s.match.Period == 0 {
		s.scheduler.Advance(s.cfg.Minigame.WarmupTicks, s.cfg.Minigame.RunningTicks, s.cfg.Minigame.CleanupTicks, s.applyGravity, s.onMinigameStart)
	}

	snap := s.history.Push(snapshot.Capture(s.world.Pool, 0, start.UnixNano()))
	s.sendOutbound(snap)
	s.writeReplay(snap)

	metrics.RecordTick(time.Since(start))
	metrics.SetSessionCount(s.table.Count())
	metrics.SetMessageBusLen(s.bus.Len())
	s.refreshStatus()

	s.gameStep++
}

// teamSwitchCooldownTicks is how long a session must wait before switching
// teams/spectating again, mirroring the original server's team_switch_timer
// (500 ticks, hqm_server.rs's spectate-toggle handling).
const teamSwitchCooldownTicks = 500

// processTeamSwitches is the per-tick "update player-list ... team switches"
// step (§2). A rising edge on KeySpectate toggles a session between
// spectating and an auto-balanced side, gated by TeamSwitchCooldown.
func (s *Server) processTeamSwitches() {
	s.table.ForEach(func(sess *session.Session) {
		if sess.TeamSwitchCooldown > 0 {
			sess.TeamSwitchCooldown--
		}

		pressed := sess.Input.Keys&objmodel.KeySpectate != 0
		wasPressed := sess.LastKeys&objmodel.KeySpectate != 0
		sess.LastKeys = sess.Input.Keys

		if !pressed || wasPressed || sess.TeamSwitchCooldown > 0 {
			return
		}

		if sess.Team.IsPlaying() {
			if sess.ObjectSlot >= 0 {
				s.world.Pool.Free(sess.ObjectSlot)
				sess.ObjectSlot = -1
			}
			sess.Team = objmodel.TeamSpectator
		} else {
			sess.Team = s.leastPopulatedTeam()
		}
		sess.TeamSwitchCooldown = teamSwitchCooldownTicks
	})
}

// leastPopulatedTeam picks whichever side currently has fewer players, for
// auto-balanced team assignment when a spectator joins the ice.
func (s *Server) leastPopulatedTeam() objmodel.Team {
	var red, blue int
	s.table.ForEach(func(sess *session.Session) {
		switch sess.Team {
		case objmodel.TeamRed:
			red++
		case objmodel.TeamBlue:
			blue++
		}
	})
	if blue < red {
		return objmodel.TeamBlue
	}
	return objmodel.TeamRed
}

// creditGoals resolves any KindGoal messages appended this tick against the
// session table and persists them to the opaque scoring sink (§1).
func (s *Server) creditGoals(fromCursor uint32) {
	for _, msg := range s.bus.Slice(fromCursor) {
		if msg.Kind != messagebus.KindGoal {
			continue
		}
		metrics.RecordGoal()
		if scorer := s.table.Get(msg.GoalScorer); scorer != nil {
			s.scores.Save(scoredb.Event{Login: scorer.Name, Kind: scoredb.EventGoal})
		}
		if assist := s.table.Get(msg.GoalAssist); assist != nil {
			s.scores.Save(scoredb.Event{Login: assist.Name, Kind: scoredb.EventAssist})
		}
	}
}

// startFirstPeriod ends warmup and begins period 1 with an opening faceoff.
func (s *Server) startFirstPeriod() {
	s.match.Period = 1
	s.match.TickTime = s.clock.PeriodLength(1)
	s.onFaceoff()
}

// onFaceoff runs the stoppage-to-play procedure and re-syncs every
// session's ObjectSlot against the freshly rebuilt pool.
func (s *Server) onFaceoff() {
	candidates := s.buildFaceoffCandidates()
	rules.FaceoffProcedure(s.world.Pool, s.world.Rink, s.match, candidates, s.cfg.Server.CylinderPuckPostCollision, nil)
	s.syncObjectSlots()
}

func (s *Server) buildFaceoffCandidates() []rules.FaceoffCandidate {
	var out []rules.FaceoffCandidate
	s.table.ForEach(func(sess *session.Session) {
		if !sess.InServer || !sess.Team.IsPlaying() {
			return
		}
		preferred := objmodel.FaceoffPosition("")
		if sk, ok := s.world.Pool.Skater(sess.ObjectSlot); ok {
			preferred = sk.FaceoffPositionLabel
		}
		out = append(out, rules.FaceoffCandidate{SessionIndex: sess.Index, Team: sess.Team, PreferredLabel: preferred, Hand: sess.Hand})
	})
	return out
}

// syncObjectSlots reconciles each session's ObjectSlot against the pool
// after a faceoff rebuild, which clears and recreates every slot.
func (s *Server) syncObjectSlots() {
	assigned := make(map[int]int)
	s.world.Pool.ForEach(func(idx int, obj objmodel.Object) {
		if obj.Kind == objmodel.KindSkater {
			assigned[obj.Skater.ConnectedPlayerIndex] = idx
		}
	})
	s.table.ForEach(func(sess *session.Session) {
		if slot, ok := assigned[sess.Index]; ok {
			sess.ObjectSlot = slot
		} else {
			sess.ObjectSlot = -1
		}
	})
}

// newGame resets match/pool state for a fresh game (§5 "Cancellation").
func (s *Server) newGame() {
	s.clock.NewGame(s.match)
	s.world.Pool.ClearAll()
	s.gameID++
	s.warmupRemaining = s.cfg.Match.TimeWarmup
	s.table.ForEach(func(sess *session.Session) { sess.ObjectSlot = -1 })
	s.bus.AppendChat(messagebus.ServerSender, "New game")
}

func (s *Server) forceRemove(sess *session.Session) {
	if sess.ObjectSlot >= 0 {
		s.world.Pool.Free(sess.ObjectSlot)
	}
	s.bus.AppendPlayerUpdate(sess.Name, sess.Index, false, -1, int(sess.Team), false)
	s.bus.AppendChat(messagebus.ServerSender, sess.Name+" timed out")
	s.table.Remove(sess.Index)
}

func (s *Server) applyGravity(float64) {}

func (s *Server) onMinigameStart(script minigame.Script) {
	s.bus.AppendChat(messagebus.ServerSender, script.Name+" is starting!")
}

func breakTimeField(m *rules.MatchState) uint16 {
	if m.IsIntermissionGoal {
		return uint16(m.BreakTime)
	}
	return 0
}

// sendOutbound assembles and sends one frame per session (§4.8).
func (s *Server) sendOutbound(snap snapshot.Snapshot) {
	header := outbound.GameHeader{
		GameID:    s.gameID,
		GameStep:  s.gameStep,
		GameOver:  s.match.GameOver,
		RedScore:  uint8(s.match.RedScore),
		BlueScore: uint8(s.match.BlueScore),
		Time:      uint16(s.match.TickTime),
		BreakTime: breakTimeField(s.match),
		Period:    uint8(s.match.Period),
	}

	s.table.ForEach(func(sess *session.Session) {
		if s.conn == nil {
			return
		}
		header.ViewTargetSession = uint8(sess.ViewTargetSession)

		var frame []byte
		if sess.GameID != s.gameID {
			frame = outbound.BuildGameIDSync(s.gameID)
		} else {
			var priorPtr *snapshot.Snapshot
			if sess.HasAcked {
				if prior, ok := s.history.Acked(sess.KnownSnapshotID); ok {
					priorPtr = &prior
				}
			}
			frame = outbound.BuildMainFrame(sess, header, s.match, snap, priorPtr, s.bus)
		}

		n, err := s.conn.WriteToUDP(frame, sess.Addr)
		if err == nil {
			metrics.AddEgressBytes(n)
		}
	})
}

// writeReplay enqueues one replay-file frame, advancing replayMsgPos by
// exactly the number of messages the frame actually carried (the wire cap
// may be lower than what's pending).
func (s *Server) writeReplay(snap snapshot.Snapshot) {
	if s.replay == nil {
		return
	}
	pending, newPos := s.bus.ReplayPending(s.replayMsgPos)

	header := outbound.GameHeader{
		GameID:    s.gameID,
		GameStep:  s.gameStep,
		GameOver:  s.match.GameOver,
		RedScore:  uint8(s.match.RedScore),
		BlueScore: uint8(s.match.BlueScore),
		Time:      uint16(s.match.TickTime),
		BreakTime: breakTimeField(s.match),
		Period:    uint8(s.match.Period),
	}

	frame, written := outbound.BuildReplayFrame(session.ClientProtoRules, 0, header, s.match, snap, nil, pending)
	s.replay.AppendFrame(frame)

	if written == len(pending) {
		s.replayMsgPos = newPos
	} else {
		s.replayMsgPos += uint32(written)
	}
}

func (s *Server) refreshStatus() {
	status := adminhttp.Status{
		ServerName:   s.cfg.Server.ServerName,
		SessionCount: s.table.Count(),
		Period:       s.match.Period,
		RedScore:     s.match.RedScore,
		BlueScore:    s.match.BlueScore,
		TimeLeft:     s.match.TickTime,
		GameOver:     s.match.GameOver,
		Paused:       s.match.Paused,
	}
	s.table.ForEach(func(sess *session.Session) {
		status.Players = append(status.Players, adminhttp.PlayerStatus{
			SessionIndex: sess.Index,
			Name:         sess.Name,
			Team:         teamLabel(sess.Team),
		})
	})
	s.statusCache.Store(&status)
}

func teamLabel(t objmodel.Team) string {
	switch t {
	case objmodel.TeamRed:
		return "red"
	case objmodel.TeamBlue:
		return "blue"
	default:
		return "spectator"
	}
}

func eventKindName(k objmodel.SimulationEventKind) string {
	switch k {
	case objmodel.EventPuckEnteredNet:
		return "puck_entered_net"
	case objmodel.EventPuckTouch:
		return "puck_touch"
	case objmodel.EventPuckEnteredOffensiveZone:
		return "puck_entered_offensive_zone"
	case objmodel.EventPuckLeftOffensiveZone:
		return "puck_left_offensive_zone"
	case objmodel.EventPuckEnteredOtherHalf:
		return "puck_entered_other_half"
	case objmodel.EventPuckPassedGoalLine:
		return "puck_passed_goal_line"
	default:
		return "unknown"
	}
}
