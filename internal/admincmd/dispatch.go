// Package admincmd implements the "/"-prefixed admin chat command
// subsystem the session layer defers to (§1 "administrative chat commands
// ... implementors treat them as side-effecting operations over Server
// state", §7 "admin command without privilege").
package admincmd

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"icehockey/internal/messagebus"
	"icehockey/internal/rules"
	"icehockey/internal/session"
)

// commandRateLimit bounds how often a single session may issue admin
// commands, independent of privilege — a misconfigured or hostile client
// spamming "/ban" should not cost more than its fair share of tick time.
const (
	commandRateLimit = 2 // per second
	commandRateBurst = 4
)

// Dispatcher routes parsed admin commands to their handlers and enforces
// the is_admin gate (§7).
type Dispatcher struct {
	table *session.Table
	bus   *messagebus.MessageBus
	match *rules.MatchState

	mu       sync.Mutex
	limiters map[int]*rate.Limiter

	onForceFaceoff func()
	onRestart      func()
}

// New builds a Dispatcher bound to the session table, outbound message
// bus and live match state it administers.
func New(table *session.Table, bus *messagebus.MessageBus, match *rules.MatchState) *Dispatcher {
	return &Dispatcher{
		table:    table,
		bus:      bus,
		match:    match,
		limiters: make(map[int]*rate.Limiter),
	}
}

// OnForceFaceoff registers the callback fired by "/faceoff".
func (d *Dispatcher) OnForceFaceoff(fn func()) { d.onForceFaceoff = fn }

// OnRestart registers the callback fired by "/restart".
func (d *Dispatcher) OnRestart(fn func()) { d.onRestart = fn }

// Dispatch is the callback wired into session.Dispatcher.AdminDispatch: it
// receives the already-split command word and argument string.
func (d *Dispatcher) Dispatch(sessionIndex int, cmd string, args string) {
	s := d.table.Get(sessionIndex)
	if s == nil {
		return
	}
	if !d.allow(sessionIndex) {
		return
	}

	cmd = strings.ToLower(cmd)
	privileged := isPrivileged(cmd)
	if privileged && !s.IsAdmin {
		d.bus.AppendChat(messagebus.ServerSender, "Please log in before using that command")
		return
	}

	fields := strings.Fields(args)
	switch cmd {
	case "help":
		d.handleHelp(s)
	case "login":
		d.handleLogin(s, fields)
	case "mute":
		d.handleMute(s, fields, session.Muted)
	case "shadowmute":
		d.handleMute(s, fields, session.ShadowMuted)
	case "unmute":
		d.handleMute(s, fields, session.NotMuted)
	case "kick":
		d.handleKick(s, fields)
	case "ban":
		d.handleBan(s, fields)
	case "unban":
		d.handleUnban(s, fields)
	case "pause":
		d.handlePause(s, true)
	case "unpause":
		d.handlePause(s, false)
	case "faceoff":
		d.handleFaceoff(s)
	case "restart":
		d.handleRestart(s)
	default:
		d.bus.AppendChat(messagebus.ServerSender, "Unknown command: /"+cmd)
	}
}

// allow rate-limits admin-command attempts per session, regardless of
// privilege, so a flood of unauthorized attempts can't be used to starve
// the tick loop.
func (d *Dispatcher) allow(sessionIndex int) bool {
	d.mu.Lock()
	lim, ok := d.limiters[sessionIndex]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(commandRateLimit), commandRateBurst)
		d.limiters[sessionIndex] = lim
	}
	d.mu.Unlock()
	return lim.Allow()
}

// isPrivileged reports whether cmd requires is_admin (§7); "help" and
// "login" are reachable by anyone.
func isPrivileged(cmd string) bool {
	switch cmd {
	case "help", "login":
		return false
	default:
		return true
	}
}

func (d *Dispatcher) handleHelp(s *session.Session) {
	d.bus.AppendChat(messagebus.ServerSender, "Commands: /login <password> | /mute <session> | /kick <session> | /ban <session> | /unban <ip> | /pause | /unpause | /faceoff | /restart")
}

// handleLogin only posts a server chat reply. It does not check a password
// and does not set IsAdmin; nothing in this package or in the server's
// dispatch wiring sets IsAdmin from a /login command.
func (d *Dispatcher) handleLogin(s *session.Session, args []string) {
	d.bus.AppendChat(messagebus.ServerSender, "Login is handled before admin dispatch")
}

func (d *Dispatcher) handleMute(s *session.Session, args []string, state session.MuteState) {
	target := d.resolveTarget(s, args)
	if target == nil {
		d.bus.AppendChat(messagebus.ServerSender, "No such session")
		return
	}
	target.Mute = state
	d.bus.AppendChat(messagebus.ServerSender, target.Name+"'s mute state changed")
}

func (d *Dispatcher) handleKick(s *session.Session, args []string) {
	target := d.resolveTarget(s, args)
	if target == nil {
		d.bus.AppendChat(messagebus.ServerSender, "No such session")
		return
	}
	d.table.Remove(target.Index)
	d.bus.AppendPlayerUpdate(target.Name, target.Index, false, -1, int(target.Team), false)
}

func (d *Dispatcher) handleBan(s *session.Session, args []string) {
	target := d.resolveTarget(s, args)
	if target == nil {
		d.bus.AppendChat(messagebus.ServerSender, "No such session")
		return
	}
	d.table.Ban(target.Addr)
	d.table.Remove(target.Index)
	d.bus.AppendPlayerUpdate(target.Name, target.Index, false, -1, int(target.Team), false)
}

func (d *Dispatcher) handleUnban(s *session.Session, args []string) {
	if len(args) == 0 {
		d.bus.AppendChat(messagebus.ServerSender, "Usage: /unban <ip>")
		return
	}
	d.table.Unban(args[0])
	d.bus.AppendChat(messagebus.ServerSender, args[0]+" unbanned")
}

func (d *Dispatcher) handlePause(s *session.Session, paused bool) {
	d.match.Paused = paused
	if paused {
		d.bus.AppendChat(messagebus.ServerSender, "Game paused")
	} else {
		d.bus.AppendChat(messagebus.ServerSender, "Game resumed")
	}
}

func (d *Dispatcher) handleFaceoff(s *session.Session) {
	if d.onForceFaceoff != nil {
		d.onForceFaceoff()
	}
	d.bus.AppendChat(messagebus.ServerSender, "Faceoff forced")
}

func (d *Dispatcher) handleRestart(s *session.Session) {
	if d.onRestart != nil {
		d.onRestart()
	}
	d.bus.AppendChat(messagebus.ServerSender, "Game restarted")
}

// resolveTarget parses args[0] as a session index.
func (d *Dispatcher) resolveTarget(s *session.Session, args []string) *session.Session {
	if len(args) == 0 {
		return nil
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return nil
	}
	return d.table.Get(idx)
}
