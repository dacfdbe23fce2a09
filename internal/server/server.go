// Package server owns the 10ms tick loop and every collaborator it
// integrates: the UDP session layer, the object pool, the rule engine and
// match clock, the mini-game scheduler, snapshot history, the message bus,
// and the background replay/master-server/metrics sinks (§5).
package server

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"icehockey/internal/admincmd"
	"icehockey/internal/adminhttp"
	"icehockey/internal/config"
	"icehockey/internal/masterserver"
	"icehockey/internal/messagebus"
	"icehockey/internal/metrics"
	"icehockey/internal/minigame"
	"icehockey/internal/objmodel"
	"icehockey/internal/replay"
	"icehockey/internal/rules"
	"icehockey/internal/scoredb"
	"icehockey/internal/session"
	"icehockey/internal/snapshot"
)

// UDPSender is the subset of *net.UDPConn the tick loop needs to send
// outbound frames; tests substitute a fake to avoid a real socket.
type UDPSender interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

type recvDatagram struct {
	buf  []byte
	addr *net.UDPAddr
}

// Server is the single-threaded cooperative core described in §5: nothing
// but the tick goroutine ever mutates pool/table/bus/match/history/
// scheduler, so none of it needs locking. The one exception is the cached
// status snapshot adminhttp reads from an HTTP handler goroutine, held
// behind an atomic pointer rather than a mutex.
type Server struct {
	cfg config.AppConfig

	world     *objmodel.World
	table     *session.Table
	bus       *messagebus.MessageBus
	history   *snapshot.History
	match     *rules.MatchState
	clock     *rules.MatchClock
	engine    *rules.RuleEngine
	scheduler *minigame.Scheduler

	dispatcher *session.Dispatcher
	admin      *admincmd.Dispatcher
	replay     *replay.Writer
	scores     scoredb.Sink
	master     *masterserver.Client

	conn         UDPSender
	gameID       uint32
	gameStep     uint32
	replayMsgPos uint32
	warmupRemaining int

	statusCache atomic.Pointer[adminhttp.Status]
}

// New wires every collaborator together from cfg. physics is the injected
// rigid-body integrator (§1 out of scope); scores may be nil, in which case
// an in-memory scoredb.Store is used.
func New(cfg config.AppConfig, physics objmodel.PhysicsStepper, scores scoredb.Sink, replayWriter *replay.Writer, masterClient *masterserver.Client) *Server {
	if scores == nil {
		scores = scoredb.NewStore()
	}

	table := session.NewTable()
	bus := messagebus.New()
	match := rules.NewMatchState()
	match.TickTime = cfg.Match.TimeWarmup

	candidates := []minigame.Script{
		{Name: "classic", Gravity: cfg.Minigame.DefaultGravity},
	}

	s := &Server{
		cfg:             cfg,
		world:           objmodel.NewWorld(objmodel.DefaultRink(), physics),
		table:           table,
		bus:             bus,
		history:         snapshot.NewHistory(),
		match:           match,
		clock:           rules.NewMatchClock(cfg.Match),
		engine:          rules.NewRuleEngine(cfg.Rule, cfg.Match),
		scheduler:       minigame.NewScheduler(cfg.Minigame.Seed, candidates, cfg.Minigame.DefaultGravity),
		replay:          replayWriter,
		scores:          scores,
		master:          masterClient,
		warmupRemaining: cfg.Match.TimeWarmup,
	}

	s.admin = admincmd.New(table, bus, match)
	s.admin.OnForceFaceoff(func() { s.onFaceoff() })
	s.admin.OnRestart(func() { s.newGame() })

	s.dispatcher = session.NewDispatcher(table, &cfg.Server, bus)
	s.dispatcher.AdminDispatch = s.admin.Dispatch

	return s
}

// Run opens the UDP listener and blocks until ctx is cancelled, driving the
// recv-goroutine/tick-loop select described in §5.
func (s *Server) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: s.cfg.Network.Port})
	if err != nil {
		return err
	}
	defer conn.Close()
	s.conn = conn

	recvCh := make(chan recvDatagram, s.cfg.Network.RecvQueueSize)
	go s.recvLoop(ctx, conn, recvCh)
	go s.master.Run(ctx)

	period := time.Second / time.Duration(s.cfg.Network.TickRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case dg := <-recvCh:
			s.handleDatagram(dg)
		case <-ticker.C:
			s.tick()
		}
	}
}

// recvLoop reads datagrams off the socket and pushes them onto the bounded
// channel, dropping on backpressure rather than blocking (§5).
func (s *Server) recvLoop(ctx context.Context, conn *net.UDPConn, out chan<- recvDatagram) {
	buf := make([]byte, 4096)
	for {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		n, addr, err := conn.ReadFromUDP(buf)

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err != nil {
			continue
		}

		metrics.AddIngressBytes(n)
		payload := make([]byte, n)
		copy(payload, buf[:n])

		select {
		case out <- recvDatagram{buf: payload, addr: addr}:
		default:
			// Bounded receive queue saturated: drop the datagram rather than
			// stall the recv goroutine (§5).
		}
	}
}

func (s *Server) handleDatagram(dg recvDatagram) {
	reply := s.dispatcher.HandleDatagram(dg.buf, dg.addr)
	if reply != nil && s.conn != nil {
		n, err := s.conn.WriteToUDP(reply, dg.addr)
		if err == nil {
			metrics.AddEgressBytes(n)
		}
	}
}

// Status implements adminhttp.StatusProvider by returning the most recently
// cached snapshot, safe to call from an HTTP handler goroutine.
func (s *Server) Status() adminhttp.Status {
	if cached := s.statusCache.Load(); cached != nil {
		return *cached
	}
	return adminhttp.Status{ServerName: s.cfg.Server.ServerName}
}
