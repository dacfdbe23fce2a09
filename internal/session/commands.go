package session

import (
	"net"
	"strings"

	"icehockey/internal/config"
	"icehockey/internal/messagebus"
	"icehockey/internal/objmodel"
	"icehockey/internal/wire"
)

// Magic is the 4-byte datagram header every frame begins with (§4.7, §6).
var Magic = [4]byte{'H', 'o', 'c', 'k'}

// Command tags the 1-byte command following the magic.
type Command byte

const (
	CommandRequestInfo Command = 0x00
	CommandJoin         Command = 0x02
	CommandUpdateBase   Command = 0x04
	CommandUpdatePing   Command = 0x08
	CommandUpdateRules  Command = 0x10
	CommandExit         Command = 0x07
)

// NoAck mirrors snapshot.NoAck without importing it, to avoid a cycle;
// sessions use the same sentinel value for "never acked".
const NoAck = 0xFFFFFFFF

// Dispatcher wires an incoming datagram to session-table mutations and
// message-bus appends. AdminDispatch, if set, receives chat texts that
// begin with "/" (§4.7 "dispatched to the admin/command subsystem").
type Dispatcher struct {
	Table  *Table
	Config *config.ServerConfig
	Bus    *messagebus.MessageBus

	AdminDispatch func(sessionIndex int, cmd string, args string)
}

// NewDispatcher constructs a Dispatcher bound to the given collaborators.
func NewDispatcher(table *Table, cfg *config.ServerConfig, bus *messagebus.MessageBus) *Dispatcher {
	return &Dispatcher{Table: table, Config: cfg, Bus: bus}
}

// HandleDatagram parses and dispatches one inbound UDP datagram. It returns
// a non-nil reply payload when the command demands an immediate response
// (REQUEST_INFO); all other commands mutate state and produce no direct
// reply (outbound frames are assembled per-tick by the outbound package).
func (d *Dispatcher) HandleDatagram(buf []byte, addr *net.UDPAddr) []byte {
	if len(buf) < 5 {
		return nil
	}
	r := wire.NewReader(buf)
	header := r.ReadBytesAligned(4)
	if header[0] != Magic[0] || header[1] != Magic[1] || header[2] != Magic[2] || header[3] != Magic[3] {
		return nil
	}
	cmd := Command(r.ReadByteAligned())

	switch cmd {
	case CommandRequestInfo:
		return d.handleRequestInfo(r)
	case CommandJoin:
		d.handleJoin(r, addr)
	case CommandUpdateBase, CommandUpdatePing, CommandUpdateRules:
		d.handleUpdate(r, addr, cmd)
	case CommandExit:
		d.handleExit(addr)
	}
	return nil
}

func (d *Dispatcher) handleRequestInfo(r *wire.Reader) []byte {
	r.ReadBits(8) // client version, unused
	ping := r.ReadU32Aligned()

	w := wire.NewWriter()
	w.WriteBytesAligned(Magic[:])
	w.WriteByteAligned(0x01)
	w.WriteBits(8, ProtocolVersion)
	w.WriteU32Aligned(ping)
	w.WriteBits(8, uint32(d.Table.Count()))
	w.WriteBits(4, 4)
	w.WriteBits(4, uint32(d.Config.TeamMax))
	w.WriteBytesAlignedPadded(32, []byte(d.Config.ServerName))
	return w.Bytes()
}

func (d *Dispatcher) handleJoin(r *wire.Reader, addr *net.UDPAddr) {
	version := r.ReadBits(8)
	nameBytes := r.ReadBytesAligned(32)

	if version != ProtocolVersion {
		return
	}
	if d.Table.IsBanned(addr) {
		return
	}
	if d.Table.Count() >= d.Config.PlayerMax {
		return
	}
	if d.Table.ByAddr(addr) != nil {
		return
	}

	name := parsePlayerName(nameBytes)
	s := d.Table.Join(addr, name)
	if s == nil {
		return
	}

	d.Bus.AppendPlayerUpdate(s.Name, s.Index, false, -1, int(s.Team), true)

	for _, line := range d.Config.Welcome {
		d.Bus.AppendChat(messagebus.ServerSender, line)
	}
}

// parsePlayerName truncates at the first NUL, trims surrounding whitespace,
// and falls back to "Noname" for an empty result (§4.7).
func parsePlayerName(raw []byte) string {
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	name := strings.TrimSpace(string(raw[:end]))
	if name == "" {
		name = "Noname"
	}
	return name
}

func (d *Dispatcher) handleUpdate(r *wire.Reader, addr *net.UDPAddr, cmd Command) {
	s := d.Table.ByAddr(addr)
	if s == nil {
		return
	}

	switch cmd {
	case CommandUpdateBase:
		s.ClientProtocol = ClientProtoBase
	case CommandUpdatePing:
		s.ClientProtocol = ClientProtoPing
	case CommandUpdateRules:
		s.ClientProtocol = ClientProtoRules
	}

	s.GameID = r.ReadU32Aligned()
	s.Input = objmodel.SkaterInput{
		StickAngle: r.ReadF32Aligned(),
		Turn:       r.ReadF32Aligned(),
		Unknown:    r.ReadF32Aligned(),
		FwBw:       r.ReadF32Aligned(),
		StickRotX:  r.ReadF32Aligned(),
		StickRotY:  r.ReadF32Aligned(),
		HeadRot:    r.ReadF32Aligned(),
		BodyRot:    r.ReadF32Aligned(),
		Keys:       r.ReadU32Aligned(),
	}

	if s.ClientProtocol >= ClientProtoPing {
		s.Input.DeltaTime = r.ReadU32Aligned()
	}

	ackedID := r.ReadU32Aligned()
	s.KnownSnapshotID = ackedID
	s.HasAcked = true

	s.KnownMsgPos = uint32(r.ReadU16Aligned())
	s.Inactivity = 0

	hasChat := r.ReadBits(1) == 1
	if hasChat {
		rep := int(r.ReadBits(3))
		length := int(r.ReadBits(8))
		text := r.ReadBytesAligned(length)
		if !s.HasChatRep || s.ChatRep != rep {
			s.ChatRep = rep
			s.HasChatRep = true
			d.processChat(s, string(text))
		}
	}
}

// processChat dispatches a "/"-prefixed message to the admin subsystem and
// otherwise appends it as a normal chat message (§4.7, §4.9).
func (d *Dispatcher) processChat(s *Session, text string) {
	if strings.HasPrefix(text, "/") {
		cmd, args, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
		if d.AdminDispatch != nil {
			d.AdminDispatch(s.Index, cmd, args)
		}
		return
	}
	// A muted or shadow-muted sender believes the message went through;
	// the bus simply never receives it, so every other session's view is
	// unaffected (§1 mute_state).
	if s.Mute != NotMuted {
		return
	}
	d.Bus.AppendChat(s.Index, text)
}

func (d *Dispatcher) handleExit(addr *net.UDPAddr) {
	s := d.Table.RemoveByAddr(addr)
	if s == nil {
		return
	}
	d.Bus.AppendPlayerUpdate(s.Name, s.Index, false, -1, int(s.Team), false)
}
