package session

import (
	"net"

	"github.com/cespare/xxhash/v2"
)

// Table is the fixed-slot session registry (§3 "Sessions: 64 fixed slots").
// Index is stable for the session's lifetime and is the session index used
// throughout messagebus/snapshot/rules.
type Table struct {
	slots   [MaxSessions]*Session
	banlist map[uint64]bool
}

// NewTable returns an empty session table.
func NewTable() *Table {
	return &Table{banlist: make(map[uint64]bool)}
}

// banKey hashes an IP string into the banlist's map key, avoiding
// string-keyed map churn on the JOIN-handling hot path.
func banKey(ip string) uint64 {
	return xxhash.Sum64String(ip)
}

// Count returns the number of occupied slots.
func (t *Table) Count() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Get returns the session at index, or nil if empty/out of range.
func (t *Table) Get(index int) *Session {
	if index < 0 || index >= MaxSessions {
		return nil
	}
	return t.slots[index]
}

// ByAddr finds the session already mapped to addr, if any.
func (t *Table) ByAddr(addr *net.UDPAddr) *Session {
	for _, s := range t.slots {
		if s != nil && addrEqual(s.Addr, addr) {
			return s
		}
	}
	return nil
}

func addrEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return false
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

// Ban adds addr's IP to the banlist.
func (t *Table) Ban(addr *net.UDPAddr) {
	t.banlist[banKey(addr.IP.String())] = true
}

// Unban removes an IP from the banlist.
func (t *Table) Unban(ip string) {
	delete(t.banlist, banKey(ip))
}

// ClearBans empties the banlist.
func (t *Table) ClearBans() {
	t.banlist = make(map[uint64]bool)
}

// IsBanned reports whether addr's IP is on the banlist.
func (t *Table) IsBanned(addr *net.UDPAddr) bool {
	return t.banlist[banKey(addr.IP.String())]
}

// Join allocates the first free slot for a newly joining client. Returns
// nil if the table is full, the address is already mapped, or the IP is
// banned — callers must silently ignore the JOIN per §4.7.
func (t *Table) Join(addr *net.UDPAddr, name string) *Session {
	if t.IsBanned(addr) {
		return nil
	}
	if t.ByAddr(addr) != nil {
		return nil
	}
	for i := 0; i < MaxSessions; i++ {
		if t.slots[i] == nil {
			s := NewSession(i, addr, name)
			t.slots[i] = s
			return s
		}
	}
	return nil
}

// Remove clears the slot at index.
func (t *Table) Remove(index int) {
	if index < 0 || index >= MaxSessions {
		return
	}
	t.slots[index] = nil
}

// RemoveByAddr removes whatever session is mapped to addr, returning it.
func (t *Table) RemoveByAddr(addr *net.UDPAddr) *Session {
	s := t.ByAddr(addr)
	if s == nil {
		return nil
	}
	t.Remove(s.Index)
	return s
}

// ForEach invokes fn for every occupied slot, in index order.
func (t *Table) ForEach(fn func(*Session)) {
	for _, s := range t.slots {
		if s != nil {
			fn(s)
		}
	}
}

// TickInactivity advances every session's inactivity counter and returns
// the sessions that have exceeded InactivityLimit, for forced removal
// (§5 "Session inactivity > 500 ticks triggers forced removal").
func (t *Table) TickInactivity() []*Session {
	var timedOut []*Session
	for _, s := range t.slots {
		if s == nil {
			continue
		}
		s.Inactivity++
		if s.Inactivity > InactivityLimit {
			timedOut = append(timedOut, s)
		}
	}
	return timedOut
}
