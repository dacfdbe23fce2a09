package snapshot

// RingCapacity is the fixed depth of the snapshot history ring (§3).
const RingCapacity = 192

// History is a ring of the last RingCapacity tick snapshots. ring[0] is
// always the most recently pushed (current) snapshot; ring[d] is the
// snapshot from d ticks ago.
type History struct {
	entries []Snapshot // entries[0] = newest
	nextID  uint32
}

// NewHistory returns an empty snapshot history.
func NewHistory() *History {
	return &History{entries: make([]Snapshot, 0, RingCapacity)}
}

// Push captures and stores a new snapshot, assigning it the next
// monotonically increasing (wrapping at 2^32) snapshot id, and returns it.
func (h *History) Push(snap Snapshot) Snapshot {
	snap.ID = h.nextID
	h.nextID++
	h.entries = append([]Snapshot{snap}, h.entries...)
	if len(h.entries) > RingCapacity {
		h.entries = h.entries[:RingCapacity]
	}
	return snap
}

// Len reports how many snapshots are currently retained (<= RingCapacity, I3).
func (h *History) Len() int {
	return len(h.entries)
}

// Current returns the most recently pushed snapshot, or false if empty.
func (h *History) Current() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}
	return h.entries[0], true
}

// CurrentID returns the id of the most recently pushed snapshot.
func (h *History) CurrentID() uint32 {
	if len(h.entries) == 0 {
		return 0
	}
	return h.entries[0].ID
}

// Lookup returns the snapshot that is `delta` ticks older than the
// current one (ring[delta] in spec terms), or false if that index is out
// of range — the stale-ack fallback path (§4.6, §7).
func (h *History) Lookup(delta uint32) (Snapshot, bool) {
	idx := int(delta)
	if idx < 0 || idx >= len(h.entries) {
		return Snapshot{}, false
	}
	return h.entries[idx], true
}

// Acked resolves a client's acknowledged snapshot id against the current
// one, returning the acked snapshot if reachable within the ring.
func (h *History) Acked(ackedID uint32) (Snapshot, bool) {
	current, ok := h.Current()
	if !ok {
		return Snapshot{}, false
	}
	delta := current.ID - ackedID // wraps correctly via uint32 arithmetic
	return h.Lookup(delta)
}
