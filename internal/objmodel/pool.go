package objmodel

// ObjectPool is the fixed array of MaxSlots world-object slots. Object
// index is stable for the lifetime of that object; a freed slot becomes
// Empty and may be reused, and clients reference objects by slot index on
// the wire (§3 invariant).
type ObjectPool struct {
	slots [MaxSlots]Object
}

// NewObjectPool returns a pool with every slot Empty.
func NewObjectPool() *ObjectPool {
	return &ObjectPool{}
}

// Get returns the object at index, or the zero (Empty) Object if index is
// out of range.
func (p *ObjectPool) Get(index int) Object {
	if index < 0 || index >= MaxSlots {
		return Object{}
	}
	return p.slots[index]
}

// Puck returns the puck at index if the slot holds one.
func (p *ObjectPool) Puck(index int) (*Puck, bool) {
	o := p.Get(index)
	if o.Kind != KindPuck {
		return nil, false
	}
	return o.Puck, true
}

// Skater returns the skater at index if the slot holds one.
func (p *ObjectPool) Skater(index int) (*Skater, bool) {
	o := p.Get(index)
	if o.Kind != KindSkater {
		return nil, false
	}
	return o.Skater, true
}

// AllocateSlot scans for the first Empty slot in 0..MaxSlots and returns
// it, or (-1, false) if the pool is exhausted.
func (p *ObjectPool) AllocateSlot() (int, bool) {
	for i := 0; i < MaxSlots; i++ {
		if p.slots[i].IsEmpty() {
			return i, true
		}
	}
	return -1, false
}

// CreatePuck allocates a slot and stores a new puck there, returning its
// index. Returns (-1, false) if the pool is exhausted.
func (p *ObjectPool) CreatePuck(pos Vec3, rot Rot, cylinderCollision bool) (int, bool) {
	idx, ok := p.AllocateSlot()
	if !ok {
		return -1, false
	}
	p.slots[idx] = Object{
		Kind: KindPuck,
		Puck: &Puck{
			Position:              pos,
			Orientation:           rot,
			CylinderPostCollision: cylinderCollision,
		},
	}
	return idx, true
}

// CreateSkater allocates a slot and stores a new skater there, returning
// its index. Returns (-1, false) if the pool is exhausted — per §7, the
// caller must abort that specific spawn and leave the session spectating.
func (p *ObjectPool) CreateSkater(team Team, pos Vec3, rot Rot, hand Hand, sessionIndex int, label FaceoffPosition, mass float64) (int, bool) {
	idx, ok := p.AllocateSlot()
	if !ok {
		return -1, false
	}
	p.slots[idx] = Object{
		Kind: KindSkater,
		Skater: &Skater{
			Team:                 team,
			Position:             pos,
			Orientation:          rot,
			Hand:                 hand,
			ConnectedPlayerIndex: sessionIndex,
			FaceoffPositionLabel: label,
			Mass:                 mass,
		},
	}
	return idx, true
}

// Free resets a slot to Empty, invalidating its contents. The slot index
// itself remains reusable.
func (p *ObjectPool) Free(index int) {
	if index < 0 || index >= MaxSlots {
		return
	}
	p.slots[index] = Object{}
}

// ClearAll resets every slot to Empty, used before a faceoff spawn.
func (p *ObjectPool) ClearAll() {
	for i := range p.slots {
		p.slots[i] = Object{}
	}
}

// ForEach invokes fn for every non-empty slot, in index order.
func (p *ObjectPool) ForEach(fn func(index int, obj Object)) {
	for i := 0; i < MaxSlots; i++ {
		if !p.slots[i].IsEmpty() {
			fn(i, p.slots[i])
		}
	}
}
