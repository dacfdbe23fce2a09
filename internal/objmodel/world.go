package objmodel

// World owns the ObjectPool, rink geometry, and gravity, and delegates one
// physics step per tick to an injected PhysicsStepper. Gravity is a scalar
// mutable between ticks, used by mini-game scripts (§4.2).
type World struct {
	Pool    *ObjectPool
	Rink    RinkGeometry
	Gravity float64
	stepper PhysicsStepper
}

// NewWorld constructs a World with a fresh object pool and the given rink
// geometry and physics integrator.
func NewWorld(rink RinkGeometry, stepper PhysicsStepper) *World {
	return &World{
		Pool:    NewObjectPool(),
		Rink:    rink,
		Gravity: DefaultGravity,
		stepper: stepper,
	}
}

// DefaultGravity is the standard downward acceleration; mini-games may
// rewrite World.Gravity between ticks.
const DefaultGravity = -9.81

// SimulateStep advances the world by one tick and returns the
// rule-relevant events the integrator observed.
func (w *World) SimulateStep() []SimulationEvent {
	if w.stepper == nil {
		return nil
	}
	return w.stepper.SimulateStep(w.Pool, w.Gravity)
}

// AllocateSlot exposes the pool's slot allocator directly, per §4.2.
func (w *World) AllocateSlot() (int, bool) {
	return w.Pool.AllocateSlot()
}

// CreatePuck delegates to the pool.
func (w *World) CreatePuck(pos Vec3, rot Rot, cylinderCollision bool) (int, bool) {
	return w.Pool.CreatePuck(pos, rot, cylinderCollision)
}

// CreateSkater delegates to the pool.
func (w *World) CreateSkater(team Team, pos Vec3, rot Rot, hand Hand, sessionIndex int, label FaceoffPosition, mass float64) (int, bool) {
	return w.Pool.CreateSkater(team, pos, rot, hand, sessionIndex, label, mass)
}

// Free delegates to the pool.
func (w *World) Free(index int) {
	w.Pool.Free(index)
}
