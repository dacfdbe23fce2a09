package objmodel

// SimulationEventKind tags a SimulationEvent variant.
type SimulationEventKind uint8

const (
	EventPuckEnteredNet SimulationEventKind = iota
	EventPuckTouch
	EventPuckEnteredOffensiveZone
	EventPuckLeftOffensiveZone
	EventPuckEnteredOtherHalf
	EventPuckPassedGoalLine
)

// SimulationEvent is one outcome of a physics step that the rule engine
// must consume. Only the fields relevant to Kind are populated.
type SimulationEvent struct {
	Kind        SimulationEventKind
	Team        Team
	PuckSlot    int
	SkaterSlot  int // valid for EventPuckTouch
}

// PhysicsStepper is the injected rigid-body integrator collaborator. The
// integrator itself is explicitly out of scope (§1): it is assumed to
// expose SimulateStep and mutate pool's object positions/velocities in
// place, returning the rule-relevant events it observed.
type PhysicsStepper interface {
	SimulateStep(pool *ObjectPool, gravity float64) []SimulationEvent
}
