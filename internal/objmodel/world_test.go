package objmodel

import "testing"

func TestWorldSimulateStepDelegatesToStepper(t *testing.T) {
	stepper := &QueuedStepper{}
	stepper.Push(SimulationEvent{Kind: EventPuckTouch, PuckSlot: 2})

	w := NewWorld(DefaultRink(), stepper)
	events := w.SimulateStep()

	if len(events) != 1 || events[0].Kind != EventPuckTouch {
		t.Fatalf("expected the queued batch to be returned, got %+v", events)
	}
	if more := w.SimulateStep(); more != nil {
		t.Fatalf("expected nil once the queue is drained, got %+v", more)
	}
}

func TestWorldCreatePuckAndSkaterDelegateToPool(t *testing.T) {
	w := NewWorld(DefaultRink(), &QueuedStepper{})

	puckIdx, ok := w.CreatePuck(Vec3{}, Rot{}, false)
	if !ok || puckIdx != 0 {
		t.Fatalf("expected puck at slot 0, got %d ok=%v", puckIdx, ok)
	}

	skaterIdx, ok := w.CreateSkater(TeamBlue, Vec3{}, Rot{}, HandRight, 4, "LW", 85)
	if !ok || skaterIdx != 1 {
		t.Fatalf("expected skater at slot 1, got %d", skaterIdx)
	}

	w.Free(puckIdx)
	if !w.Pool.Get(puckIdx).IsEmpty() {
		t.Fatalf("expected slot 0 freed")
	}
}
