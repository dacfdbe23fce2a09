package objmodel

import "testing"

func TestAllocateAndFreeSlot(t *testing.T) {
	p := NewObjectPool()
	idx, ok := p.CreatePuck(Vec3{}, Rot{}, false)
	if !ok || idx != 0 {
		t.Fatalf("expected first puck at slot 0, got %d ok=%v", idx, ok)
	}

	idx2, ok := p.CreateSkater(TeamRed, Vec3{}, Rot{}, HandLeft, 3, "C", 80)
	if !ok || idx2 != 1 {
		t.Fatalf("expected skater at slot 1, got %d", idx2)
	}

	p.Free(idx)
	idx3, ok := p.AllocateSlot()
	if !ok || idx3 != 0 {
		t.Fatalf("expected freed slot 0 reused, got %d", idx3)
	}
}

func TestObjectPoolExhaustion(t *testing.T) {
	p := NewObjectPool()
	for i := 0; i < MaxSlots; i++ {
		if _, ok := p.CreatePuck(Vec3{}, Rot{}, false); !ok {
			t.Fatalf("unexpected exhaustion at %d", i)
		}
	}
	if _, ok := p.CreatePuck(Vec3{}, Rot{}, false); ok {
		t.Fatalf("expected exhaustion after filling all %d slots", MaxSlots)
	}
}

func TestPuckTouchHistoryFrontPush(t *testing.T) {
	puck := &Puck{}
	puck.PushTouch(Touch{SessionIndex: 5, Team: TeamRed, TickTime: 1150})
	puck.PushTouch(Touch{SessionIndex: 7, Team: TeamRed, TickTime: 1180})
	puck.PushTouch(Touch{SessionIndex: 5, Team: TeamRed, TickTime: 1200})

	scorerTouch, ok := puck.MostRecentToucher(TeamRed)
	if !ok || scorerTouch.SessionIndex != 5 {
		t.Fatalf("expected scorer session 5, got %+v", scorerTouch)
	}
	assistTouch, ok := puck.NextDistinctToucher(TeamRed, scorerTouch.SessionIndex)
	if !ok || assistTouch.SessionIndex != 7 {
		t.Fatalf("expected assist session 7, got %+v", assistTouch)
	}
}

func TestInOffensiveZoneProjection(t *testing.T) {
	geo := DefaultRink()
	deepRed := Vec3{Z: geo.OffensiveBlueLineRed + 5}
	if !geo.InOffensiveZone(TeamRed, deepRed) {
		t.Fatalf("expected red to be in its offensive zone deep past the line")
	}
	atCenter := Vec3{Z: geo.CenterZ}
	if geo.InOffensiveZone(TeamRed, atCenter) {
		t.Fatalf("expected center ice to not be in red's offensive zone")
	}
}
