package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTickOverBudgetCountsOverrun(t *testing.T) {
	before := testutil.ToFloat64(tickOverruns)
	RecordTick(15 * time.Millisecond)
	after := testutil.ToFloat64(tickOverruns)
	if after != before+1 {
		t.Fatalf("expected overrun counter to increment, before=%v after=%v", before, after)
	}
}

func TestRecordTickWithinBudgetDoesNotOverrun(t *testing.T) {
	before := testutil.ToFloat64(tickOverruns)
	RecordTick(2 * time.Millisecond)
	after := testutil.ToFloat64(tickOverruns)
	if after != before {
		t.Fatalf("expected overrun counter unchanged, before=%v after=%v", before, after)
	}
}

func TestSetSessionCount(t *testing.T) {
	SetSessionCount(12)
	if got := testutil.ToFloat64(sessionCount); got != 12 {
		t.Fatalf("expected gauge 12, got %v", got)
	}
}

func TestRecordRuleEventByKind(t *testing.T) {
	before := testutil.ToFloat64(ruleEvents.WithLabelValues("EventPuckEnteredNet"))
	RecordRuleEvent("EventPuckEnteredNet")
	after := testutil.ToFloat64(ruleEvents.WithLabelValues("EventPuckEnteredNet"))
	if after != before+1 {
		t.Fatalf("expected rule-event counter to increment, before=%v after=%v", before, after)
	}
}

func TestRecordGoalIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(goalsScored)
	RecordGoal()
	after := testutil.ToFloat64(goalsScored)
	if after != before+1 {
		t.Fatalf("expected goals counter to increment, before=%v after=%v", before, after)
	}
}
