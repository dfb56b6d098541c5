package entities

import (
	"testing"
	"time"
)

func TestNextPhaseOrder(t *testing.T) {
	next, ok := PhaseInit.NextPhase()
	if !ok || next != PhaseVoting {
		t.Fatalf("expected init -> voting, got %s ok=%v", next, ok)
	}
	next, ok = PhaseVoting.NextPhase()
	if !ok || next != PhaseClosed {
		t.Fatalf("expected voting -> closed, got %s ok=%v", next, ok)
	}
	if _, ok := PhaseClosed.NextPhase(); ok {
		t.Fatalf("closed must be terminal")
	}
}

func TestWindowOpenIsHalfOpen(t *testing.T) {
	start := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	election := Election{StartTime: start, EndTime: end}

	if election.WindowOpen(start.Add(-time.Second)) {
		t.Fatalf("window must be shut before start")
	}
	if !election.WindowOpen(start) {
		t.Fatalf("window must include start instant")
	}
	if !election.WindowOpen(end.Add(-time.Second)) {
		t.Fatalf("window must include final second")
	}
	if election.WindowOpen(end) {
		t.Fatalf("window must exclude end instant")
	}
}
