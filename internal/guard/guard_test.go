package guard

import (
	"errors"
	"testing"

	"github.com/omergehad405/EduMaster/internal/failure"
)

func TestGuardCurrentTicket(t *testing.T) {
	var g Guard
	tk := g.Begin("track-1")
	if err := g.Check(tk); err != nil {
		t.Fatalf("Check(current) = %v, want nil", err)
	}
}

func TestGuardSupersededTicket(t *testing.T) {
	var g Guard
	old := g.Begin("track-1")
	g.Begin("track-2")

	err := g.Check(old)
	if !errors.Is(err, failure.ErrStale) {
		t.Errorf("Check(old) = %v, want ErrStale", err)
	}
}

func TestGuardSameKeyRestart(t *testing.T) {
	var g Guard
	first := g.Begin("lesson-1")
	second := g.Begin("lesson-1")

	if err := g.Check(first); !errors.Is(err, failure.ErrStale) {
		t.Errorf("Check(first) = %v, want ErrStale", err)
	}
	if err := g.Check(second); err != nil {
		t.Errorf("Check(second) = %v, want nil", err)
	}
}

func TestGuardDeactivate(t *testing.T) {
	var g Guard
	tk := g.Begin("track-1")
	g.Deactivate()

	if err := g.Check(tk); !errors.Is(err, failure.ErrStale) {
		t.Errorf("Check after Deactivate = %v, want ErrStale", err)
	}
	if err := g.Check(Ticket{}); err == nil {
		t.Error("Check(zero ticket) = nil, want error")
	}
}
