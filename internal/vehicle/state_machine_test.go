package vehicle

import (
	"testing"

	"github.com/FleetHub/FleetHub/internal/common/errs"
)

func TestCanTransitionForbiddenPairs(t *testing.T) {
	if CanTransition(StatusRented, StatusInMaintenance) {
		t.Fatalf("expected RENTED -> IN_MAINTENANCE not allowed")
	}
	if CanTransition(StatusInMaintenance, StatusRented) {
		t.Fatalf("expected IN_MAINTENANCE -> RENTED not allowed")
	}
	if !CanTransition(StatusAvailable, StatusRented) {
		t.Fatalf("expected AVAILABLE -> RENTED allowed")
	}
	if !CanTransition(StatusRented, StatusAvailable) {
		t.Fatalf("expected RENTED -> AVAILABLE allowed")
	}
	if !CanTransition(StatusInMaintenance, StatusAvailable) {
		t.Fatalf("expected IN_MAINTENANCE -> AVAILABLE allowed")
	}
}

func TestCanTransitionIdentityAndOpaque(t *testing.T) {
	// 原地流转允许
	for _, s := range []Status{StatusAvailable, StatusRented, StatusInMaintenance} {
		if !CanTransition(s, s) {
			t.Fatalf("expected %s -> %s allowed", s, s)
		}
	}
	// 未知状态按不透明值处理，不在禁止列表即允许
	if !CanTransition(Status("RESERVED"), StatusRented) {
		t.Fatalf("expected RESERVED -> RENTED allowed")
	}
	if !CanTransition(StatusAvailable, Status("RESERVED")) {
		t.Fatalf("expected AVAILABLE -> RESERVED allowed")
	}
}

func TestTransitionApplies(t *testing.T) {
	v := &Vehicle{Status: StatusAvailable}
	if err := Transition(v, StatusRented); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if v.Status != StatusRented {
		t.Fatalf("expected status RENTED, got %s", v.Status)
	}

	err := Transition(v, StatusInMaintenance)
	if err == nil {
		t.Fatalf("expected forbidden transition to fail")
	}
	if !errs.IsKind(err, errs.KindInvalidState) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
	if v.Status != StatusRented {
		t.Fatalf("status must not change on rejected transition, got %s", v.Status)
	}
}

func TestTransitionNilVehicle(t *testing.T) {
	if err := Transition(nil, StatusAvailable); err == nil {
		t.Fatalf("expected error for nil vehicle")
	}
}
