package lifecycle

import (
	"testing"

	"smartfactory/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    model.LotStatus
		to      model.LotStatus
		allowed bool
	}{
		{model.LotStatusReceived, model.LotStatusCutting, true},
		{model.LotStatusReceived, model.LotStatusQualityBlocked, true},
		{model.LotStatusReceived, model.LotStatusPackaging, false},
		{model.LotStatusReceived, model.LotStatusShipped, false},
		{model.LotStatusCutting, model.LotStatusGrinding, true},
		{model.LotStatusCutting, model.LotStatusReceived, false},
		{model.LotStatusGrinding, model.LotStatusGrinding, true},
		{model.LotStatusGrinding, model.LotStatusSeasoning, true},
		{model.LotStatusGrinding, model.LotStatusPackaging, true},
		{model.LotStatusSeasoning, model.LotStatusSeasoning, true},
		{model.LotStatusSeasoning, model.LotStatusGrinding, false},
		{model.LotStatusPackaging, model.LotStatusStorage, true},
		{model.LotStatusPackaging, model.LotStatusShipped, false},
		{model.LotStatusStorage, model.LotStatusShipped, true},
		{model.LotStatusShipped, model.LotStatusStorage, false},
		{model.LotStatusShipped, model.LotStatusQualityBlocked, false},
		{model.LotStatusQualityBlocked, model.LotStatusReceived, false},
		{model.LotStatusQualityBlocked, model.LotStatusCutting, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestQualityBlockedReachableFromNonTerminal(t *testing.T) {
	nonTerminal := []model.LotStatus{
		model.LotStatusReceived,
		model.LotStatusCutting,
		model.LotStatusGrinding,
		model.LotStatusSeasoning,
		model.LotStatusPackaging,
		model.LotStatusStorage,
	}
	for _, from := range nonTerminal {
		if !CanTransition(from, model.LotStatusQualityBlocked) {
			t.Errorf("quality_blocked should be reachable from %s", from)
		}
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(model.LotStatusGrinding) {
		t.Error("grinding should be a valid status")
	}
	if ValidStatus("melting") {
		t.Error("melting should not be a valid status")
	}
}

func TestNextStates(t *testing.T) {
	if states := NextStates(model.LotStatusShipped); len(states) != 0 {
		t.Errorf("shipped should be terminal, got next states %v", states)
	}
	if states := NextStates(model.LotStatusStorage); len(states) != 2 {
		t.Errorf("storage should have 2 next states, got %v", states)
	}
}

func TestTargetForOperation(t *testing.T) {
	if got := TargetForOperation(model.OperationGrinding); got != model.LotStatusGrinding {
		t.Errorf("grinding should target grinding, got %s", got)
	}
	if got := TargetForOperation(model.OperationSeasoning); got != model.LotStatusSeasoning {
		t.Errorf("seasoning should target seasoning, got %s", got)
	}
	if got := TargetForOperation(model.OperationMixing); got != model.LotStatusSeasoning {
		t.Errorf("mixing should target seasoning, got %s", got)
	}
}
