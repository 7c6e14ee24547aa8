package lifecycle

import "smartfactory/internal/model"

// transitions is the allowed-next-states table for Lot.status. A lot only
// moves forward through the plant; quality_blocked is reachable from any
// non-terminal state and is terminal for shipment purposes. Same-state
// entries inside the transformation band (grinding, seasoning) let repeat
// production operations be recorded against one lot.
var transitions = map[model.LotStatus][]model.LotStatus{
	model.LotStatusReceived:  {model.LotStatusCutting, model.LotStatusQualityBlocked},
	model.LotStatusCutting:   {model.LotStatusGrinding, model.LotStatusQualityBlocked},
	model.LotStatusGrinding:  {model.LotStatusGrinding, model.LotStatusSeasoning, model.LotStatusPackaging, model.LotStatusQualityBlocked},
	model.LotStatusSeasoning: {model.LotStatusSeasoning, model.LotStatusPackaging, model.LotStatusQualityBlocked},
	model.LotStatusPackaging: {model.LotStatusStorage, model.LotStatusQualityBlocked},
	model.LotStatusStorage:   {model.LotStatusShipped, model.LotStatusQualityBlocked},

	// Terminal states
	model.LotStatusShipped:        {},
	model.LotStatusQualityBlocked: {},
}

// CanTransition reports whether a lot in state from may move to state to.
func CanTransition(from, to model.LotStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the allowed next states for the given state.
func NextStates(from model.LotStatus) []model.LotStatus {
	next := transitions[from]
	out := make([]model.LotStatus, len(next))
	copy(out, next)
	return out
}

// ValidStatus reports whether s is one of the known lot statuses.
func ValidStatus(s model.LotStatus) bool {
	_, ok := transitions[s]
	return ok
}

// TargetForOperation maps a production operation to the lot status it leaves
// the lot in. Grinding keeps the lot in the grinding state; seasoning, mixing
// and other operations move it to seasoning.
func TargetForOperation(operation string) model.LotStatus {
	if operation == model.OperationGrinding {
		return model.LotStatusGrinding
	}
	return model.LotStatusSeasoning
}
