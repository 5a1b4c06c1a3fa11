package payment

import "github.com/ahnafi/gym-management-app-sub000/internal/apperr"

var (
	ErrInvalidTransition  = apperr.Conflict("payment status transition not allowed")
	ErrScheduleRequired   = apperr.Validation("gym_class_schedule_id is required for class purchases")
	ErrUnknownPurchasable = apperr.Validation("unknown purchasable type")
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusFailed, StatusChallenge, StatusExpired, StatusCancelled},
	StatusChallenge: {StatusPaid, StatusFailed, StatusExpired, StatusCancelled},
}

// IsTerminal reports whether no further status change is accepted.
func IsTerminal(s Status) bool {
	switch s {
	case StatusPaid, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from may move to to. Writing the same
// status is not a transition.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MapGatewayStatus translates a gateway transaction_status/fraud_status pair.
// Statuses that do not settle anything map to pending.
func MapGatewayStatus(transactionStatus, fraudStatus string) Status {
	switch transactionStatus {
	case "capture":
		switch fraudStatus {
		case "accept":
			return StatusPaid
		case "challenge":
			return StatusChallenge
		case "":
			return StatusPending
		default:
			return StatusFailed
		}
	case "settlement":
		return StatusPaid
	case "deny", "failure":
		return StatusFailed
	case "expire":
		return StatusExpired
	case "cancel":
		return StatusCancelled
	default:
		return StatusPending
	}
}
