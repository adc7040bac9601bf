package dropin

import "github.com/alovak/dropin-bridge/dropin/models"

// Classify maps a completed flow outcome to either an accepted payment
// method or a typed settlement error. Card tokens must carry a usable
// liability shift: shifting must be possible and must actually have
// happened. Non-card tokens skip the liability checks. Pure function, no
// side effects.
func Classify(outcome models.FlowOutcome) (*models.PaymentMethod, *Error) {
	switch outcome.Status {
	case models.FlowApproved:
		method := outcome.Method
		if method == nil {
			return nil, ErrPaymentResolutionFailed
		}
		if method.Card {
			if !method.LiabilityShiftPossible {
				return nil, ErrLiabilityNotShiftable
			}
			if !method.LiabilityShifted {
				return nil, ErrLiabilityNotShifted
			}
		}
		return method, nil
	case models.FlowCancelled:
		return nil, ErrUserCancellation
	default:
		// The flow's own message is the only diagnostic available; it
		// becomes both code and message.
		return nil, &Error{Code: outcome.Message, Message: outcome.Message}
	}
}
