package models

// FlowStatus is the terminal state reported by the external flow.
type FlowStatus string

const (
	FlowApproved  FlowStatus = "approved"
	FlowCancelled FlowStatus = "cancelled"
	FlowFailed    FlowStatus = "failed"
)

// PaymentMethod is the tokenized payment method produced by an approved
// flow.
type PaymentMethod struct {
	Nonce       string `json:"nonce"`
	TypeLabel   string `json:"type"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
	// Card marks the token as a card-type token carrying 3-D Secure
	// liability info; non-card tokens skip the liability checks.
	Card                   bool `json:"card"`
	LiabilityShiftPossible bool `json:"liabilityShiftPossible"`
	LiabilityShifted       bool `json:"liabilityShifted"`
}

// FlowOutcome is the completion event posted by the external flow, consumed
// exactly once by the correlator.
type FlowOutcome struct {
	Status FlowStatus `json:"status"`
	// Method is set only for approved outcomes.
	Method *PaymentMethod `json:"method,omitempty"`
	// Message is the flow's own diagnostic, set only for failed outcomes.
	Message string `json:"message,omitempty"`
}
