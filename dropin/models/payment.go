package models

// ResolvedPayment is the settlement payload delivered to the caller on
// success. DeviceFingerprint is best-effort and may be empty.
type ResolvedPayment struct {
	Token             string `json:"token"`
	Type              string `json:"type"`
	Description       string `json:"description"`
	IsDefault         bool   `json:"isDefault"`
	DeviceFingerprint string `json:"deviceFingerprint,omitempty"`
}
