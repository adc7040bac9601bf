package devicedata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alovak/dropin-bridge/dropin"
	"github.com/google/uuid"
)

// Collector produces the device fingerprint blob attached to resolved
// payments. The payload shape follows the processor's device-data contract:
// a JSON object carrying a per-collection session id.
type Collector struct{}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Collect(ctx context.Context, surface dropin.FingerprintCapable, credential string) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("credential is required")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	payload := struct {
		DeviceSessionID  string `json:"device_session_id"`
		SurfaceSessionID string `json:"surface_session_id"`
		CorrelationID    string `json:"correlation_id"`
	}{
		DeviceSessionID:  uuid.New().String(),
		SurfaceSessionID: surface.FingerprintSession(),
		CorrelationID:    uuid.New().String(),
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding device data: %w", err)
	}
	return string(out), nil
}
