package dropin

import (
	"context"

	"github.com/alovak/dropin-bridge/dropin/models"
	"github.com/google/uuid"
)

// HostSurface is the active application context the external flow is
// launched into. It disappears when the app has no foreground surface; the
// correlator fails fast with NoHostSurface in that case.
type HostSurface interface {
	// ID identifies the surface, for logging only.
	ID() string
}

// SurfaceProvider yields the current host surface, or nil when none is
// available.
type SurfaceProvider func() HostSurface

// FlowLauncher starts the external, UI-owning payment collection flow. The
// launch is fire-and-forget: Launch returns as soon as the flow is started,
// and the flow reports back later through an out-of-band completion event
// carrying the same request id.
type FlowLauncher interface {
	Launch(ctx context.Context, surface HostSurface, requestID uuid.UUID, params *models.LaunchParameters) error
}

// FlowLauncherFunc adapts a function to the FlowLauncher interface.
type FlowLauncherFunc func(ctx context.Context, surface HostSurface, requestID uuid.UUID, params *models.LaunchParameters) error

func (f FlowLauncherFunc) Launch(ctx context.Context, surface HostSurface, requestID uuid.UUID, params *models.LaunchParameters) error {
	return f(ctx, surface, requestID, params)
}
