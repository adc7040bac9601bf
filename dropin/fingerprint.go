package dropin

import "context"

// FingerprintCapable marks a host surface that supports device fingerprint
// collection. Surfaces that do not implement it skip the fingerprint step
// silently.
type FingerprintCapable interface {
	HostSurface
	FingerprintSession() string
}

// FingerprintCollector asynchronously collects a device fingerprint for
// fraud screening. Collection is best-effort end to end: any error, and any
// expiry of ctx, degrades the settlement to one without a fingerprint and
// never fails it.
type FingerprintCollector interface {
	Collect(ctx context.Context, surface FingerprintCapable, credential string) (string, error)
}

// FingerprintCollectorFunc adapts a function to the FingerprintCollector
// interface.
type FingerprintCollectorFunc func(ctx context.Context, surface FingerprintCapable, credential string) (string, error)

func (f FingerprintCollectorFunc) Collect(ctx context.Context, surface FingerprintCapable, credential string) (string, error) {
	return f(ctx, surface, credential)
}
