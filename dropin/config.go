package dropin

import "time"

// Config is a configuration for the drop-in bridge application
type Config struct {
	HTTPAddr string
	// StrictInFlight rejects an overlapping Start with RequestAlreadyInFlight.
	// When false, the newest request wins and the displaced caller is settled
	// with RequestSuperseded.
	StrictInFlight bool
	// AwaitTimeout bounds the wait for the external flow's completion event.
	// Zero disables the bound, matching the upstream SDK behavior.
	AwaitTimeout time.Duration
	// FingerprintTimeout bounds the device fingerprint step. On expiry the
	// settlement proceeds without a fingerprint.
	FingerprintTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:           "localhost:9090",
		StrictInFlight:     true,
		FingerprintTimeout: 10 * time.Second,
	}
}
