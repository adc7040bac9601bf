package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alovak/dropin-bridge/dropin"
	"github.com/alovak/dropin-bridge/internal/devicedata"
	"github.com/alovak/dropin-bridge/internal/flowsim"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout))

	config := dropin.DefaultConfig()
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		config.HTTPAddr = v
	}
	if v := os.Getenv("STRICT_IN_FLIGHT"); v != "" {
		config.StrictInFlight = v == "true"
	}
	if v := os.Getenv("AWAIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AwaitTimeout = d
		} else {
			logger.Info("invalid AWAIT_TIMEOUT; leaving unbounded", slog.String("value", v))
		}
	}
	if v := os.Getenv("FINGERPRINT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.FingerprintTimeout = d
		}
	}

	// Until a real flow integration is wired the simulator stands in for
	// the external payment UI; it posts outcomes back over HTTP like a
	// real flow would.
	surface := &flowsim.Surface{Name: "server", Session: "dev-session"}
	launcher := flowsim.New(logger, "http://"+config.HTTPAddr, &http.Client{Timeout: 10 * time.Second})

	app := dropin.NewApp(logger, config, launcher, devicedata.New(), func() dropin.HostSurface {
		return surface
	})

	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}
