// Package flowsim simulates the external, UI-owning payment collection
// flow for development and demos. Instead of showing a payment sheet it
// waits a configurable delay and posts a scripted outcome back to the
// bridge's result endpoint, exercising the same out-of-band completion
// channel a real flow would use.
package flowsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alovak/dropin-bridge/dropin"
	"github.com/alovak/dropin-bridge/dropin/models"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Simulator implements dropin.FlowLauncher.
type Simulator struct {
	Base    string
	HTTP    *http.Client
	Delay   time.Duration
	Outcome models.FlowOutcome

	logger *slog.Logger
}

func New(logger *slog.Logger, base string, hc *http.Client) *Simulator {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Simulator{
		Base:   strings.TrimRight(base, "/"),
		HTTP:   hc,
		Delay:  500 * time.Millisecond,
		logger: logger.With(slog.String("component", "flowsim")),
		Outcome: models.FlowOutcome{
			Status: models.FlowApproved,
			Method: &models.PaymentMethod{
				Nonce:                  uuid.New().String(),
				TypeLabel:              "Visa",
				Description:            "ending in 11",
				Card:                   true,
				LiabilityShiftPossible: true,
				LiabilityShifted:       true,
			},
		},
	}
}

func (s *Simulator) Launch(ctx context.Context, surface dropin.HostSurface, requestID uuid.UUID, params *models.LaunchParameters) error {
	if params == nil || params.Credential == "" {
		return fmt.Errorf("launch parameters are incomplete")
	}

	s.logger.Info("flow launched",
		slog.String("request_id", requestID.String()),
		slog.String("surface", surface.ID()))

	go func() {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return
		}
		if err := s.postResult(requestID); err != nil {
			s.logger.Error("posting flow result", "err", err)
		}
	}()

	return nil
}

func (s *Simulator) postResult(requestID uuid.UUID) error {
	body, err := json.Marshal(s.Outcome)
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}

	url := fmt.Sprintf("%s/dropin/requests/%s/result", s.Base, requestID)
	resp, err := s.HTTP.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("result rejected: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

// Surface is a host surface for demos. It supports fingerprint collection.
type Surface struct {
	Name    string
	Session string
}

func (s *Surface) ID() string { return s.Name }

func (s *Surface) FingerprintSession() string { return s.Session }

// PlainSurface is a host surface without fingerprint support; the
// fingerprint step is skipped for requests launched from it.
type PlainSurface struct {
	Name string
}

func (s *PlainSurface) ID() string { return s.Name }
