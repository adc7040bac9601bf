package dropin

import (
	"context"
	"sync"
	"time"

	"github.com/alovak/dropin-bridge/dropin/models"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Settlement is the single terminal outcome delivered to the caller of
// Start. Exactly one of Payment or Err is set.
type Settlement struct {
	Payment *models.ResolvedPayment
	Err     error
}

// pendingRequest is the single in-flight slot. It is created by Start,
// cleared atomically with the first settlement, and never settled twice:
// once guards the send.
type pendingRequest struct {
	id         uuid.UUID
	credential string
	settle     chan Settlement
	once       sync.Once
	timer      *time.Timer
}

// Correlator matches a fire-and-forget Start call to the out-of-band
// completion event posted later by the external flow, and delivers exactly
// one settlement per Start on every path.
type Correlator struct {
	cfg       *Config
	logger    *slog.Logger
	builder   *Builder
	launcher  FlowLauncher
	collector FingerprintCollector
	surfaces  SurfaceProvider
	journal   *Repository

	mu      sync.Mutex
	pending *pendingRequest
}

func NewCorrelator(logger *slog.Logger, cfg *Config, builder *Builder, launcher FlowLauncher, collector FingerprintCollector, surfaces SurfaceProvider, journal *Repository) *Correlator {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Correlator{
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "correlator")),
		builder:   builder,
		launcher:  launcher,
		collector: collector,
		surfaces:  surfaces,
		journal:   journal,
	}
}

// Start validates the options, launches the external flow and returns a
// channel that receives the settlement once the flow completes. The channel
// is buffered; the settlement is delivered even if nobody is receiving yet.
// Start never returns an error: every failure is itself a settlement.
func (c *Correlator) Start(ctx context.Context, opts models.RequestOptions) <-chan Settlement {
	req := &pendingRequest{
		id:         uuid.New(),
		credential: opts.Credential,
		settle:     make(chan Settlement, 1),
	}

	params, err := c.builder.Build(opts)
	if err != nil {
		c.settle(ctx, req, Settlement{Err: err})
		return req.settle
	}

	surface := c.currentSurface()
	if surface == nil {
		c.settle(ctx, req, Settlement{Err: ErrNoHostSurface})
		return req.settle
	}

	c.mu.Lock()
	prev := c.pending
	if prev != nil && c.cfg.StrictInFlight {
		c.mu.Unlock()
		c.settle(ctx, req, Settlement{Err: ErrRequestAlreadyInFlight})
		return req.settle
	}
	c.pending = req
	if d := c.cfg.AwaitTimeout; d > 0 {
		req.timer = time.AfterFunc(d, func() { c.expire(req.id) })
	}
	c.mu.Unlock()

	if prev != nil {
		// Newest request wins; the displaced caller still gets its one
		// settlement.
		c.stopTimer(prev)
		c.settle(ctx, prev, Settlement{Err: ErrRequestSuperseded})
	}

	if err := c.launcher.Launch(ctx, surface, req.id, params); err != nil {
		c.logger.Error("launching external flow", "err", err)
		if c.clear(req.id) != nil {
			// The flow never started, so its message is the only
			// diagnostic we can hand back.
			c.settle(ctx, req, Settlement{Err: &Error{Code: err.Error(), Message: err.Error()}})
		}
		return req.settle
	}

	c.logger.Info("external flow launched",
		slog.String("request_id", req.id.String()),
		slog.String("surface", surface.ID()),
		slog.Bool("wallet", params.Wallet != nil))

	return req.settle
}

// Collect is a blocking convenience around Start. It waits for the
// settlement or for ctx, whichever comes first. An abandoned wait does not
// clear the slot: the flow is still running and its completion event will
// settle (and release) the slot when it arrives.
func (c *Correlator) Collect(ctx context.Context, opts models.RequestOptions) (*models.ResolvedPayment, error) {
	select {
	case s := <-c.Start(ctx, opts):
		return s.Payment, s.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HandleFlowResult processes the completion event posted by the external
// flow. Events that do not match the in-flight request id, or arrive when
// nothing is pending, are dropped; the bool reports whether the event was
// consumed. A matched event settles the caller exactly once.
func (c *Correlator) HandleFlowResult(ctx context.Context, requestID uuid.UUID, outcome models.FlowOutcome) (handled bool) {
	req := c.clear(requestID)
	if req == nil {
		c.logger.Info("dropping stale flow result", slog.String("request_id", requestID.String()))
		return false
	}
	// The event claimed the slot: it counts as consumed from here on, even
	// if resolving it below ends in a recovered panic.
	handled = true

	// The slot is already cleared; whatever happens below, the caller gets
	// exactly one settlement.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("recovered while resolving payment", "panic", r)
			c.settle(ctx, req, Settlement{Err: ErrPaymentResolutionFailed})
		}
	}()

	method, cerr := Classify(outcome)
	if cerr != nil {
		c.settle(ctx, req, Settlement{Err: cerr})
		return true
	}

	if method.Nonce == "" {
		c.settle(ctx, req, Settlement{Err: ErrPaymentResolutionFailed})
		return true
	}

	payment := &models.ResolvedPayment{
		Token:       method.Nonce,
		Type:        method.TypeLabel,
		Description: method.Description,
		IsDefault:   method.IsDefault,
	}
	payment.DeviceFingerprint = c.collectFingerprint(ctx, req.credential)

	c.settle(ctx, req, Settlement{Payment: payment})
	return true
}

// collectFingerprint runs the best-effort device fingerprint step. Every
// failure mode collapses to an empty fingerprint: unsupported surface,
// missing collector, collector error, timeout, panicking collector.
func (c *Correlator) collectFingerprint(ctx context.Context, credential string) (data string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("recovered during fingerprint collection, settling without it", "panic", r)
			data = ""
		}
	}()

	if c.collector == nil {
		return ""
	}
	capable, ok := c.currentSurface().(FingerprintCapable)
	if !ok {
		c.logger.Info("surface does not support fingerprint collection, skipping")
		return ""
	}
	if d := c.cfg.FingerprintTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	data, err := c.collector.Collect(ctx, capable, credential)
	if err != nil {
		c.logger.Info("fingerprint collection failed, settling without it", slog.Any("err", err))
		return ""
	}
	return data
}

// expire settles an in-flight request that outlived the configured await
// timeout. A completion event that already won the race makes this a no-op.
func (c *Correlator) expire(requestID uuid.UUID) {
	req := c.clear(requestID)
	if req == nil {
		return
	}
	c.settle(context.Background(), req, Settlement{
		Err: Errf(CodeAwaitTimeout, "no completion event within %s", c.cfg.AwaitTimeout),
	})
}

// clear removes the pending slot if it still holds requestID, returning the
// removed request or nil. Compare-and-clear keeps duplicate completion
// deliveries idempotent.
func (c *Correlator) clear(requestID uuid.UUID) *pendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	req := c.pending
	if req == nil || req.id != requestID {
		return nil
	}
	c.pending = nil
	c.stopTimer(req)
	return req
}

func (c *Correlator) stopTimer(req *pendingRequest) {
	if req.timer != nil {
		req.timer.Stop()
	}
}

// settle delivers the terminal outcome. The once guard makes a second call
// for the same request a no-op, so no path can double-settle.
func (c *Correlator) settle(ctx context.Context, req *pendingRequest, s Settlement) {
	req.once.Do(func() {
		req.settle <- s

		if s.Err != nil {
			c.logger.Info("request settled with failure",
				slog.String("request_id", req.id.String()),
				slog.Any("err", s.Err))
		} else {
			c.logger.Info("request settled",
				slog.String("request_id", req.id.String()),
				slog.String("type", s.Payment.Type))
		}

		if c.journal != nil {
			if err := c.journal.RecordSettlement(ctx, NewSettlementRecord(req.id, s)); err != nil {
				c.logger.Error("recording settlement", "err", err)
			}
		}
	})
}

func (c *Correlator) currentSurface() HostSurface {
	if c.surfaces == nil {
		return nil
	}
	return c.surfaces()
}
