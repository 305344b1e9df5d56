package main

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownRequest is returned when a decision references a request id
// that is not pending, either because it never existed or because it was
// already resolved. Duplicate decisions land here and are dropped.
var ErrUnknownRequest = errors.New("request not found or already resolved")

// DecisionCorrelator matches user decisions to pending requests and runs
// the owning handler's completion phase exactly once per request.
type DecisionCorrelator struct {
	mu       sync.Mutex
	inflight map[uint64]struct{}

	pending    *PendingRequestStore
	methods    *MethodRegistry
	dispatcher *ResponseDispatcher
	metrics    *Metrics
	lg         Logger
}

// NewDecisionCorrelator creates the correlator.
func NewDecisionCorrelator(
	pending *PendingRequestStore,
	methods *MethodRegistry,
	dispatcher *ResponseDispatcher,
	metrics *Metrics,
	lg Logger,
) *DecisionCorrelator {
	return &DecisionCorrelator{
		inflight:   make(map[uint64]struct{}),
		pending:    pending,
		methods:    methods,
		dispatcher: dispatcher,
		metrics:    metrics,
		lg:         lg.NewSystem("decision-correlator"),
	}
}

// Resolve applies the user's decision to the pending request with the
// given id. Exactly one of three things happens: the handler's completion
// phase runs and its outcome is dispatched, a session proposal is
// approved or rejected through the registry, or ErrUnknownRequest is
// returned and nothing else occurs.
//
// A completion failure is not an error of Resolve itself: the decision
// was consumed, the dapp receives an error response, and the failure is
// logged. Resolve only errors when the decision could not be correlated.
func (c *DecisionCorrelator) Resolve(ctx context.Context, requestID uint64, decision Decision) error {
	if !c.claim(requestID) {
		return ErrUnknownRequest
	}
	defer c.release(requestID)

	req, ok := c.pending.Get(requestID)
	if !ok {
		return ErrUnknownRequest
	}

	if req.SessionProposal {
		return c.dispatcher.ResolveSessionProposal(req, decision)
	}

	handler, ok := c.methods.Lookup(req.Method)
	if !ok {
		// Handlers never unregister, so a staged request without a handler
		// means the store was populated outside the router.
		c.lg.Error("no handler for staged request", "requestID", requestID, "method", req.Method)
		c.dispatcher.SendError(requestID, "")
		return nil
	}

	result, err := c.complete(ctx, handler, &req, decision)
	if err != nil {
		c.lg.Warn("request completion failed",
			"requestID", requestID, "method", req.Method, "approved", decision.Approved, "error", err)
		fallback := ""
		outcome := "error"
		if !decision.Approved {
			fallback = msgUserRejected
			outcome = "rejected"
		}
		c.dispatcher.SendError(requestID, errorMessageFor(err, fallback))
		c.countOutcome(req.Method, outcome)
		return nil
	}

	c.dispatcher.SendResult(requestID, result)
	if decision.Approved {
		c.countOutcome(req.Method, "approved")
	} else {
		c.countOutcome(req.Method, "rejected")
	}
	return nil
}

// complete invokes the handler's completion phase with panic isolation.
// A panicking handler fails its own request only; the correlator and the
// rest of the pending queue keep working.
func (c *DecisionCorrelator) complete(ctx context.Context, handler Handler, req *PendingRequest, decision Decision) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.lg.Error("handler panicked during completion", "requestID", req.ID, "method", req.Method, "panic", r)
			result = nil
			err = errors.Errorf("handler panic: %v", r)
		}
	}()

	return handler.Complete(ctx, req, decision)
}

// claim marks the request id as being resolved. Concurrent duplicate
// decisions for the same id fail the claim and are dropped.
func (c *DecisionCorrelator) claim(requestID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[requestID]; busy {
		return false
	}
	c.inflight[requestID] = struct{}{}
	return true
}

func (c *DecisionCorrelator) release(requestID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, requestID)
}

func (c *DecisionCorrelator) countOutcome(method, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsCompleted.WithLabelValues(method, outcome).Inc()
}
