package orders

import (
	"context"
	"errors"
	"sync"

	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
)

// Coordinator states.
type State string

const (
	StateEditing          State = "editing"
	StateSubmitting       State = "submitting"
	StateAwaitingOverride State = "awaiting_override"
	StateSubmitted        State = "submitted"
)

// Coordinator errors.
var (
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrNothingPending     = errors.New("no submission is awaiting an override code")
)

// Creator is the order service seen from the coordinator.
type Creator interface {
	Create(ctx context.Context, d *Draft, caller Caller) (*CreateResult, error)
}

// Outcome reports where a submission attempt left the flow.
type Outcome struct {
	State  State
	Result *CreateResult
}

// Coordinator drives the submit / override-retry flow for one front-desk
// session. It guards against duplicate submission with a busy flag and
// retains the draft verbatim while an override code is being collected, so
// a retry never re-requests or alters previously entered fields.
type Coordinator struct {
	mu      sync.Mutex
	creator Creator
	caller  Caller
	state   State
	busy    bool
	pending *Draft
}

func NewCoordinator(creator Creator, caller Caller) *Coordinator {
	return &Coordinator{creator: creator, caller: caller, state: StateEditing}
}

// State returns the current flow state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns a copy of the retained draft, if any.
func (c *Coordinator) Pending() *Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	cp := *c.pending
	return &cp
}

// Submit sends a fresh draft. On a transport or validation failure the flow
// returns to Editing with the draft fields intact except the one-time
// override code, which is cleared.
func (c *Coordinator) Submit(ctx context.Context, d *Draft) (Outcome, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Outcome{State: c.state}, ErrSubmissionInFlight
	}
	c.busy = true
	c.state = StateSubmitting
	c.mu.Unlock()

	res, err := c.creator.Create(ctx, d, c.caller)
	return c.finish(res, err, d)
}

// SubmitWithOverride resubmits the retained draft with the override code
// attached; every other field is carried over verbatim.
func (c *Coordinator) SubmitWithOverride(ctx context.Context, code string) (Outcome, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Outcome{State: c.state}, ErrSubmissionInFlight
	}
	if c.state != StateAwaitingOverride || c.pending == nil {
		state := c.state
		c.mu.Unlock()
		return Outcome{State: state}, ErrNothingPending
	}
	if !validCodeLen(code) {
		state := c.state
		c.mu.Unlock()
		return Outcome{State: state}, ErrShortOverrideCode
	}
	retry := *c.pending
	retry.DiscountOverrideCode = code
	c.busy = true
	c.state = StateSubmitting
	c.mu.Unlock()

	res, err := c.creator.Create(ctx, &retry, c.caller)
	return c.finish(res, err, &retry)
}

// Reset abandons any pending submission and returns to Editing.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.state = StateEditing
	c.pending = nil
}

func (c *Coordinator) finish(res *CreateResult, err error, attempted *Draft) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		// Recoverable: back to editing, fields intact, code cleared.
		c.state = StateEditing
		kept := *attempted
		kept.DiscountOverrideCode = ""
		c.pending = &kept
		return Outcome{State: StateEditing}, err
	}

	if res.RequiresOverride {
		c.state = StateAwaitingOverride
		kept := *attempted
		kept.DiscountOverrideCode = ""
		c.pending = &kept
		return Outcome{State: StateAwaitingOverride, Result: res}, nil
	}

	c.state = StateSubmitted
	c.pending = nil
	return Outcome{State: StateSubmitted, Result: res}, nil
}

func validCodeLen(code string) bool {
	return billing.ValidOverrideCodeFormat(code)
}
