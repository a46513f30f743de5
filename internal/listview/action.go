package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cashloan/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid action dialog transition")

type DialogState string

const (
	DialogClosed     DialogState = "closed"
	DialogOpen       DialogState = "open"
	DialogConfirming DialogState = "confirming"
	DialogSubmitting DialogState = "submitting"
	DialogSucceeded  DialogState = "succeeded"
	DialogFailed     DialogState = "failed"
)

// ActionDialog is the state of one action dialog (approve, reject, ...) for
// one record. F is the dialog's form.
//
//	closed -> open -> [confirming ->] submitting -> succeeded -> closed
//	                                            \-> failed -> submitting | closed
type ActionDialog[F any] struct {
	Name            string
	RequiresConfirm bool

	mu       sync.Mutex
	state    DialogState
	targetID int64
	form     F
	message  string
}

func NewActionDialog[F any](name string, requiresConfirm bool) *ActionDialog[F] {
	return &ActionDialog[F]{Name: name, RequiresConfirm: requiresConfirm, state: DialogClosed}
}

func (d *ActionDialog[F]) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *ActionDialog[F]) Target() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targetID
}

func (d *ActionDialog[F]) Form() F {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// Message is the last error (failed) or success message.
func (d *ActionDialog[F]) Message() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.message
}

func (d *ActionDialog[F]) transition(from []DialogState, to DialogState) error {
	for _, s := range from {
		if d.state == s {
			d.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, d.Name, d.state, to)
}

// Open starts the dialog for one record with a fresh form.
func (d *ActionDialog[F]) Open(id int64, form F) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.transition([]DialogState{DialogClosed, DialogSucceeded}, DialogOpen); err != nil {
		return err
	}
	d.targetID = id
	d.form = form
	d.message = ""
	return nil
}

// Edit replaces the form while the dialog accepts input.
func (d *ActionDialog[F]) Edit(form F) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case DialogOpen, DialogFailed, DialogConfirming:
		d.form = form
		return nil
	}
	return fmt.Errorf("%w: %s edit while %s", ErrInvalidTransition, d.Name, d.state)
}

// Confirm asks for explicit confirmation before Submit.
func (d *ActionDialog[F]) Confirm() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transition([]DialogState{DialogOpen, DialogFailed}, DialogConfirming)
}

// Cancel closes the dialog and drops the form unless a submit is running.
func (d *ActionDialog[F]) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DialogSubmitting {
		return fmt.Errorf("%w: %s cancel while submitting", ErrInvalidTransition, d.Name)
	}
	var zero F
	d.state = DialogClosed
	d.form = zero
	d.targetID = 0
	d.message = ""
	return nil
}

// Submit runs send with the current form. On success the dialog closes and the
// form is cleared; on failure it stays open with the form intact and the
// user-facing error message set.
func (d *ActionDialog[F]) Submit(ctx context.Context, send func(ctx context.Context, id int64, form F) (string, error)) error {
	d.mu.Lock()
	allowed := []DialogState{DialogOpen, DialogFailed}
	if d.RequiresConfirm {
		allowed = []DialogState{DialogConfirming}
	}
	if err := d.transition(allowed, DialogSubmitting); err != nil {
		d.mu.Unlock()
		return err
	}
	id, form := d.targetID, d.form
	d.mu.Unlock()

	msg, err := send(ctx, id, form)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = DialogFailed
		d.message = domain.UserMessage(err, "Failed to "+d.Name)
		return err
	}
	var zero F
	d.state = DialogSucceeded
	d.form = zero
	d.message = msg
	return nil
}

// Close acknowledges a finished action. The success message stays readable
// until the next Open.
func (d *ActionDialog[F]) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.transition([]DialogState{DialogSucceeded}, DialogClosed); err != nil {
		return err
	}
	d.targetID = 0
	return nil
}

// Reconciler is the post-action hook that brings a list back in line with a
// mutation the backend accepted.
type Reconciler[T any] interface {
	Reconcile(ctx context.Context, c *Controller[T], id int64) error
}

// Refetch reloads the current page.
type Refetch[T any] struct{}

func (Refetch[T]) Reconcile(ctx context.Context, c *Controller[T], _ int64) error {
	return c.Refresh(ctx)
}

// PatchInPlace edits the affected record locally. When the record is not on
// the loaded page it falls back to a refetch.
type PatchInPlace[T any] struct {
	Apply func(*T)
}

func (p PatchInPlace[T]) Reconcile(ctx context.Context, c *Controller[T], id int64) error {
	if p.Apply != nil && c.Patch(id, p.Apply) {
		return nil
	}
	return c.Refresh(ctx)
}

// RunAction submits the dialog and, on success, reconciles the list and closes
// the dialog.
func RunAction[T, F any](
	ctx context.Context,
	c *Controller[T],
	d *ActionDialog[F],
	r Reconciler[T],
	send func(ctx context.Context, id int64, form F) (string, error),
) error {
	if err := d.Submit(ctx, send); err != nil {
		return err
	}
	id := d.Target()
	_ = d.Close()
	if r == nil {
		return nil
	}
	// the action went through; a failed reload only leaves stale rows, which the
	// controller already reports through its error state
	if err := r.Reconcile(ctx, c, id); domain.IsUnauthorized(err) {
		return err
	}
	return nil
}
