// Package workflow drives a single deposit or withdraw interaction:
// idle -> modal open -> submitting -> idle.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/logging"

	"github.com/shopspring/decimal"
)

type Mode string

const (
	Deposit  Mode = "deposit"
	Withdraw Mode = "withdraw"
)

type State int

const (
	Idle State = iota
	ModalOpen
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ModalOpen:
		return "modal_open"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultCooldown keeps an account locked briefly after a deposit or
// withdraw completes.
const DefaultCooldown = 500 * time.Millisecond

var (
	ErrInvalidMode    = errors.New("unknown transaction mode")
	ErrModalOpen      = errors.New("another transaction is already open")
	ErrNoModal        = errors.New("no transaction is open")
	ErrSubmitting     = errors.New("transaction is being submitted")
	ErrAccountBusy    = errors.New("account is busy")
	ErrInvalidAmount  = errors.New("Please enter a valid amount")
	ErrExceedsBalance = errors.New("Cannot withdraw amount more than current balance")
)

// Service performs the balance changes. *client.AccountClient implements it.
type Service interface {
	Deposit(ctx context.Context, id int64, amount decimal.Decimal) (*dto.AccountResponse, error)
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (*dto.AccountResponse, error)
}

// Intent is the transaction being edited. It only exists while the modal is
// open or submitting.
type Intent struct {
	Mode    Mode
	Account dto.AccountResponse
	Amount  string
}

type Option func(*Workflow)

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(w *Workflow) {
		w.cooldown = d
	}
}

// WithRefresh registers the full-list refresh run after every successful
// confirm. Its error is logged; the refresher reports failures itself.
func WithRefresh(fn func(ctx context.Context) error) Option {
	return func(w *Workflow) {
		w.refresh = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// Workflow is safe for concurrent use. The service call runs outside the
// lock.
type Workflow struct {
	mu        sync.Mutex
	svc       Service
	busy      *BusySet
	cooldown  time.Duration
	refresh   func(ctx context.Context) error
	logger    *slog.Logger
	state     State
	intent    *Intent
	inlineErr string
}

// New builds a workflow. busy may be shared with other mutations (delete) so
// an account is never mutated twice at once; nil gets a private set.
func New(svc Service, busy *BusySet, opts ...Option) *Workflow {
	if busy == nil {
		busy = NewBusySet()
	}
	w := &Workflow{
		svc:      svc,
		busy:     busy,
		cooldown: DefaultCooldown,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Intent returns a copy of the open intent.
func (w *Workflow) Intent() (Intent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.intent == nil {
		return Intent{}, false
	}
	return *w.intent, true
}

// InlineError is the withdraw-over-balance message, or "".
func (w *Workflow) InlineError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inlineErr
}

// Open starts editing a transaction against account with an empty amount.
func (w *Workflow) Open(mode Mode, account dto.AccountResponse) error {
	if mode != Deposit && mode != Withdraw {
		return ErrInvalidMode
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Idle {
		return ErrModalOpen
	}
	if w.busy.IsBusy(account.ID) {
		return ErrAccountBusy
	}

	w.intent = &Intent{Mode: mode, Account: account}
	w.inlineErr = ""
	w.state = ModalOpen
	return nil
}

// SetAmount stores the raw input. Only withdraw re-validates it, and only
// against the balance; malformed input is reported on Confirm.
func (w *Workflow) SetAmount(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}

	w.intent.Amount = s
	w.inlineErr = ""
	if w.intent.Mode == Withdraw {
		if amount, err := parseAmount(s); err == nil && amount.GreaterThan(w.intent.Account.Balance) {
			w.inlineErr = ErrExceedsBalance.Error()
		}
	}
	return nil
}

// CanConfirm is false when the amount is empty, unparsable, not positive, a
// withdraw above the balance, or the account is busy.
func (w *Workflow) CanConfirm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != ModalOpen {
		return false
	}
	if _, err := w.validate(); err != nil {
		return false
	}
	return !w.busy.IsBusy(w.intent.Account.ID)
}

// Preview is the balance after the pending transaction, two decimals. ok is
// false when the amount is not usable yet, in which case the current balance
// is returned.
func (w *Workflow) Preview() (balance string, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.intent == nil {
		return "", false
	}

	current := w.intent.Account.Balance
	amount, err := parseAmount(w.intent.Amount)
	if err != nil {
		return current.StringFixed(2), false
	}
	if w.intent.Mode == Withdraw {
		return current.Sub(amount).StringFixed(2), !amount.GreaterThan(current)
	}
	return current.Add(amount).StringFixed(2), true
}

// Cancel discards the open intent.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case Idle:
		return ErrNoModal
	case Submitting:
		return ErrSubmitting
	}
	w.reset()
	return nil
}

// Confirm submits the intent. Validation failures return without a request
// and leave the modal open. On a service error the modal stays open and the
// error is returned; on success the workflow is idle again and the refresh
// hook runs.
func (w *Workflow) Confirm(ctx context.Context) (*dto.AccountResponse, error) {
	w.mu.Lock()
	if err := w.editable(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	amount, err := w.validate()
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	intent := *w.intent
	if !w.busy.TryAcquire(intent.Account.ID) {
		w.mu.Unlock()
		return nil, ErrAccountBusy
	}
	w.state = Submitting
	w.mu.Unlock()

	call := w.svc.Deposit
	if intent.Mode == Withdraw {
		call = w.svc.Withdraw
	}
	updated, err := call(ctx, intent.Account.ID, amount)
	w.busy.Release(intent.Account.ID, w.cooldown)

	w.mu.Lock()
	if err != nil {
		w.state = ModalOpen
		w.mu.Unlock()
		w.logger.Warn("transaction failed",
			"mode", string(intent.Mode),
			"account_id", intent.Account.ID,
			"error", err,
		)
		return nil, err
	}
	w.reset()
	w.mu.Unlock()

	w.logger.Info("transaction completed",
		"mode", string(intent.Mode),
		"account_id", intent.Account.ID,
		"amount", amount.StringFixed(2),
	)

	if w.refresh != nil {
		if err := w.refresh(ctx); err != nil {
			w.logger.Warn("refresh after transaction failed", "error", err)
		}
	}
	return updated, nil
}

func (w *Workflow) editable() error {
	switch w.state {
	case Idle:
		return ErrNoModal
	case Submitting:
		return ErrSubmitting
	}
	return nil
}

func (w *Workflow) validate() (decimal.Decimal, error) {
	amount, err := parseAmount(w.intent.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if w.intent.Mode == Withdraw && amount.GreaterThan(w.intent.Account.Balance) {
		return decimal.Zero, ErrExceedsBalance
	}
	return amount, nil
}

func (w *Workflow) reset() {
	w.intent = nil
	w.inlineErr = ""
	w.state = Idle
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
