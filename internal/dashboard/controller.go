// Package dashboard holds the account list screen: fetch on mount, optional
// owner filtering, re-fetch after every mutation, and a dismissible banner.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bank-dashboard/internal/client"
	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/logging"
	"bank-dashboard/internal/session"
	"bank-dashboard/internal/workflow"

	"github.com/shopspring/decimal"
)

type Route string

const (
	RouteHome      Route = "/"
	RouteLogin     Route = "/login"
	RouteDashboard Route = "/dashboard"
)

// Navigator moves the front-end between screens.
type Navigator interface {
	Navigate(route Route)
}

// AccountService is the subset of *client.AccountClient the dashboard uses.
type AccountService interface {
	workflow.Service
	ListAll(ctx context.Context) ([]dto.AccountResponse, error)
	Create(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error)
	Delete(ctx context.Context, id int64) (string, error)
	Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) (*dto.TransferResponse, error)
}

// Sessions is implemented by *session.Manager.
type Sessions interface {
	Current(ctx context.Context) (*session.Session, bool)
	Clear(ctx context.Context) error
}

// Revoker invalidates the token server-side on logout.
type Revoker interface {
	Logout(ctx context.Context) error
}

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrSameAccount     = errors.New("Cannot transfer to the same account")
)

// Summary is the header figures shown above the list.
type Summary struct {
	TotalBalance string
	AccountCount int
}

type Option func(*Controller)

// WithOwnerFilter toggles filtering the list down to accounts whose holder
// name equals the session username. On by default.
func WithOwnerFilter(enabled bool) Option {
	return func(c *Controller) {
		c.filterByOwner = enabled
	}
}

func WithCooldown(d time.Duration) Option {
	return func(c *Controller) {
		c.cooldown = d
	}
}

func WithRevoker(r Revoker) Option {
	return func(c *Controller) {
		c.revoker = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller is safe for concurrent use; network calls run outside the lock.
type Controller struct {
	accounts      AccountService
	sessions      Sessions
	nav           Navigator
	revoker       Revoker
	busy          *workflow.BusySet
	tx            *workflow.Workflow
	filterByOwner bool
	cooldown      time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	list    []dto.AccountResponse
	banner  string
	started uint64
	applied uint64
}

func New(accounts AccountService, sessions Sessions, nav Navigator, opts ...Option) *Controller {
	c := &Controller{
		accounts:      accounts,
		sessions:      sessions,
		nav:           nav,
		busy:          workflow.NewBusySet(),
		filterByOwner: true,
		cooldown:      workflow.DefaultCooldown,
		logger:        logging.Discard(),
		list:          []dto.AccountResponse{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tx = workflow.New(accounts, c.busy,
		workflow.WithCooldown(c.cooldown),
		workflow.WithRefresh(c.Refresh),
		workflow.WithLogger(c.logger),
	)
	return c
}

// Mount is the initial fetch.
func (c *Controller) Mount(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh replaces the local list with the server's. Without a session it
// navigates to login. Results from a refresh that was overtaken by a later
// one are dropped.
func (c *Controller) Refresh(ctx context.Context) error {
	sess, ok := c.sessions.Current(ctx)
	if !ok {
		c.nav.Navigate(RouteLogin)
		return session.ErrNoSession
	}

	c.mu.Lock()
	c.started++
	gen := c.started
	c.banner = ""
	c.mu.Unlock()

	accounts, err := c.accounts.ListAll(ctx)
	if err != nil {
		if client.IsAuthFailure(err) {
			c.forceLogout(ctx)
			return err
		}
		c.mu.Lock()
		if gen > c.applied {
			c.applied = gen
			c.list = []dto.AccountResponse{}
			c.banner = err.Error()
		}
		c.mu.Unlock()
		return err
	}

	if c.filterByOwner {
		accounts = ownedBy(accounts, sess.User.Username)
	}

	c.mu.Lock()
	if gen > c.applied {
		c.applied = gen
		c.list = accounts
	}
	c.mu.Unlock()
	return nil
}

func ownedBy(accounts []dto.AccountResponse, username string) []dto.AccountResponse {
	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		if a.AccountHolderName == username {
			out = append(out, a)
		}
	}
	return out
}

// Accounts returns a copy of the current list.
func (c *Controller) Accounts() []dto.AccountResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dto.AccountResponse, len(c.list))
	copy(out, c.list)
	return out
}

// Account looks up id in the current list.
func (c *Controller) Account(id int64) (dto.AccountResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.list {
		if a.ID == id {
			return a, true
		}
	}
	return dto.AccountResponse{}, false
}

func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

func (c *Controller) DismissBanner() {
	c.mu.Lock()
	c.banner = ""
	c.mu.Unlock()
}

func (c *Controller) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, a := range c.list {
		total = total.Add(a.Balance)
	}
	return Summary{TotalBalance: total.StringFixed(2), AccountCount: len(c.list)}
}

// IsBusy reports whether a mutation on id is in flight or cooling down.
func (c *Controller) IsBusy(id int64) bool {
	return c.busy.IsBusy(id)
}

// NewAccountForm returns the create form defaults.
func (c *Controller) NewAccountForm(ctx context.Context) CreateForm {
	form := CreateForm{Balance: "0", AccountType: "SAVINGS"}
	if sess, ok := c.sessions.Current(ctx); ok {
		form.AccountHolderName = sess.User.Username
	}
	return form
}

// Create validates form locally, then creates the account and refreshes. A
// *FormError means nothing was sent.
func (c *Controller) Create(ctx context.Context, form CreateForm) (*dto.AccountResponse, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}

	c.DismissBanner()
	account, err := c.accounts.Create(ctx, req)
	if err != nil {
		c.mutationFailed(ctx, err)
		return nil, err
	}

	_ = c.Refresh(ctx)
	return account, nil
}

// Delete removes an account. It shares the busy set with deposit and
// withdraw but has no cooldown.
func (c *Controller) Delete(ctx context.Context, id int64) (string, error) {
	if !c.busy.TryAcquire(id) {
		return "", workflow.ErrAccountBusy
	}
	defer c.busy.Release(id, 0)

	c.DismissBanner()
	msg, err := c.accounts.Delete(ctx, id)
	if err != nil {
		c.mutationFailed(ctx, err)
		return "", err
	}

	_ = c.Refresh(ctx)
	return msg, nil
}

// Transfer moves amount between two listed accounts, locking both.
func (c *Controller) Transfer(ctx context.Context, from, to int64, amount string) (*dto.TransferResponse, error) {
	if from == to {
		c.setBanner(ErrSameAccount.Error())
		return nil, ErrSameAccount
	}
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || !value.IsPositive() {
		c.setBanner(workflow.ErrInvalidAmount.Error())
		return nil, workflow.ErrInvalidAmount
	}
	if source, ok := c.Account(from); ok && value.GreaterThan(source.Balance) {
		c.setBanner(workflow.ErrExceedsBalance.Error())
		return nil, workflow.ErrExceedsBalance
	}

	if !c.busy.TryAcquire(from) {
		return nil, workflow.ErrAccountBusy
	}
	if !c.busy.TryAcquire(to) {
		c.busy.Release(from, 0)
		return nil, workflow.ErrAccountBusy
	}
	defer func() {
		c.busy.Release(from, c.cooldown)
		c.busy.Release(to, c.cooldown)
	}()

	c.DismissBanner()
	resp, err := c.accounts.Transfer(ctx, from, to, value)
	if err != nil {
		c.mutationFailed(ctx, err)
		return nil, err
	}

	_ = c.Refresh(ctx)
	return resp, nil
}

// Transaction exposes the deposit/withdraw workflow for direct use.
func (c *Controller) Transaction() *workflow.Workflow {
	return c.tx
}

// OpenTransaction starts a deposit or withdraw against a listed account.
func (c *Controller) OpenTransaction(mode workflow.Mode, id int64) error {
	account, ok := c.Account(id)
	if !ok {
		return ErrAccountNotFound
	}
	return c.tx.Open(mode, account)
}

// ConfirmTransaction submits the open transaction. Failures land in the
// banner; an auth failure logs out.
func (c *Controller) ConfirmTransaction(ctx context.Context) (*dto.AccountResponse, error) {
	c.DismissBanner()
	account, err := c.tx.Confirm(ctx)
	if err != nil {
		c.mutationFailed(ctx, err)
		return nil, err
	}
	return account, nil
}

// Logout revokes the token when a Revoker is configured, clears the session
// and goes home.
func (c *Controller) Logout(ctx context.Context) {
	if c.revoker != nil {
		if err := c.revoker.Logout(ctx); err != nil {
			c.logger.Warn("server logout failed", "error", err)
		}
	}
	c.clearSession(ctx)
	c.nav.Navigate(RouteHome)
}

func (c *Controller) mutationFailed(ctx context.Context, err error) {
	if client.IsAuthFailure(err) {
		c.forceLogout(ctx)
		return
	}
	c.setBanner(err.Error())
}

func (c *Controller) forceLogout(ctx context.Context) {
	c.logger.Info("session rejected by server, logging out")
	c.clearSession(ctx)
	c.nav.Navigate(RouteLogin)
}

func (c *Controller) clearSession(ctx context.Context) {
	if err := c.sessions.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear session", "error", err)
	}
	c.mu.Lock()
	c.list = []dto.AccountResponse{}
	c.banner = ""
	c.mu.Unlock()
	if err := c.tx.Cancel(); err != nil && !errors.Is(err, workflow.ErrNoModal) {
		c.logger.Debug("transaction left open on logout", "error", err)
	}
}

func (c *Controller) setBanner(msg string) {
	c.mu.Lock()
	c.banner = msg
	c.mu.Unlock()
}
