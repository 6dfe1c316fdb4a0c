package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"bank-dashboard/internal/client"
	"bank-dashboard/internal/config"
	"bank-dashboard/internal/dashboard"
	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/logging"
	"bank-dashboard/internal/session"
	"bank-dashboard/internal/workflow"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

const usage = `Usage: bankctl <command> [flags] [args]

Commands:
  register -user <name> -email <email> [-password <pw>]
  login    -user <name> [-password <pw>]
  logout
  whoami
  accounts
  create   [-holder <name>] [-balance <amount>] [-type SAVINGS|CURRENT]
  deposit  <account-id> <amount>
  withdraw <account-id> <amount>
  delete   <account-id>
  transfer <from-id> <to-id> <amount>
`

var errNotLoggedIn = errors.New("not logged in, run: bankctl login -user <name>")

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries everything one command needs.
type cli struct {
	ctx      context.Context
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	sessions *session.Manager
	api      *client.Client
	nav      *terminalNavigator
	ctrl     *dashboard.Controller
}

// terminalNavigator has no screens to switch; it reports where the user was
// sent so the command can explain it.
type terminalNavigator struct {
	route dashboard.Route
}

func (n *terminalNavigator) Navigate(route dashboard.Route) {
	n.route = route
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		if len(args) == 0 {
			return errors.New("missing command")
		}
		return nil
	}

	cfg := config.LoadClient()
	ctx := context.Background()

	store, closeStore, err := session.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	logger := logging.NewWithWriter(stderr, cfg.LogLevel)
	sessions := session.NewManager(store)
	api := client.New(cfg.APIBaseURL, sessions,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)
	nav := &terminalNavigator{}

	c := &cli{
		ctx:      ctx,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		sessions: sessions,
		api:      api,
		nav:      nav,
		ctrl: dashboard.New(api.Accounts(), sessions, nav,
			dashboard.WithOwnerFilter(cfg.FilterByOwner),
			dashboard.WithCooldown(cfg.TxCooldown),
			dashboard.WithRevoker(api.Users()),
			dashboard.WithLogger(logger),
		),
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		err = c.register(rest)
	case "login":
		err = c.login(rest)
	case "logout":
		err = c.logout()
	case "whoami":
		err = c.whoami()
	case "accounts":
		err = c.accounts()
	case "create":
		err = c.create(rest)
	case "deposit":
		err = c.transaction(workflow.Deposit, rest)
	case "withdraw":
		err = c.transaction(workflow.Withdraw, rest)
	case "delete":
		err = c.delete(rest)
	case "transfer":
		err = c.transfer(rest)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	if nav.route == dashboard.RouteLogin {
		if err == nil || errors.Is(err, session.ErrNoSession) || client.IsAuthFailure(err) {
			return errNotLoggedIn
		}
	}
	return err
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) register(args []string) error {
	fs := c.flags("register")
	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: user, email")
	}

	password, err := c.password(*passwordFlag)
	if err != nil {
		return err
	}

	user, err := c.api.Users().Register(c.ctx, dto.CreateUserRequest{
		Username: strings.TrimSpace(*username),
		Password: password,
		Email:    strings.TrimSpace(*email),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "User %s registered with ID %d\n", user.Username, user.ID)
	return nil
}

func (c *cli) login(args []string) error {
	fs := c.flags("login")
	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.PrintDefaults()
		return errors.New("missing required flags: user")
	}

	password, err := c.password(*passwordFlag)
	if err != nil {
		return err
	}

	resp, err := c.api.Users().Login(c.ctx, dto.LoginRequest{Username: *username, Password: password})
	if err != nil {
		return err
	}
	if err := c.sessions.Set(c.ctx, session.FromLogin(resp)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(c.stdout, "Logged in as %s\n", resp.User.Username)
	return nil
}

func (c *cli) logout() error {
	if _, ok := c.sessions.Current(c.ctx); !ok {
		fmt.Fprintln(c.stdout, "Not logged in")
		return nil
	}
	c.ctrl.Logout(c.ctx)
	fmt.Fprintln(c.stdout, "Logged out")
	return nil
}

func (c *cli) whoami() error {
	sess, ok := c.sessions.Current(c.ctx)
	if !ok {
		return errNotLoggedIn
	}
	fmt.Fprintf(c.stdout, "%s <%s> (id %d)\n", sess.User.Username, sess.User.Email, sess.User.ID)
	return nil
}

func (c *cli) accounts() error {
	if err := c.ctrl.Mount(c.ctx); err != nil {
		return err
	}
	c.printAccounts()
	return nil
}

func (c *cli) printAccounts() {
	accounts := c.ctrl.Accounts()
	if len(accounts) == 0 {
		fmt.Fprintln(c.stdout, "No accounts")
		return
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tHOLDER\tTYPE\tBALANCE\t")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", a.ID, a.AccountHolderName, a.AccountType, a.Balance.StringFixed(2))
	}
	_ = tw.Flush()

	summary := c.ctrl.Summary()
	fmt.Fprintf(c.stdout, "Total balance %s across %d account(s)\n", summary.TotalBalance, summary.AccountCount)
}

func (c *cli) create(args []string) error {
	if _, ok := c.sessions.Current(c.ctx); !ok {
		return errNotLoggedIn
	}

	form := c.ctrl.NewAccountForm(c.ctx)
	fs := c.flags("create")
	fs.StringVar(&form.AccountHolderName, "holder", form.AccountHolderName, "Account holder name")
	fs.StringVar(&form.Balance, "balance", form.Balance, "Opening balance")
	fs.StringVar(&form.AccountType, "type", form.AccountType, "SAVINGS or CURRENT")
	if err := fs.Parse(args); err != nil {
		return err
	}

	account, err := c.ctrl.Create(c.ctx, form)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Created %s account #%d with balance %s\n",
		account.AccountType, account.ID, account.Balance.StringFixed(2))
	return nil
}

func (c *cli) transaction(mode workflow.Mode, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: bankctl %s <account-id> <amount>", mode)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := c.ctrl.Mount(c.ctx); err != nil {
		return err
	}
	if err := c.ctrl.OpenTransaction(mode, id); err != nil {
		return err
	}

	tx := c.ctrl.Transaction()
	if err := tx.SetAmount(args[1]); err != nil {
		return err
	}
	if msg := tx.InlineError(); msg != "" {
		_ = tx.Cancel()
		return errors.New(msg)
	}
	preview, _ := tx.Preview()

	if _, err := c.ctrl.ConfirmTransaction(c.ctx); err != nil {
		_ = tx.Cancel()
		return err
	}

	balance := preview
	if account, ok := c.ctrl.Account(id); ok {
		balance = account.Balance.StringFixed(2)
	}
	fmt.Fprintf(c.stdout, "%s complete, account #%d balance %s\n", titleCase(string(mode)), id, balance)
	return nil
}

func (c *cli) delete(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bankctl delete <account-id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if _, ok := c.sessions.Current(c.ctx); !ok {
		return errNotLoggedIn
	}

	msg, err := c.ctrl.Delete(c.ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, msg)
	return nil
}

func (c *cli) transfer(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: bankctl transfer <from-id> <to-id> <amount>")
	}
	from, err := parseID(args[0])
	if err != nil {
		return err
	}
	to, err := parseID(args[1])
	if err != nil {
		return err
	}

	if err := c.ctrl.Mount(c.ctx); err != nil {
		return err
	}
	resp, err := c.ctrl.Transfer(c.ctx, from, to, args[2])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Transferred %s: #%d balance %s, #%d balance %s\n",
		args[2], resp.From.ID, resp.From.Balance.StringFixed(2), resp.To.ID, resp.To.Balance.StringFixed(2))
	return nil
}

func (c *cli) password(fromFlag string) (string, error) {
	if fromFlag != "" {
		return fromFlag, nil
	}

	fmt.Fprint(c.stdout, "Password: ")
	password, err := readPassword(c.stdin)
	fmt.Fprintln(c.stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
