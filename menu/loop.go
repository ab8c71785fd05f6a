// Package menu is the console front end: a numbered menu read one line at a
// time, each selection dispatched to one storage call.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"storekeep/db"
	"storekeep/model"
)

const width = 50

// Store is the storage surface the menu drives. *db.Store implements it.
type Store interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (model.Customer, error)
	CreateCustomer(ctx context.Context, name, email, phone string) (int64, error)
	UpdateCustomer(ctx context.Context, id int64, name, email, phone string) (int64, error)
	DeleteCustomer(ctx context.Context, id int64, opts ...db.DeleteOption) (int64, error)

	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	CreateOrder(ctx context.Context, customerID int64, product string, amount float64, date string) (int64, error)
	UpdateOrder(ctx context.Context, id int64, product string, amount float64, date string, opts ...db.UpdateOrderOption) (int64, error)
	DeleteOrder(ctx context.Context, id int64) (int64, error)

	ListOrdersWithCustomer(ctx context.Context) ([]model.OrderWithCustomer, error)
	SeedExample(ctx context.Context) (int64, error)
}

// errInput marks a field or selection the user typed wrong. It never reaches
// the store.
var errInput = errors.New("invalid input")

type action struct {
	run   func(ctx context.Context) error
	key   string
	label string
}

type line struct {
	text string
	err  error
}

// Loop reads selections from in until exit, end of input or cancellation.
type Loop struct {
	store   Store
	in      *bufio.Reader
	out     *printer
	log     zerolog.Logger
	now     func() time.Time
	actions []action

	// lines is fed by one reader goroutine so a prompt can give up on ctx.
	lines   chan line
	pump    sync.Once
	readErr error
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger that records store failures.
func WithLogger(l zerolog.Logger) Option {
	return func(lp *Loop) { lp.log = l }
}

// WithClock sets the source of today's date for blank order dates.
func WithClock(now func() time.Time) Option {
	return func(lp *Loop) { lp.now = now }
}

// New builds a Loop over store reading from in and writing to out.
func New(store Store, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		store: store,
		in:    bufio.NewReader(in),
		lines: make(chan line, 1),
		out:   newPrinter(out),
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.actions = []action{
		{key: "1", label: "Customers: list", run: l.listCustomers},
		{key: "2", label: "Customers: create", run: l.createCustomer},
		{key: "3", label: "Customers: update", run: l.updateCustomer},
		{key: "4", label: "Customers: delete", run: l.deleteCustomer},
		{key: "5", label: "Orders: list", run: l.listOrders},
		{key: "6", label: "Orders: create", run: l.createOrder},
		{key: "7", label: "Orders: update", run: l.updateOrder},
		{key: "8", label: "Orders: delete", run: l.deleteOrder},
		{key: "9", label: "Orders with customer data (join)", run: l.listOrdersWithCustomer},
		{key: "10", label: "Seed example data", run: l.seedExample},
	}
	return l
}

// Run shows the menu and dispatches selections until the user picks 0 or
// input ends. Input mistakes and store failures are reported and the menu is
// shown again; only a failure to read input ends Run with an error.
// When ctx is cancelled Run stops at the pending prompt or as soon as the
// running store call returns, and reports ctx.Err(). Nothing is written to
// out after Run returns.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.printMenu()

		choice, err := l.readLine(ctx, "Choose an option: ")
		if errors.Is(err, io.EOF) {
			l.out.Info("Bye.")
			return nil
		}
		if err != nil {
			return err
		}
		if choice == "0" {
			l.out.Info("Bye.")
			return nil
		}

		act, ok := l.lookup(choice)
		if !ok {
			l.out.Warning("Invalid option %q, try again.", choice)
			continue
		}

		err = act.run(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			l.out.Info("Bye.")
			return nil
		case errors.Is(err, errInput):
			l.out.Warning("%v", err)
		default:
			l.log.Error().Err(err).Str("action", act.label).Msg("store call failed")
			l.out.Error("%s failed: %v", act.label, err)
		}
	}
}

func (l *Loop) lookup(key string) (action, bool) {
	for _, a := range l.actions {
		if a.key == key {
			return a, true
		}
	}
	return action{}, false
}

func (l *Loop) printMenu() {
	l.out.Section("Customers & Orders", width)
	for _, a := range l.actions {
		l.out.Line("%s. %s", a.key, a.label)
	}
	l.out.Line("0. Exit")
	l.out.Rule("-", width)
}

func (l *Loop) readInput() {
	for {
		s, err := l.in.ReadString('\n')
		l.lines <- line{text: s, err: err}
		if err != nil {
			return
		}
	}
}

// readLine prompts and returns one trimmed line. A final line without a
// newline is still returned; io.EOF comes back only when nothing was read.
func (l *Loop) readLine(ctx context.Context, prompt string) (string, error) {
	l.out.Prompt(prompt)
	if l.readErr != nil {
		return "", l.readErr
	}
	l.pump.Do(func() { go l.readInput() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case ln := <-l.lines:
		if ln.err != nil {
			l.readErr = ln.err
			if errors.Is(ln.err, io.EOF) && ln.text != "" {
				return strings.TrimSpace(ln.text), nil
			}
			return "", ln.err
		}
		return strings.TrimSpace(ln.text), nil
	}
}

func (l *Loop) readInt(ctx context.Context, prompt string) (int64, error) {
	s, err := l.readLine(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return parseInt(s)
}

func (l *Loop) readFloat(ctx context.Context, prompt string) (float64, error) {
	s, err := l.readLine(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return parseFloat(s)
}

// readKeep prompts for a text field; a blank answer keeps current.
func (l *Loop) readKeep(ctx context.Context, prompt, current string) (string, error) {
	s, err := l.readLine(ctx, fmt.Sprintf("%s [%s]: ", prompt, current))
	if err != nil || s == "" {
		return current, err
	}
	return s, nil
}

func (l *Loop) readConfirm(ctx context.Context, prompt string) (bool, error) {
	s, err := l.readLine(ctx, prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", errInput, s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a number (e.g. 12.50)", errInput, s)
	}
	return f, nil
}
