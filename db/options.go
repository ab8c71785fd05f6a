package db

import (
	"time"

	"github.com/rs/zerolog"
)

// ReferenceCheck selects who guards Order.CustomerID on writes.
type ReferenceCheck int

const (
	// TrustStore performs no application check; SQLite's foreign key
	// setting alone decides whether an unknown customer id is accepted.
	TrustStore ReferenceCheck = iota
	// ValidateOnWrite rejects order writes naming an unknown customer.
	ValidateOnWrite
)

func (r ReferenceCheck) String() string {
	switch r {
	case ValidateOnWrite:
		return "validate"
	default:
		return "trust"
	}
}

type options struct {
	log         zerolog.Logger
	now         func() time.Time
	refCheck    ReferenceCheck
	foreignKeys bool
}

// Option configures a Store at Open.
type Option func(*options)

// WithReferenceCheck sets how order writes treat their customer id.
func WithReferenceCheck(rc ReferenceCheck) Option {
	return func(o *options) { o.refCheck = rc }
}

// WithForeignKeys turns SQLite foreign key enforcement on or off for every
// connection. It is off unless enabled here.
func WithForeignKeys(on bool) Option {
	return func(o *options) { o.foreignKeys = on }
}

// WithLogger sets the logger for the store and the statements GORM runs.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the time source used to date seed data.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// DeleteOption adjusts a single DeleteCustomer call.
type DeleteOption func(*deleteOptions)

type deleteOptions struct {
	cascade bool
}

// WithCascade also deletes every order owned by the customer, in the same
// transaction.
func WithCascade() DeleteOption {
	return func(o *deleteOptions) { o.cascade = true }
}

// UpdateOrderOption adjusts a single UpdateOrder call.
type UpdateOrderOption func(*updateOrderOptions)

type updateOrderOptions struct {
	customerID int64
	reassign   bool
}

// ReassignTo also moves the order to another customer.
func ReassignTo(customerID int64) UpdateOrderOption {
	return func(o *updateOrderOptions) {
		o.customerID = customerID
		o.reassign = true
	}
}
