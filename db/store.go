// Package db is the storage layer: it owns the customers/orders schema in an
// embedded SQLite file and builds every statement the program runs.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storekeep/model"
	"storekeep/tracker"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCustomer is returned under ValidateOnWrite when an order
	// names a customer id that does not exist.
	ErrUnknownCustomer = errors.New("customer does not exist")
)

// Store is the one open handle to the database file. It is not safe for
// concurrent use beyond what database/sql provides.
type Store struct {
	sqlDB    *sql.DB
	db       *gorm.DB
	log      zerolog.Logger
	now      func() time.Time
	refCheck ReferenceCheck
}

// Open opens (creating if needed) the SQLite file at path and ensures the
// schema exists. The caller owns the returned Store and must Close it.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	o := options{log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	fk := "0"
	if o.foreignKeys {
		fk = "1"
	}
	dsn := filepath.Clean(path) + "?_busy_timeout=5000&_foreign_keys=" + fk
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps the pragmas and the file lock in one place
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	gdb, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{Logger: newGormLogger(o.log)})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	s := &Store{sqlDB: sqlDB, db: gdb, log: o.log, now: o.now, refCheck: o.refCheck}
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	s.log.Debug().
		Str("path", path).
		Bool("foreign_keys", o.foreignKeys).
		Stringer("reference_check", o.refCheck).
		Msg("store opened")
	return s, nil
}

// Close releases the database handle. It is safe to call on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListCustomers returns every customer in ascending id order.
func (s *Store) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var out []model.Customer
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

// GetCustomer returns the customer with id, or ErrNotFound.
func (s *Store) GetCustomer(ctx context.Context, id int64) (model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Customer{}, fmt.Errorf("get customer %d: %w", id, ErrNotFound)
		}
		return model.Customer{}, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

// CreateCustomer inserts a customer and returns its store-assigned id.
func (s *Store) CreateCustomer(ctx context.Context, name, email, phone string) (int64, error) {
	c := &model.Customer{Name: name, Email: email, Phone: phone}
	uow := tracker.New(s.db)
	uow.Add(c)
	uow.AfterCommit(func() {
		s.log.Debug().Int64("id", c.ID).Msg("customer created")
	})
	if err := uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return c.ID, nil
}

// UpdateCustomer overwrites every field of customer id and reports the rows
// affected; 0 means no such customer.
func (s *Store) UpdateCustomer(ctx context.Context, id int64, name, email, phone string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "email": email, "phone": phone})
	if res.Error != nil {
		return 0, fmt.Errorf("update customer %d: %w", id, res.Error)
	}
	s.log.Debug().Int64("id", id).Int64("rows", res.RowsAffected).Msg("customer updated")
	return res.RowsAffected, nil
}

// DeleteCustomer removes customer id and reports the rows affected.
// Its orders stay behind as orphans unless WithCascade is given.
func (s *Store) DeleteCustomer(ctx context.Context, id int64, opts ...DeleteOption) (int64, error) {
	var o deleteOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !o.cascade {
		res := s.db.WithContext(ctx).Delete(&model.Customer{}, id)
		if res.Error != nil {
			return 0, fmt.Errorf("delete customer %d: %w", id, res.Error)
		}
		s.log.Debug().Int64("id", id).Int64("rows", res.RowsAffected).Msg("customer deleted")
		return res.RowsAffected, nil
	}

	var customers, orders int64
	uow := tracker.New(s.db)
	uow.Do(func(tx tracker.Tx) error {
		var err error
		// orders first so an enforced foreign key never sees an orphan
		if orders, err = tx.Delete(&model.Order{}, "customer_id = ?", id); err != nil {
			return err
		}
		customers, err = tx.Delete(&model.Customer{}, id)
		return err
	})
	uow.AfterCommit(func() {
		s.log.Info().Int64("id", id).Int64("orders", orders).Msg("customer deleted with orders")
	})
	uow.AfterRollback(func() {
		s.log.Warn().Int64("id", id).Msg("cascade delete rolled back")
	})
	if err := uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("delete customer %d with orders: %w", id, err)
	}
	return customers, nil
}

// ListOrders returns every order in ascending id order, orphans included.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// GetOrder returns the order with id, or ErrNotFound.
func (s *Store) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	var o model.Order
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Order{}, fmt.Errorf("get order %d: %w", id, ErrNotFound)
		}
		return model.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// CreateOrder inserts an order and returns its store-assigned id.
func (s *Store) CreateOrder(ctx context.Context, customerID int64, product string, amount float64, date string) (int64, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	o := &model.Order{CustomerID: customerID, Product: product, Amount: amount, Date: date}
	uow := tracker.New(s.db)
	uow.Add(o)
	uow.AfterCommit(func() {
		s.log.Debug().Int64("id", o.ID).Int64("customer_id", customerID).Msg("order created")
	})
	if err := uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return o.ID, nil
}

// UpdateOrder overwrites product, amount and date of order id and reports the
// rows affected; 0 means no such order. ReassignTo also overwrites customer_id.
func (s *Store) UpdateOrder(ctx context.Context, id int64, product string, amount float64, date string, opts ...UpdateOrderOption) (int64, error) {
	var o updateOrderOptions
	for _, opt := range opts {
		opt(&o)
	}

	fields := map[string]any{"product": product, "amount": amount, "date": date}
	if o.reassign {
		if err := s.checkCustomer(ctx, o.customerID); err != nil {
			return 0, fmt.Errorf("update order %d: %w", id, err)
		}
		fields["customer_id"] = o.customerID
	}

	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update order %d: %w", id, res.Error)
	}
	s.log.Debug().Int64("id", id).Int64("rows", res.RowsAffected).Msg("order updated")
	return res.RowsAffected, nil
}

// DeleteOrder removes order id and reports the rows affected.
func (s *Store) DeleteOrder(ctx context.Context, id int64) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&model.Order{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete order %d: %w", id, res.Error)
	}
	s.log.Debug().Int64("id", id).Int64("rows", res.RowsAffected).Msg("order deleted")
	return res.RowsAffected, nil
}

// ListOrdersWithCustomer joins every order to its customer, in ascending order
// id. Orders whose customer does not exist are left out.
func (s *Store) ListOrdersWithCustomer(ctx context.Context) ([]model.OrderWithCustomer, error) {
	var out []model.OrderWithCustomer
	err := s.db.WithContext(ctx).
		Table("orders").
		Select(`orders.id, orders.customer_id, orders.product, orders.amount, orders.date,
			customers.name AS customer_name, customers.email AS customer_email, customers.phone AS customer_phone`).
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Order("orders.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orders with customer: %w", err)
	}
	return out, nil
}

// SeedExample inserts one example customer and one order for them when both
// tables are empty, and reports the rows inserted. Any existing data makes it
// a no-op.
func (s *Store) SeedExample(ctx context.Context) (int64, error) {
	var inserted int64
	uow := tracker.New(s.db)
	uow.Do(func(tx tracker.Tx) error {
		customers, err := tx.Count(&model.Customer{})
		if err != nil {
			return err
		}
		orders, err := tx.Count(&model.Order{})
		if err != nil {
			return err
		}
		if customers > 0 || orders > 0 {
			return nil
		}

		c := &model.Customer{Name: "Ana Silva", Email: "ana@example.com", Phone: "11999990000"}
		if err := tx.Create(c); err != nil {
			return err
		}
		inserted++
		o := &model.Order{
			CustomerID: c.ID,
			Product:    "Mechanical keyboard",
			Amount:     299.90,
			Date:       s.now().Format(model.DateLayout),
		}
		if err := tx.Create(o); err != nil {
			return err
		}
		inserted++
		return nil
	})
	uow.AfterRollback(func() {
		s.log.Warn().Int64("rows", inserted).Msg("example seed rolled back")
	})
	if err := uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("seed example data: %w", err)
	}
	if inserted > 0 {
		s.log.Info().Int64("rows", inserted).Msg("example data seeded")
	}
	return inserted, nil
}

func (s *Store) checkCustomer(ctx context.Context, id int64) error {
	if s.refCheck != ValidateOnWrite {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCustomer, id)
	}
	return nil
}
