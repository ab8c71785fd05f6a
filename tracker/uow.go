package tracker

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Tx is a minimal transaction interface that hides GORM from callers.
// It offers the data operations the storage layer runs inside a unit of work.
type Tx interface {
	Create(value any) error
	// Delete removes the rows matching value and conds and reports how many went.
	Delete(value any, conds ...any) (int64, error)
	// Exec runs a raw statement and reports the rows it affected.
	Exec(sql string, values ...any) (int64, error)
	// Count reports how many rows of model match conds, or all rows without conds.
	Count(model any, conds ...any) (int64, error)
}

type gormTx struct{ db *gorm.DB }

func (r gormTx) Create(value any) error { return r.db.Create(value).Error }

func (r gormTx) Delete(value any, conds ...any) (int64, error) {
	res := r.db.Delete(value, conds...)
	return res.RowsAffected, res.Error
}

func (r gormTx) Exec(sql string, values ...any) (int64, error) {
	res := r.db.Exec(sql, values...)
	return res.RowsAffected, res.Error
}

func (r gormTx) Count(model any, conds ...any) (int64, error) {
	q := r.db.Model(model)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Operation is deferred work run inside the transaction.
type Operation func(tx Tx) error

// UnitOfWork queues entity creates and operations and applies them in one
// transaction on Commit. Creates run before operations, so ids assigned by
// a create are visible to the operations that follow.
type UnitOfWork struct {
	root *gorm.DB

	ops      []Operation
	toCreate []any

	afterCommit   []func()
	afterRollback []func()

	mu sync.Mutex
}

// New creates a UnitOfWork on the caller's open root connection.
// No transaction is started until Commit.
func New(root *gorm.DB) *UnitOfWork {
	return &UnitOfWork{root: root}
}

// Do queues op.
func (r *UnitOfWork) Do(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Add queues entity to be inserted; its primary key is filled in on commit.
func (r *UnitOfWork) Add(entity any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toCreate = append(r.toCreate, entity)
}

// AfterCommit registers cb to run outside the transaction once it commits.
func (r *UnitOfWork) AfterCommit(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterCommit = append(r.afterCommit, cb)
}

// AfterRollback registers cb to run outside the transaction if it rolls back.
func (r *UnitOfWork) AfterRollback(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterRollback = append(r.afterRollback, cb)
}

// Commit applies the queued work in one transaction. On error nothing is
// written, the rollback callbacks run, and the queue is kept.
func (r *UnitOfWork) Commit(ctx context.Context) error {
	r.mu.Lock()
	ops := append([]Operation(nil), r.ops...)
	creates := append([]any(nil), r.toCreate...)
	afterCommit := append([]func(){}, r.afterCommit...)
	afterRollback := append([]func(){}, r.afterRollback...)
	r.mu.Unlock()

	txErr := r.root.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range creates {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		for _, op := range ops {
			if err := op(gormTx{db: tx}); err != nil {
				return err
			}
		}
		return nil
	})

	if txErr != nil {
		for _, cb := range afterRollback {
			// a panicking callback must not hide txErr
			func() { defer func() { _ = recover() }(); cb() }()
		}
		return txErr
	}

	r.reset()
	for _, cb := range afterCommit {
		func() { defer func() { _ = recover() }(); cb() }()
	}
	return nil
}

func (r *UnitOfWork) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.toCreate = nil
	r.afterCommit = nil
	r.afterRollback = nil
}
