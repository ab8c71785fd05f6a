package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	Name    string
	ID      int64 `gorm:"primaryKey"`
	OwnerID int64
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "uow.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&widget{}))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func count(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&widget{}).Count(&n).Error)
	return n
}

func TestCommitRunsCreatesBeforeOperations(t *testing.T) {
	gdb := openDB(t)
	uow := New(gdb)

	parent := &widget{Name: "parent"}
	uow.Add(parent)
	uow.Do(func(tx Tx) error {
		return tx.Create(&widget{Name: "child", OwnerID: parent.ID})
	})
	committed, rolledBack := false, false
	uow.AfterCommit(func() { committed = true })
	uow.AfterRollback(func() { rolledBack = true })

	require.NoError(t, uow.Commit(context.Background()))
	assert.True(t, committed)
	assert.False(t, rolledBack)

	var child widget
	require.NoError(t, gdb.Where("name = ?", "child").First(&child).Error)
	assert.NotZero(t, parent.ID)
	assert.Equal(t, parent.ID, child.OwnerID)
}

func TestCommitClearsQueueOnSuccess(t *testing.T) {
	gdb := openDB(t)
	uow := New(gdb)

	calls := 0
	uow.Add(&widget{Name: "once"})
	uow.AfterCommit(func() { calls++ })
	require.NoError(t, uow.Commit(context.Background()))
	require.NoError(t, uow.Commit(context.Background()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), count(t, gdb))
}

func TestCommitRollsBackOnError(t *testing.T) {
	gdb := openDB(t)
	uow := New(gdb)
	boom := errors.New("boom")

	uow.Add(&widget{Name: "doomed"})
	uow.Do(func(Tx) error { return boom })
	committed, rolledBack := false, false
	uow.AfterCommit(func() { committed = true })
	uow.AfterRollback(func() { rolledBack = true })
	uow.AfterRollback(func() { panic("ignored") })

	err := uow.Commit(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, rolledBack)
	assert.False(t, committed)
	assert.Zero(t, count(t, gdb))
}

func TestTxHelpersReportRows(t *testing.T) {
	gdb := openDB(t)
	for _, owner := range []int64{1, 1, 2} {
		require.NoError(t, gdb.Create(&widget{Name: "w", OwnerID: owner}).Error)
	}

	var total, owned, updated, deleted int64
	uow := New(gdb)
	uow.Do(func(tx Tx) error {
		var err error
		if total, err = tx.Count(&widget{}); err != nil {
			return err
		}
		if owned, err = tx.Count(&widget{}, "owner_id = ?", 1); err != nil {
			return err
		}
		if updated, err = tx.Exec("UPDATE widgets SET name = ? WHERE owner_id = ?", "x", 2); err != nil {
			return err
		}
		deleted, err = tx.Delete(&widget{}, "owner_id = ?", 1)
		return err
	})
	require.NoError(t, uow.Commit(context.Background()))

	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), owned)
	assert.Equal(t, int64(1), updated)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, int64(1), count(t, gdb))
}
