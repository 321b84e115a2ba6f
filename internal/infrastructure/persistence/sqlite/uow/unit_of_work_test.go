package uow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"safetyops/internal/infrastructure/persistence/sqlite/model"
	"safetyops/internal/ports"
)

func setupUnitOfWork(t *testing.T) (*UnitOfWork, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "uow.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.GlobalKm{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewUnitOfWork(db), db
}

func insertKm(ctx context.Context, year int) error {
	tx, ok := ports.TxFromContext(ctx).(*gorm.DB)
	if !ok {
		return errors.New("no tx in context")
	}
	return tx.Create(&model.GlobalKm{Year: year, Km: 1}).Error
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	u, db := setupUnitOfWork(t)
	ctx := context.Background()

	if err := u.WithTx(ctx, func(ctx context.Context) error { return insertKm(ctx, 2024) }); err != nil {
		t.Fatalf("WithTx(commit) error = %v", err)
	}
	errBoom := errors.New("boom")
	err := u.WithTx(ctx, func(ctx context.Context) error {
		if err := insertKm(ctx, 2025); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("WithTx(rollback) error = %v", err)
	}

	var count int64
	if err := db.Model(&model.GlobalKm{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}
}

func TestWithTxReusesOuterTransaction(t *testing.T) {
	u, _ := setupUnitOfWork(t)
	ctx := context.Background()

	err := u.WithTx(ctx, func(outer context.Context) error {
		return u.WithTx(outer, func(inner context.Context) error {
			if ports.TxFromContext(inner) != ports.TxFromContext(outer) {
				return errors.New("nested call opened a new transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
}
