package repository

import (
	"context"

	"gorm.io/gorm"

	"go-inventory-tims/internal/model"
)

// Store opens units of work spanning products and the ledger. Everything
// done through the repositories handed to fn commits or rolls back together.
type Store interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, products ProductRepository, ledger TransactionRepository) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, products ProductRepository, ledger TransactionRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &productRepo{db: tx}, &transactionRepo{db: tx})
	})
}

// AutoMigrate creates or updates the schema, parents first.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Supplier{}, &model.Product{}, &model.Transaction{}); err != nil {
		return err
	}
	// Earlier schemas made code unique across deleted products too.
	m := db.Migrator()
	if m.HasIndex(&model.Product{}, legacyCodeIndex) {
		return m.DropIndex(&model.Product{}, legacyCodeIndex)
	}
	return nil
}

const legacyCodeIndex = "idx_products_code"
