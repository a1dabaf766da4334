package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/metrics"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
	"go-inventory-tims/pkg/validator"
)

const (
	notesOpeningBalance = "opening balance"
	notesManualAdjust   = "manual adjustment"

	// maxQuantity bounds every quantity and stock level a caller can supply.
	// Keep in sync with the lte tags below.
	maxQuantity = 1000000000
)

// MovementInput is one requested stock movement.
type MovementInput struct {
	ProductID  uint                  `json:"product_id" form:"product_id"`
	Type       model.TransactionType `json:"type" form:"type" validate:"required,oneof=in out"`
	Qty        int                   `json:"qty" form:"qty" validate:"gt=0,lte=1000000000"`
	Notes      string                `json:"notes" form:"notes" validate:"max=500"`
	SupplierID uint                  `json:"supplier_id" form:"supplier_id"`
	UserID     uint                  `json:"-" form:"-"`
}

// MovementResult is the appended ledger entry and the product's stock after it.
type MovementResult struct {
	Transaction *model.Transaction `json:"transaction"`
	NewStock    int                `json:"new_stock"`
}

// ProductInput is the editable part of a product. A nil Stock means 0 on
// create and "unchanged" on edit.
type ProductInput struct {
	Code         string `json:"code" form:"code" validate:"required,max=80"`
	Name         string `json:"name" form:"name" validate:"required,max=150"`
	Category     string `json:"category" form:"category" validate:"max=100"`
	Stock        *int   `json:"stock" form:"stock" validate:"omitempty,gte=0,lte=1000000000"`
	ReorderPoint int    `json:"reorder_point" form:"reorder_point" validate:"gte=0,lte=1000000000"`
	Description  string `json:"description" form:"description" validate:"max=500"`
	SupplierID   uint   `json:"supplier_id" form:"supplier_id"`
}

// Reconciliation compares a product's stock column with its ledger.
type Reconciliation struct {
	ProductID  uint  `json:"product_id"`
	Stock      int   `json:"stock"`
	InQty      int64 `json:"in_qty"`
	OutQty     int64 `json:"out_qty"`
	Consistent bool  `json:"consistent"`
}

type InventoryService interface {
	RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error)
	CreateProduct(ctx context.Context, in ProductInput, actorID uint) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput, actorID uint) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	SearchProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	ListTransactions(ctx context.Context, limit int) ([]model.TransactionView, error)
	GetTransaction(ctx context.Context, id uint) (*model.TransactionView, error)
	ProductLedger(ctx context.Context, productID uint) ([]model.TransactionView, error)
	Reconcile(ctx context.Context, productID uint) (*Reconciliation, error)
}

type inventoryService struct {
	store        repository.Store
	productRepo  repository.ProductRepository
	txRepo       repository.TransactionRepository
	supplierRepo repository.SupplierRepository
	mover        stockMover
	log          zerolog.Logger
}

func NewInventoryService(
	store repository.Store,
	pRepo repository.ProductRepository,
	tRepo repository.TransactionRepository,
	sRepo repository.SupplierRepository,
	log zerolog.Logger,
) InventoryService {
	return &inventoryService{
		store:        store,
		productRepo:  pRepo,
		txRepo:       tRepo,
		supplierRepo: sRepo,
		mover:        stockMover{now: time.Now},
		log:          log.With().Str("component", "inventory").Logger(),
	}
}

func (s *inventoryService) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	res, err := s.recordMovement(ctx, in)
	metrics.MovementsTotal.WithLabelValues(movementLabel(in.Type), movementOutcome(err)).Inc()
	if err != nil {
		if !apperr.IsUserCorrectable(err) && !errors.Is(err, apperr.ErrNotFound) {
			s.log.Error().Err(err).Uint("product_id", in.ProductID).Msg("record movement failed")
		}
		return nil, err
	}

	metrics.MovedUnitsTotal.WithLabelValues(string(in.Type)).Add(float64(in.Qty))
	s.log.Info().
		Uint("transaction_id", res.Transaction.ID).
		Uint("product_id", in.ProductID).
		Str("type", string(in.Type)).
		Int("qty", in.Qty).
		Int("new_stock", res.NewStock).
		Msg("stock movement recorded")
	return res, nil
}

func (s *inventoryService) recordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		ProductID:  in.ProductID,
		UserID:     optionalID(in.UserID),
		Qty:        in.Qty,
		Type:       in.Type,
		Notes:      in.Notes,
		SupplierID: optionalID(in.SupplierID),
	}

	var newStock int
	err := s.store.WithTransaction(ctx, func(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository) error {
		stock, err := s.mover.apply(ctx, products, ledger, tx)
		newStock = stock
		return err
	})
	if err != nil {
		return nil, err
	}
	return &MovementResult{Transaction: tx, NewStock: newStock}, nil
}

// stockMover is the single write path for stock. It runs on the
// repositories of the caller's unit of work.
type stockMover struct {
	now func() time.Time
}

// apply locks the product, moves its stock and appends tx.
func (m stockMover) apply(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository, tx *model.Transaction) (int, error) {
	if _, err := products.FindByIDForUpdate(ctx, tx.ProductID); err != nil {
		return 0, err
	}
	stock, err := products.AdjustStock(ctx, tx.ProductID, tx.Delta())
	if err != nil {
		return 0, err
	}
	tx.Timestamp = m.now().UTC()
	if err := ledger.Create(ctx, tx); err != nil {
		return 0, err
	}
	return stock, nil
}

// adjustTo records the movement taking current to target, if any.
func (m stockMover) adjustTo(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository,
	productID uint, current, target int, actorID uint, notes string) (int, error) {
	if target == current {
		return current, nil
	}
	tx := &model.Transaction{
		ProductID: productID,
		UserID:    optionalID(actorID),
		Type:      model.TxIn,
		Qty:       target - current,
		Notes:     notes,
	}
	if target < current {
		tx.Type = model.TxOut
		tx.Qty = current - target
	}
	return m.apply(ctx, products, ledger, tx)
}

func (s *inventoryService) CreateProduct(ctx context.Context, in ProductInput, actorID uint) (*model.Product, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	product := &model.Product{}
	in.applyTo(product)

	err := s.store.WithTransaction(ctx, func(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository) error {
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		stock, err := s.mover.adjustTo(ctx, products, ledger, product.ID, 0, in.stock(), actorID, notesOpeningBalance)
		product.Stock = stock
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", product.ID).Str("code", product.Code).Msg("product created")
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uint, in ProductInput, actorID uint) (*model.Product, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	before, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A supplier deleted after it was assigned stays valid on the product.
	if before.SupplierID == nil || *before.SupplierID != in.SupplierID {
		if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}

	var updated *model.Product
	err = s.store.WithTransaction(ctx, func(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository) error {
		existing, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		current := existing.Stock

		in.applyTo(existing)
		if err := products.Update(ctx, existing); err != nil {
			return err
		}

		target := current
		if in.Stock != nil {
			target = *in.Stock
		}
		stock, err := s.mover.adjustTo(ctx, products, ledger, id, current, target, actorID, notesManualAdjust)
		if err != nil {
			return err
		}
		existing.Stock = stock
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", id).Msg("product updated")
	return updated, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *inventoryService) SearchProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	switch filter.Status {
	case "", model.StatusLow, model.StatusOut:
	default:
		filter.Status = ""
	}
	return s.productRepo.Search(ctx, filter)
}

func (s *inventoryService) ListTransactions(ctx context.Context, limit int) ([]model.TransactionView, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.txRepo.Recent(ctx, limit)
}

func (s *inventoryService) GetTransaction(ctx context.Context, id uint) (*model.TransactionView, error) {
	return s.txRepo.FindByID(ctx, id)
}

func (s *inventoryService) ProductLedger(ctx context.Context, productID uint) ([]model.TransactionView, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.txRepo.ListByProduct(ctx, productID)
}

func (s *inventoryService) Reconcile(ctx context.Context, productID uint) (*Reconciliation, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	totals, err := s.txRepo.Totals(ctx, productID)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		ProductID:  productID,
		Stock:      product.Stock,
		InQty:      totals.InQty,
		OutQty:     totals.OutQty,
		Consistent: int64(product.Stock) == totals.Net(),
	}
	if !rec.Consistent {
		s.log.Warn().Uint("product_id", productID).Int("stock", rec.Stock).Int64("ledger_net", totals.Net()).
			Msg("stock does not match ledger")
	}
	return rec, nil
}

func (s *inventoryService) checkSupplier(ctx context.Context, supplierID uint) error {
	if supplierID == 0 {
		return nil
	}
	_, err := s.supplierRepo.FindByID(ctx, supplierID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Invalid("supplier %d does not exist", supplierID)
	}
	return err
}

func (in *ProductInput) normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
}

func (in *ProductInput) stock() int {
	if in.Stock == nil {
		return 0
	}
	return *in.Stock
}

// applyTo copies every field except stock onto p.
func (in *ProductInput) applyTo(p *model.Product) {
	p.Code = in.Code
	p.Name = in.Name
	p.Category = in.Category
	p.ReorderPoint = in.ReorderPoint
	p.Description = in.Description
	p.SupplierID = optionalID(in.SupplierID)
}

// validateInput runs struct validation and reports the first failure as InvalidInput.
func validateInput(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return apperr.Invalid("%s", errs[0].Message())
	}
	return nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func movementLabel(t model.TransactionType) string {
	if t.Valid() {
		return string(t)
	}
	return "unknown"
}

func movementOutcome(err error) string {
	switch {
	case err == nil:
		return "recorded"
	case errors.Is(err, apperr.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
