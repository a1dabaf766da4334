package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/model"
)

// ProductFilter composes the product listing query.
type ProductFilter struct {
	Query  string
	Status model.StockStatus
}

// DashboardStats for overview stats
type DashboardStats struct {
	TotalProducts int64 `json:"total_products"`
	LowStockCount int64 `json:"low_stock_count"`
	OutOfStock    int64 `json:"out_of_stock"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// Update writes every editable column except stock.
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	// AdjustStock adds delta to stock unless the result would be negative and
	// returns the new stock.
	AdjustStock(ctx context.Context, id uint, delta int) (int, error)
	Stats(ctx context.Context) (*DashboardStats, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, "product code")
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("code", "name", "category", "reorder_point", "description", "supplier_id").
		Updates(product)
	if res.Error != nil {
		return translate(res.Error, "product code")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	// Soft delete plus tombstone, which frees the code for a new product.
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tombstone":  gorm.Expr("id"),
			"deleted_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *productRepo) Search(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(code) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')",
			like, like, like)
	}

	switch filter.Status {
	case model.StatusLow:
		q = q.Where("stock <= reorder_point")
	case model.StatusOut:
		q = q.Where("stock = 0")
	}

	var products []model.Product
	err := q.Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) AdjustStock(ctx context.Context, id uint, delta int) (int, error) {
	// Conditional update: concurrent decrements can never pass the check twice.
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return 0, err
		}
		return 0, apperr.ErrInsufficientStock
	}

	var stock int
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("stock").Where("id = ?", id).Scan(&stock).Error; err != nil {
		return 0, err
	}
	return stock, nil
}

func (r *productRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("stock <= reorder_point").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("stock = 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// '!' is the LIKE escape on every dialect; backslash is not portable.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
