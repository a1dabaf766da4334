package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go-inventory-tims/internal/model"
)

// TransactionRepository is append-only: there is no Update or Delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id uint) (*model.TransactionView, error)
	Recent(ctx context.Context, limit int) ([]model.TransactionView, error)
	ListByProduct(ctx context.Context, productID uint) ([]model.TransactionView, error)
	Totals(ctx context.Context, productID uint) (*LedgerTotals, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// LedgerTotals are the summed quantities of one product's ledger.
type LedgerTotals struct {
	InQty  int64 `json:"in_qty"`
	OutQty int64 `json:"out_qty"`
}

// Net is Σin − Σout.
func (t LedgerTotals) Net() int64 {
	return t.InQty - t.OutQty
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error, "transaction")
}

// views joins display names by id at query time.
func (r *transactionRepo) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("transactions AS t").
		Select(`t.id, t.product_id, t.user_id, t.qty, t.type, t.occurred_at, t.notes, t.supplier_id,
			COALESCE(p.code, '') AS product_code,
			COALESCE(p.name, '') AS product_name,
			COALESCE(u.username, '') AS username,
			COALESCE(s.name, '') AS supplier_name`).
		Joins("LEFT JOIN products p ON p.id = t.product_id").
		Joins("LEFT JOIN users u ON u.id = t.user_id").
		Joins("LEFT JOIN suppliers s ON s.id = t.supplier_id")
}

func (r *transactionRepo) FindByID(ctx context.Context, id uint) (*model.TransactionView, error) {
	var views []model.TransactionView
	if err := r.views(ctx).Where("t.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "transaction")
	}
	return &views[0], nil
}

func (r *transactionRepo) Recent(ctx context.Context, limit int) ([]model.TransactionView, error) {
	var views []model.TransactionView
	err := r.views(ctx).
		Order("t.occurred_at DESC").Order("t.id DESC").
		Limit(limit).
		Scan(&views).Error
	return views, err
}

func (r *transactionRepo) ListByProduct(ctx context.Context, productID uint) ([]model.TransactionView, error) {
	var views []model.TransactionView
	err := r.views(ctx).
		Where("t.product_id = ?", productID).
		Order("t.occurred_at ASC").Order("t.id ASC").
		Scan(&views).Error
	return views, err
}

func (r *transactionRepo) Totals(ctx context.Context, productID uint) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`COALESCE(SUM(CASE WHEN type = 'in' THEN qty ELSE 0 END), 0) AS in_qty,
			COALESCE(SUM(CASE WHEN type = 'out' THEN qty ELSE 0 END), 0) AS out_qty`).
		Where("product_id = ?", productID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per calendar day
	rows, err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`
			DATE(occurred_at) as date,
			COALESCE(SUM(CASE WHEN type = 'in' THEN qty ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'out' THEN qty ELSE 0 END), 0) as outbound
		`).
		Where("occurred_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(occurred_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day  interface{}
			data StockMovementData
		)
		if err := rows.Scan(&day, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		data.Date = formatDay(day)
		results = append(results, data)
	}

	return results, rows.Err()
}

// formatDay normalizes DATE(...) across drivers: time.Time from pgx and
// parseTime=True mysql, text from sqlite.
func formatDay(v interface{}) string {
	var s string
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case []byte:
		s = string(d)
	case string:
		s = d
	default:
		return ""
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}
