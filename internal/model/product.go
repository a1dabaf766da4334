package model

// Product is a stock-keeping item. Stock is a materialized running total of
// the product's ledger and is only changed through movements.
type Product struct {
	BaseModel
	Code         string `gorm:"type:varchar(80);not null;uniqueIndex:idx_products_live_code,priority:1" json:"code"`
	Name         string `gorm:"type:varchar(150);not null" json:"name"`
	Category     string `gorm:"type:varchar(100);index" json:"category"`
	Stock        int    `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	ReorderPoint int    `gorm:"not null;default:0" json:"reorder_point"`
	Description  string `gorm:"type:varchar(500)" json:"description"`

	// Foreign key only; resolve the supplier by id when needed.
	// Tombstone is 0 while the product is live and its own id once deleted,
	// so a code is unique among live products and can be reused after delete.
	Tombstone uint `gorm:"not null;default:0;uniqueIndex:idx_products_live_code,priority:2" json:"-"`

	SupplierID *uint     `gorm:"index" json:"supplier_id"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// StockStatus is the derived listing filter.
type StockStatus string

const (
	StatusLow StockStatus = "low"
	StatusOut StockStatus = "out"
)

// IsLow reports stock at or below the reorder point.
func (p *Product) IsLow() bool {
	return p.Stock <= p.ReorderPoint
}

// IsOut reports an empty stock.
func (p *Product) IsOut() bool {
	return p.Stock == 0
}
