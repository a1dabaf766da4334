package model

import "time"

type TransactionType string

const (
	TxIn  TransactionType = "in"
	TxOut TransactionType = "out"
)

// Valid reports whether t is in or out.
func (t TransactionType) Valid() bool {
	return t == TxIn || t == TxOut
}

// Sign is +1 for inbound and -1 for outbound movements.
func (t TransactionType) Sign() int {
	if t == TxOut {
		return -1
	}
	return 1
}

// Transaction is one append-only ledger entry. Rows are never updated or deleted.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	UserID     *uint           `gorm:"index" json:"user_id"`
	Qty        int             `gorm:"not null;check:qty > 0" json:"qty"`
	Type       TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Timestamp  time.Time       `gorm:"column:occurred_at;not null;index" json:"timestamp"`
	Notes      string          `gorm:"type:varchar(500)" json:"notes"`
	SupplierID *uint           `gorm:"index" json:"supplier_id"`

	// Constraint carriers for AutoMigrate; never preloaded.
	Product  *Product  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// Delta is the signed stock change this entry represents.
func (t *Transaction) Delta() int {
	return t.Type.Sign() * t.Qty
}

// TransactionView is a ledger entry joined with display names at query time.
type TransactionView struct {
	Transaction
	ProductCode  string `json:"product_code"`
	ProductName  string `json:"product_name"`
	Username     string `json:"username"`
	SupplierName string `json:"supplier_name"`
}
