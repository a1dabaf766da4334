package model

// Supplier is a supplying party. Products reference it by id; it does not own them.
type Supplier struct {
	BaseModel
	Name    string `gorm:"type:varchar(150);not null;index" json:"name" form:"name" validate:"required,max=150"`
	Contact string `gorm:"type:varchar(150)" json:"contact" form:"contact" validate:"max=150"`
	Email   string `gorm:"type:varchar(150)" json:"email" form:"email" validate:"omitempty,email,max=150"`
	Address string `gorm:"type:varchar(300)" json:"address" form:"address" validate:"max=300"`
}
