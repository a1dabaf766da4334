package access

import "go-inventory-tims/internal/model"

// Privilege names one gated operation, e.g. "product:create".
type Privilege string

const (
	DashboardView   Privilege = "dashboard:view"
	ProductView     Privilege = "product:view"
	ProductCreate   Privilege = "product:create"
	ProductUpdate   Privilege = "product:update"
	ProductDelete   Privilege = "product:delete"
	SupplierView    Privilege = "supplier:view"
	SupplierCreate  Privilege = "supplier:create"
	SupplierUpdate  Privilege = "supplier:update"
	SupplierDelete  Privilege = "supplier:delete"
	TransactionView Privilege = "transaction:view"
	MovementRecord  Privilege = "transaction:create"
	ProductExport   Privilege = "product:export"
	ProductImport   Privilege = "product:import"
	LiveFeed        Privilege = "feed:subscribe"
)

var (
	anyRole      = NewRoleSet(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	adminManager = NewRoleSet(model.RoleAdmin, model.RoleManager)
	adminOnly    = NewRoleSet(model.RoleAdmin)
)

// Policy declares, per operation, the explicit set of roles allowed to run it.
var Policy = map[Privilege]RoleSet{
	DashboardView:   anyRole,
	ProductView:     anyRole,
	ProductCreate:   adminManager,
	ProductUpdate:   adminManager,
	ProductDelete:   adminOnly,
	SupplierView:    anyRole,
	SupplierCreate:  adminOnly,
	SupplierUpdate:  adminOnly,
	SupplierDelete:  adminOnly,
	TransactionView: anyRole,
	MovementRecord:  anyRole,
	ProductExport:   anyRole,
	ProductImport:   adminManager,
	LiveFeed:        anyRole,
}

// RolesFor returns the allowed roles of p. Unknown privileges allow nobody.
func RolesFor(p Privilege) RoleSet {
	return Policy[p]
}
