package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
)

// memDB is an in-memory stand-in for the relational store. A unit of work
// holds mu for its whole duration and rolls back to a snapshot on error.
type memDB struct {
	mu        sync.Mutex
	products  map[uint]model.Product
	txs       []model.Transaction
	suppliers map[uint]model.Supplier
	users     map[uint]model.User
	nextID    uint

	// failLedger makes every ledger insert fail.
	failLedger error
}

func newMemDB() *memDB {
	return &memDB{
		products:  map[uint]model.Product{},
		suppliers: map[uint]model.Supplier{},
		users:     map[uint]model.User{},
	}
}

func (db *memDB) id() uint {
	db.nextID++
	return db.nextID
}

func (db *memDB) productRepo() *memProducts { return &memProducts{db: db} }
func (db *memDB) ledgerRepo() *memLedger    { return &memLedger{db: db} }
func (db *memDB) supplierRepo() *memSuppliers {
	return &memSuppliers{db: db}
}
func (db *memDB) userRepo() *memUsers { return &memUsers{db: db} }

func (db *memDB) WithTransaction(ctx context.Context, fn func(ctx context.Context, products repository.ProductRepository, ledger repository.TransactionRepository) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	products := make(map[uint]model.Product, len(db.products))
	for k, v := range db.products {
		products[k] = v
	}
	txs := append([]model.Transaction(nil), db.txs...)
	nextID := db.nextID

	err := fn(ctx, &memProducts{db: db, inTx: true}, &memLedger{db: db, inTx: true})
	if err != nil {
		db.products = products
		db.txs = txs
		db.nextID = nextID
	}
	return err
}

// stock reads a product's stock outside any unit of work.
func (db *memDB) stock(id uint) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.products[id].Stock
}

func (db *memDB) ledger() []model.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]model.Transaction(nil), db.txs...)
}

func guard(db *memDB, inTx bool) func() {
	if inTx {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

// live mirrors the soft-delete scope gorm adds to every product query.
func live(p model.Product) bool {
	return !p.DeletedAt.Valid
}

type memProducts struct {
	db   *memDB
	inTx bool
}

func (r *memProducts) Create(_ context.Context, p *model.Product) error {
	defer guard(r.db, r.inTx)()
	for _, other := range r.db.products {
		if live(other) && other.Code == p.Code {
			return apperr.Duplicate("product code already exists")
		}
	}
	p.ID = r.db.id()
	p.CreatedAt = time.Now()
	r.db.products[p.ID] = *p
	return nil
}

func (r *memProducts) Update(_ context.Context, p *model.Product) error {
	defer guard(r.db, r.inTx)()
	cur, ok := r.db.products[p.ID]
	if !ok || !live(cur) {
		return apperr.NotFound("product")
	}
	for id, other := range r.db.products {
		if id != p.ID && live(other) && other.Code == p.Code {
			return apperr.Duplicate("product code already exists")
		}
	}
	stock := cur.Stock
	cur = *p
	cur.Stock = stock
	r.db.products[p.ID] = cur
	return nil
}

func (r *memProducts) Delete(_ context.Context, id uint) error {
	defer guard(r.db, r.inTx)()
	p, ok := r.db.products[id]
	if !ok || !live(p) {
		return apperr.NotFound("product")
	}
	p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	p.Tombstone = id
	r.db.products[id] = p
	return nil
}

func (r *memProducts) FindByID(_ context.Context, id uint) (*model.Product, error) {
	defer guard(r.db, r.inTx)()
	p, ok := r.db.products[id]
	if !ok || !live(p) {
		return nil, apperr.NotFound("product")
	}
	return &p, nil
}

func (r *memProducts) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProducts) FindByCode(_ context.Context, code string) (*model.Product, error) {
	defer guard(r.db, r.inTx)()
	for _, p := range r.db.products {
		if live(p) && p.Code == code {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("product")
}

func (r *memProducts) Search(_ context.Context, f repository.ProductFilter) ([]model.Product, error) {
	defer guard(r.db, r.inTx)()
	term := strings.ToLower(strings.TrimSpace(f.Query))
	var out []model.Product
	for _, p := range r.db.products {
		if !live(p) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Code), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if f.Status == model.StatusLow && !p.IsLow() {
			continue
		}
		if f.Status == model.StatusOut && !p.IsOut() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memProducts) FindAll(_ context.Context) ([]model.Product, error) {
	defer guard(r.db, r.inTx)()
	var out []model.Product
	for _, p := range r.db.products {
		if live(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProducts) AdjustStock(_ context.Context, id uint, delta int) (int, error) {
	defer guard(r.db, r.inTx)()
	p, ok := r.db.products[id]
	if !ok || !live(p) {
		return 0, apperr.NotFound("product")
	}
	if p.Stock+delta < 0 {
		return 0, apperr.ErrInsufficientStock
	}
	p.Stock += delta
	r.db.products[id] = p
	return p.Stock, nil
}

func (r *memProducts) Stats(_ context.Context) (*repository.DashboardStats, error) {
	defer guard(r.db, r.inTx)()
	var s repository.DashboardStats
	for _, p := range r.db.products {
		if !live(p) {
			continue
		}
		s.TotalProducts++
		if p.IsLow() {
			s.LowStockCount++
		}
		if p.IsOut() {
			s.OutOfStock++
		}
	}
	return &s, nil
}

type memLedger struct {
	db   *memDB
	inTx bool
}

func (r *memLedger) Create(_ context.Context, tx *model.Transaction) error {
	defer guard(r.db, r.inTx)()
	if r.db.failLedger != nil {
		return r.db.failLedger
	}
	if _, ok := r.db.products[tx.ProductID]; !ok {
		return apperr.Invalid("transaction references a record that does not exist")
	}
	tx.ID = r.db.id()
	r.db.txs = append(r.db.txs, *tx)
	return nil
}

func (r *memLedger) view(tx model.Transaction) model.TransactionView {
	v := model.TransactionView{Transaction: tx}
	if p, ok := r.db.products[tx.ProductID]; ok {
		v.ProductCode, v.ProductName = p.Code, p.Name
	}
	if tx.UserID != nil {
		v.Username = r.db.users[*tx.UserID].Username
	}
	if tx.SupplierID != nil {
		v.SupplierName = r.db.suppliers[*tx.SupplierID].Name
	}
	return v
}

func (r *memLedger) FindByID(_ context.Context, id uint) (*model.TransactionView, error) {
	defer guard(r.db, r.inTx)()
	for _, tx := range r.db.txs {
		if tx.ID == id {
			v := r.view(tx)
			return &v, nil
		}
	}
	return nil, apperr.NotFound("transaction")
}

func (r *memLedger) Recent(_ context.Context, limit int) ([]model.TransactionView, error) {
	defer guard(r.db, r.inTx)()
	var out []model.TransactionView
	for i := len(r.db.txs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.view(r.db.txs[i]))
	}
	return out, nil
}

func (r *memLedger) ListByProduct(_ context.Context, productID uint) ([]model.TransactionView, error) {
	defer guard(r.db, r.inTx)()
	var out []model.TransactionView
	for _, tx := range r.db.txs {
		if tx.ProductID == productID {
			out = append(out, r.view(tx))
		}
	}
	return out, nil
}

func (r *memLedger) Totals(_ context.Context, productID uint) (*repository.LedgerTotals, error) {
	defer guard(r.db, r.inTx)()
	var t repository.LedgerTotals
	for _, tx := range r.db.txs {
		if tx.ProductID != productID {
			continue
		}
		if tx.Type == model.TxIn {
			t.InQty += int64(tx.Qty)
		} else {
			t.OutQty += int64(tx.Qty)
		}
	}
	return &t, nil
}

func (r *memLedger) GetStockMovement(_ context.Context, start, end time.Time) ([]repository.StockMovementData, error) {
	defer guard(r.db, r.inTx)()
	byDay := map[string]*repository.StockMovementData{}
	var days []string
	for _, tx := range r.db.txs {
		if tx.Timestamp.Before(start) || tx.Timestamp.After(end) {
			continue
		}
		day := tx.Timestamp.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &repository.StockMovementData{Date: day}
			byDay[day] = d
			days = append(days, day)
		}
		if tx.Type == model.TxIn {
			d.Inbound += tx.Qty
		} else {
			d.Outbound += tx.Qty
		}
	}
	sort.Strings(days)
	out := make([]repository.StockMovementData, 0, len(days))
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out, nil
}

type memSuppliers struct{ db *memDB }

func (r *memSuppliers) Create(_ context.Context, s *model.Supplier) error {
	defer guard(r.db, false)()
	s.ID = r.db.id()
	r.db.suppliers[s.ID] = *s
	return nil
}

func (r *memSuppliers) Update(_ context.Context, s *model.Supplier) error {
	defer guard(r.db, false)()
	if cur, ok := r.db.suppliers[s.ID]; !ok || cur.DeletedAt.Valid {
		return apperr.NotFound("supplier")
	}
	r.db.suppliers[s.ID] = *s
	return nil
}

func (r *memSuppliers) Delete(_ context.Context, id uint) error {
	defer guard(r.db, false)()
	s, ok := r.db.suppliers[id]
	if !ok || s.DeletedAt.Valid {
		return apperr.NotFound("supplier")
	}
	s.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.db.suppliers[id] = s
	return nil
}

func (r *memSuppliers) FindByID(_ context.Context, id uint) (*model.Supplier, error) {
	defer guard(r.db, false)()
	s, ok := r.db.suppliers[id]
	if !ok || s.DeletedAt.Valid {
		return nil, apperr.NotFound("supplier")
	}
	return &s, nil
}

func (r *memSuppliers) FindAll(_ context.Context) ([]model.Supplier, error) {
	defer guard(r.db, false)()
	var out []model.Supplier
	for _, s := range r.db.suppliers {
		if !s.DeletedAt.Valid {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memUsers struct{ db *memDB }

func (r *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	defer guard(r.db, false)()
	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (r *memUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	defer guard(r.db, false)()
	u, ok := r.db.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return &u, nil
}

func (r *memUsers) Create(_ context.Context, u *model.User) error {
	defer guard(r.db, false)()
	for _, other := range r.db.users {
		if other.Username == u.Username {
			return apperr.Duplicate("username already exists")
		}
	}
	u.ID = r.db.id()
	r.db.users[u.ID] = *u
	return nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id uint, hash string) error {
	defer guard(r.db, false)()
	u, ok := r.db.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Password = hash
	r.db.users[id] = u
	return nil
}
