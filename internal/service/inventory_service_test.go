package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
)

func newInventory(t *testing.T) (*inventoryService, *memDB) {
	t.Helper()
	db := newMemDB()
	svc := NewInventoryService(db, db.productRepo(), db.ledgerRepo(), db.supplierRepo(), zerolog.Nop()).(*inventoryService)
	return svc, db
}

func intPtr(n int) *int { return &n }

func seedProduct(t *testing.T, svc *inventoryService, code string, stock int) *model.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), ProductInput{
		Code:         code,
		Name:         "Product " + code,
		Stock:        intPtr(stock),
		ReorderPoint: 5,
	}, 1)
	require.NoError(t, err)
	return p
}

func TestRecordMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("outbound beyond stock is rejected without mutation", func(t *testing.T) {
		svc, db := newInventory(t)
		p := seedProduct(t, svc, "A1", 10)
		before := len(db.ledger())

		_, err := svc.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.TxOut, Qty: 12, UserID: 1})

		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
		assert.Equal(t, 10, db.stock(p.ID))
		assert.Len(t, db.ledger(), before)
	})

	t.Run("inbound adds to stock and appends one entry", func(t *testing.T) {
		svc, db := newInventory(t)
		p := seedProduct(t, svc, "A1", 10)
		before := len(db.ledger())

		res, err := svc.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.TxIn, Qty: 5, UserID: 1, Notes: " restock "})
		require.NoError(t, err)

		assert.Equal(t, 15, res.NewStock)
		assert.Equal(t, 15, db.stock(p.ID))
		assert.NotZero(t, res.Transaction.ID)
		assert.False(t, res.Transaction.Timestamp.IsZero())
		assert.Equal(t, time.UTC, res.Transaction.Timestamp.Location())
		assert.Equal(t, "restock", res.Transaction.Notes)
		assert.Len(t, db.ledger(), before+1)
	})

	t.Run("outbound of exactly the stock empties it", func(t *testing.T) {
		svc, db := newInventory(t)
		p := seedProduct(t, svc, "A1", 4)

		res, err := svc.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.TxOut, Qty: 4, UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, 0, res.NewStock)
		assert.Equal(t, 0, db.stock(p.ID))
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _ := newInventory(t)
		_, err := svc.RecordMovement(ctx, MovementInput{ProductID: 99, Type: model.TxIn, Qty: 1})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("unknown supplier is invalid input", func(t *testing.T) {
		svc, db := newInventory(t)
		p := seedProduct(t, svc, "A1", 1)
		before := len(db.ledger())

		_, err := svc.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.TxIn, Qty: 1, SupplierID: 42})
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		assert.Len(t, db.ledger(), before)
	})

	t.Run("supplier is recorded on the entry", func(t *testing.T) {
		svc, db := newInventory(t)
		p := seedProduct(t, svc, "A1", 1)
		s := &model.Supplier{Name: "Acme"}
		require.NoError(t, db.supplierRepo().Create(ctx, s))

		res, err := svc.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.TxIn, Qty: 3, SupplierID: s.ID})
		require.NoError(t, err)
		require.NotNil(t, res.Transaction.SupplierID)
		assert.Equal(t, s.ID, *res.Transaction.SupplierID)
	})
}

func TestRecordMovementValidation(t *testing.T) {
	svc, db := newInventory(t)
	p := seedProduct(t, svc, "A1", 10)
	before := len(db.ledger())

	tests := []struct {
		name string
		in   MovementInput
	}{
		{"zero qty", MovementInput{ProductID: p.ID, Type: model.TxIn, Qty: 0}},
		{"negative qty", MovementInput{ProductID: p.ID, Type: model.TxOut, Qty: -3}},
		{"unknown type", MovementInput{ProductID: p.ID, Type: "order", Qty: 1}},
		{"missing type", MovementInput{ProductID: p.ID, Qty: 1}},
		{"qty too large", MovementInput{ProductID: p.ID, Type: model.TxIn, Qty: math.MaxInt64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordMovement(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}

	assert.Equal(t, 10, db.stock(p.ID))
	assert.Len(t, db.ledger(), before)
}

func TestRecordMovementRollsBackOnLedgerFailure(t *testing.T) {
	svc, db := newInventory(t)
	p := seedProduct(t, svc, "A1", 10)
	before := len(db.ledger())

	boom := errors.New("disk full")
	db.failLedger = boom

	_, err := svc.RecordMovement(context.Background(), MovementInput{ProductID: p.ID, Type: model.TxOut, Qty: 3})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, db.stock(p.ID))
	assert.Len(t, db.ledger(), before)
}

func TestConcurrentOutboundNeverOversells(t *testing.T) {
	svc, db := newInventory(t)
	const stock, workers = 30, 50
	p := seedProduct(t, svc, "A1", stock)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(context.Background(), MovementInput{ProductID: p.ID, Type: model.TxOut, Qty: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperr.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, ok)
	assert.Equal(t, workers-stock, rejected)
	assert.Equal(t, 0, db.stock(p.ID))

	rec, err := svc.Reconcile(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestLedgerMatchesStockAfterMixedMovements(t *testing.T) {
	svc, _ := newInventory(t)
	ctx := context.Background()
	p := seedProduct(t, svc, "A1", 0)

	moves := []MovementInput{
		{Type: model.TxIn, Qty: 20},
		{Type: model.TxOut, Qty: 7},
		{Type: model.TxOut, Qty: 50},
		{Type: model.TxIn, Qty: 3},
		{Type: model.TxOut, Qty: 16},
	}
	for _, m := range moves {
		m.ProductID = p.ID
		_, _ = svc.RecordMovement(ctx, m)
	}

	rec, err := svc.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(23), rec.InQty)
	assert.Equal(t, int64(23), rec.OutQty)
	assert.Equal(t, 0, rec.Stock)
	assert.True(t, rec.Consistent)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("opening balance is a ledger entry", func(t *testing.T) {
		svc, db := newInventory(t)
		p := seedProduct(t, svc, "A1", 12)

		assert.Equal(t, 12, p.Stock)
		entries := db.ledger()
		require.Len(t, entries, 1)
		assert.Equal(t, model.TxIn, entries[0].Type)
		assert.Equal(t, 12, entries[0].Qty)
		assert.Equal(t, "opening balance", entries[0].Notes)
	})

	t.Run("zero stock writes no entry", func(t *testing.T) {
		svc, db := newInventory(t)
		p, err := svc.CreateProduct(ctx, ProductInput{Code: "B", Name: "Bolt"}, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
		assert.Empty(t, db.ledger())
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, _ := newInventory(t)
		seedProduct(t, svc, "A1", 0)
		_, err := svc.CreateProduct(ctx, ProductInput{Code: "A1", Name: "Other"}, 1)
		assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _ := newInventory(t)
		_, err := svc.CreateProduct(ctx, ProductInput{Code: " ", Name: "x"}, 1)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		assert.ErrorContains(t, err, "code is required")

		_, err = svc.CreateProduct(ctx, ProductInput{Code: "A", Name: "x", Stock: intPtr(-1)}, 1)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, db := newInventory(t)
	p := seedProduct(t, svc, "A1", 10)

	t.Run("stock change goes through the ledger", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Code: "A1", Name: "Renamed", Stock: intPtr(4)}, 1)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, 4, updated.Stock)

		entries := db.ledger()
		last := entries[len(entries)-1]
		assert.Equal(t, model.TxOut, last.Type)
		assert.Equal(t, 6, last.Qty)
		assert.Equal(t, "manual adjustment", last.Notes)
	})

	t.Run("nil stock leaves it alone", func(t *testing.T) {
		before := len(db.ledger())
		updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Code: "A1", Name: "Again"}, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Stock)
		assert.Len(t, db.ledger(), before)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, 999, ProductInput{Code: "Z", Name: "Z"}, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	rec, err := svc.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestDeleteProductKeepsLedger(t *testing.T) {
	ctx := context.Background()
	svc, db := newInventory(t)
	p := seedProduct(t, svc, "A1", 3)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err := svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Len(t, db.ledger(), 1)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestDeletedProductCodeCanBeReused(t *testing.T) {
	ctx := context.Background()
	svc, db := newInventory(t)
	old := seedProduct(t, svc, "A1", 3)
	require.NoError(t, svc.DeleteProduct(ctx, old.ID))

	p, err := svc.CreateProduct(ctx, ProductInput{Code: "A1", Name: "Widget v2", Stock: intPtr(2)}, 1)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, p.ID)
	assert.Equal(t, 2, p.Stock)

	_, err = svc.CreateProduct(ctx, ProductInput{Code: "A1", Name: "Clash"}, 1)
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	history, err := db.ledgerRepo().ListByProduct(ctx, old.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Product A1", history[0].ProductName)
}

func TestUpdateProductKeepsDeletedSupplier(t *testing.T) {
	ctx := context.Background()
	svc, db := newInventory(t)
	s := &model.Supplier{Name: "Acme"}
	require.NoError(t, db.supplierRepo().Create(ctx, s))

	p, err := svc.CreateProduct(ctx, ProductInput{Code: "A1", Name: "Widget", SupplierID: s.ID}, 1)
	require.NoError(t, err)
	require.NoError(t, db.supplierRepo().Delete(ctx, s.ID))

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Code: "A1", Name: "Widget 2", SupplierID: s.ID}, 1)
	require.NoError(t, err)
	require.NotNil(t, updated.SupplierID)
	assert.Equal(t, s.ID, *updated.SupplierID)

	other, err := svc.CreateProduct(ctx, ProductInput{Code: "B1", Name: "Bolt"}, 1)
	require.NoError(t, err)
	_, err = svc.UpdateProduct(ctx, other.ID, ProductInput{Code: "B1", Name: "Bolt", SupplierID: s.ID}, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventory(t)
	for _, in := range []ProductInput{
		{Code: "W-1", Name: "Widget", Category: "Hardware", Stock: intPtr(3), ReorderPoint: 5},
		{Code: "G-1", Name: "Gadget", Category: "Tools", Stock: intPtr(0), ReorderPoint: 2},
		{Code: "S-1", Name: "Sprocket", Category: "hardware", Stock: intPtr(50), ReorderPoint: 5},
	} {
		_, err := svc.CreateProduct(ctx, in, 1)
		require.NoError(t, err)
	}

	names := func(ps []model.Product) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	got, err := svc.SearchProducts(ctx, repository.ProductFilter{Query: "HARD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sprocket", "Widget"}, names(got))

	got, err = svc.SearchProducts(ctx, repository.ProductFilter{Status: model.StatusLow})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget", "Widget"}, names(got))

	got, err = svc.SearchProducts(ctx, repository.ProductFilter{Status: model.StatusOut})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget"}, names(got))

	got, err = svc.SearchProducts(ctx, repository.ProductFilter{Status: "bogus"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestProductLedger(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventory(t)
	p := seedProduct(t, svc, "A1", 2)
	_, err := svc.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.TxOut, Qty: 1})
	require.NoError(t, err)

	entries, err := svc.ProductLedger(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A1", entries[0].ProductCode)
	assert.Equal(t, model.TxOut, entries[1].Type)

	_, err = svc.ProductLedger(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
