package service

import (
	"context"
	"time"

	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
)

const recentTransactions = 7

// Dashboard is the overview page payload.
type Dashboard struct {
	Stats    repository.DashboardStats `json:"stats"`
	Recent   []model.TransactionView   `json:"recent_transactions"`
	LowStock []model.Product           `json:"low_stock"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	now         func() time.Time
}

func NewDashboardService(pRepo repository.ProductRepository, txRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, txRepo: txRepo, now: time.Now}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.productRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.txRepo.Recent(ctx, recentTransactions)
	if err != nil {
		return nil, err
	}
	low, err := s.productRepo.Search(ctx, repository.ProductFilter{Status: model.StatusLow})
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: *stats, Recent: recent, LowStock: low}, nil
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	endDate := s.now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	return s.txRepo.GetStockMovement(ctx, startDate, endDate)
}
