package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
)

// SupplierInput is the editable part of a supplier.
type SupplierInput struct {
	Name    string `json:"name" form:"name" validate:"required,max=150"`
	Contact string `json:"contact" form:"contact" validate:"max=150"`
	Email   string `json:"email" form:"email" validate:"omitempty,email,max=150"`
	Address string `json:"address" form:"address" validate:"max=300"`
}

type SupplierService interface {
	Create(ctx context.Context, in SupplierInput) (*model.Supplier, error)
	Update(ctx context.Context, id uint, in SupplierInput) (*model.Supplier, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*model.Supplier, error)
	List(ctx context.Context) ([]model.Supplier, error)
}

type supplierService struct {
	repo repository.SupplierRepository
	log  zerolog.Logger
}

func NewSupplierService(repo repository.SupplierRepository, log zerolog.Logger) SupplierService {
	return &supplierService{repo: repo, log: log.With().Str("component", "supplier").Logger()}
}

func (s *supplierService) Create(ctx context.Context, in SupplierInput) (*model.Supplier, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	supplier := &model.Supplier{}
	in.applyTo(supplier)
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	s.log.Info().Uint("supplier_id", supplier.ID).Msg("supplier created")
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id uint, in SupplierInput) (*model.Supplier, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(supplier)
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("supplier_id", id).Msg("supplier deleted")
	return nil
}

func (s *supplierService) Get(ctx context.Context, id uint) (*model.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *supplierService) List(ctx context.Context) ([]model.Supplier, error) {
	return s.repo.FindAll(ctx)
}

func (in *SupplierInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
}

func (in *SupplierInput) applyTo(s *model.Supplier) {
	s.Name = in.Name
	s.Contact = in.Contact
	s.Email = in.Email
	s.Address = in.Address
}
