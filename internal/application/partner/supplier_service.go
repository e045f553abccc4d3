// Package partner implements the journaled commands for suppliers and customers.
package partner

import (
	"context"
	"fmt"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	recorder     appjournal.MutationRecorder
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, recorder appjournal.MutationRecorder, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Name, req.ContactName, req.toDomain())
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	id := supplier.ID
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionAddSupplier,
		Description: fmt.Sprintf("Added supplier '%s'", supplier.Name),
		TargetID:    &id,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("supplier created", zap.String("supplier_id", id.String()))

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update replaces every mutable field of a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	before := supplier.Snapshot()
	if err := supplier.Update(req.Name, req.ContactName, req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionUpdateSupplier,
		Description: fmt.Sprintf("Updated supplier '%s'", supplier.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete hides a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.getVisible(ctx, id)
	if err != nil {
		return err
	}

	before := supplier.Snapshot()
	if err := s.supplierRepo.SetVisible(ctx, id, false); err != nil {
		return err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionDeleteSupplier,
		Description: fmt.Sprintf("Deleted supplier '%s'", supplier.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

// GetByID retrieves a visible supplier
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves visible suppliers
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) ([]SupplierResponse, error) {
	filter.IncludeHidden = false
	suppliers, err := s.supplierRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out, nil
}

func (s *SupplierService) getVisible(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !supplier.IsVisible() {
		return nil, shared.NewNotFoundError("supplier", id)
	}
	return supplier, nil
}
