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

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	recorder     appjournal.MutationRecorder
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, recorder appjournal.MutationRecorder, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, req.toDomain())
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	id := customer.ID
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionAddCustomer,
		Description: fmt.Sprintf("Added customer '%s'", customer.Name),
		TargetID:    &id,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("customer created", zap.String("customer_id", id.String()))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Update replaces every mutable field of a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	before := customer.Snapshot()
	if err := customer.Update(req.Name, req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionUpdateCustomer,
		Description: fmt.Sprintf("Updated customer '%s'", customer.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete hides a customer
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.getVisible(ctx, id)
	if err != nil {
		return err
	}

	before := customer.Snapshot()
	if err := s.customerRepo.SetVisible(ctx, id, false); err != nil {
		return err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionDeleteCustomer,
		Description: fmt.Sprintf("Deleted customer '%s'", customer.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id.String()))
	return nil
}

// GetByID retrieves a visible customer
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List retrieves visible customers
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) ([]CustomerResponse, error) {
	filter.IncludeHidden = false
	customers, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out, nil
}

func (s *CustomerService) getVisible(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.IsVisible() {
		return nil, shared.NewNotFoundError("customer", id)
	}
	return customer, nil
}
