// Package inventory implements stock transactions: pending batches, their approval and
// cancellation, and direct stock movements.
package inventory

import (
	"context"
	"fmt"
	"time"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Approval outcomes reported to metrics
const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics receives transaction lifecycle events
type Metrics interface {
	RecordTransaction(ctx context.Context, kind, status string)
	RecordApprovalDuration(ctx context.Context, d time.Duration, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordTransaction(context.Context, string, string) {}
func (nopMetrics) RecordApprovalDuration(context.Context, time.Duration, string) {}

// Option configures a TransactionService
type Option func(*TransactionService)

// WithMetrics reports lifecycle events to m
func WithMetrics(m Metrics) Option {
	return func(s *TransactionService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// TransactionServiceDeps groups the collaborators of a TransactionService
type TransactionServiceDeps struct {
	Products     catalog.ProductRepository
	Transactions inventory.TransactionRepository
	Suppliers    partner.SupplierRepository
	Customers    partner.CustomerRepository
	Scope        TransactionScope
	Locker       ProductLocker
	Recorder     appjournal.MutationRecorder
	Logger       *zap.Logger
}

// TransactionService drives stock transactions through PENDING to APPROVED or CANCELLED
type TransactionService struct {
	productRepo     catalog.ProductRepository
	transactionRepo inventory.TransactionRepository
	supplierRepo    partner.SupplierRepository
	customerRepo    partner.CustomerRepository
	scope           TransactionScope
	locker          ProductLocker
	recorder        appjournal.MutationRecorder
	logger          *zap.Logger
	metrics         Metrics
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(deps TransactionServiceDeps, opts ...Option) *TransactionService {
	s := &TransactionService{
		productRepo:     deps.Products,
		transactionRepo: deps.Transactions,
		supplierRepo:    deps.Suppliers,
		customerRepo:    deps.Customers,
		scope:           deps.Scope,
		locker:          deps.Locker,
		recorder:        deps.Recorder,
		logger:          deps.Logger,
		metrics:         nopMetrics{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBatch records a pending import or export. Stock is not touched until approval.
func (s *TransactionService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*TransactionResponse, error) {
	if !req.Kind.IsValid() {
		return nil, shared.NewValidationError("kind", "transaction kind must be IMPORT or EXPORT").With("kind", req.Kind)
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("lines", "a transaction needs at least one line")
	}

	ids := make([]uuid.UUID, 0, len(req.Lines))
	seen := make(map[uuid.UUID]struct{}, len(req.Lines))
	for _, l := range req.Lines {
		if _, dup := seen[l.ProductID]; dup {
			return nil, shared.NewValidationError("lines", "product appears more than once in the transaction").
				With("product_id", l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}

	if err := s.requirePartner(ctx, req.Kind, req.PartnerID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.TransactionLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		p, ok := products[l.ProductID]
		if !ok || !p.IsVisible() {
			return nil, shared.NewNotFoundError("product", l.ProductID)
		}
		if req.Kind == inventory.KindExport && l.Quantity > p.Quantity {
			return nil, shared.NewInsufficientStockError(p.ID, p.Name, l.Quantity, p.Quantity)
		}
		line, err := inventory.NewTransactionLine(p.ID, p.Name, l.Quantity, unitPriceOr(l.UnitPrice, p), l.DiscountRate)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	tx, err := inventory.NewStockTransaction(req.Kind, req.CreatedBy, req.Note, req.PartnerID, lines)
	if err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	actionType := journal.ActionImportBatch
	if tx.Kind == inventory.KindExport {
		actionType = journal.ActionExportBatch
	}
	id := tx.ID
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  actionType,
		Description: fmt.Sprintf("Created %s batch with %d lines", kindLabel(tx.Kind), len(tx.Lines)),
		TargetID:    &id,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.metrics.RecordTransaction(ctx, string(tx.Kind), string(tx.Status))
	s.logger.Info("stock transaction created",
		zap.String("transaction_id", id.String()),
		zap.String("kind", string(tx.Kind)),
		zap.Int("lines", len(tx.Lines)),
	)

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// Approve applies every line's stock change and marks the transaction APPROVED. Either all
// lines are applied or none; a line that would drive stock negative rejects the approval and
// the transaction stays PENDING.
func (s *TransactionService) Approve(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	start := s.now()
	tx, err := s.approve(ctx, id)
	outcome := OutcomeApproved
	switch {
	case shared.IsStateConflict(err), shared.IsNotFound(err), shared.IsValidation(err):
		outcome = OutcomeRejected
	case err != nil:
		outcome = OutcomeFailed
	}
	s.metrics.RecordApprovalDuration(ctx, s.now().Sub(start), outcome)
	if err != nil {
		s.logger.Warn("stock transaction approval failed",
			zap.String("transaction_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	txID := tx.ID
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionApproveTransaction,
		Description: fmt.Sprintf("Approved %s transaction", kindLabel(tx.Kind)),
		TargetID:    &txID,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.metrics.RecordTransaction(ctx, string(tx.Kind), string(tx.Status))
	s.logger.Info("stock transaction approved",
		zap.String("transaction_id", txID.String()),
		zap.String("kind", string(tx.Kind)),
	)

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) approve(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	tx, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.IsPending() {
		return nil, shared.NewStateConflictError("cannot approve a transaction that is not pending").
			With("transaction_id", id).
			With("status", tx.Status)
	}

	release, err := s.locker.Acquire(ctx, tx.ProductIDs())
	if err != nil {
		return nil, err
	}
	defer release()

	var approved *inventory.StockTransaction
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.TransactionRepo().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !current.IsVisible() {
			return shared.NewNotFoundError("stock transaction", id)
		}

		products, err := repos.ProductRepo().GetByIDs(ctx, current.ProductIDs())
		if err != nil {
			return err
		}
		deltas := current.Deltas()
		for _, l := range current.Lines {
			p, ok := products[l.ProductID]
			if !ok || !p.IsVisible() {
				return shared.NewNotFoundError("product", l.ProductID)
			}
			next := p.Quantity + deltas[l.ProductID]
			if next < 0 {
				return shared.NewInsufficientStockError(p.ID, p.Name, l.Quantity, p.Quantity).
					With("transaction_id", id)
			}
			if next > catalog.MaxQuantity {
				return shared.NewValidationError("quantity", "approval would exceed the maximum stock level").
					With("product_id", p.ID).
					With("quantity", next)
			}
		}

		for _, l := range current.Lines {
			if err := repos.ProductRepo().AdjustQuantity(ctx, l.ProductID, deltas[l.ProductID]); err != nil {
				return err
			}
		}

		if err := current.Approve(); err != nil {
			return err
		}
		if err := repos.TransactionRepo().UpdateStatus(ctx, current, inventory.StatusPending); err != nil {
			return err
		}
		approved = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Cancel marks a pending transaction CANCELLED without touching stock
func (s *TransactionService) Cancel(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Cancel(); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx, inventory.StatusPending); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionCancelTransaction,
		Description: fmt.Sprintf("Cancelled %s transaction", kindLabel(tx.Kind)),
		TargetID:    &id,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.metrics.RecordTransaction(ctx, string(tx.Kind), string(tx.Status))
	s.logger.Info("stock transaction cancelled", zap.String("transaction_id", id.String()))

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// GetByID retrieves a visible transaction with its lines
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// List retrieves visible transactions
func (s *TransactionService) List(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, error) {
	if filter.Kind != nil && !filter.Kind.IsValid() {
		return nil, shared.NewValidationError("kind", "transaction kind must be IMPORT or EXPORT")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, shared.NewValidationError("from", "start of the date range must not be after its end")
	}
	filter.IncludeHidden = false
	txs, err := s.transactionRepo.List(ctx, inventory.TransactionFilter{
		Filter: filter.Filter,
		Kind:   filter.Kind,
		Status: filter.Status,
		From:   filter.From,
		To:     filter.To,
	})
	if err != nil {
		return nil, err
	}
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out, nil
}

// Update changes the kind and note of a pending transaction
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	return s.editPending(ctx, id, nil, journal.ActionUpdateTransaction, func(tx *inventory.StockTransaction) (string, error) {
		if err := tx.Revise(req.Kind, req.Note); err != nil {
			return "", err
		}
		if tx.Kind == inventory.KindExport {
			if err := s.requireStock(ctx, tx.Lines...); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("Updated %s transaction", kindLabel(tx.Kind)), nil
	})
}

// AddLine adds a product to a pending transaction
func (s *TransactionService) AddLine(ctx context.Context, id uuid.UUID, req BatchLineRequest) (*TransactionResponse, error) {
	return s.editPending(ctx, id, []uuid.UUID{req.ProductID}, journal.ActionAddTransactionLine, func(tx *inventory.StockTransaction) (string, error) {
		p, err := s.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return "", err
		}
		if !p.IsVisible() {
			return "", shared.NewNotFoundError("product", req.ProductID)
		}
		line, err := inventory.NewTransactionLine(p.ID, p.Name, req.Quantity, unitPriceOr(req.UnitPrice, p), req.DiscountRate)
		if err != nil {
			return "", err
		}
		if tx.Kind == inventory.KindExport {
			if err := s.requireStock(ctx, line); err != nil {
				return "", err
			}
		}
		if err := tx.AddLine(line); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %d of '%s' to %s transaction", line.Quantity, line.ProductName, kindLabel(tx.Kind)), nil
	})
}

// UpdateLine changes the quantity or prices of one line of a pending transaction
func (s *TransactionService) UpdateLine(ctx context.Context, id, productID uuid.UUID, req UpdateLineRequest) (*TransactionResponse, error) {
	return s.editPending(ctx, id, nil, journal.ActionUpdateTransactionLine, func(tx *inventory.StockTransaction) (string, error) {
		current, ok := tx.Line(productID)
		if !ok {
			return "", shared.NewNotFoundError("transaction line", productID).With("transaction_id", id)
		}
		price, discount := current.UnitPrice, current.DiscountRate
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		if req.DiscountRate != nil {
			discount = *req.DiscountRate
		}
		if err := tx.UpdateLine(productID, req.Quantity, price, discount); err != nil {
			return "", err
		}
		if tx.Kind == inventory.KindExport {
			updated, _ := tx.Line(productID)
			if err := s.requireStock(ctx, updated); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("Updated line '%s' of %s transaction", current.ProductName, kindLabel(tx.Kind)), nil
	})
}

// RemoveLine drops one line from a pending transaction. The last line cannot be removed.
func (s *TransactionService) RemoveLine(ctx context.Context, id, productID uuid.UUID) (*TransactionResponse, error) {
	return s.editPending(ctx, id, nil, journal.ActionDeleteTransactionLine, func(tx *inventory.StockTransaction) (string, error) {
		current, ok := tx.Line(productID)
		if !ok {
			return "", shared.NewNotFoundError("transaction line", productID).With("transaction_id", id)
		}
		if err := tx.RemoveLine(productID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed '%s' from %s transaction", current.ProductName, kindLabel(tx.Kind)), nil
	})
}

// editPending runs one edit of a pending transaction under the locks of its products, persists
// the result guarded by the PENDING status and journals the state from before the edit
func (s *TransactionService) editPending(ctx context.Context, id uuid.UUID, extra []uuid.UUID, actionType journal.ActionType, edit func(*inventory.StockTransaction) (string, error)) (*TransactionResponse, error) {
	tx, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.IsPending() {
		return nil, shared.NewStateConflictError("cannot edit a transaction that is not pending").
			With("transaction_id", id).
			With("status", tx.Status)
	}

	release, err := s.locker.Acquire(ctx, append(tx.ProductIDs(), extra...))
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload under the locks so the snapshot matches what is stored
	tx, err = s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	before := tx.Snapshot()
	description, err := edit(tx)
	if err != nil {
		return nil, err
	}
	if err := s.transactionRepo.UpdatePending(ctx, tx); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  actionType,
		Description: description,
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("stock transaction edited",
		zap.String("transaction_id", id.String()),
		zap.String("action", string(actionType)),
		zap.Int("lines", len(tx.Lines)),
	)

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// requireStock checks that each export line fits the current stock of its product
func (s *TransactionService) requireStock(ctx context.Context, lines ...inventory.TransactionLine) error {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok || !p.IsVisible() {
			return shared.NewNotFoundError("product", l.ProductID)
		}
		if l.Quantity > p.Quantity {
			return shared.NewInsufficientStockError(p.ID, p.Name, l.Quantity, p.Quantity)
		}
	}
	return nil
}

// ImportStock adds stock to one product immediately
func (s *TransactionService) ImportStock(ctx context.Context, productID uuid.UUID, req StockMovementRequest) (*StockMovementResponse, error) {
	return s.moveStock(ctx, productID, req, inventory.KindImport)
}

// ExportStock removes stock from one product immediately
func (s *TransactionService) ExportStock(ctx context.Context, productID uuid.UUID, req StockMovementRequest) (*StockMovementResponse, error) {
	return s.moveStock(ctx, productID, req, inventory.KindExport)
}

func (s *TransactionService) moveStock(ctx context.Context, productID uuid.UUID, req StockMovementRequest, kind inventory.TransactionKind) (*StockMovementResponse, error) {
	if req.Quantity < inventory.MinLineQuantity || req.Quantity > inventory.MaxLineQuantity {
		return nil, shared.NewValidationError("quantity", "quantity must be between 1 and 999,999").
			With("quantity", req.Quantity)
	}

	release, err := s.locker.Acquire(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	defer release()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsVisible() {
		return nil, shared.NewNotFoundError("product", productID)
	}

	before := product.QuantitySnapshot()
	delta := kind.Sign() * req.Quantity
	if err := s.productRepo.AdjustQuantity(ctx, productID, delta); err != nil {
		return nil, err
	}

	actionType := journal.ActionImportStock
	verb := "Imported"
	if kind == inventory.KindExport {
		actionType = journal.ActionExportStock
		verb = "Exported"
	}
	description := fmt.Sprintf("%s %d of '%s'", verb, req.Quantity, product.Name)
	if req.Note != "" {
		description += ": " + req.Note
	}
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  actionType,
		Description: description,
		TargetID:    &productID,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}

	return &StockMovementResponse{
		ProductID:        productID,
		PreviousQuantity: product.Quantity,
		Quantity:         product.Quantity + delta,
	}, nil
}

func (s *TransactionService) getVisible(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.IsVisible() {
		return nil, shared.NewNotFoundError("stock transaction", id)
	}
	return tx, nil
}

// requirePartner checks that the partner, when given, exists and matches the direction
func (s *TransactionService) requirePartner(ctx context.Context, kind inventory.TransactionKind, partnerID *uuid.UUID) error {
	if partnerID == nil {
		return nil
	}
	var (
		visible bool
		err     error
	)
	entity := "supplier"
	if kind == inventory.KindImport {
		var sup *partner.Supplier
		if sup, err = s.supplierRepo.GetByID(ctx, *partnerID); err == nil {
			visible = sup.IsVisible()
		}
	} else {
		entity = "customer"
		var cus *partner.Customer
		if cus, err = s.customerRepo.GetByID(ctx, *partnerID); err == nil {
			visible = cus.IsVisible()
		}
	}
	if err != nil {
		return err
	}
	if !visible {
		return shared.NewNotFoundError(entity, *partnerID)
	}
	return nil
}

// unitPriceOr returns the requested price, or the product's price when none was sent
func unitPriceOr(requested *decimal.Decimal, p *catalog.Product) decimal.Decimal {
	if requested != nil {
		return *requested
	}
	return p.Price
}

func kindLabel(k inventory.TransactionKind) string {
	if k == inventory.KindExport {
		return "export"
	}
	return "import"
}
