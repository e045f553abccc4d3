package inventory

import (
	"strings"
	"time"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a stock transaction
type TransactionKind string

const (
	// KindImport receives goods from a supplier
	KindImport TransactionKind = "IMPORT"
	// KindExport ships goods to a customer
	KindExport TransactionKind = "EXPORT"
)

// IsValid returns true if the kind is known
func (k TransactionKind) IsValid() bool {
	return k == KindImport || k == KindExport
}

// Sign is +1 for imports and -1 for exports
func (k TransactionKind) Sign() int {
	if k == KindExport {
		return -1
	}
	return 1
}

// TransactionStatus is the lifecycle state of a stock transaction
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusApproved  TransactionStatus = "APPROVED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// IsTerminal returns true once no further transition is allowed
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusCancelled
}

// MaxNoteLength is the longest accepted transaction note
const MaxNoteLength = 500

// Snapshot field names of a pending transaction
const (
	FieldKind  = "kind"
	FieldNote  = "note"
	FieldLines = "lines"

	fieldLineProductID    = "product_id"
	fieldLineProductName  = "product_name"
	fieldLineNo           = "line_no"
	fieldLineQuantity     = "quantity"
	fieldLineUnitPrice    = "unit_price"
	fieldLineDiscountRate = "discount_rate"
)

// StockTransaction records the intent to move stock. Stock is only touched when the
// transaction is approved, exactly once.
type StockTransaction struct {
	shared.BaseEntity
	Kind        TransactionKind   `gorm:"type:varchar(10);not null;index"`
	Status      TransactionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedBy   string            `gorm:"type:varchar(100);not null"`
	Note        string            `gorm:"type:varchar(500)"`
	PartnerID   *uuid.UUID        `gorm:"type:uuid;index"`
	ApprovedAt  *time.Time
	CancelledAt *time.Time
	Lines       []TransactionLine `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a pending transaction. Lines must reference distinct products.
func NewStockTransaction(kind TransactionKind, createdBy, note string, partnerID *uuid.UUID, lines []TransactionLine) (*StockTransaction, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("kind", "transaction kind must be IMPORT or EXPORT").With("kind", kind)
	}
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		return nil, shared.NewValidationError("created_by", "creator is required")
	}
	if len([]rune(note)) > MaxNoteLength {
		return nil, shared.NewValidationError("note", "note cannot exceed 500 characters")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("lines", "a transaction needs at least one line")
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for i := range lines {
		if _, dup := seen[lines[i].ProductID]; dup {
			return nil, shared.NewValidationError("lines", "product appears more than once in the transaction").
				With("product_id", lines[i].ProductID)
		}
		seen[lines[i].ProductID] = struct{}{}
	}

	tx := &StockTransaction{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		Status:     StatusPending,
		CreatedBy:  createdBy,
		Note:       note,
		PartnerID:  partnerID,
	}
	tx.Lines = make([]TransactionLine, len(lines))
	for i, l := range lines {
		l.TransactionID = tx.ID
		l.LineNo = i + 1
		tx.Lines[i] = l
	}
	return tx, nil
}

// IsPending returns true while the transaction can still be approved or cancelled
func (t *StockTransaction) IsPending() bool {
	return t.Status == StatusPending
}

// Approve moves the transaction to APPROVED. The caller applies the stock deltas.
func (t *StockTransaction) Approve() error {
	if err := t.requirePending("approve"); err != nil {
		return err
	}
	now := shared.Now()
	t.Status = StatusApproved
	t.ApprovedAt = &now
	t.Touch()
	return nil
}

// Cancel moves the transaction to CANCELLED without touching stock
func (t *StockTransaction) Cancel() error {
	if err := t.requirePending("cancel"); err != nil {
		return err
	}
	now := shared.Now()
	t.Status = StatusCancelled
	t.CancelledAt = &now
	t.Touch()
	return nil
}

// Revise changes the kind and note of a pending transaction. A transaction bound to a partner
// keeps its kind, since the partner is a supplier for imports and a customer for exports.
func (t *StockTransaction) Revise(kind TransactionKind, note string) error {
	if err := t.requirePending("edit"); err != nil {
		return err
	}
	if !kind.IsValid() {
		return shared.NewValidationError("kind", "transaction kind must be IMPORT or EXPORT").With("kind", kind)
	}
	if kind != t.Kind && t.PartnerID != nil {
		return shared.NewValidationError("kind", "cannot change the kind of a transaction bound to a partner").
			With("partner_id", *t.PartnerID)
	}
	if len([]rune(note)) > MaxNoteLength {
		return shared.NewValidationError("note", "note cannot exceed 500 characters")
	}
	t.Kind = kind
	t.Note = note
	t.Touch()
	return nil
}

// Line returns the line for a product
func (t *StockTransaction) Line(productID uuid.UUID) (TransactionLine, bool) {
	i := t.lineIndex(productID)
	if i < 0 {
		return TransactionLine{}, false
	}
	return t.Lines[i], true
}

// AddLine appends a line for a product the transaction does not reference yet
func (t *StockTransaction) AddLine(line TransactionLine) error {
	if err := t.requirePending("edit"); err != nil {
		return err
	}
	if t.lineIndex(line.ProductID) >= 0 {
		return shared.NewValidationError("lines", "product appears more than once in the transaction").
			With("product_id", line.ProductID)
	}
	next := 1
	for _, l := range t.Lines {
		if l.LineNo >= next {
			next = l.LineNo + 1
		}
	}
	line.ID = 0
	line.TransactionID = t.ID
	line.LineNo = next
	t.Lines = append(t.Lines, line)
	t.Touch()
	return nil
}

// UpdateLine replaces the quantity and prices of a product's line. Name and position are kept.
func (t *StockTransaction) UpdateLine(productID uuid.UUID, quantity int, unitPrice, discountRate decimal.Decimal) error {
	if err := t.requirePending("edit"); err != nil {
		return err
	}
	i := t.lineIndex(productID)
	if i < 0 {
		return shared.NewNotFoundError("transaction line", productID).With("transaction_id", t.ID)
	}
	current := t.Lines[i]
	next, err := NewTransactionLine(productID, current.ProductName, quantity, unitPrice, discountRate)
	if err != nil {
		return err
	}
	next.ID = current.ID
	next.TransactionID = t.ID
	next.LineNo = current.LineNo
	t.Lines[i] = next
	t.Touch()
	return nil
}

// RemoveLine drops a product's line. The last line cannot be removed.
func (t *StockTransaction) RemoveLine(productID uuid.UUID) error {
	if err := t.requirePending("edit"); err != nil {
		return err
	}
	i := t.lineIndex(productID)
	if i < 0 {
		return shared.NewNotFoundError("transaction line", productID).With("transaction_id", t.ID)
	}
	if len(t.Lines) == 1 {
		return shared.NewValidationError("lines", "a transaction needs at least one line")
	}
	t.Lines = append(t.Lines[:i:i], t.Lines[i+1:]...)
	t.Touch()
	return nil
}

func (t *StockTransaction) lineIndex(productID uuid.UUID) int {
	for i := range t.Lines {
		if t.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Snapshot captures the editable state of a pending transaction: kind, note and every line
func (t *StockTransaction) Snapshot() journal.Snapshot {
	lines := make([]map[string]any, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = map[string]any{
			fieldLineProductID:    l.ProductID.String(),
			fieldLineProductName:  l.ProductName,
			fieldLineNo:           l.LineNo,
			fieldLineQuantity:     l.Quantity,
			fieldLineUnitPrice:    l.UnitPrice.String(),
			fieldLineDiscountRate: l.DiscountRate.String(),
		}
	}
	return journal.Snapshot{
		FieldKind:  string(t.Kind),
		FieldNote:  t.Note,
		FieldLines: lines,
	}
}

// Restore puts back the state captured by Snapshot. Lines are replaced as a whole.
func (t *StockTransaction) Restore(s journal.Snapshot) error {
	kind, err := s.String(FieldKind)
	if err != nil {
		return err
	}
	note, err := s.String(FieldNote)
	if err != nil {
		return err
	}
	records, err := s.Records(FieldLines)
	if err != nil {
		return err
	}
	if !TransactionKind(kind).IsValid() {
		return shared.NewValidationError("kind", "transaction kind must be IMPORT or EXPORT").With("kind", kind)
	}

	lines := make([]TransactionLine, len(records))
	for i, r := range records {
		var l TransactionLine
		if l.ProductID, err = r.UUID(fieldLineProductID); err != nil {
			return err
		}
		if l.ProductName, err = r.String(fieldLineProductName); err != nil {
			return err
		}
		if l.LineNo, err = r.Int(fieldLineNo); err != nil {
			return err
		}
		if l.Quantity, err = r.Int(fieldLineQuantity); err != nil {
			return err
		}
		if l.UnitPrice, err = r.Decimal(fieldLineUnitPrice); err != nil {
			return err
		}
		if l.DiscountRate, err = r.Decimal(fieldLineDiscountRate); err != nil {
			return err
		}
		l.TransactionID = t.ID
		lines[i] = l
	}

	t.Kind = TransactionKind(kind)
	t.Note = note
	t.Lines = lines
	t.Touch()
	return nil
}

func (t *StockTransaction) requirePending(op string) error {
	if t.Status != StatusPending {
		return shared.NewStateConflictError("cannot "+op+" a transaction that is not pending").
			With("transaction_id", t.ID).
			With("status", t.Status)
	}
	return nil
}

// Deltas returns the signed stock change per product that approval applies
func (t *StockTransaction) Deltas() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(t.Lines))
	sign := t.Kind.Sign()
	for _, l := range t.Lines {
		out[l.ProductID] += sign * l.Quantity
	}
	return out
}

// ProductIDs returns the products referenced by the lines, in line order
func (t *StockTransaction) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Lines))
	for i, l := range t.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

// TotalValue sums the discounted line amounts
func (t *StockTransaction) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// TotalQuantity sums the line quantities
func (t *StockTransaction) TotalQuantity() int {
	n := 0
	for _, l := range t.Lines {
		n += l.Quantity
	}
	return n
}
