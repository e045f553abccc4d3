package partner

import (
	"strings"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
)

// FieldContactName is the snapshot field for a supplier's contact person
const FieldContactName = "contact_name"

// Supplier provides goods for import transactions
type Supplier struct {
	shared.BaseEntity
	Name        string `gorm:"type:varchar(200);not null;index"`
	ContactName string `gorm:"type:varchar(100)"`
	Contact     `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a visible supplier
func NewSupplier(name, contactName string, contact Contact) (*Supplier, error) {
	s := &Supplier{BaseEntity: shared.NewBaseEntity()}
	if err := s.set(name, contactName, contact); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces every mutable field
func (s *Supplier) Update(name, contactName string, contact Contact) error {
	if err := s.set(name, contactName, contact); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Supplier) set(name, contactName string, contact Contact) error {
	name = strings.TrimSpace(name)
	contact = contact.normalized()
	if err := validatePartnerName("supplier", name); err != nil {
		return err
	}
	if err := contact.validate(); err != nil {
		return err
	}
	s.Name = name
	s.ContactName = strings.TrimSpace(contactName)
	s.Contact = contact
	return nil
}

// Snapshot captures the mutable fields before an update or delete
func (s *Supplier) Snapshot() journal.Snapshot {
	snap := journal.Snapshot{
		FieldName:        s.Name,
		FieldContactName: s.ContactName,
	}
	s.Contact.snapshot(snap)
	return snap
}

// Restore re-applies fields captured by Snapshot
func (s *Supplier) Restore(snap journal.Snapshot) error {
	name, err := snap.String(FieldName)
	if err != nil {
		return err
	}
	contactName, err := snap.String(FieldContactName)
	if err != nil {
		return err
	}
	var c Contact
	if err := c.restore(snap); err != nil {
		return err
	}
	s.Name = name
	s.ContactName = contactName
	s.Contact = c
	s.Touch()
	return nil
}
