package partner

import (
	"strings"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
)

// Customer receives goods from export transactions
type Customer struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(200);not null;index"`
	Contact `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a visible customer
func NewCustomer(name string, contact Contact) (*Customer, error) {
	c := &Customer{BaseEntity: shared.NewBaseEntity()}
	if err := c.set(name, contact); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces every mutable field
func (c *Customer) Update(name string, contact Contact) error {
	if err := c.set(name, contact); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Customer) set(name string, contact Contact) error {
	name = strings.TrimSpace(name)
	contact = contact.normalized()
	if err := validatePartnerName("customer", name); err != nil {
		return err
	}
	if err := contact.validate(); err != nil {
		return err
	}
	c.Name = name
	c.Contact = contact
	return nil
}

// Snapshot captures the mutable fields before an update or delete
func (c *Customer) Snapshot() journal.Snapshot {
	snap := journal.Snapshot{FieldName: c.Name}
	c.Contact.snapshot(snap)
	return snap
}

// Restore re-applies fields captured by Snapshot
func (c *Customer) Restore(snap journal.Snapshot) error {
	name, err := snap.String(FieldName)
	if err != nil {
		return err
	}
	var contact Contact
	if err := contact.restore(snap); err != nil {
		return err
	}
	c.Name = name
	c.Contact = contact
	c.Touch()
	return nil
}
