// Package partner holds the suppliers and customers that stock transactions refer to.
package partner

import (
	"strings"
	"sync"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// MaxPartnerNameLength is the longest accepted partner name
const MaxPartnerNameLength = 200

// Snapshot field names shared by suppliers and customers
const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldAddress = "address"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func emailValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Contact holds the reachability details common to both partner kinds
type Contact struct {
	Phone   string `gorm:"type:varchar(50)"`
	Email   string `gorm:"type:varchar(200)"`
	Address string `gorm:"type:text"`
}

func (c Contact) normalized() Contact {
	return Contact{
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
}

func (c Contact) validate() error {
	if c.Email != "" {
		if err := emailValidator().Var(c.Email, "email"); err != nil {
			return shared.NewValidationError("email", "invalid email format").With("email", c.Email)
		}
	}
	if len(c.Phone) > 50 {
		return shared.NewValidationError("phone", "phone cannot exceed 50 characters")
	}
	return nil
}

func (c Contact) snapshot(s journal.Snapshot) {
	s[FieldPhone] = c.Phone
	s[FieldEmail] = c.Email
	s[FieldAddress] = c.Address
}

func (c *Contact) restore(s journal.Snapshot) error {
	var err error
	if c.Phone, err = s.String(FieldPhone); err != nil {
		return err
	}
	if c.Email, err = s.String(FieldEmail); err != nil {
		return err
	}
	if c.Address, err = s.String(FieldAddress); err != nil {
		return err
	}
	return nil
}

func validatePartnerName(kind, name string) error {
	if name == "" {
		return shared.NewValidationError("name", kind+" name cannot be empty")
	}
	if len([]rune(name)) > MaxPartnerNameLength {
		return shared.NewValidationError("name", kind+" name cannot exceed 200 characters")
	}
	return nil
}
