package persistence

import (
	"github.com/erp/warehouse/internal/domain/partner"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	gormStore[partner.Supplier]
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{gormStore: newGormStore[partner.Supplier](db, "supplier", NamedEntitySortFields)}
}

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	gormStore[partner.Customer]
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{gormStore: newGormStore[partner.Customer](db, "customer", NamedEntitySortFields)}
}

var (
	_ partner.SupplierRepository = (*GormSupplierRepository)(nil)
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
)
