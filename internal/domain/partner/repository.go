package partner

import "github.com/erp/warehouse/internal/domain/shared"

// SupplierRepository stores suppliers
type SupplierRepository interface {
	shared.EntityStore[Supplier]
}

// CustomerRepository stores customers
type CustomerRepository interface {
	shared.EntityStore[Customer]
}
