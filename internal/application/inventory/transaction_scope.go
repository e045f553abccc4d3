package inventory

import (
	"context"

	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/inventory"
)

// TransactionScope runs a unit of work atomically. When fn returns an error every write made
// through the provided repositories is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to one database transaction.
// Inside Execute only these may be used.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	TransactionRepo() inventory.TransactionRepository
}

// NoOpTransactionScope runs fn directly against the given repositories without a database
// transaction. Unit tests use it with mocked repositories.
type NoOpTransactionScope struct {
	productRepo     catalog.ProductRepository
	transactionRepo inventory.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, transactionRepo inventory.TransactionRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, transactionRepo: transactionRepo}
}

// Execute calls fn with the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// TransactionRepo returns the stock transaction repository
func (s *NoOpTransactionScope) TransactionRepo() inventory.TransactionRepository {
	return s.transactionRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
