package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormStockMetricsProvider implements StockMetricsProvider with direct table queries.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// GetLowStockCount counts visible products at or below their threshold.
func (p *GormStockMetricsProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("visible = ? AND quantity <= min_threshold", true).
		Count(&count).Error
	return count, err
}

// GetPendingTransactionCount counts visible transactions still awaiting approval.
func (p *GormStockMetricsProvider) GetPendingTransactionCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("stock_transactions").
		Where("visible = ? AND status = ?", true, "PENDING").
		Count(&count).Error
	return count, err
}
