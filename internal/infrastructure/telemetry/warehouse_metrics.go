package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// WarehouseMetrics records journal, undo, session and approval activity.
type WarehouseMetrics struct {
	logger *zap.Logger

	journalAppends   *Counter
	undos            *Counter
	sessionSaves     *Counter
	sessionEntries   *Counter
	transactions     *Counter
	approvalDuration *Histogram

	lowStockCount       *Gauge
	pendingTransactions *Gauge
	unsavedChanges      *Gauge

	stockProvider   StockMetricsProvider
	sessionProvider func() int
	stopChan        chan struct{}
	stopOnce        sync.Once
	collectOnce     sync.Once
}

// StockMetricsProvider supplies point-in-time values for the periodic gauges.
type StockMetricsProvider interface {
	GetLowStockCount(ctx context.Context) (int64, error)
	GetPendingTransactionCount(ctx context.Context) (int64, error)
}

// WarehouseMetricsConfig holds the dependencies of WarehouseMetrics.
type WarehouseMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	StockProvider   StockMetricsProvider
	SessionProvider func() int // current unsaved change count
}

// NewWarehouseMetrics creates every instrument up front.
func NewWarehouseMetrics(cfg WarehouseMetricsConfig) (*WarehouseMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &WarehouseMetrics{
		logger:          logger,
		stockProvider:   cfg.StockProvider,
		sessionProvider: cfg.SessionProvider,
		stopChan:        make(chan struct{}),
	}

	var err error
	if m.journalAppends, err = NewCounter(cfg.Meter, "warehouse_journal_appends_total",
		"Journal entries appended", "{entries}"); err != nil {
		return nil, err
	}
	if m.undos, err = NewCounter(cfg.Meter, "warehouse_undo_total",
		"Undo attempts by outcome", "{undos}"); err != nil {
		return nil, err
	}
	if m.sessionSaves, err = NewCounter(cfg.Meter, "warehouse_session_saves_total",
		"Commits and rollbacks of the working session", "{saves}"); err != nil {
		return nil, err
	}
	if m.sessionEntries, err = NewCounter(cfg.Meter, "warehouse_session_hidden_entries_total",
		"Journal entries hidden by commits and rollbacks", "{entries}"); err != nil {
		return nil, err
	}
	if m.transactions, err = NewCounter(cfg.Meter, "warehouse_stock_transactions_total",
		"Stock transactions by kind and resulting status", "{transactions}"); err != nil {
		return nil, err
	}
	if m.approvalDuration, err = NewHistogram(cfg.Meter, "warehouse_approval_duration_seconds",
		"Time to approve a stock transaction, including lock wait", "s", DurationBuckets); err != nil {
		return nil, err
	}
	if m.lowStockCount, err = NewGauge(cfg.Meter, "warehouse_low_stock_products",
		"Visible products at or below their reorder threshold", "{products}"); err != nil {
		return nil, err
	}
	if m.pendingTransactions, err = NewGauge(cfg.Meter, "warehouse_pending_transactions",
		"Visible stock transactions awaiting approval", "{transactions}"); err != nil {
		return nil, err
	}
	if m.unsavedChanges, err = NewGauge(cfg.Meter, "warehouse_unsaved_changes",
		"Changes made since the last save point", "{changes}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordJournalAppend counts one appended entry.
func (m *WarehouseMetrics) RecordJournalAppend(ctx context.Context, actionType string) {
	m.journalAppends.Inc(ctx, AttrActionType.String(actionType))
}

// RecordUndo counts one undo attempt.
func (m *WarehouseMetrics) RecordUndo(ctx context.Context, actionType, outcome string) {
	m.undos.Inc(ctx, AttrActionType.String(actionType), AttrOutcome.String(outcome))
}

// RecordSessionSave counts a commit or rollback and the entries it hid.
func (m *WarehouseMetrics) RecordSessionSave(ctx context.Context, op string, hidden int64) {
	m.sessionSaves.Inc(ctx, AttrSessionOp.String(op))
	if hidden > 0 {
		m.sessionEntries.Add(ctx, hidden, AttrSessionOp.String(op))
	}
}

// RecordTransaction counts a transaction reaching status.
func (m *WarehouseMetrics) RecordTransaction(ctx context.Context, kind, status string) {
	m.transactions.Inc(ctx, AttrTxKind.String(kind), AttrTxStatus.String(status))
}

// RecordApprovalDuration records how long an approval attempt took.
func (m *WarehouseMetrics) RecordApprovalDuration(ctx context.Context, d time.Duration, outcome string) {
	m.approvalDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// StartPeriodicCollection samples the gauges every interval until Stop or ctx ends.
func (m *WarehouseMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go m.runPeriodicCollection(ctx, interval)
	})
}

func (m *WarehouseMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Collect(ctx)
	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Collect(ctx)
		}
	}
}

// Collect samples every gauge once.
func (m *WarehouseMetrics) Collect(ctx context.Context) {
	if m.sessionProvider != nil {
		m.unsavedChanges.Record(ctx, int64(m.sessionProvider()))
	}
	if m.stockProvider == nil {
		return
	}
	if n, err := m.stockProvider.GetLowStockCount(ctx); err != nil {
		m.logger.Warn("Failed to collect low stock count", zap.Error(err))
	} else {
		m.lowStockCount.Record(ctx, n)
	}
	if n, err := m.stockProvider.GetPendingTransactionCount(ctx); err != nil {
		m.logger.Warn("Failed to collect pending transaction count", zap.Error(err))
	} else {
		m.pendingTransactions.Record(ctx, n)
	}
}

// Stop stops the periodic collection.
func (m *WarehouseMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewWarehouseMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
