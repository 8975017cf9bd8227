package maintenance

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/charlesng35/coffeeshop/pkg/logger"
	"github.com/charlesng35/coffeeshop/pkg/metrics"
)

const defaultCatalogSpec = "@every 1m"

// CatalogCounter reports how many drinks are on the menu.
type CatalogCounter interface {
	Count(ctx context.Context) (int64, error)
}

// CatalogMonitor periodically publishes the catalog size gauge.
type CatalogMonitor struct {
	counter  CatalogCounter
	cron     *cron.Cron
	schedule string
	log      *zap.Logger

	mu      sync.Mutex
	started bool
}

// Option customises the CatalogMonitor.
type Option func(*CatalogMonitor)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(m *CatalogMonitor) {
		if c != nil {
			m.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the refresh job.
func WithSchedule(spec string) Option {
	return func(m *CatalogMonitor) {
		if spec = strings.TrimSpace(spec); spec != "" {
			m.schedule = spec
		}
	}
}

// NewCatalogMonitor constructs a monitor that refreshes every minute by default.
func NewCatalogMonitor(counter CatalogCounter, opts ...Option) (*CatalogMonitor, error) {
	if counter == nil {
		return nil, errors.New("maintenance: catalog counter is required")
	}

	monitor := &CatalogMonitor{
		counter:  counter,
		schedule: defaultCatalogSpec,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(monitor)
	}
	if monitor.cron == nil {
		monitor.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return monitor, nil
}

// Start publishes the gauge once and then schedules the refresh job.
func (m *CatalogMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	if err := m.RunOnce(ctx); err != nil {
		m.log.Warn("initial catalog refresh failed", zap.Error(err))
	}

	if _, err := m.cron.AddFunc(m.schedule, func() {
		if err := m.RunOnce(context.Background()); err != nil {
			m.log.Warn("catalog refresh failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	m.cron.Start()
	m.started = true
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (m *CatalogMonitor) Stop() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = false
	return m.cron.Stop()
}

// RunOnce counts the drinks and updates the gauge.
func (m *CatalogMonitor) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	count, err := m.counter.Count(ctx)
	if err != nil {
		return err
	}
	metrics.CatalogSize.Set(float64(count))
	m.log.Debug("catalog size refreshed", zap.Int64("drinks", count))
	return nil
}
