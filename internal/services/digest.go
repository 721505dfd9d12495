package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"chidi/internal/domain"
	"chidi/internal/ledger"
	applog "chidi/internal/log"
)

// StockDigest posts a daily summary of low and out-of-stock products.
type StockDigest struct {
	Shop *ShopService
	cron *cron.Cron
}

func NewStockDigest(shop *ShopService) *StockDigest {
	return &StockDigest{Shop: shop}
}

// Start schedules Run on schedule (standard five-field cron syntax).
func (d *StockDigest) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, _, err := d.Run(context.Background()); err != nil {
			applog.Error(nil, "digest.run", err, nil)
		}
	}); err != nil {
		return fmt.Errorf("digest schedule %q: %w", schedule, err)
	}
	d.cron = c
	c.Start()
	applog.Info(nil, "digest.scheduled", map[string]any{"schedule": schedule})
	return nil
}

// Stop waits for a running digest to finish.
func (d *StockDigest) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

// Run posts the summary. It reports false when every product is well
// stocked and nothing was posted.
func (d *StockDigest) Run(ctx context.Context) (domain.Notification, bool, error) {
	sum := d.Shop.Summary()
	if sum.LowStock == 0 && sum.OutOfStock == 0 {
		return domain.Notification{}, false, nil
	}
	priority := domain.PriorityLow
	if sum.OutOfStock > 0 {
		priority = domain.PriorityMedium
	}
	msg := fmt.Sprintf("%d %s out of stock and %d running low",
		sum.OutOfStock, plural(sum.OutOfStock, "product is", "products are"), sum.LowStock)

	n, err := d.Shop.AddSystemNotification(ctx, ledger.TitleStockSummary, msg, priority)
	if err != nil {
		return domain.Notification{}, false, err
	}
	applog.Info(nil, "digest.posted", map[string]any{"out": sum.OutOfStock, "low": sum.LowStock})
	return n, true, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
