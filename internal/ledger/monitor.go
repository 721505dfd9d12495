package ledger

import "chidi/internal/domain"

// CheckStockLevels returns a stock alert for every out or low product that
// has no stock alert in existing yet. Alerts are matched by product id.
func CheckStockLevels(products []domain.Product, existing []domain.Notification) []domain.Notification {
	alerted := make(map[int]bool)
	for _, n := range existing {
		if n.Type == domain.NotifyStock && n.ProductID != 0 {
			alerted[n.ProductID] = true
		}
	}
	var fresh []domain.Notification
	for _, p := range products {
		if alerted[p.ID] {
			continue
		}
		if n, ok := StockNotification(p); ok {
			fresh = append(fresh, n)
			alerted[p.ID] = true
		}
	}
	return fresh
}

// PrependNotifications puts fresh ahead of feed, newest first.
func PrependNotifications(feed []domain.Notification, fresh ...domain.Notification) []domain.Notification {
	out := make([]domain.Notification, 0, len(feed)+len(fresh))
	for i := len(fresh) - 1; i >= 0; i-- {
		out = append(out, fresh[i])
	}
	return append(out, feed...)
}

// DropStockAlerts removes the stock alerts of the given products so an id
// reused by a later product starts without an alert.
func DropStockAlerts(feed []domain.Notification, productIDs []int) []domain.Notification {
	gone := make(map[int]bool, len(productIDs))
	for _, id := range productIDs {
		gone[id] = true
	}
	out := make([]domain.Notification, 0, len(feed))
	for _, n := range feed {
		if n.Type == domain.NotifyStock && gone[n.ProductID] {
			continue
		}
		out = append(out, n)
	}
	return out
}
