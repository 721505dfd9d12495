package ledger

import (
	"fmt"

	"chidi/internal/domain"
)

const (
	TitleProductAdded     = "Product Added"
	TitleProductRestocked = "Product Restocked"
	TitleProductsDeleted  = "Products Deleted"
	TitleCustomerAdded    = "Customer Added"
	TitleCustomerUpdated  = "Customer Updated"
	TitleCustomerStatus   = "Customer Status Updated"
	TitleOrderCreated     = "New Order Created"
	TitleOrderStatus      = "Order Status Updated"
	TitlePaymentStatus    = "Payment Status Updated"
	TitleOutOfStock       = "Out of Stock"
	TitleLowStock         = "Low Stock Alert"
	TitleStockSummary     = "Daily Stock Summary"
)

// NewNotification builds an unread notification with id "{type}-{millis}".
func NewNotification(typ domain.NotificationType, title, message string, priority domain.Priority) domain.Notification {
	t := now()
	return domain.Notification{
		ID:        fmt.Sprintf("%s-%d", typ, t.UnixMilli()),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: justNow,
		Priority:  priority,
		CreatedAt: t,
	}
}

// NewNotificationWithID is NewNotification with a caller-chosen id.
func NewNotificationWithID(id string, typ domain.NotificationType, title, message string, priority domain.Priority) domain.Notification {
	n := NewNotification(typ, title, message, priority)
	n.ID = id
	return n
}

// StockNotification returns the alert a product's stock level warrants.
// The second result is false when stock is above the low threshold.
func StockNotification(p domain.Product) (domain.Notification, bool) {
	var title, message string
	switch ResolveStatus(p.Stock) {
	case domain.StockOut:
		title = TitleOutOfStock
		message = fmt.Sprintf("%s is out of stock", p.Name)
	case domain.StockLow:
		title = TitleLowStock
		message = fmt.Sprintf("%s is running low (%d left)", p.Name, p.Stock)
	default:
		return domain.Notification{}, false
	}
	n := NewNotification(domain.NotifyStock, title, message, domain.PriorityHigh)
	n.ID = fmt.Sprintf("stock-%d-%d", p.ID, n.CreatedAt.UnixMilli())
	n.ProductID = p.ID
	return n, true
}
