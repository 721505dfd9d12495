package ledger

import (
	"fmt"

	"chidi/internal/domain"
	"chidi/internal/money"
)

var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending:    {domain.OrderConfirmed, domain.OrderProcessing, domain.OrderCancelled},
	domain.OrderConfirmed:  {domain.OrderProcessing, domain.OrderCancelled},
	domain.OrderProcessing: {domain.OrderShipped, domain.OrderCancelled},
	domain.OrderShipped:    {domain.OrderDelivered},
	domain.OrderDelivered:  nil,
	domain.OrderCancelled:  nil,
}

// CanTransition reports whether an order may move from one status to
// another. Re-applying the current status is always allowed.
func CanTransition(from, to domain.OrderStatus) bool {
	if from == to {
		_, known := transitions[from]
		return known
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NormalizePayment maps the legacy "unpaid" and the empty value to pending.
func NormalizePayment(s domain.PaymentStatus) domain.PaymentStatus {
	if s == "" || s == "unpaid" {
		return domain.PaymentPending
	}
	return s
}

// OrderTotal sums unit price times quantity over items.
func OrderTotal(items []domain.OrderItem) money.Naira {
	var total money.Naira
	for _, it := range items {
		total += it.Price * money.Naira(it.Quantity)
	}
	return total
}

func nextOrderID(orders []domain.Order) int {
	max := 0
	for _, o := range orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

func indexOrder(orders []domain.Order, id int) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// CreateOrder numbers, totals and appends a new pending order. The order
// number sequence is the new id, so it stays unique after deletions.
// Stock and customer stats are left to the caller.
func CreateOrder(orders []domain.Order, d domain.OrderDraft) ([]domain.Order, domain.Order, domain.Notification) {
	t := now()
	id := nextOrderID(orders)
	date := d.OrderDate
	if date == "" {
		date = t.Format("2006-01-02")
	}
	items := make([]domain.OrderItem, len(d.Items))
	copy(items, d.Items)

	o := domain.Order{
		ID:            id,
		OrderNumber:   fmt.Sprintf("ORD-%d-%03d", t.Year(), id),
		CustomerID:    d.CustomerID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		Items:         items,
		Total:         OrderTotal(items),
		Status:        domain.OrderPending,
		PaymentStatus: NormalizePayment(d.PaymentStatus),
		OrderDate:     date,
		Notes:         d.Notes,
	}
	out := make([]domain.Order, 0, len(orders)+1)
	out = append(out, orders...)
	out = append(out, o)

	n := NewNotification(domain.NotifySale, TitleOrderCreated,
		fmt.Sprintf("Order %s from %s for %s", o.OrderNumber, o.CustomerName, o.Total), domain.PriorityMedium)
	return out, o, n
}

func UpdateOrderStatus(orders []domain.Order, id int, status domain.OrderStatus) ([]domain.Order, domain.Notification, error) {
	i := indexOrder(orders, id)
	if i < 0 {
		return orders, domain.Notification{}, ErrOrderNotFound
	}
	if !CanTransition(orders[i].Status, status) {
		return orders, domain.Notification{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, orders[i].Status, status)
	}
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	out[i].Status = status

	n := NewNotification(domain.NotifyActivity, TitleOrderStatus,
		fmt.Sprintf("Order %s is now %s", out[i].OrderNumber, status), domain.PriorityLow)
	return out, n, nil
}

func UpdatePaymentStatus(orders []domain.Order, id int, status domain.PaymentStatus) ([]domain.Order, domain.Notification, error) {
	i := indexOrder(orders, id)
	if i < 0 {
		return orders, domain.Notification{}, ErrOrderNotFound
	}
	status = NormalizePayment(status)
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	out[i].PaymentStatus = status

	n := NewNotification(domain.NotifySale, TitlePaymentStatus,
		fmt.Sprintf("Payment for order %s marked %s", out[i].OrderNumber, status), domain.PriorityMedium)
	return out, n, nil
}
