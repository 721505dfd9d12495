package services

import (
	"chidi/internal/domain"
	"chidi/internal/ledger"
	"chidi/internal/money"
)

// Queries return copies; callers may keep or modify them freely.

func (s *ShopService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.st.products...)
}

func (s *ShopService) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Customer{}, s.st.customers...)
}

// Orders returns orders newest first.
func (s *ShopService) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.st.orders))
	for i, o := range s.st.orders {
		out[len(out)-1-i] = cloneOrder(o)
	}
	return out
}

func (s *ShopService) Order(id int) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o := findOrder(s.st.orders, id)
	if o.ID == 0 {
		return domain.Order{}, ledger.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func (s *ShopService) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification{}, s.st.notes...)
}

func (s *ShopService) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, x := range s.st.notes {
		if !x.Read {
			n++
		}
	}
	return n
}

type Summary struct {
	Products      int              `json:"products"`
	LowStock      int              `json:"lowStock"`
	OutOfStock    int              `json:"outOfStock"`
	Customers     int              `json:"customers"`
	VIPCustomers  int              `json:"vipCustomers"`
	Orders        int              `json:"orders"`
	PendingOrders int              `json:"pendingOrders"`
	Revenue       money.Naira      `json:"revenue"`
	Unread        int              `json:"unread"`
	AttentionList []domain.Product `json:"attention"`
}

// Summary counts the dashboard figures. Revenue covers paid orders only.
func (s *ShopService) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		Products:      len(s.st.products),
		Customers:     len(s.st.customers),
		Orders:        len(s.st.orders),
		AttentionList: []domain.Product{},
	}
	for _, p := range s.st.products {
		switch p.Status {
		case domain.StockLow:
			sum.LowStock++
			sum.AttentionList = append(sum.AttentionList, p)
		case domain.StockOut:
			sum.OutOfStock++
			sum.AttentionList = append(sum.AttentionList, p)
		}
	}
	for _, c := range s.st.customers {
		if c.Status == domain.CustomerVIP {
			sum.VIPCustomers++
		}
	}
	for _, o := range s.st.orders {
		if o.Status == domain.OrderPending {
			sum.PendingOrders++
		}
		if o.PaymentStatus == domain.PaymentPaid {
			sum.Revenue += o.Total
		}
	}
	for _, n := range s.st.notes {
		if !n.Read {
			sum.Unread++
		}
	}
	return sum
}
