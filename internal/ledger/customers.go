package ledger

import (
	"fmt"

	"chidi/internal/domain"
	"chidi/internal/money"
)

func nextCustomerID(customers []domain.Customer) int {
	max := 0
	for _, c := range customers {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func indexCustomer(customers []domain.Customer, id int) int {
	for i, c := range customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AddCustomer appends a customer with zeroed order stats, joined this month.
func AddCustomer(customers []domain.Customer, d domain.CustomerDraft) ([]domain.Customer, domain.Customer, domain.Notification) {
	status := d.Status
	if status == "" {
		status = domain.CustomerActive
	}
	c := domain.Customer{
		ID:         nextCustomerID(customers),
		Name:       d.Name,
		Phone:      d.Phone,
		Email:      d.Email,
		Location:   d.Location,
		TotalSpent: 0,
		LastOrder:  "Never",
		Status:     status,
		Notes:      d.Notes,
		JoinDate:   now().Format("January 2006"),
	}
	out := make([]domain.Customer, 0, len(customers)+1)
	out = append(out, customers...)
	out = append(out, c)

	n := NewNotification(domain.NotifyActivity, TitleCustomerAdded,
		fmt.Sprintf("%s has been added to your customers", c.Name), domain.PriorityLow)
	return out, c, n
}

// UpdateCustomer replaces the customer with the same id. The note is
// emitted whether or not anything changed.
func UpdateCustomer(customers []domain.Customer, c domain.Customer) ([]domain.Customer, domain.Notification, error) {
	i := indexCustomer(customers, c.ID)
	if i < 0 {
		return customers, domain.Notification{}, ErrCustomerNotFound
	}
	out := make([]domain.Customer, len(customers))
	copy(out, customers)
	out[i] = c

	n := NewNotification(domain.NotifyActivity, TitleCustomerUpdated,
		fmt.Sprintf("%s's details have been updated", c.Name), domain.PriorityLow)
	return out, n, nil
}

func UpdateCustomerStatus(customers []domain.Customer, id int, status domain.CustomerStatus) ([]domain.Customer, domain.Notification, error) {
	i := indexCustomer(customers, id)
	if i < 0 {
		return customers, domain.Notification{}, ErrCustomerNotFound
	}
	out := make([]domain.Customer, len(customers))
	copy(out, customers)
	out[i].Status = status

	n := NewNotification(domain.NotifyActivity, TitleCustomerStatus,
		fmt.Sprintf("%s is now %s", out[i].Name, status), domain.PriorityLow)
	return out, n, nil
}

// UpdateCustomerOrderStats records one more order of the given total.
// Customers past 10 orders or ₦250,000 spent become vip and stay vip.
func UpdateCustomerOrderStats(customers []domain.Customer, id int, total money.Naira) ([]domain.Customer, error) {
	i := indexCustomer(customers, id)
	if i < 0 {
		return customers, ErrCustomerNotFound
	}
	out := make([]domain.Customer, len(customers))
	copy(out, customers)

	c := &out[i]
	c.TotalOrders++
	c.TotalSpent += total
	c.LastOrder = justNow
	if c.TotalOrders > vipOrderCount || c.TotalSpent > vipSpend {
		c.Status = domain.CustomerVIP
	}
	return out, nil
}
