package ledger

import (
	"fmt"

	"chidi/internal/domain"
)

func nextProductID(products []domain.Product) int {
	max := 0
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// AddProduct appends a product built from d. Duplicate names are allowed.
func AddProduct(products []domain.Product, d domain.ProductDraft) ([]domain.Product, domain.Product, domain.Notification) {
	p := domain.Product{
		ID:       nextProductID(products),
		Name:     d.Name,
		Stock:    d.Stock,
		Price:    d.Price,
		Status:   ResolveStatus(d.Stock),
		Category: d.Category,
		Image:    d.Image,
	}
	out := make([]domain.Product, 0, len(products)+1)
	out = append(out, products...)
	out = append(out, p)

	n := NewNotification(domain.NotifyActivity, TitleProductAdded,
		fmt.Sprintf("%s has been added to inventory", p.Name), domain.PriorityLow)
	return out, p, n
}

// UpdateProduct replaces the product with updated.ID and recomputes its
// status. A restock note is returned only when stock went up. An unknown id
// leaves the collection as it was and reports found=false.
func UpdateProduct(products []domain.Product, updated domain.Product) (out []domain.Product, note *domain.Notification, found bool) {
	updated.Status = ResolveStatus(updated.Stock)
	out = make([]domain.Product, len(products))
	copy(out, products)
	for i, p := range out {
		if p.ID != updated.ID {
			continue
		}
		out[i] = updated
		if updated.Stock > p.Stock {
			n := NewNotification(domain.NotifyActivity, TitleProductRestocked,
				fmt.Sprintf("%s restocked to %d units", updated.Name, updated.Stock), domain.PriorityMedium)
			note = &n
		}
		return out, note, true
	}
	return out, nil, false
}

// DeleteProducts drops every product whose id is in ids. The note is emitted
// even when nothing matched.
func DeleteProducts(products []domain.Product, ids []int) ([]domain.Product, domain.Notification) {
	drop := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := drop[p.ID]; !ok {
			out = append(out, p)
		}
	}

	msg := fmt.Sprintf("%d products have been removed from inventory", len(ids))
	if len(ids) == 1 {
		msg = "1 product has been removed from inventory"
	}
	return out, NewNotification(domain.NotifyActivity, TitleProductsDeleted, msg, domain.PriorityLow)
}

// UpdateStockFromOrder takes each item's quantity off its product, floored
// at zero. Items naming unknown products are skipped.
func UpdateStockFromOrder(products []domain.Product, items []domain.OrderItem) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	for _, it := range items {
		for i := range out {
			if out[i].ID != it.ProductID {
				continue
			}
			stock := out[i].Stock - it.Quantity
			if stock < 0 {
				stock = 0
			}
			out[i].Stock = stock
			out[i].Status = ResolveStatus(stock)
			break
		}
	}
	return out
}
