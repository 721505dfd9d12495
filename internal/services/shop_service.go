package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chidi/internal/domain"
	"chidi/internal/ledger"
	"chidi/internal/money"
	"chidi/internal/repos"
	"chidi/internal/validate"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalid              = errors.New("invalid input")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Alerter receives every notification a command commits. Choosing which
// ones leave the shop (by priority, say) is up to the implementation.
type Alerter interface {
	Dispatch(notes ...domain.Notification)
}

type state struct {
	products  []domain.Product
	customers []domain.Customer
	orders    []domain.Order
	notes     []domain.Notification
}

// ShopService holds the shop's collections in memory and applies every
// command to all of them at once. A command's changes are written in one
// transaction and become visible only after it commits.
type ShopService struct {
	db        *sqlx.DB
	ProductRepo  *repos.ProductRepo
	CustomerRepo *repos.CustomerRepo
	OrderRepo    *repos.OrderRepo
	NoteRepo     *repos.NotificationRepo
	Alerts       Alerter

	mu sync.RWMutex
	st state
}

// NewShopService loads the collections and runs the stock monitor once so a
// freshly seeded shop starts with its stock alerts.
func NewShopService(ctx context.Context, db *sqlx.DB, alerts Alerter) (*ShopService, error) {
	s := &ShopService{
		db:           db,
		ProductRepo:  repos.NewProductRepo(db),
		CustomerRepo: repos.NewCustomerRepo(db),
		OrderRepo:    repos.NewOrderRepo(db),
		NoteRepo:     repos.NewNotificationRepo(db),
		Alerts:       alerts,
	}
	var err error
	if s.st.products, err = s.ProductRepo.List(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if s.st.customers, err = s.CustomerRepo.List(); err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	if s.st.orders, err = s.OrderRepo.List(); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if s.st.notes, err = s.NoteRepo.List(); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	fresh := s.monitor(&next, nil)
	if err := s.commit(ctx, next, fresh, func(*sqlx.Tx) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

// monitor appends stock alerts for next.products to notes and next.notes.
func (s *ShopService) monitor(next *state, notes []domain.Notification) []domain.Notification {
	existing := append(append([]domain.Notification{}, notes...), next.notes...)
	return append(notes, ledger.CheckStockLevels(next.products, existing)...)
}

// commit gives fresh notes unique ids, writes them and whatever write does
// in one transaction, then publishes next. Callers hold s.mu.
func (s *ShopService) commit(ctx context.Context, next state, fresh []domain.Notification, write func(tx *sqlx.Tx) error) error {
	fresh = uniqueIDs(next.notes, fresh)
	err := repos.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := write(tx); err != nil {
			return err
		}
		for _, n := range fresh {
			if err := s.NoteRepo.Insert(tx, n); err != nil {
				return fmt.Errorf("insert notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	next.notes = ledger.PrependNotifications(next.notes, fresh...)
	s.st = next
	if s.Alerts != nil && len(fresh) > 0 {
		s.Alerts.Dispatch(fresh...)
	}
	return nil
}

// uniqueIDs suffixes ids that collide with the feed or each other.
func uniqueIDs(feed, fresh []domain.Notification) []domain.Notification {
	seen := make(map[string]bool, len(feed)+len(fresh))
	for _, n := range feed {
		seen[n.ID] = true
	}
	out := make([]domain.Notification, len(fresh))
	for i, n := range fresh {
		for seen[n.ID] {
			n.ID = n.ID + "-" + uuid.NewString()[:8]
		}
		seen[n.ID] = true
		out[i] = n
	}
	return out
}

func cleanProduct(name string, stock int, price money.Naira) (string, error) {
	name, ok := validate.Name(name)
	if !ok {
		return "", invalid("product name is required (max 80 chars)")
	}
	if !validate.Stock(stock) {
		return "", invalid("stock must be between 0 and 1000000")
	}
	if price < 0 {
		return "", invalid("price cannot be negative")
	}
	return name, nil
}

func (s *ShopService) AddProduct(ctx context.Context, d domain.ProductDraft) (domain.Product, error) {
	name, err := cleanProduct(d.Name, d.Stock, d.Price)
	if err != nil {
		return domain.Product{}, err
	}
	d.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	var p domain.Product
	var note domain.Notification
	next.products, p, note = ledger.AddProduct(s.st.products, d)
	fresh := s.monitor(&next, []domain.Notification{note})

	err = s.commit(ctx, next, fresh, func(tx *sqlx.Tx) error {
		return s.ProductRepo.Insert(tx, p)
	})
	return p, err
}

// UpdateProduct replaces a product wholesale; its status follows its stock.
func (s *ShopService) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	name, err := cleanProduct(p.Name, p.Stock, p.Price)
	if err != nil {
		return domain.Product{}, err
	}
	p.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	products, note, found := ledger.UpdateProduct(s.st.products, p)
	if !found {
		return domain.Product{}, ErrProductNotFound
	}
	next.products = products
	p.Status = ledger.ResolveStatus(p.Stock)

	var fresh []domain.Notification
	if note != nil {
		fresh = append(fresh, *note)
	}
	fresh = s.monitor(&next, fresh)

	err = s.commit(ctx, next, fresh, func(tx *sqlx.Tx) error {
		return s.ProductRepo.Update(tx, p)
	})
	return p, err
}

// DeleteProducts removes the given ids along with their stock alerts;
// unknown ids are ignored.
func (s *ShopService) DeleteProducts(ctx context.Context, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	var note domain.Notification
	next.products, note = ledger.DeleteProducts(s.st.products, ids)
	next.notes = ledger.DropStockAlerts(s.st.notes, ids)
	fresh := s.monitor(&next, []domain.Notification{note})

	return s.commit(ctx, next, fresh, func(tx *sqlx.Tx) error {
		if err := s.NoteRepo.DeleteStockFor(tx, ids); err != nil {
			return fmt.Errorf("delete stock alerts: %w", err)
		}
		return s.ProductRepo.Delete(tx, ids)
	})
}

func cleanCustomer(name, phone, email string) (string, string, string, error) {
	name, ok := validate.Name(name)
	if !ok {
		return "", "", "", invalid("customer name is required (max 80 chars)")
	}
	phone, ok = validate.Phone(phone)
	if !ok {
		return "", "", "", invalid("phone must be a valid phone number")
	}
	email, ok = validate.OptionalEmail(email)
	if !ok {
		return "", "", "", invalid("email is not valid")
	}
	return name, phone, email, nil
}

func (s *ShopService) AddCustomer(ctx context.Context, d domain.CustomerDraft) (domain.Customer, error) {
	var err error
	if d.Name, d.Phone, d.Email, err = cleanCustomer(d.Name, d.Phone, d.Email); err != nil {
		return domain.Customer{}, err
	}
	if d.Status != "" {
		st, ok := validate.CustomerStatus(string(d.Status))
		if !ok {
			return domain.Customer{}, invalid("unknown customer status %q", d.Status)
		}
		d.Status = st
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	var c domain.Customer
	var note domain.Notification
	next.customers, c, note = ledger.AddCustomer(s.st.customers, d)

	err = s.commit(ctx, next, []domain.Notification{note}, func(tx *sqlx.Tx) error {
		return s.CustomerRepo.Insert(tx, c)
	})
	return c, err
}

// UpdateCustomer replaces a customer's details. Order statistics are owned
// by order placement and are kept from the stored record.
func (s *ShopService) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	var err error
	if c.Name, c.Phone, c.Email, err = cleanCustomer(c.Name, c.Phone, c.Email); err != nil {
		return domain.Customer{}, err
	}
	st, ok := validate.CustomerStatus(string(c.Status))
	if !ok {
		return domain.Customer{}, invalid("unknown customer status %q", c.Status)
	}
	c.Status = st

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cur := range s.st.customers {
		if cur.ID == c.ID {
			c.TotalOrders, c.TotalSpent, c.LastOrder, c.JoinDate = cur.TotalOrders, cur.TotalSpent, cur.LastOrder, cur.JoinDate
			break
		}
	}

	next := s.st
	var note domain.Notification
	next.customers, note, err = ledger.UpdateCustomer(s.st.customers, c)
	if err != nil {
		return domain.Customer{}, err
	}
	err = s.commit(ctx, next, []domain.Notification{note}, func(tx *sqlx.Tx) error {
		return s.CustomerRepo.Update(tx, c)
	})
	return c, err
}

func (s *ShopService) UpdateCustomerStatus(ctx context.Context, id int, status domain.CustomerStatus) (domain.Customer, error) {
	st, ok := validate.CustomerStatus(string(status))
	if !ok {
		return domain.Customer{}, invalid("unknown customer status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	var note domain.Notification
	var err error
	next.customers, note, err = ledger.UpdateCustomerStatus(s.st.customers, id, st)
	if err != nil {
		return domain.Customer{}, err
	}
	c := findCustomer(next.customers, id)
	err = s.commit(ctx, next, []domain.Notification{note}, func(tx *sqlx.Tx) error {
		return s.CustomerRepo.Update(tx, c)
	})
	return c, err
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type OrderRequest struct {
	CustomerID    int                  `json:"customerId"`
	Items         []OrderLine          `json:"items"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus,omitempty"`
	OrderDate     string               `json:"orderDate,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

// PlaceOrder creates the order, records it against the customer, takes the
// items out of stock and raises the sale and stock notifications, all in
// one commit. Item names and prices are taken from the current products.
// An unknown customer or product rejects the whole order.
func (s *ShopService) PlaceOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, invalid("order needs at least one item")
	}
	for _, l := range req.Items {
		if !validate.Qty(l.Quantity) {
			return domain.Order{}, invalid("quantity must be between 1 and 1000")
		}
	}
	if req.PaymentStatus != "" {
		ps, ok := validate.PaymentStatus(string(req.PaymentStatus))
		if !ok {
			return domain.Order{}, invalid("unknown payment status %q", req.PaymentStatus)
		}
		req.PaymentStatus = ps
	}
	notes, ok := validate.Text(req.Notes)
	if !ok {
		return domain.Order{}, invalid("notes too long")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cust := findCustomer(s.st.customers, req.CustomerID)
	if cust.ID == 0 {
		return domain.Order{}, ledger.ErrCustomerNotFound
	}
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, l := range req.Items {
		p := findProduct(s.st.products, l.ProductID)
		if p.ID == 0 {
			return domain.Order{}, fmt.Errorf("%w: %d", ErrProductNotFound, l.ProductID)
		}
		items = append(items, domain.OrderItem{ProductID: p.ID, ProductName: p.Name, Quantity: l.Quantity, Price: p.Price})
	}

	next := s.st
	var order domain.Order
	var sale domain.Notification
	next.orders, order, sale = ledger.CreateOrder(s.st.orders, domain.OrderDraft{
		CustomerID:    cust.ID,
		CustomerName:  cust.Name,
		CustomerPhone: cust.Phone,
		Items:         items,
		PaymentStatus: req.PaymentStatus,
		OrderDate:     req.OrderDate,
		Notes:         notes,
	})
	var err error
	if next.customers, err = ledger.UpdateCustomerOrderStats(s.st.customers, cust.ID, order.Total); err != nil {
		return domain.Order{}, err
	}
	next.products = ledger.UpdateStockFromOrder(s.st.products, items)
	fresh := s.monitor(&next, []domain.Notification{sale})

	err = s.commit(ctx, next, fresh, func(tx *sqlx.Tx) error {
		if err := s.OrderRepo.Insert(tx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := s.CustomerRepo.Update(tx, findCustomer(next.customers, cust.ID)); err != nil {
			return fmt.Errorf("update customer stats: %w", err)
		}
		touched := map[int]bool{}
		for _, it := range items {
			if touched[it.ProductID] {
				continue
			}
			touched[it.ProductID] = true
			if err := s.ProductRepo.Update(tx, findProduct(next.products, it.ProductID)); err != nil {
				return fmt.Errorf("update stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *ShopService) UpdateOrderStatus(ctx context.Context, id int, status domain.OrderStatus) (domain.Order, error) {
	st, ok := validate.OrderStatus(string(status))
	if !ok {
		return domain.Order{}, invalid("unknown order status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	var note domain.Notification
	var err error
	if next.orders, note, err = ledger.UpdateOrderStatus(s.st.orders, id, st); err != nil {
		return domain.Order{}, err
	}
	err = s.commit(ctx, next, []domain.Notification{note}, func(tx *sqlx.Tx) error {
		return s.OrderRepo.UpdateStatus(tx, id, st)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return findOrder(next.orders, id), nil
}

func (s *ShopService) UpdatePaymentStatus(ctx context.Context, id int, status domain.PaymentStatus) (domain.Order, error) {
	st, ok := validate.PaymentStatus(string(status))
	if !ok {
		return domain.Order{}, invalid("unknown payment status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st
	var note domain.Notification
	var err error
	if next.orders, note, err = ledger.UpdatePaymentStatus(s.st.orders, id, st); err != nil {
		return domain.Order{}, err
	}
	err = s.commit(ctx, next, []domain.Notification{note}, func(tx *sqlx.Tx) error {
		return s.OrderRepo.UpdatePayment(tx, id, st)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return findOrder(next.orders, id), nil
}

// AddSystemNotification posts a free-form system note to the feed.
func (s *ShopService) AddSystemNotification(ctx context.Context, title, message string, priority domain.Priority) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := ledger.NewNotification(domain.NotifySystem, title, message, priority)
	next := s.st
	if err := s.commit(ctx, next, []domain.Notification{n}, func(*sqlx.Tx) error { return nil }); err != nil {
		return domain.Notification{}, err
	}
	return s.st.notes[0], nil
}

// updateNotes applies change to a copy of the feed and persists it with write.
func (s *ShopService) updateNotes(ctx context.Context, change func([]domain.Notification) ([]domain.Notification, bool), write func(tx *sqlx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, ok := change(append([]domain.Notification(nil), s.st.notes...))
	if !ok {
		return ErrNotificationNotFound
	}
	if err := repos.WithTx(ctx, s.db, write); err != nil {
		return err
	}
	s.st.notes = notes
	return nil
}

func (s *ShopService) MarkNotificationRead(ctx context.Context, id string) error {
	return s.updateNotes(ctx, func(notes []domain.Notification) ([]domain.Notification, bool) {
		for i := range notes {
			if notes[i].ID == id {
				notes[i].Read = true
				return notes, true
			}
		}
		return notes, false
	}, func(tx *sqlx.Tx) error { return s.NoteRepo.MarkRead(tx, id) })
}

func (s *ShopService) MarkAllRead(ctx context.Context) error {
	return s.updateNotes(ctx, func(notes []domain.Notification) ([]domain.Notification, bool) {
		for i := range notes {
			notes[i].Read = true
		}
		return notes, true
	}, func(tx *sqlx.Tx) error { return s.NoteRepo.MarkAllRead(tx) })
}

func (s *ShopService) DismissNotification(ctx context.Context, id string) error {
	return s.updateNotes(ctx, func(notes []domain.Notification) ([]domain.Notification, bool) {
		for i := range notes {
			if notes[i].ID == id {
				return append(notes[:i], notes[i+1:]...), true
			}
		}
		return notes, false
	}, func(tx *sqlx.Tx) error { return s.NoteRepo.Delete(tx, id) })
}

func (s *ShopService) ClearNotifications(ctx context.Context) error {
	return s.updateNotes(ctx, func([]domain.Notification) ([]domain.Notification, bool) {
		return []domain.Notification{}, true
	}, func(tx *sqlx.Tx) error { return s.NoteRepo.DeleteAll(tx) })
}

func findCustomer(customers []domain.Customer, id int) domain.Customer {
	for _, c := range customers {
		if c.ID == id {
			return c
		}
	}
	return domain.Customer{}
}

func findProduct(products []domain.Product, id int) domain.Product {
	for _, p := range products {
		if p.ID == id {
			return p
		}
	}
	return domain.Product{}
}

func findOrder(orders []domain.Order, id int) domain.Order {
	for _, o := range orders {
		if o.ID == id {
			return o
		}
	}
	return domain.Order{}
}
