package repos

import (
	"chidi/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, order_number, customer_id, customer_name, customer_phone, total, status, payment_status, order_date, notes`

type orderItemRow struct {
	OrderID int `db:"order_id"`
	domain.OrderItem
}

// List returns every order with its items, oldest first.
func (r *OrderRepo) List() ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := r.db.Select(&orders, `SELECT `+orderCols+` FROM orders ORDER BY id`); err != nil {
		return nil, err
	}

	var rows []orderItemRow
	if err := r.db.Select(&rows, `
		SELECT order_id, product_id, product_name, quantity, price
		FROM order_items
		ORDER BY order_id, line
	`); err != nil {
		return nil, err
	}

	byOrder := make(map[int][]domain.OrderItem, len(orders))
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row.OrderItem)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
	}
	return orders, nil
}

// Insert writes the order header and its items.
func (r *OrderRepo) Insert(ext sqlx.Ext, o domain.Order) error {
	if _, err := sqlx.NamedExec(ext, `
	  INSERT INTO orders(`+orderCols+`)
	  VALUES(:id, :order_number, :customer_id, :customer_name, :customer_phone, :total, :status, :payment_status, :order_date, :notes)
	`, o); err != nil {
		return err
	}
	for i, it := range o.Items {
		if _, err := ext.Exec(`
		  INSERT INTO order_items(order_id, line, product_id, product_name, quantity, price)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, o.ID, i+1, it.ProductID, it.ProductName, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ext sqlx.Ext, id int, status domain.OrderStatus) error {
	_, err := ext.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *OrderRepo) UpdatePayment(ext sqlx.Ext, id int, status domain.PaymentStatus) error {
	_, err := ext.Exec(`UPDATE orders SET payment_status = ? WHERE id = ?`, status, id)
	return err
}
