package repos

import (
	"chidi/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, name, phone, email, location, total_orders, total_spent, last_order, status, notes, join_date`

func (r *CustomerRepo) List() ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := r.db.Select(&out, `SELECT `+customerCols+` FROM customers ORDER BY id`)
	return out, err
}

func (r *CustomerRepo) Get(id int) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `SELECT `+customerCols+` FROM customers WHERE id = ?`, id)
	return c, err
}

func (r *CustomerRepo) Insert(ext sqlx.Ext, c domain.Customer) error {
	_, err := sqlx.NamedExec(ext, `
	  INSERT INTO customers(`+customerCols+`)
	  VALUES(:id, :name, :phone, :email, :location, :total_orders, :total_spent, :last_order, :status, :notes, :join_date)
	`, c)
	return err
}

// Update rewrites every column, order stats included.
func (r *CustomerRepo) Update(ext sqlx.Ext, c domain.Customer) error {
	_, err := sqlx.NamedExec(ext, `
	  UPDATE customers
	  SET name = :name, phone = :phone, email = :email, location = :location,
	      total_orders = :total_orders, total_spent = :total_spent, last_order = :last_order,
	      status = :status, notes = :notes, join_date = :join_date
	  WHERE id = :id
	`, c)
	return err
}
