package repos

import (
	"chidi/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT id, name, stock, price, status, category, image
	  FROM products
	  ORDER BY id
	`)
	return out, err
}

func (r *ProductRepo) Get(id int) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT id, name, stock, price, status, category, image FROM products WHERE id = ?`, id)
	return p, err
}

// Insert writes p with its ledger-assigned id.
func (r *ProductRepo) Insert(ext sqlx.Ext, p domain.Product) error {
	_, err := sqlx.NamedExec(ext, `
	  INSERT INTO products(id, name, stock, price, status, category, image)
	  VALUES(:id, :name, :stock, :price, :status, :category, :image)
	`, p)
	return err
}

func (r *ProductRepo) Update(ext sqlx.Ext, p domain.Product) error {
	_, err := sqlx.NamedExec(ext, `
	  UPDATE products
	  SET name = :name, stock = :stock, price = :price, status = :status, category = :category, image = :image
	  WHERE id = :id
	`, p)
	return err
}

// Delete removes every product in ids; ids that do not exist are ignored.
func (r *ProductRepo) Delete(ext sqlx.Ext, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = ext.Exec(ext.Rebind(query), args...)
	return err
}
