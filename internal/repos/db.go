package repos

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"chidi/internal/domain"
	"chidi/internal/ledger"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo shop data if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure the demo owner exists (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  price INTEGER NOT NULL DEFAULT 0 CHECK (price >= 0),
  status TEXT NOT NULL CHECK (status IN ('out','low','good')),
  category TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);

-- Customers
CREATE TABLE IF NOT EXISTS customers(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  total_orders INTEGER NOT NULL DEFAULT 0,
  total_spent INTEGER NOT NULL DEFAULT 0,
  last_order TEXT NOT NULL DEFAULT 'Never',
  status TEXT NOT NULL CHECK (status IN ('active','inactive','vip')),
  notes TEXT NOT NULL DEFAULT '',
  join_date TEXT NOT NULL DEFAULT ''
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id INTEGER NOT NULL REFERENCES customers(id),
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL DEFAULT '',
  total INTEGER NOT NULL,
  status TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  order_date TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);

-- Item name and price are snapshots; products may be deleted later.
CREATE TABLE IF NOT EXISTS order_items(
  order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  line INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price INTEGER NOT NULL,
  PRIMARY KEY (order_id, line)
);

-- Notifications
CREATE TABLE IF NOT EXISTS notifications(
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  timestamp TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  priority TEXT NOT NULL,
  product_id INTEGER NOT NULL DEFAULT 0,
  created_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_ms);

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  external_id TEXT UNIQUE,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  business_name TEXT NOT NULL DEFAULT '',
  business_type TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL CHECK (role IN ('OWNER','STAFF')),
  onboarding_completed INTEGER NOT NULL DEFAULT 0,
  password_hash TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS password_resets(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  token_hash TEXT NOT NULL,
  expires_at INTEGER NOT NULL,
  used INTEGER NOT NULL DEFAULT 0
);
`
	_, err := db.Exec(schema)
	return err
}

// Fixtures is the demo shop loaded on first start.
type Fixtures struct {
	Products  []domain.Product  `yaml:"products"`
	Customers []domain.Customer `yaml:"customers"`
	Orders    []domain.Order    `yaml:"orders"`
}

func LoadFixtures(b []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixtures{}, fmt.Errorf("fixtures: %w", err)
	}
	return f, nil
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	f, err := LoadFixtures(fixturesYAML)
	if err != nil {
		return err
	}

	log.Println("[seed] inserting demo products/customers/orders")

	return WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		products, customers, orders := NewProductRepo(db), NewCustomerRepo(db), NewOrderRepo(db)
		for _, p := range f.Products {
			p.Status = ledger.ResolveStatus(p.Stock)
			if err := products.Insert(tx, p); err != nil {
				return err
			}
		}
		for _, c := range f.Customers {
			if err := customers.Insert(tx, c); err != nil {
				return err
			}
		}
		for _, o := range f.Orders {
			if err := orders.Insert(tx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

// seedUsers ensures the demo owner exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,name,business_name,business_type,location,role,onboarding_completed,password_hash)
		VALUES('u-owner','owner@chidi.test','Chidi Okafor','Chidi Styles','Fashion','Lagos','OWNER',1,?)
		ON CONFLICT(email) DO NOTHING
	`, string(h))
	return err
}

// WithTx runs fn in a transaction, committing only when fn returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
