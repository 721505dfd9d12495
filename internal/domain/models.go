package domain

import (
	"time"

	"chidi/internal/money"
)

type StockStatus string

const (
	StockOut  StockStatus = "out"
	StockLow  StockStatus = "low"
	StockGood StockStatus = "good"
)

type Product struct {
	ID       int         `db:"id" json:"id" yaml:"id"`
	Name     string      `db:"name" json:"name" yaml:"name"`
	Stock    int         `db:"stock" json:"stock" yaml:"stock"`
	Price    money.Naira `db:"price" json:"price" yaml:"price"`
	Status   StockStatus `db:"status" json:"status" yaml:"status"`
	Category string      `db:"category" json:"category" yaml:"category"`
	Image    string      `db:"image" json:"image" yaml:"image"`
}

// ProductDraft is a product before the ledger assigns its id and status.
type ProductDraft struct {
	Name     string      `json:"name"`
	Stock    int         `json:"stock"`
	Price    money.Naira `json:"price"`
	Category string      `json:"category"`
	Image    string      `json:"image"`
}

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerVIP      CustomerStatus = "vip"
)

type Customer struct {
	ID          int            `db:"id" json:"id" yaml:"id"`
	Name        string         `db:"name" json:"name" yaml:"name"`
	Phone       string         `db:"phone" json:"phone" yaml:"phone"`
	Email       string         `db:"email" json:"email,omitempty" yaml:"email"`
	Location    string         `db:"location" json:"location" yaml:"location"`
	TotalOrders int            `db:"total_orders" json:"totalOrders" yaml:"totalOrders"`
	TotalSpent  money.Naira    `db:"total_spent" json:"totalSpent" yaml:"totalSpent"`
	LastOrder   string         `db:"last_order" json:"lastOrder" yaml:"lastOrder"`
	Status      CustomerStatus `db:"status" json:"status" yaml:"status"`
	Notes       string         `db:"notes" json:"notes,omitempty" yaml:"notes"`
	JoinDate    string         `db:"join_date" json:"joinDate" yaml:"joinDate"`
}

type CustomerDraft struct {
	Name     string         `json:"name"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email,omitempty"`
	Location string         `json:"location"`
	Status   CustomerStatus `json:"status,omitempty"`
	Notes    string         `json:"notes,omitempty"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderItem carries name and unit price as they were when the order was
// created; they are never re-read from the product afterwards.
type OrderItem struct {
	ProductID   int         `db:"product_id" json:"productId" yaml:"productId"`
	ProductName string      `db:"product_name" json:"productName" yaml:"productName"`
	Quantity    int         `db:"quantity" json:"quantity" yaml:"quantity"`
	Price       money.Naira `db:"price" json:"price" yaml:"price"`
}

type Order struct {
	ID            int           `db:"id" json:"id" yaml:"id"`
	OrderNumber   string        `db:"order_number" json:"orderNumber" yaml:"orderNumber"`
	CustomerID    int           `db:"customer_id" json:"customerId" yaml:"customerId"`
	CustomerName  string        `db:"customer_name" json:"customerName" yaml:"customerName"`
	CustomerPhone string        `db:"customer_phone" json:"customerPhone" yaml:"customerPhone"`
	Items         []OrderItem   `db:"-" json:"items" yaml:"items"`
	Total         money.Naira   `db:"total" json:"total" yaml:"total"`
	Status        OrderStatus   `db:"status" json:"status" yaml:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus" yaml:"paymentStatus"`
	OrderDate     string        `db:"order_date" json:"orderDate" yaml:"orderDate"`
	Notes         string        `db:"notes" json:"notes,omitempty" yaml:"notes"`
}

// OrderDraft is an order before the ledger numbers and totals it.
type OrderDraft struct {
	CustomerID    int           `json:"customerId"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	Items         []OrderItem   `json:"items"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	OrderDate     string        `json:"orderDate,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

type NotificationType string

const (
	NotifyStock    NotificationType = "stock"
	NotifyActivity NotificationType = "activity"
	NotifySystem   NotificationType = "system"
	NotifySale     NotificationType = "sale"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Notification struct {
	ID        string           `db:"id" json:"id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Timestamp string           `db:"timestamp" json:"timestamp"`
	Read      bool             `db:"is_read" json:"read"`
	Priority  Priority         `db:"priority" json:"priority"`
	ProductID int              `db:"product_id" json:"productId,omitempty"`
	CreatedAt time.Time        `db:"-" json:"createdAt"`
}
