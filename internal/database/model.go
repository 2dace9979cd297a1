package database

import (
	"database/sql"
	"time"
)

const (
	ORDER_STATUS_NEW        = "new"
	ORDER_STATUS_CONFIRMED  = "confirmed"
	ORDER_STATUS_SYNCED     = "synced"
	ORDER_STATUS_PROCESSING = "processing"
	ORDER_STATUS_SHIPPED    = "shipped"
	ORDER_STATUS_DELIVERED  = "delivered"
	ORDER_STATUS_CANCELLED  = "cancelled"
)

type User struct {
	UserID    int64          `db:"user_id"`
	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Phone     sql.NullString `db:"phone"`
	Address   sql.NullString `db:"address"`
	CreatedAt time.Time      `db:"created_at"`
}

// CartItem - строка корзины; product_id - составной ключ
// original_id[_color][_size], одна строка на (user_id, product_id)
type CartItem struct {
	ID          int64          `db:"id"`
	UserID      int64          `db:"user_id"`
	ProductID   string         `db:"product_id"`
	ProductName string         `db:"product_name"`
	Quantity    int            `db:"quantity"`
	Price       int            `db:"price"`
	Size        sql.NullString `db:"size"`
	Color       sql.NullString `db:"color"`
	Image       sql.NullString `db:"image"`
	AddedAt     time.Time      `db:"added_at"`
}

type Order struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	OrderNumber string    `db:"order_number"`
	Status      string    `db:"status"`
	TotalAmount int       `db:"total_amount"`
	Items       string    `db:"items"` // JSON-снимок позиций на момент оформления
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	CreatedAt   time.Time `db:"created_at"`
}
