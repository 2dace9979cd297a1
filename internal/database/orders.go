package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// CreateOrder сохраняет заказ со снимком позиций; возвращает ID строки
func CreateOrder(db *sqlx.DB, order *Order) (int64, error) {
	result, err := db.Exec(`INSERT INTO orders (user_id, order_number, total_amount, items, phone, address)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.UserID, order.OrderNumber, order.TotalAmount, order.Items, order.Phone, order.Address)
	if err != nil {
		return 0, errors.Wrapf(err, "failed CreateOrder, orderNumber=%s", order.OrderNumber)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed CreateOrder LastInsertId")
	}
	return orderID, nil
}

func GetUserOrders(db *sqlx.DB, userID int64) ([]Order, error) {
	var orders []Order
	err := db.Select(&orders, `SELECT id, user_id, order_number, status, total_amount, items, phone, address, created_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed GetUserOrders, userID=%d", userID)
	}
	return orders, nil
}

func UpdateOrderStatus(db *sqlx.DB, orderID int64, status string) error {
	_, err := db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return errors.Wrapf(err, "failed UpdateOrderStatus, orderID=%d", orderID)
	}
	return nil
}
