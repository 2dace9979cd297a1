package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// AddToCart добавляет позицию в корзину; повторное добавление того же
// составного ключа увеличивает количество существующей строки
func AddToCart(db *sqlx.DB, item *CartItem) error {
	existing, err := GetCartItem(db, item.UserID, item.ProductID)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err = db.Exec(`UPDATE cart SET quantity = ? WHERE id = ?`,
			existing.Quantity+item.Quantity, existing.ID)
		if err != nil {
			return errors.Wrapf(err, "failed AddToCart update, userID=%d, productID=%s", item.UserID, item.ProductID)
		}
		return nil
	}

	_, err = db.Exec(`INSERT INTO cart (user_id, product_id, product_name, quantity, price, size, color, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.ProductID, item.ProductName, item.Quantity, item.Price,
		item.Size, item.Color, item.Image)
	if err != nil {
		return errors.Wrapf(err, "failed AddToCart insert, userID=%d, productID=%s", item.UserID, item.ProductID)
	}
	return nil
}

// GetCartItem возвращает позицию корзины или nil
func GetCartItem(db *sqlx.DB, userID int64, productID string) (*CartItem, error) {
	var item CartItem
	err := db.Get(&item, `SELECT id, user_id, product_id, product_name, quantity, price, size, color, image, added_at
		FROM cart WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed GetCartItem, userID=%d, productID=%s", userID, productID)
	}
	return &item, nil
}

// SetCartQuantity устанавливает количество; значение <= 0 удаляет строку
func SetCartQuantity(db *sqlx.DB, userID int64, productID string, quantity int) error {
	if quantity <= 0 {
		return RemoveFromCart(db, userID, productID)
	}
	_, err := db.Exec(`UPDATE cart SET quantity = ? WHERE user_id = ? AND product_id = ?`,
		quantity, userID, productID)
	if err != nil {
		return errors.Wrapf(err, "failed SetCartQuantity, userID=%d, productID=%s", userID, productID)
	}
	return nil
}

func RemoveFromCart(db *sqlx.DB, userID int64, productID string) error {
	_, err := db.Exec(`DELETE FROM cart WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return errors.Wrapf(err, "failed RemoveFromCart, userID=%d, productID=%s", userID, productID)
	}
	return nil
}

func GetCart(db *sqlx.DB, userID int64) ([]CartItem, error) {
	var items []CartItem
	err := db.Select(&items, `SELECT id, user_id, product_id, product_name, quantity, price, size, color, image, added_at
		FROM cart WHERE user_id = ?`, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed GetCart, userID=%d", userID)
	}
	return items, nil
}

func ClearCart(db *sqlx.DB, userID int64) error {
	_, err := db.Exec(`DELETE FROM cart WHERE user_id = ?`, userID)
	if err != nil {
		return errors.Wrapf(err, "failed ClearCart, userID=%d", userID)
	}
	return nil
}
