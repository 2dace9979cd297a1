package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// AddUser добавляет или обновляет пользователя, не трогая контактные поля
func AddUser(db *sqlx.DB, userID int64, username, firstName, lastName string) error {
	_, err := db.Exec(`INSERT INTO users (user_id, username, first_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name`,
		userID, username, firstName, lastName)
	if err != nil {
		return errors.Wrapf(err, "failed AddUser, userID=%d", userID)
	}
	return nil
}

// UpdateUserContact обновляет телефон и адрес; заполняются до оформления заказа
func UpdateUserContact(db *sqlx.DB, userID int64, phone, address string) error {
	_, err := db.Exec(`UPDATE users SET phone = ?, address = ? WHERE user_id = ?`,
		phone, address, userID)
	if err != nil {
		return errors.Wrapf(err, "failed UpdateUserContact, userID=%d", userID)
	}
	return nil
}

// GetUserInfo возвращает пользователя или nil, если он не зарегистрирован
func GetUserInfo(db *sqlx.DB, userID int64) (*User, error) {
	var user User
	err := db.Get(&user, `SELECT user_id, username, first_name, last_name, phone, address, created_at
		FROM users WHERE user_id = ?`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed GetUserInfo, userID=%d", userID)
	}
	return &user, nil
}
