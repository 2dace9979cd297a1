package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func openTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed sqlx.Connect: %v", err)
	}
	// каждое новое соединение с :memory: - отдельная пустая база
	db.SetMaxOpenConns(1)
	db.MustExec(DB_SCHEMA)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed db.Close: %v", err)
		}
	})
	return db
}

func TestAddUser(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	err := AddUser(db, 100, "ivan", "Иван", "Иванов")
	Assert.NoError(err)

	user, err := GetUserInfo(db, 100)
	Assert.NoError(err)
	Assert.NotNil(user)
	Assert.Equal("ivan", user.Username.String)
	Assert.False(user.Phone.Valid)

	// контактные данные
	err = UpdateUserContact(db, 100, "+79990001122", "Москва, ул. Ленина 1")
	Assert.NoError(err)

	// повторная регистрация обновляет имя, но не трогает контакты
	err = AddUser(db, 100, "ivan2", "Иван", "Иванов")
	Assert.NoError(err)

	user, err = GetUserInfo(db, 100)
	Assert.NoError(err)
	Assert.Equal("ivan2", user.Username.String)
	Assert.Equal("+79990001122", user.Phone.String)
	Assert.Equal("Москва, ул. Ленина 1", user.Address.String)
}

func TestGetUserInfoNotRegistered(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	user, err := GetUserInfo(db, 999)
	Assert.NoError(err)
	Assert.Nil(user)
}

func TestAddToCartIncrement(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	item := &CartItem{
		UserID:      100,
		ProductID:   "prod-1_белый_44",
		ProductName: "Платье (цвет белый, размер 44)",
		Quantity:    1,
		Price:       4500,
	}

	Assert.NoError(AddToCart(db, item))
	Assert.NoError(AddToCart(db, item))

	// тот же составной ключ - одна строка с суммарным количеством
	cart, err := GetCart(db, 100)
	Assert.NoError(err)
	Assert.Len(cart, 1)
	Assert.Equal(2, cart[0].Quantity)

	// другой составной ключ того же товара - отдельная строка
	other := &CartItem{
		UserID:      100,
		ProductID:   "prod-1_черный_44",
		ProductName: "Платье (цвет черный, размер 44)",
		Quantity:    1,
		Price:       4500,
	}
	Assert.NoError(AddToCart(db, other))

	cart, err = GetCart(db, 100)
	Assert.NoError(err)
	Assert.Len(cart, 2)
}

func TestSetCartQuantity(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	item := &CartItem{UserID: 100, ProductID: "prod-1", ProductName: "Платье", Quantity: 2, Price: 4500}
	Assert.NoError(AddToCart(db, item))

	Assert.NoError(SetCartQuantity(db, 100, "prod-1", 5))

	got, err := GetCartItem(db, 100, "prod-1")
	Assert.NoError(err)
	Assert.NotNil(got)
	Assert.Equal(5, got.Quantity)

	// нулевое количество удаляет строку
	Assert.NoError(SetCartQuantity(db, 100, "prod-1", 0))

	got, err = GetCartItem(db, 100, "prod-1")
	Assert.NoError(err)
	Assert.Nil(got)
}

func TestClearCart(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	Assert.NoError(AddToCart(db, &CartItem{UserID: 100, ProductID: "prod-1", ProductName: "Платье", Quantity: 1, Price: 100}))
	Assert.NoError(AddToCart(db, &CartItem{UserID: 100, ProductID: "prod-2", ProductName: "Юбка", Quantity: 1, Price: 200}))
	// корзина другого пользователя не затрагивается
	Assert.NoError(AddToCart(db, &CartItem{UserID: 200, ProductID: "prod-1", ProductName: "Платье", Quantity: 1, Price: 100}))

	Assert.NoError(ClearCart(db, 100))

	cart, err := GetCart(db, 100)
	Assert.NoError(err)
	Assert.Len(cart, 0)

	cart, err = GetCart(db, 200)
	Assert.NoError(err)
	Assert.Len(cart, 1)
}

func TestCreateOrder(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	order := &Order{
		UserID:      100,
		OrderNumber: "ORDER_20240101_120000_100",
		TotalAmount: 9000,
		Items:       `[{"product_id":"prod-1"}]`,
		Phone:       "+79990001122",
		Address:     "Москва",
	}

	orderID, err := CreateOrder(db, order)
	Assert.NoError(err)
	Assert.True(orderID > 0)

	orders, err := GetUserOrders(db, 100)
	Assert.NoError(err)
	Assert.Len(orders, 1)
	Assert.Equal("ORDER_20240101_120000_100", orders[0].OrderNumber)
	// статус по умолчанию
	Assert.Equal(ORDER_STATUS_NEW, orders[0].Status)

	Assert.NoError(UpdateOrderStatus(db, orderID, ORDER_STATUS_SYNCED))

	orders, err = GetUserOrders(db, 100)
	Assert.NoError(err)
	Assert.Equal(ORDER_STATUS_SYNCED, orders[0].Status)
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)

	order := &Order{UserID: 100, OrderNumber: "ORDER_20240101_120000_100"}

	_, err := CreateOrder(db, order)
	Assert.NoError(err)

	// order_number уникален
	_, err = CreateOrder(db, order)
	Assert.Error(err)
}
