package checkout

import (
	"ShopWithMoysklad/internal/database"
	modelsMS "ShopWithMoysklad/internal/moysklad/models"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// apiMock перехватывает создание заказа в МойСклад
type apiMock struct {
	failing  bool
	received *modelsMS.CustomerOrder
}

func (m *apiMock) ProductList() ([]modelsMS.Product, error)             { return nil, nil }
func (m *apiMock) VariantList() ([]modelsMS.Variant, error)             { return nil, nil }
func (m *apiMock) StockAll() ([]modelsMS.StockRow, error)               { return nil, nil }
func (m *apiMock) ProductFolderList() ([]modelsMS.ProductFolder, error) { return nil, nil }
func (m *apiMock) ImageList(href string) ([]modelsMS.Image, error)      { return nil, nil }
func (m *apiMock) ImageDownload(imageID string) ([]byte, string, error) {
	return nil, "", errors.New("not implemented")
}

func (m *apiMock) CustomerOrderAdd(order *modelsMS.CustomerOrder) (*modelsMS.CustomerOrderResult, error) {
	if m.failing {
		return nil, errors.New("connection refused")
	}
	m.received = order
	return &modelsMS.CustomerOrderResult{ID: "ms-order-1", Name: order.Name}, nil
}

func openTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed sqlx.Connect: %v", err)
	}
	// каждое новое соединение с :memory: - отдельная пустая база
	db.SetMaxOpenConns(1)
	db.MustExec(database.DB_SCHEMA)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed db.Close: %v", err)
		}
	})
	return db
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func fillCart(t *testing.T, db *sqlx.DB, userID int64) {
	err := database.AddToCart(db, &database.CartItem{
		UserID:      userID,
		ProductID:   "prod-1_белый_44",
		ProductName: "Платье (цвет белый, размер 44)",
		Quantity:    2,
		Price:       4500,
		Size:        sql.NullString{String: "44", Valid: true},
		Color:       sql.NullString{String: "белый", Valid: true},
	})
	if err != nil {
		t.Fatalf("failed database.AddToCart: %v", err)
	}
}

func registerUser(t *testing.T, db *sqlx.DB, userID int64, withContact bool) {
	if err := database.AddUser(db, userID, "ivan", "Иван", "Иванов"); err != nil {
		t.Fatalf("failed database.AddUser: %v", err)
	}
	if withContact {
		if err := database.UpdateUserContact(db, userID, "+79990001122", "Москва, ул. Ленина 1"); err != nil {
			t.Fatalf("failed database.UpdateUserContact: %v", err)
		}
	}
}

func TestOrderNumber(t *testing.T) {
	Assert := assert.New(t)

	service := NewService(nil, nil, fixedClock)
	Assert.Equal("ORDER_20240101_120000_100", service.OrderNumber(100))
}

func TestConfirmEmptyCart(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)
	registerUser(t, db, 100, true)

	service := NewService(db, &apiMock{}, fixedClock)

	_, err := service.Confirm(100)
	Assert.True(errors.Is(err, ErrCartEmpty))
}

func TestConfirmWithoutContactInfo(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)
	registerUser(t, db, 100, false)
	fillCart(t, db, 100)

	service := NewService(db, &apiMock{}, fixedClock)

	_, err := service.Confirm(100)
	Assert.True(errors.Is(err, ErrNoContactInfo))

	// корзина при отказе не трогается
	cart, err := database.GetCart(db, 100)
	Assert.NoError(err)
	Assert.Len(cart, 1)
}

func TestConfirmReplicated(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)
	registerUser(t, db, 100, true)
	fillCart(t, db, 100)

	api := &apiMock{}
	service := NewService(db, api, fixedClock)

	order, err := service.Confirm(100)
	Assert.NoError(err)
	Assert.Equal("ORDER_20240101_120000_100", order.OrderNumber)
	Assert.Equal(9000, order.TotalAmount)
	Assert.Equal(database.ORDER_STATUS_SYNCED, order.Status)

	// корзина очищена
	cart, err := database.GetCart(db, 100)
	Assert.NoError(err)
	Assert.Len(cart, 0)

	// в МойСклад ушел исходный ID товара и цена в копейках
	Assert.NotNil(api.received)
	Assert.Len(api.received.Positions, 1)
	Assert.Equal("prod-1", api.received.Positions[0].ProductID)
	Assert.Equal(2, api.received.Positions[0].Quantity)
	Assert.Equal(float64(450000), api.received.Positions[0].Price)
	Assert.Equal("+79990001122", api.received.Phone)
}

// снимок позиций хранится с плоскими ключами, без оберток sql.NullString
func TestConfirmItemsSnapshot(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)
	registerUser(t, db, 100, true)
	fillCart(t, db, 100)

	service := NewService(db, &apiMock{}, fixedClock)

	order, err := service.Confirm(100)
	Assert.NoError(err)

	var items []map[string]interface{}
	Assert.NoError(json.Unmarshal([]byte(order.Items), &items))
	Assert.Len(items, 1)
	Assert.Equal("prod-1_белый_44", items[0]["product_id"])
	Assert.Equal("Платье (цвет белый, размер 44)", items[0]["name"])
	Assert.Equal(float64(2), items[0]["quantity"])
	Assert.Equal(float64(4500), items[0]["price"])
	Assert.Equal("44", items[0]["size"])
	Assert.Equal("белый", items[0]["color"])
}

// отказ МойСклад не мешает оформлению: заказ сохранен локально со статусом new
func TestConfirmReplicationFailure(t *testing.T) {
	Assert := assert.New(t)
	db := openTestDB(t)
	registerUser(t, db, 100, true)
	fillCart(t, db, 100)

	service := NewService(db, &apiMock{failing: true}, fixedClock)

	order, err := service.Confirm(100)
	Assert.NoError(err)
	Assert.Equal(database.ORDER_STATUS_NEW, order.Status)

	orders, err := database.GetUserOrders(db, 100)
	Assert.NoError(err)
	Assert.Len(orders, 1)
	Assert.Equal(database.ORDER_STATUS_NEW, orders[0].Status)

	// корзина очищается независимо от результата репликации
	cart, err := database.GetCart(db, 100)
	Assert.NoError(err)
	Assert.Len(cart, 0)
}
