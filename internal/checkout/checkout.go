package checkout

import (
	"ShopWithMoysklad/internal/catalog"
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad"
	modelsMS "ShopWithMoysklad/internal/moysklad/models"
	"ShopWithMoysklad/pkg/logging"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Оформление заказа из корзины: заказ создается атомарно из текущего
// снимка корзины, реплицируется в МойСклад по принципу best-effort и
// корзина очищается независимо от результата репликации.
// Компенсирующих транзакций между локальной базой и МойСклад нет.

var ErrCartEmpty = errors.New("корзина пуста")
var ErrNoContactInfo = errors.New("не указаны телефон и адрес")

// orderItem - позиция снимка заказа, хранится в orders.items как JSON
type orderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func snapshotItems(cartItems []database.CartItem) []orderItem {
	items := make([]orderItem, 0, len(cartItems))
	for i := range cartItems {
		items = append(items, orderItem{
			ProductID: cartItems[i].ProductID,
			Name:      cartItems[i].ProductName,
			Quantity:  cartItems[i].Quantity,
			Price:     cartItems[i].Price,
			Size:      cartItems[i].Size.String,
			Color:     cartItems[i].Color.String,
		})
	}
	return items
}

type Service struct {
	db  *sqlx.DB
	api moysklad.MOYSKLADAPI
	now func() time.Time
}

func NewService(db *sqlx.DB, api moysklad.MOYSKLADAPI, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, api: api, now: now}
}

// OrderNumber генерирует номер заказа из текущего времени и ID пользователя
func (s *Service) OrderNumber(userID int64) string {
	return fmt.Sprintf("ORDER_%s_%d", s.now().Format("20060102_150405"), userID)
}

// Confirm подтверждает заказ. Отказ: пустая корзина либо пользователь без
// телефона или адреса. Успех сообщается даже при неудачной репликации в
// МойСклад; удачная репликация переводит заказ в статус synced.
func (s *Service) Confirm(userID int64) (*database.Order, error) {
	logger := logging.GetLogger()
	logger.Println("Confirm:>Start")
	defer logger.Println("Confirm:>End")

	cartItems, err := database.GetCart(s.db, userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	user, err := database.GetUserInfo(s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Phone.Valid || user.Phone.String == "" ||
		!user.Address.Valid || user.Address.String == "" {
		return nil, ErrNoContactInfo
	}

	var total int
	for i := range cartItems {
		total += cartItems[i].Price * cartItems[i].Quantity
	}

	itemsJSON, err := json.Marshal(snapshotItems(cartItems))
	if err != nil {
		return nil, errors.Wrap(err, "не удалось сериализовать снимок корзины")
	}

	order := &database.Order{
		UserID:      userID,
		OrderNumber: s.OrderNumber(userID),
		Status:      database.ORDER_STATUS_NEW,
		TotalAmount: total,
		Items:       string(itemsJSON),
		Phone:       user.Phone.String,
		Address:     user.Address.String,
	}

	orderID, err := database.CreateOrder(s.db, order)
	if err != nil {
		return nil, err
	}
	order.ID = orderID
	logger.Infof("заказ %s сохранен, сумма %d", order.OrderNumber, total)

	// best-effort репликация в МойСклад: отказ логируется и игнорируется
	if err := s.replicate(order, cartItems); err != nil {
		logger.Errorf("не удалось создать заказ %s в МойСклад: %v", order.OrderNumber, err)
	} else {
		if err := database.UpdateOrderStatus(s.db, orderID, database.ORDER_STATUS_SYNCED); err != nil {
			logger.Errorf("не удалось обновить статус заказа %s: %v", order.OrderNumber, err)
		} else {
			order.Status = database.ORDER_STATUS_SYNCED
		}
	}

	// корзина очищается безусловно
	if err := database.ClearCart(s.db, userID); err != nil {
		logger.Errorf("не удалось очистить корзину пользователя %d: %v", userID, err)
	}

	return order, nil
}

func (s *Service) replicate(order *database.Order, cartItems []database.CartItem) error {
	if s.api == nil {
		return errors.New("API МойСклад не инициализирован")
	}

	customerOrder := &modelsMS.CustomerOrder{
		Name:    order.OrderNumber,
		Phone:   order.Phone,
		Address: order.Address,
	}

	for i := range cartItems {
		baseID, _, _ := catalog.ParseCompositeID(cartItems[i].ProductID)
		customerOrder.Positions = append(customerOrder.Positions, modelsMS.CustomerOrderPosition{
			ProductID: baseID,
			Name:      cartItems[i].ProductName,
			Quantity:  cartItems[i].Quantity,
			Price:     float64(cartItems[i].Price) * 100,
		})
	}

	_, err := s.api.CustomerOrderAdd(customerOrder)
	return err
}
