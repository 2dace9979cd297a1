package models

// CustomerOrderPosition — позиция заказа покупателя, отправляется в МойСклад
// при подтверждении заказа
type CustomerOrderPosition struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // копейки
}

type CustomerOrder struct {
	Name      string                  `json:"name"`
	Phone     string                  `json:"phone,omitempty"`
	Address   string                  `json:"address,omitempty"`
	Positions []CustomerOrderPosition `json:"positions,omitempty"`
}

type CustomerOrderResult struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Meta *Meta  `json:"meta,omitempty"`
}
