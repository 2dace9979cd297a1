package models

// StockByStore — поскладская разбивка остатка; возвращается отчетом
// /report/stock/bystore вместо плоского поля quantity
type StockByStore struct {
	Stock float64 `json:"stock,omitempty"`
}

// StockRow — строка отчета об остатках. Два взаимоисключающих формата:
// плоское quantity (/report/stock/all) либо разбивка stockByStore.
// Resolve приводит их к одному числу на границе интеграции.
type StockRow struct {
	Name         string         `json:"name,omitempty"`
	Meta         *Meta          `json:"meta,omitempty"`
	Quantity     *float64       `json:"quantity,omitempty"`
	StockByStore []StockByStore `json:"stockByStore,omitempty"`
}

// EntityID — ID товара/модификации из meta.href строки отчета
func (s *StockRow) EntityID() string {
	return s.Meta.EntityID()
}

// Resolve возвращает итоговый остаток строки независимо от формата отчета
func (s *StockRow) Resolve() float64 {
	if s.Quantity != nil {
		return *s.Quantity
	}
	var total float64
	for _, bs := range s.StockByStore {
		total += bs.Stock
	}
	return total
}

type StockRows struct {
	Rows []StockRow `json:"rows"`
}
