package catalog

import "strings"

// Variant - модификация товара с собственным остатком
type Variant struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Stock  int      `json:"stock"`
	Price  int      `json:"price"`
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

// Product - денормализованная карточка товара, собранная из трех выгрузок МойСклад
type Product struct {
	OriginalID        string    `json:"original_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Article           string    `json:"article"`
	Price             int       `json:"price"`
	Image             string    `json:"image,omitempty"`
	Stock             int       `json:"stock"`
	Category          string    `json:"category"`
	ModificationsText string    `json:"modifications_text"`
	AvailableColors   []string  `json:"available_colors"`
	AvailableSizes    []string  `json:"available_sizes"`
	Variants          []Variant `json:"variants"`
}

// VariantStock возвращает остаток конкретной модификации по выбранным
// цвету/размеру; пустой параметр совпадает с любым значением
func (p *Product) VariantStock(color, size string) int {
	for _, v := range p.Variants {
		if color != "" && !contains(v.Colors, color) {
			continue
		}
		if size != "" && !contains(v.Sizes, size) {
			continue
		}
		return v.Stock
	}
	return 0
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// ParseCompositeID разбирает составной ключ позиции корзины:
// original_id, original_id_size или original_id_color_size.
// ID МойСклад - UUID без подчеркиваний, поэтому разбор по "_" однозначен.
func ParseCompositeID(id string) (base, color, size string) {
	parts := strings.Split(id, "_")
	switch len(parts) {
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], parts[1], parts[2]
	}
}

// BuildCompositeID собирает составной ключ позиции корзины
func BuildCompositeID(base, color, size string) string {
	switch {
	case color != "" && size != "":
		return base + "_" + color + "_" + size
	case size != "":
		return base + "_" + size
	default:
		return base
	}
}
