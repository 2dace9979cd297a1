package models

type Characteristic struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// VariantProduct — ссылка на родительский товар; при expand=product
// приходит развернутый объект с id, иначе только meta
type VariantProduct struct {
	ID   string `json:"id,omitempty"`
	Meta *Meta  `json:"meta,omitempty"`
}

type Variant struct {
	ID              string           `json:"id,omitempty"`
	Name            string           `json:"name,omitempty"`
	Product         *VariantProduct  `json:"product,omitempty"`
	Characteristics []Characteristic `json:"characteristics,omitempty"`
	SalePrices      []SalePrice      `json:"salePrices,omitempty"`
	Meta            *Meta            `json:"meta,omitempty"`
}

// ProductID определяет ID родителя: развернутый объект, иначе по href
func (v *Variant) ProductID() string {
	if v.Product == nil {
		return ""
	}
	if v.Product.ID != "" {
		return v.Product.ID
	}
	return v.Product.Meta.EntityID()
}

type VariantRows struct {
	Rows []Variant `json:"rows"`
}
