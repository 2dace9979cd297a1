package models

type SalePrice struct {
	Value float64 `json:"value,omitempty"`
}

type ProductFolder struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Meta *Meta  `json:"meta,omitempty"`
}

type Images struct {
	Meta *Meta `json:"meta,omitempty"`
}

type Product struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Description   string         `json:"description,omitempty"`
	Article       string         `json:"article,omitempty"`
	PathName      string         `json:"pathName,omitempty"`
	ProductFolder *ProductFolder `json:"productFolder,omitempty"`
	SalePrices    []SalePrice    `json:"salePrices,omitempty"`
	Images        *Images        `json:"images,omitempty"`
	Meta          *Meta          `json:"meta,omitempty"`
}

// HasImages проверяет images.meta.size у товара
func (p *Product) HasImages() bool {
	return p.Images != nil && p.Images.Meta != nil && p.Images.Meta.Size > 0
}

type ProductRows struct {
	Rows []Product `json:"rows"`
}

type ProductFolderRows struct {
	Rows []ProductFolder `json:"rows"`
}
