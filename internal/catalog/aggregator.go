package catalog

import (
	modelsMS "ShopWithMoysklad/internal/moysklad/models"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"strings"
)

// ImageSource разрешает отображаемую картинку товара; реализация может
// кешировать результат
type ImageSource interface {
	Resolve(product *modelsMS.Product) (string, error)
}

// BuildStockMap строит словарь остатков по ID сущности из href строки отчета.
// Сохраняются только положительные значения; нулевые и отрицательные
// отбрасываются из словаря (но не из товара).
func BuildStockMap(stock []modelsMS.StockRow) map[string]float64 {
	logger := logging.GetLogger()

	stockMap := make(map[string]float64)
	var totalPositive float64

	for i := range stock {
		itemID := stock[i].EntityID()
		if itemID == "" {
			continue
		}
		quantity := stock[i].Resolve()
		if quantity > 0 {
			stockMap[itemID] = quantity
			totalPositive += quantity
		}
	}

	logger.Infof("Создан словарь остатков: %d позиций, общий положительный остаток: %.0f", len(stockMap), totalPositive)
	return stockMap
}

// GroupVariantsByProduct группирует модификации по ID родительского товара
func GroupVariantsByProduct(variants []modelsMS.Variant) map[string][]modelsMS.Variant {
	logger := logging.GetLogger()

	grouped := make(map[string][]modelsMS.Variant)
	for i := range variants {
		productID := variants[i].ProductID()
		if productID == "" {
			logger.Debugf("модификация %s без родителя, пропущена", variants[i].ID)
			continue
		}
		grouped[productID] = append(grouped[productID], variants[i])
	}

	logger.Infof("Сгруппировано модификаций по товарам: %d", len(grouped))
	return grouped
}

// BuildProducts объединяет три выгрузки МойСклад в денормализованный каталог.
// Ошибка обработки отдельного товара логируется, товар пропускается.
func BuildProducts(products []modelsMS.Product, variants []modelsMS.Variant, stock []modelsMS.StockRow, images ImageSource) []Product {
	logger := logging.GetLogger()
	logger.Println("BuildProducts:>Start")
	defer logger.Println("BuildProducts:>End")

	stockMap := BuildStockMap(stock)
	variantsByProduct := GroupVariantsByProduct(variants)

	result := make([]Product, 0, len(products))

	for i := range products {
		product := &products[i]
		if product.ID == "" {
			continue
		}

		productVariants := variantsByProduct[product.ID]

		category := CATEGORY_OTHER
		if product.PathName != "" {
			category = product.PathName
		} else if product.ProductFolder != nil && product.ProductFolder.Name != "" {
			category = product.ProductFolder.Name
		} else if byName := DetermineCategoryByName(product.Name); byName != CATEGORY_OTHER {
			category = byName
		}

		var availableSizes []string
		var availableColors []string
		var totalStock float64

		if len(productVariants) > 0 {
			for j := range productVariants {
				variant := &productVariants[j]
				totalStock += stockMap[variant.ID]

				for _, char := range variant.Characteristics {
					charName := strings.ToLower(char.Name)
					switch {
					case strings.Contains(charName, "размер") || strings.Contains(charName, "size"):
						if IsValidSize(char.Value) && !contains(availableSizes, char.Value) {
							availableSizes = append(availableSizes, char.Value)
						}
					case strings.Contains(charName, "цвет") || strings.Contains(charName, "color"):
						value := strings.ToLower(char.Value)
						if IsValidColor(value) && !contains(availableColors, value) {
							availableColors = append(availableColors, value)
						}
					}
				}
			}

			// структурированных характеристик нет - разбираем названия модификаций
			if len(availableSizes) == 0 && len(availableColors) == 0 {
				for j := range productVariants {
					mod := ExtractModifications(productVariants[j].Name)
					if mod.Size != "" && !contains(availableSizes, mod.Size) {
						availableSizes = append(availableSizes, mod.Size)
					}
					if mod.Color != "" && !contains(availableColors, mod.Color) {
						availableColors = append(availableColors, mod.Color)
					}
				}
			}
		} else {
			totalStock = stockMap[product.ID]
		}

		price := derivePrice(product, productVariants)

		resultProduct := Product{
			OriginalID:        product.ID,
			Name:              product.Name,
			Description:       product.Description,
			Article:           product.Article,
			Price:             price,
			Stock:             int(totalStock),
			Category:          category,
			ModificationsText: fmt.Sprintf("В наличии: %d", int(totalStock)),
			AvailableColors:   availableColors,
			AvailableSizes:    availableSizes,
			Variants:          make([]Variant, 0, len(productVariants)),
		}

		for j := range productVariants {
			variant := &productVariants[j]

			variantData := Variant{
				ID:    variant.ID,
				Name:  variant.Name,
				Stock: int(stockMap[variant.ID]),
				Price: price,
			}

			for _, char := range variant.Characteristics {
				charName := strings.ToLower(char.Name)
				switch {
				case strings.Contains(charName, "размер") || strings.Contains(charName, "size"):
					if IsValidSize(char.Value) {
						variantData.Sizes = append(variantData.Sizes, char.Value)
					}
				case strings.Contains(charName, "цвет") || strings.Contains(charName, "color"):
					value := strings.ToLower(char.Value)
					if IsValidColor(value) {
						variantData.Colors = append(variantData.Colors, value)
					}
				}
			}

			if len(variantData.Sizes) == 0 && len(variantData.Colors) == 0 {
				mod := ExtractModifications(variant.Name)
				if mod.Size != "" {
					variantData.Sizes = append(variantData.Sizes, mod.Size)
				}
				if mod.Color != "" {
					variantData.Colors = append(variantData.Colors, mod.Color)
				}
			}

			resultProduct.Variants = append(resultProduct.Variants, variantData)
		}

		// товар без единого размера и цвета уходит в карантинную категорию
		if len(availableSizes) == 0 && len(availableColors) == 0 {
			resultProduct.Category = CATEGORY_DEFECT
		}

		if images != nil && product.HasImages() {
			imageURL, err := images.Resolve(product)
			if err != nil {
				logger.Infof("не удалось получить изображение товара %s: %v", product.Name, err)
			} else {
				resultProduct.Image = imageURL
			}
		}

		result = append(result, resultProduct)
	}

	logger.Infof("Обработано товаров: %d", len(result))
	return result
}

// цена - из первой модификации, иначе из товара; значение МойСклад в копейках
func derivePrice(product *modelsMS.Product, variants []modelsMS.Variant) int {
	var price float64
	if len(variants) > 0 && len(variants[0].SalePrices) > 0 {
		price = variants[0].SalePrices[0].Value / 100
	} else if len(product.SalePrices) > 0 {
		price = product.SalePrices[0].Value / 100
	}
	return int(price)
}

// CategoryCount - категория с количеством товаров в наличии
type CategoryCount struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}

// CategoriesWithProducts считает категории, в которых есть товары с остатком,
// по убыванию количества
func CategoriesWithProducts(products []Product) []CategoryCount {
	counts := make(map[string]int)
	var order []string

	for i := range products {
		if products[i].Stock <= 0 {
			continue
		}
		category := products[i].Category
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}

	result := make([]CategoryCount, 0, len(order))
	for _, name := range order {
		result = append(result, CategoryCount{ID: name, Name: name, ProductCount: counts[name]})
	}

	// сортировка по убыванию количества, стабильная по порядку появления
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].ProductCount > result[j-1].ProductCount; j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}

	return result
}
