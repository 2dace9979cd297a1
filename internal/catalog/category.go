package catalog

import "strings"

const CATEGORY_OTHER = "other"

// CATEGORY_DEFECT - карантинная категория для товаров, у которых не удалось
// определить ни размеры, ни цвета
const CATEGORY_DEFECT = "Брак"

type categoryKeywords struct {
	Category string
	Keywords []string
}

// порядок правил фиксирован: первое совпадение побеждает
var categoryTable = []categoryKeywords{
	{"Джинсы", []string{"джинсы", "jeans"}},
	{"Брюки", []string{"брюки", "pants", "trousers"}},
	{"Юбки", []string{"юбка", "юбки", "skirt"}},
	{"Платье", []string{"платье", "платья", "dress"}},
	{"Топы", []string{"топ", "топы", "top"}},
	{"Блузка", []string{"блузка", "блузки", "blouse"}},
	{"Рубашка", []string{"рубашка", "рубашки", "shirt"}},
	{"Джемпер", []string{"джемпер", "джемперы", "jumper"}},
	{"Свитер", []string{"свитер", "свитера", "sweater"}},
	{"Кардиган", []string{"кардиган", "cardigan"}},
	{"Жакет", []string{"жакет", "жакеты", "jacket"}},
	{"Пиджак", []string{"пиджак", "пиджаки", "blazer"}},
	{"Костюм", []string{"костюм", "костюмы", "suit"}},
	{"Верхняя одежда", []string{"куртка", "куртки", "пальто", "coat", "jacket"}},
	{"Футболки", []string{"футболка", "футболки", "t-shirt", "tshirt"}},
	{"Поло", []string{"поло", "polo"}},
	{"Худи", []string{"худи", "hoodie"}},
	{"Свитшот", []string{"свитшот", "sweatshirt"}},
	{"Лонгслив", []string{"лонгслив", "longsleeve"}},
	{"Водолазки", []string{"водолазка", "водолазки", "turtleneck"}},
	{"Боди", []string{"боди", "body"}},
	{"Лосины", []string{"лосины", "leggings"}},
	{"Шорты", []string{"шорты", "shorts"}},
	{"Комплект", []string{"комплект", "комплекты", "set"}},
	{"Аксессуары", []string{"ремень", "ремни", "belt", "сумка", "сумки", "bag", "шарф", "шарфы", "scarf"}},
	{"Блузон", []string{"блузон", "blouson"}},
	{"Жилет", []string{"жилет", "жилеты", "vest"}},
}

// DetermineCategoryByName подбирает категорию по ключевым словам в названии
func DetermineCategoryByName(name string) string {
	nameLower := strings.ToLower(name)

	for _, entry := range categoryTable {
		for _, keyword := range entry.Keywords {
			if strings.Contains(nameLower, keyword) {
				return entry.Category
			}
		}
	}

	return CATEGORY_OTHER
}
