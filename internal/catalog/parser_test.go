package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractModifications(t *testing.T) {
	Assert := assert.New(t)

	cases := []struct {
		name  string
		size  string
		color string
	}{
		{"Платье Sabrina Scala (48, Светло-Серый)", "48", "светло-серый"},
		{"Платье летнее (42)", "42", ""},
		{"Футболка (Белый)", "", "белый"},
		{"Куртка размер 50", "50", ""},
		{"Куртка 52 размер", "52", ""},
		{"Джинсы 44", "44", ""},
		{"Рубашка XL", "XL", ""},
		{"Рубашка (M, Черный)", "M", "черный"},
		{"Кепка One Size", "One Size", ""},
		{"Кепка OS", "OS", ""},
		{"Платье Black", "", "black"},
		{"Платье нарядное", "", ""},
		{"", "", ""},
	}

	for _, c := range cases {
		t.Logf("Test name: %s", c.name)
		mod := ExtractModifications(c.name)
		Assert.Equal(c.size, mod.Size, c.name)
		Assert.Equal(c.color, mod.Color, c.name)
	}
}

// число вне диапазона размеров не должно перехватывать правило
func TestExtractModificationsInvalidCapture(t *testing.T) {
	Assert := assert.New(t)

	// (999) не размер; bare-number тоже не находит валидного
	mod := ExtractModifications("Ваза (999)")
	Assert.Equal("", mod.Size)

	// первая скобочная группа невалидна как цвет целиком, побеждает
	// правило после запятой
	mod = ExtractModifications("Пальто зимнее (46, Темно-Серый)")
	Assert.Equal("46", mod.Size)
	Assert.Equal("темно-серый", mod.Color)
}

// повторный разбор уже разобранного значения дает то же самое
func TestExtractModificationsIdempotent(t *testing.T) {
	Assert := assert.New(t)

	names := []string{
		"Джинсы 44",
		"Рубашка XL",
		"Футболка (Белый)",
	}

	for _, name := range names {
		first := ExtractModifications(name)
		second := ExtractModifications(first.Size + " " + first.Color)
		if first.Size != "" {
			Assert.Equal(first.Size, second.Size, name)
		}
		if first.Color != "" {
			Assert.Equal(first.Color, second.Color, name)
		}
	}
}

func TestIsValidSize(t *testing.T) {
	Assert := assert.New(t)

	Assert.True(IsValidSize("48"))
	Assert.True(IsValidSize("XL"))
	Assert.True(IsValidSize("xl"))
	Assert.True(IsValidSize("One Size"))
	Assert.False(IsValidSize("999"))
	Assert.False(IsValidSize(""))
}

func TestIsValidColor(t *testing.T) {
	Assert := assert.New(t)

	Assert.True(IsValidColor("белый"))
	Assert.True(IsValidColor("Светло-Серый"))
	Assert.True(IsValidColor("Black"))
	Assert.False(IsValidColor("небесный"))
	Assert.False(IsValidColor(""))
}
