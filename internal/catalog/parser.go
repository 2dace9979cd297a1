package catalog

import (
	"regexp"
	"strings"
)

// Эвристический разбор свободного текста названий модификаций вида
// "Платье Sabrina Scala (48, Светло-Серый)". Правила применяются строго
// по порядку, побеждает первое, чье захваченное значение проходит
// валидацию по белому списку. Для названий с несколькими скобочными
// группами разбор заведомо неоднозначен - политика разрешения конфликтов
// не определена дальше "первое правило в фиксированном порядке".

// Modification - результат разбора: размер и цвет, оба опциональны
type Modification struct {
	Size  string
	Color string
}

const colorWordsRU = `белый|черный|красный|синий|зеленый|желтый|розовый|оранжевый|фиолетовый|коричневый|серый|голубой|бежевый|бордовый|хаки|шоколад|крем|молочный|ваниль|алый|лиловый|салатовый|бронзовый`

const colorWordsEN = `White|Black|Red|Blue|Green|Yellow|Pink|Orange|Purple|Brown|Grey|Gray|Cream|Beige|Burgundy|Khaki|Chocolate|Milk|Vanilla|Scarlet|Lilac|Lime|Bronze`

// SizePattern - именованное правило поиска размера
type SizePattern struct {
	Name string
	Re   *regexp.Regexp
}

// ColorPattern - именованное правило поиска цвета
type ColorPattern struct {
	Name string
	Re   *regexp.Regexp
}

// RE2 не считает кириллицу словарными символами, поэтому вместо \b вокруг
// русских слов используются явные границы через \pL
var sizePatterns = []SizePattern{
	{"parenthesized", regexp.MustCompile(`\((\d{2,3})\)`)},
	{"comma-number-paren", regexp.MustCompile(`,\s*(\d{2,3})\s*\)`)},
	{"word-razmer-number", regexp.MustCompile(`(?i)размер\s*(\d{2,3})`)},
	{"number-word-razmer", regexp.MustCompile(`(?i)(\d{2,3})\s*размер`)},
	{"bare-number", regexp.MustCompile(`\b(\d{2,3})\b`)},
	{"letter-size", regexp.MustCompile(`(?i)\b(XXXL|XXL|XL|XS|S|M|L)\b`)},
	{"one-size", regexp.MustCompile(`(?i)\b(One\s*Size|OS)\b`)},
}

var colorPatterns = []ColorPattern{
	{"paren-phrase-ru", regexp.MustCompile(`(?i)\(([^)]*?(?:` + colorWordsRU + `)[^)]*?)\)`)},
	{"comma-phrase-ru", regexp.MustCompile(`(?i),\s*([^)]*?(?:` + colorWordsRU + `)[^)]*?)\s*\)`)},
	{"bare-word-ru", regexp.MustCompile(`(?i)(?:^|[^\pL])(` + colorWordsRU + `)(?:[^\pL]|$)`)},
	{"bare-word-en", regexp.MustCompile(`(?i)\b(` + colorWordsEN + `)\b`)},
}

var validSizes = buildSet(
	"xs", "s", "m", "l", "xl", "xxl", "xxxl",
	"one size", "os",
	"28", "29", "30", "31", "32", "33", "34", "35", "36", "37", "38", "39",
	"40", "41", "42", "43", "44", "45", "46", "47", "48", "49", "50", "51", "52",
)

var validColors = buildSet(
	"белый", "черный", "красный", "синий", "зеленый", "желтый", "розовый",
	"оранжевый", "фиолетовый", "коричневый", "серый", "голубой", "бежевый",
	"бордовый", "хаки", "шоколад", "крем", "молочный", "ваниль", "алый",
	"лиловый", "салатовый", "бронзовый", "светло-серый", "темно-серый",
	"white", "black", "red", "blue", "green", "yellow", "pink", "orange",
	"purple", "brown", "grey", "gray", "cream", "beige", "burgundy", "khaki",
	"chocolate", "milk", "vanilla", "scarlet", "lilac", "lime", "bronze",
)

func buildSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// IsValidSize проверяет размер по белому списку
func IsValidSize(size string) bool {
	if size == "" {
		return false
	}
	_, ok := validSizes[strings.ToLower(size)]
	return ok
}

// IsValidColor проверяет цвет по белому списку
func IsValidColor(color string) bool {
	if color == "" {
		return false
	}
	_, ok := validColors[strings.ToLower(color)]
	return ok
}

// ExtractModifications извлекает размер и цвет из названия модификации.
// Размер и цвет ищутся независимо; правило без валидного захвата
// пропускается, отсутствие совпадений оставляет поле пустым.
func ExtractModifications(name string) Modification {
	var mod Modification

	for _, pattern := range sizePatterns {
		match := pattern.Re.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		size := strings.TrimSpace(match[1])
		if IsValidSize(size) {
			mod.Size = size
			break
		}
	}

	for _, pattern := range colorPatterns {
		match := pattern.Re.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		color := strings.ToLower(strings.TrimSpace(match[1]))
		if IsValidColor(color) {
			mod.Color = color
			break
		}
	}

	return mod
}
