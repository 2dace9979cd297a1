package catalog

import (
	modelsMS "ShopWithMoysklad/internal/moysklad/models"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// apiMock считает обращения к МойСклад; failing переключает его в режим отказа
type apiMock struct {
	calls    int
	failing  bool
	products []modelsMS.Product
	variants []modelsMS.Variant
	stock    []modelsMS.StockRow
}

func (m *apiMock) ProductList() ([]modelsMS.Product, error) {
	m.calls++
	if m.failing {
		return nil, errors.New("connection refused")
	}
	return m.products, nil
}

func (m *apiMock) VariantList() ([]modelsMS.Variant, error) {
	if m.failing {
		return nil, errors.New("connection refused")
	}
	return m.variants, nil
}

func (m *apiMock) StockAll() ([]modelsMS.StockRow, error) {
	if m.failing {
		return nil, errors.New("connection refused")
	}
	return m.stock, nil
}

func (m *apiMock) ProductFolderList() ([]modelsMS.ProductFolder, error) {
	return nil, nil
}

func (m *apiMock) ImageList(href string) ([]modelsMS.Image, error) {
	return nil, nil
}

func (m *apiMock) ImageDownload(imageID string) ([]byte, string, error) {
	return nil, "", errors.New("not implemented")
}

func (m *apiMock) CustomerOrderAdd(order *modelsMS.CustomerOrder) (*modelsMS.CustomerOrderResult, error) {
	return nil, errors.New("not implemented")
}

// fakeClock - управляемые часы для проверки TTL
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newAPIMock() *apiMock {
	return &apiMock{
		products: []modelsMS.Product{
			{ID: "prod-1", Name: "Платье Sabrina Scala", PathName: "Платья"},
		},
		variants: []modelsMS.Variant{
			{ID: "var-1", Name: "Платье Sabrina Scala 42",
				Product: &modelsMS.VariantProduct{ID: "prod-1"}},
		},
		stock: []modelsMS.StockRow{
			{Meta: &modelsMS.Meta{Href: "https://api.moysklad.ru/api/remap/1.2/entity/variant/var-1"},
				Quantity: float64Ptr(3)},
		},
	}
}

func TestProductCacheTTL(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	products, err := cache.All()
	Assert.NoError(err)
	Assert.Len(products, 1)
	Assert.Equal(1, api.calls)

	// в пределах TTL повторный запрос не ходит в МойСклад
	clock.Advance(4 * time.Minute)
	products, err = cache.All()
	Assert.NoError(err)
	Assert.Len(products, 1)
	Assert.Equal(1, api.calls)

	// после истечения TTL кеш перечитывается
	clock.Advance(2 * time.Minute)
	_, err = cache.All()
	Assert.NoError(err)
	Assert.Equal(2, api.calls)
}

func TestProductCacheSourceUnavailable(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	api.failing = true
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	// снимка нет, источник недоступен - ошибка, а не пустой каталог
	_, err := cache.All()
	Assert.Error(err)
	Assert.True(errors.Is(err, ErrSourceUnavailable))
}

func TestProductCacheServesStaleSnapshot(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	products, err := cache.All()
	Assert.NoError(err)
	Assert.Len(products, 1)

	// источник упал после устаревания кеша - отдается прошлый снимок
	api.failing = true
	clock.Advance(10 * time.Minute)

	products, err = cache.All()
	Assert.NoError(err)
	Assert.Len(products, 1)
}

func TestProductCacheForceRefresh(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	_, err := cache.All()
	Assert.NoError(err)
	Assert.Equal(1, api.calls)

	// сброс перечитывает источник даже в пределах TTL
	cache.ForceRefresh()
	_, err = cache.All()
	Assert.NoError(err)
	Assert.Equal(2, api.calls)
}

func TestProductCacheFindByOriginalID(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	product, err := cache.FindByOriginalID("prod-1")
	Assert.NoError(err)
	Assert.Equal("Платье Sabrina Scala", product.Name)
	Assert.Equal(3, product.Stock)

	_, err = cache.FindByOriginalID("no-such-id")
	Assert.True(errors.Is(err, ErrProductNotFound))
}

func TestProductCacheProductsPaging(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	api.products = []modelsMS.Product{
		{ID: "prod-1", Name: "Первый", PathName: "Платья"},
		{ID: "prod-2", Name: "Второй", PathName: "Платья"},
		{ID: "prod-3", Name: "Третий", PathName: "Платья"},
	}
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	page, err := cache.Products(2, 0)
	Assert.NoError(err)
	Assert.Len(page, 2)
	Assert.Equal("prod-1", page[0].OriginalID)

	page, err = cache.Products(2, 2)
	Assert.NoError(err)
	Assert.Len(page, 1)
	Assert.Equal("prod-3", page[0].OriginalID)

	page, err = cache.Products(2, 10)
	Assert.NoError(err)
	Assert.Len(page, 0)
}

// отрицательные limit/offset приходят прямо из query string публичного API
func TestProductCacheProductsNegativeParams(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	page, err := cache.Products(50, -1)
	Assert.NoError(err)
	Assert.Len(page, 1)

	page, err = cache.Products(-1, 0)
	Assert.NoError(err)
	Assert.Len(page, 0)

	page, err = cache.Products(-5, -5)
	Assert.NoError(err)
	Assert.Len(page, 0)
}

// страница - копия: изменения у вызывающего не просачиваются в кеш
func TestProductCacheProductsReturnsCopy(t *testing.T) {
	Assert := assert.New(t)

	api := newAPIMock()
	api.products = []modelsMS.Product{
		{ID: "prod-1", Name: "Первый", PathName: "Платья"},
		{ID: "prod-2", Name: "Второй", PathName: "Платья"},
	}
	clock := &fakeClock{current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewProductCache(api, nil, 5*time.Minute, clock.Now)

	page, err := cache.Products(2, 0)
	Assert.NoError(err)
	Assert.Len(page, 2)

	page[0].OriginalID = "испорчен"
	page[1].Name = "испорчен"

	all, err := cache.All()
	Assert.NoError(err)
	Assert.Equal("prod-1", all[0].OriginalID)
	Assert.Equal("Второй", all[1].Name)
}
