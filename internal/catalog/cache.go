package catalog

import (
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/pkg/logging"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrSourceUnavailable возвращается, когда МойСклад недоступен и в кеше нет
// ни одного снимка каталога; пустой каталог и недоступный источник - разные
// состояния
var ErrSourceUnavailable = errors.New("источник данных МойСклад недоступен")

// ErrProductNotFound - товар не найден в каталоге
var ErrProductNotFound = errors.New("товар не найден")

// ProductCache - кеш каталога с явными часами и single-flight обновлением:
// конкурентные запросы во время обновления ждут одно общее обновление,
// лишних походов в МойСклад нет
type ProductCache struct {
	mu  sync.Mutex
	api moysklad.MOYSKLADAPI
	// резолвер передается агрегатору на каждом обновлении
	images    ImageSource
	ttl       time.Duration
	now       func() time.Time
	products  []Product
	timestamp time.Time
	hasData   bool
}

var productCacheGlobal *ProductCache

func NewProductCache(api moysklad.MOYSKLADAPI, images ImageSource, ttl time.Duration, now func() time.Time) *ProductCache {
	if now == nil {
		now = time.Now
	}
	c := &ProductCache{
		api:    api,
		images: images,
		ttl:    ttl,
		now:    now,
	}
	productCacheGlobal = c
	return c
}

func GetProductCache() *ProductCache {
	return productCacheGlobal
}

// Products возвращает страницу каталога; при устаревшем кеше выполняется
// обновление из МойСклад. Отрицательные параметры приводятся к нулю,
// страница - копия, изменения у вызывающего не трогают кеш
func (c *ProductCache) Products(limit, offset int) ([]Product, error) {
	all, err := c.All()
	if err != nil {
		return nil, err
	}

	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	page := make([]Product, end-offset)
	copy(page, all[offset:end])
	return page, nil
}

// All возвращает весь каталог, обновляя кеш при необходимости
func (c *ProductCache) All() ([]Product, error) {
	logger := logging.GetLogger()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasData && c.now().Sub(c.timestamp) < c.ttl {
		logger.Debugf("кеш товаров актуален (возраст %s)", c.now().Sub(c.timestamp))
		return c.products, nil
	}

	logger.Info("кеш товаров устарел, загружаем данные из МойСклад")

	if err := c.refreshLocked(); err != nil {
		if c.hasData {
			// прошлый снимок еще есть - отдаем его, отказ только логируем
			logger.Errorf("не удалось обновить каталог, отдаем прошлый снимок: %v", err)
			return c.products, nil
		}
		return nil, errors.Wrap(ErrSourceUnavailable, err.Error())
	}

	return c.products, nil
}

// FindByOriginalID ищет товар по исходному ID МойСклад
func (c *ProductCache) FindByOriginalID(originalID string) (*Product, error) {
	all, err := c.All()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].OriginalID == originalID {
			return &all[i], nil
		}
	}
	return nil, ErrProductNotFound
}

// ForceRefresh помечает кеш устаревшим; следующий запрос перечитает МойСклад
func (c *ProductCache) ForceRefresh() {
	logger := logging.GetLogger()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.timestamp = time.Time{}
	c.hasData = false
	c.products = nil
	logger.Info("кеш товаров сброшен")
}

// refreshLocked перечитывает три выгрузки и пересобирает каталог целиком;
// вызывается только под mu
func (c *ProductCache) refreshLocked() error {
	logger := logging.GetLogger()
	logger.Println("RefreshProducts:>Start")
	defer logger.Println("RefreshProducts:>End")

	products, err := c.api.ProductList()
	if err != nil {
		return errors.Wrap(err, "не удалось получить товары")
	}

	variants, err := c.api.VariantList()
	if err != nil {
		return errors.Wrap(err, "не удалось получить модификации")
	}

	stock, err := c.api.StockAll()
	if err != nil {
		return errors.Wrap(err, "не удалось получить остатки")
	}

	c.products = BuildProducts(products, variants, stock, c.images)
	c.timestamp = c.now()
	c.hasData = true

	logger.Infof("товары закешированы (%d шт.)", len(c.products))
	return nil
}
