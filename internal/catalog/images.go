package catalog

import (
	"ShopWithMoysklad/internal/moysklad"
	modelsMS "ShopWithMoysklad/internal/moysklad/models"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ImageResolver находит отображаемую картинку товара: вторичный запрос
// списка изображений, downloadHref первой записи, локальный прокси-путь.
// Результат кешируется на ImageTTL по ключу productID_imagesHref.
type ImageResolver struct {
	mu    sync.Mutex
	api   moysklad.MOYSKLADAPI
	ttl   time.Duration
	now   func() time.Time
	cache map[string]imageCacheEntry
}

type imageCacheEntry struct {
	proxyURL  string
	timestamp time.Time
}

func NewImageResolver(api moysklad.MOYSKLADAPI, ttl time.Duration, now func() time.Time) *ImageResolver {
	if now == nil {
		now = time.Now
	}
	return &ImageResolver{
		api:   api,
		ttl:   ttl,
		now:   now,
		cache: make(map[string]imageCacheEntry),
	}
}

func (r *ImageResolver) Resolve(product *modelsMS.Product) (string, error) {
	logger := logging.GetLogger()

	if !product.HasImages() {
		return "", nil
	}

	imagesHref := product.Images.Meta.Href
	cacheKey := fmt.Sprintf("%s_%s", product.ID, imagesHref)

	r.mu.Lock()
	entry, ok := r.cache[cacheKey]
	if ok && r.now().Sub(entry.timestamp) < r.ttl {
		r.mu.Unlock()
		logger.Debugf("изображение товара %s взято из кеша", product.Name)
		return entry.proxyURL, nil
	}
	r.mu.Unlock()

	images, err := r.api.ImageList(imagesHref)
	if err != nil {
		return "", errors.Wrapf(err, "не удалось получить список изображений товара %s", product.Name)
	}
	if len(images) == 0 || images[0].Meta == nil || images[0].Meta.DownloadHref == "" {
		return "", nil
	}

	downloadHref := images[0].Meta.DownloadHref
	parts := strings.Split(downloadHref, "/")
	imageID := parts[len(parts)-1]
	proxyURL := fmt.Sprintf("/proxy/image/%s", imageID)

	r.mu.Lock()
	r.cache[cacheKey] = imageCacheEntry{proxyURL: proxyURL, timestamp: r.now()}
	r.mu.Unlock()

	logger.Debugf("изображение товара %s найдено и закешировано: %s", product.Name, proxyURL)
	return proxyURL, nil
}

// ClearCache сбрасывает кеш ссылок на изображения
func (r *ImageResolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]imageCacheEntry)
}
