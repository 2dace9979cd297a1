package httphandler

import (
	"ShopWithMoysklad/internal/catalog"
	"ShopWithMoysklad/internal/checkout"
	"ShopWithMoysklad/internal/config"
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/pkg/logging"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	logger := logging.GetLogger()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("failed to send response, error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

// недоступный МойСклад - отдельное состояние, не пустой каталог
func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrSourceUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "Источник данных временно недоступен")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func openDB() (*sqlx.DB, error) {
	cfg := config.GetConfig()
	return sqlx.Connect("sqlite3", cfg.DBSQLITE.DB)
}

func closeDB(db *sqlx.DB) {
	logger := logging.GetLogger()
	if err := db.Close(); err != nil {
		logger.Errorf("failed close sqlx.Connect, error: %v", err)
	}
}

var catalogTemplate = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>{{.ShopName}}</title></head>
<body>
<h1>{{.ShopName}}</h1>
{{range .Products}}
<div class="product">
	<h3>{{.Name}}</h3>
	{{if .Image}}<img src="{{.Image}}" alt="{{.Name}}" width="200">{{end}}
	<p>{{.Description}}</p>
	<p>Цена: {{.Price}} {{$.Currency}}</p>
	<p>{{.ModificationsText}}</p>
</div>
{{end}}
</body>
</html>
`))

// HandlerCatalogPage отдает главную страницу каталога
func HandlerCatalogPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCatalogPage")
	defer logger.Info("End HandlerCatalogPage")
	cfg := config.GetConfig()

	products, err := catalog.GetProductCache().Products(1000, 0)
	if err != nil {
		logger.Errorf("ошибка загрузки каталога: %v", err)
		products = []catalog.Product{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = catalogTemplate.Execute(w, map[string]interface{}{
		"ShopName": cfg.SHOP.Name,
		"Currency": cfg.SHOP.Currency,
		"Products": products,
	})
	if err != nil {
		logger.Errorf("failed to render catalog page, error: %v", err)
	}
}

// HandlerProducts - GET /api/products?limit=&offset=&category=
// При фильтрации по категории запрашивается тройной лимит, затем делается
// эвристическая проверка has_more дополнительной выборкой.
func HandlerProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerProducts")
	defer logger.Info("End HandlerProducts")

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	category := r.URL.Query().Get("category")
	filtered := category != "" && category != "all"

	loadLimit := limit
	if filtered {
		loadLimit = limit * 3
	}

	cache := catalog.GetProductCache()
	products, err := cache.Products(loadLimit, offset)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	if filtered {
		originalCount := len(products)
		kept := make([]catalog.Product, 0, len(products))
		for i := range products {
			if products[i].Category == category {
				kept = append(kept, products[i])
			}
		}
		products = kept
		logger.Infof("фильтрация по категории %q: из %d найдено %d товаров", category, originalCount, len(products))
	}

	if limit < 1000 && len(products) > limit {
		products = products[:limit]
	}

	hasMore := len(products) == limit
	if len(products) == 0 {
		hasMore = false
	}

	if len(products) > 0 && len(products) < limit {
		// страница неполная - проверяем следующую порцию
		nextOffset := offset + loadLimit
		next, err := cache.Products(10, nextOffset)
		if err != nil {
			hasMore = false
		} else {
			if filtered {
				kept := make([]catalog.Product, 0, len(next))
				for i := range next {
					if next[i].Category == category {
						kept = append(kept, next[i])
					}
				}
				next = kept
			}
			hasMore = len(next) > 0
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"has_more": hasMore,
	})
}

// HandlerCategoriesWithProducts - категории, в которых есть товары с остатком
func HandlerCategoriesWithProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCategoriesWithProducts")
	defer logger.Info("End HandlerCategoriesWithProducts")

	products, err := catalog.GetProductCache().All()
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": catalog.CategoriesWithProducts(products),
	})
}

// HandlerCategories - список папок товаров из МойСклад
func HandlerCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCategories")
	defer logger.Info("End HandlerCategories")

	folders, err := moysklad.GetAPI().ProductFolderList()
	if err != nil {
		logger.Errorf("ошибка получения категорий: %v", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{"categories": []interface{}{}})
		return
	}

	type category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	categories := make([]category, 0, len(folders))
	for i := range folders {
		categories = append(categories, category{ID: folders[i].ID, Name: folders[i].Name})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// HandlerProduct - GET /api/product/:id; составной id вида
// original_color_size возвращает товар с остатком конкретной модификации
func HandlerProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerProduct")
	defer logger.Info("End HandlerProduct")

	compositeID := ps.ByName("id")
	baseID, color, size := catalog.ParseCompositeID(compositeID)

	product, err := catalog.GetProductCache().FindByOriginalID(baseID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeCatalogError(w, err)
		return
	}

	if color != "" || size != "" {
		productCopy := *product
		productCopy.Stock = product.VariantStock(color, size)
		logger.Infof("товар найден: %s, остаток модификации: %d (цвет: %s, размер: %s)",
			productCopy.Name, productCopy.Stock, color, size)
		writeJSON(w, http.StatusOK, map[string]interface{}{"product": productCopy})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// HandlerCart - GET /api/cart/:user; к позициям добавляется max_stock
func HandlerCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCart")
	defer logger.Info("End HandlerCart")

	userID, err := strconv.ParseInt(ps.ByName("user"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный user id")
		return
	}

	db, err := openDB()
	if err != nil {
		logger.Errorf("failed sqlx.Connect: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer closeDB(db)

	cartItems, err := database.GetCart(db, userID)
	if err != nil {
		logger.Errorf("failed GetCart: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type cartItemView struct {
		ProductID string `json:"product_id"`
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		Price     int    `json:"price"`
		Size      string `json:"size,omitempty"`
		Color     string `json:"color,omitempty"`
		Image     string `json:"image,omitempty"`
		MaxStock  int    `json:"max_stock"`
	}

	views := make([]cartItemView, 0, len(cartItems))
	total := 0

	for i := range cartItems {
		item := &cartItems[i]
		view := cartItemView{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Size:      item.Size.String,
			Color:     item.Color.String,
			Image:     item.Image.String,
		}

		baseID, color, size := catalog.ParseCompositeID(item.ProductID)
		if product, err := catalog.GetProductCache().FindByOriginalID(baseID); err == nil {
			if color != "" || size != "" {
				view.MaxStock = product.VariantStock(color, size)
			} else {
				view.MaxStock = product.Stock
			}
		}

		total += item.Price * item.Quantity
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cart_items": views, "total": total})
}

type cartRequest struct {
	UserID    int64  `json:"user_id"`
	ProductID string `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// HandlerAddToCart - POST /api/add-to-cart; проверяет остаток по выбранной
// модификации и строит составной ключ позиции
func HandlerAddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerAddToCart")
	defer logger.Info("End HandlerAddToCart")

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный запрос")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product ID required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := catalog.GetProductCache().FindByOriginalID(req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeCatalogError(w, err)
		return
	}

	maxStock := product.Stock
	if req.Size != "" || req.Color != "" {
		maxStock = product.VariantStock(req.Color, req.Size)
	}
	if req.Quantity > maxStock {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Недостаточно товара. Доступно: %d", maxStock))
		return
	}

	productName := product.Name
	switch {
	case req.Color != "" && req.Size != "":
		productName = fmt.Sprintf("%s (цвет %s, размер %s)", product.Name, req.Color, req.Size)
	case req.Color != "":
		productName = fmt.Sprintf("%s (цвет %s)", product.Name, req.Color)
	case req.Size != "":
		productName = fmt.Sprintf("%s (размер %s)", product.Name, req.Size)
	}

	db, err := openDB()
	if err != nil {
		logger.Errorf("failed sqlx.Connect: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer closeDB(db)

	item := &database.CartItem{
		UserID:      req.UserID,
		ProductID:   catalog.BuildCompositeID(req.ProductID, req.Color, req.Size),
		ProductName: productName,
		Quantity:    req.Quantity,
		Price:       product.Price,
		Size:        nullString(req.Size),
		Color:       nullString(req.Color),
		Image:       nullString(product.Image),
	}
	if err := database.AddToCart(db, item); err != nil {
		logger.Errorf("failed AddToCart: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Товар добавлен в корзину"})
}

// HandlerUpdateCart - POST /api/update-cart; количество клэмпится к остатку,
// значение < 1 удаляет позицию
func HandlerUpdateCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerUpdateCart")
	defer logger.Info("End HandlerUpdateCart")

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный запрос")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product ID required")
		return
	}

	baseID, color, size := catalog.ParseCompositeID(req.ProductID)

	product, err := catalog.GetProductCache().FindByOriginalID(baseID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeCatalogError(w, err)
		return
	}

	maxStock := product.Stock
	if color != "" || size != "" {
		maxStock = product.VariantStock(color, size)
	}

	db, err := openDB()
	if err != nil {
		logger.Errorf("failed sqlx.Connect: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer closeDB(db)

	quantity := req.Quantity
	if quantity < 1 {
		if err := database.RemoveFromCart(db, req.UserID, req.ProductID); err != nil {
			logger.Errorf("failed RemoveFromCart: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Товар удален из корзины"})
		return
	}

	if quantity > maxStock {
		quantity = maxStock
	}
	if err := database.SetCartQuantity(db, req.UserID, req.ProductID, quantity); err != nil {
		logger.Errorf("failed SetCartQuantity: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Корзина обновлена",
		"quantity":  quantity,
		"max_stock": maxStock,
	})
}

// HandlerRemoveFromCart - POST /api/remove-from-cart
func HandlerRemoveFromCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerRemoveFromCart")
	defer logger.Info("End HandlerRemoveFromCart")

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный запрос")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "User ID and Product ID required")
		return
	}

	db, err := openDB()
	if err != nil {
		logger.Errorf("failed sqlx.Connect: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer closeDB(db)

	if err := database.RemoveFromCart(db, req.UserID, req.ProductID); err != nil {
		logger.Errorf("failed RemoveFromCart: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Товар удален из корзины"})
}

// HandlerClearCart - POST /api/clear-cart
func HandlerClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerClearCart")
	defer logger.Info("End HandlerClearCart")

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный запрос")
		return
	}

	db, err := openDB()
	if err != nil {
		logger.Errorf("failed sqlx.Connect: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка очистки корзины")
		return
	}
	defer closeDB(db)

	if err := database.ClearCart(db, req.UserID); err != nil {
		logger.Errorf("failed ClearCart: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка очистки корзины")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Корзина очищена"})
}

// HandlerCheckout - POST /api/checkout; оформление заказа из корзины
func HandlerCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCheckout")
	defer logger.Info("End HandlerCheckout")

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный запрос")
		return
	}

	db, err := openDB()
	if err != nil {
		logger.Errorf("failed sqlx.Connect: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer closeDB(db)

	service := checkout.NewService(db, moysklad.GetAPI(), nil)
	order, err := service.Confirm(req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCartEmpty):
			writeError(w, http.StatusBadRequest, "Корзина пуста")
		case errors.Is(err, checkout.ErrNoContactInfo):
			writeError(w, http.StatusBadRequest, "Сначала укажите телефон и адрес")
		default:
			logger.Errorf("failed Confirm: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount,
		"status":       order.Status,
	})
}

// HandlerRefreshProducts - POST /api/refresh-products
func HandlerRefreshProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerRefreshProducts")
	defer logger.Info("End HandlerRefreshProducts")

	catalog.GetProductCache().ForceRefresh()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Кэш товаров помечен для обновления",
	})
}

// HandlerProxyImage - GET /proxy/image/:id; изображение запрашивается у
// МойСклад с авторизацией на каждый запрос
func HandlerProxyImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerProxyImage")
	defer logger.Info("End HandlerProxyImage")

	imageID := ps.ByName("id")

	data, contentType, err := moysklad.GetAPI().ImageDownload(imageID)
	if err != nil {
		logger.Errorf("ошибка прокси изображения %s: %v", imageID, err)
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if _, err := w.Write(data); err != nil {
		logger.Errorf("failed to send image, error: %v", err)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func queryInt(r *http.Request, key string, def int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
