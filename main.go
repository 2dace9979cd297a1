package main

import (
	"ShopWithMoysklad/internal/catalog"
	"ShopWithMoysklad/internal/config"
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/handlers/httphandler"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/internal/telegram"
	"ShopWithMoysklad/internal/version"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

func main() {
	logger := logging.GetLogger()
	logger.Info("Start Main")
	v := version.GetVersion()
	logger.Infof("Version %s", v.String())
	defer logger.Info("End Main")

	cfg := config.GetConfig()

	go telegram.BotStart()

	router := httprouter.New()

	router.GET("/", httphandler.HandlerCatalogPage)
	router.GET("/api/products", httphandler.HandlerProducts)
	router.GET("/api/categories", httphandler.HandlerCategories)
	router.GET("/api/categories-with-products", httphandler.HandlerCategoriesWithProducts)
	router.GET("/api/product/:id", httphandler.HandlerProduct)
	router.GET("/api/cart/:user", httphandler.HandlerCart)
	router.POST("/api/add-to-cart", httphandler.HandlerAddToCart)
	router.POST("/api/update-cart", httphandler.HandlerUpdateCart)
	router.POST("/api/remove-from-cart", httphandler.HandlerRemoveFromCart)
	router.POST("/api/clear-cart", httphandler.HandlerClearCart)
	router.POST("/api/checkout", httphandler.HandlerCheckout)
	router.POST("/api/refresh-products", httphandler.HandlerRefreshProducts)
	router.GET("/proxy/image/:id", httphandler.HandlerProxyImage)

	logger.Infof("Веб-сервер запущен на порту %d", cfg.SERVICE.PORT)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.SERVICE.PORT), router))
}

func init() {
	logger := logging.GetLogger()

	logger.Println("Start main init...")
	defer logger.Println("End main init.")
	cfg := config.GetConfig()

	if cfg.LOG.Debug == 1 {
		logger.SetLevelDebug()
	}

	api := moysklad.NewAPI(cfg.MOYSKLAD.URL, cfg.MOYSKLAD.Token)

	images := catalog.NewImageResolver(api, time.Duration(cfg.CACHE.ImageTTL)*time.Second, nil)
	catalog.NewProductCache(api, images, time.Duration(cfg.CACHE.ProductTTL)*time.Second, nil)

	if database.Exists(cfg.DBSQLITE.DB) != true {
		logger.Info(cfg.DBSQLITE.DB, " not exist")
		err := database.CreateDB(cfg.DBSQLITE.DB)
		if err != nil {
			logger.Fatalf("%s, %v", cfg.DBSQLITE.DB, err)
		}
	} else {
		logger.Info(cfg.DBSQLITE.DB, " exist")
	}
}
