package config

import (
	"fmt"
	"gopkg.in/gcfg.v1"
	"io"
	"log"
	"os"
	"sync"
)

type (
	Config struct {
		MOYSKLAD struct {
			URL   string
			Token string
		}
		TELEGRAM struct {
			BotToken string
			Debug    int
		}
		SHOP struct {
			Name        string
			Description string
			Currency    string
			WebAppURL   string
		}
		LOG struct {
			Debug int
		}
		SERVICE struct {
			PORT int
		}
		DBSQLITE struct {
			DB string
		}
		CACHE struct {
			ProductTTL int // секунды, кеш списка товаров
			ImageTTL   int // секунды, кеш ссылок на изображения
		}
	}
)

var cfg Config
var once sync.Once

func GetConfig() *Config {
	once.Do(func() {
		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		file, err := os.OpenFile("logs/config.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
		}

		multiWriter := io.MultiWriter(file, os.Stdout)

		logger := log.New(multiWriter, "MAIN ", log.Ldate|log.Ltime|log.Lshortfile)

		logger.Print("Config:>Read application configurations")

		err = gcfg.ReadFileInto(&cfg, "./config/config.ini")
		if err != nil {
			logger.Fatalf("Config:>Failed to parse gcfg data: %s", err)
		} else {
			logger.Print("Config:>Config is read")
		}

		if cfg.MOYSKLAD.URL == "" {
			cfg.MOYSKLAD.URL = "https://api.moysklad.ru/api/remap/1.2"
		}
		if cfg.CACHE.ProductTTL == 0 {
			cfg.CACHE.ProductTTL = 300
		}
		if cfg.CACHE.ImageTTL == 0 {
			cfg.CACHE.ImageTTL = 3600
		}
	})

	return &cfg
}
