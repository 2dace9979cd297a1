package moysklad

import (
	"ShopWithMoysklad/internal/moysklad/models"
	optionsMS "ShopWithMoysklad/internal/moysklad/options"
	"ShopWithMoysklad/pkg/logging"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const PAGE_LIMIT_PRODUCT = 2000
const PAGE_LIMIT_VARIANT = 1000
const PAGE_LIMIT_STOCK = 1000
const PAGE_LIMIT_FOLDER = 1000

// MOYSKLADAPI - клиент REST API МойСклад (remap 1.2)
type MOYSKLADAPI interface {
	ProductList() ([]models.Product, error)
	VariantList() ([]models.Variant, error)
	StockAll() ([]models.StockRow, error)
	ProductFolderList() ([]models.ProductFolder, error)

	ImageList(href string) ([]models.Image, error)
	ImageDownload(imageID string) ([]byte, string, error)

	CustomerOrderAdd(order *models.CustomerOrder) (*models.CustomerOrderResult, error)
}

var moyskladGlobal *moysklad

type moysklad struct {
	url    string
	token  string
	client *resty.Client
}

func NewAPI(url, token string) MOYSKLADAPI {
	m := new(moysklad)
	m.url = url
	m.token = token
	m.client = resty.New().
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", token)).
		SetHeader("Accept", "application/json;charset=utf-8").
		SetHeader("Accept-Encoding", "gzip")
	moyskladGlobal = m
	return moyskladGlobal
}

func GetAPI() MOYSKLADAPI {
	return moyskladGlobal
}

func (m *moysklad) get(endpoint string, opts ...optionsMS.Option) ([]byte, error) {
	logger := logging.GetLogger()

	req := m.client.R()
	Option := new(optionsMS.OptionStruct)
	for _, opt := range opts {
		opt(Option)
		req.SetQueryParam(Option.Key, Option.Value)
	}

	url := fmt.Sprintf("%s/%s", m.url, endpoint)
	logger.Debugf("Request: %s", url)

	resp, err := req.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при отправке запроса в API МойСклад, endpoint:%s", endpoint)
	}

	if resp.StatusCode() != http.StatusOK {
		logger.Debugf("Response: %s", resp.Body())
		var ErrorMoysklad models.ErrorMoysklad
		if err := json.Unmarshal(resp.Body(), &ErrorMoysklad); err != nil {
			return nil, errors.Errorf("API МойСклад вернул статус %d, endpoint:%s", resp.StatusCode(), endpoint)
		}
		return nil, errors.Wrapf(&ErrorMoysklad, "API МойСклад вернул статус %d, endpoint:%s", resp.StatusCode(), endpoint)
	}

	return resp.Body(), nil
}

func (m *moysklad) ProductList() ([]models.Product, error) {
	logger := logging.GetLogger()
	logger.Println("ProductList:>Start")
	defer logger.Println("ProductList:>End")

	body, err := m.get("entity/product", optionsMS.Limit(PAGE_LIMIT_PRODUCT))
	if err != nil {
		return nil, err
	}

	var rows models.ProductRows
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "ошибка при json.Unmarshal ответа entity/product")
	}

	logger.Infof("Получено товаров из МойСклад: %d", len(rows.Rows))
	return rows.Rows, nil
}

// VariantList постранично выгружает все модификации с раскрытым родителем.
// Пейджинг останавливается на неполной странице.
func (m *moysklad) VariantList() ([]models.Variant, error) {
	logger := logging.GetLogger()
	logger.Println("VariantList:>Start")
	defer logger.Println("VariantList:>End")

	var all []models.Variant
	offset := 0

	for {
		body, err := m.get("entity/variant",
			optionsMS.Limit(PAGE_LIMIT_VARIANT),
			optionsMS.Offset(offset),
			optionsMS.Expand("product"))
		if err != nil {
			return nil, err
		}

		var rows models.VariantRows
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, errors.Wrap(err, "ошибка при json.Unmarshal ответа entity/variant")
		}

		if len(rows.Rows) == 0 {
			break
		}

		all = append(all, rows.Rows...)
		logger.Debugf("Получено модификаций на странице (offset=%d): %d", offset, len(rows.Rows))

		if len(rows.Rows) < PAGE_LIMIT_VARIANT {
			break
		}
		offset += PAGE_LIMIT_VARIANT
	}

	logger.Infof("Всего получено модификаций: %d", len(all))
	return all, nil
}

// StockAll выгружает отчет об остатках /report/stock/all, та же политика пейджинга
func (m *moysklad) StockAll() ([]models.StockRow, error) {
	logger := logging.GetLogger()
	logger.Println("StockAll:>Start")
	defer logger.Println("StockAll:>End")

	var all []models.StockRow
	offset := 0

	for {
		body, err := m.get("report/stock/all",
			optionsMS.Limit(PAGE_LIMIT_STOCK),
			optionsMS.Offset(offset))
		if err != nil {
			return nil, err
		}

		var rows models.StockRows
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, errors.Wrap(err, "ошибка при json.Unmarshal ответа report/stock/all")
		}

		if len(rows.Rows) == 0 {
			break
		}

		all = append(all, rows.Rows...)
		logger.Debugf("Получено остатков на странице (offset=%d): %d", offset, len(rows.Rows))

		if len(rows.Rows) < PAGE_LIMIT_STOCK {
			break
		}
		offset += PAGE_LIMIT_STOCK
	}

	logger.Infof("Всего получено остатков: %d", len(all))
	return all, nil
}

func (m *moysklad) ProductFolderList() ([]models.ProductFolder, error) {
	logger := logging.GetLogger()
	logger.Println("ProductFolderList:>Start")
	defer logger.Println("ProductFolderList:>End")

	body, err := m.get("entity/productfolder", optionsMS.Limit(PAGE_LIMIT_FOLDER), optionsMS.Offset(0))
	if err != nil {
		return nil, err
	}

	var rows models.ProductFolderRows
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "ошибка при json.Unmarshal ответа entity/productfolder")
	}

	logger.Infof("Получено категорий из МойСклад: %d", len(rows.Rows))
	return rows.Rows, nil
}

// ImageList запрашивает список изображений товара по абсолютному href из images.meta
func (m *moysklad) ImageList(href string) ([]models.Image, error) {
	logger := logging.GetLogger()
	logger.Println("ImageList:>Start")
	defer logger.Println("ImageList:>End")

	resp, err := m.client.R().Get(href)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка при запросе изображений, href:%s", href)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Errorf("API МойСклад вернул статус %d при запросе изображений, href:%s", resp.StatusCode(), href)
	}

	var rows models.ImageRows
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, errors.Wrap(err, "ошибка при json.Unmarshal списка изображений")
	}

	return rows.Rows, nil
}

// ImageDownload загружает содержимое изображения с авторизацией; возвращает
// данные и content-type для проксирования
func (m *moysklad) ImageDownload(imageID string) ([]byte, string, error) {
	logger := logging.GetLogger()
	logger.Println("ImageDownload:>Start")
	defer logger.Println("ImageDownload:>End")

	url := fmt.Sprintf("%s/download/%s", m.url, imageID)

	resp, err := m.client.R().Get(url)
	if err != nil {
		return nil, "", errors.Wrapf(err, "ошибка при загрузке изображения %s", imageID)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, "", errors.Errorf("API МойСклад вернул статус %d при загрузке изображения %s", resp.StatusCode(), imageID)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	logger.Debugf("Изображение %s загружено, %s байт", imageID, strconv.Itoa(len(resp.Body())))
	return resp.Body(), contentType, nil
}

// CustomerOrderAdd создает заказ покупателя в МойСклад
func (m *moysklad) CustomerOrderAdd(order *models.CustomerOrder) (*models.CustomerOrderResult, error) {
	logger := logging.GetLogger()
	logger.Println("CustomerOrderAdd:>Start")
	defer logger.Println("CustomerOrderAdd:>End")

	url := fmt.Sprintf("%s/entity/customerorder", m.url)

	resp, err := m.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(order).
		Post(url)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка при отправке заказа в API МойСклад")
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		logger.Debugf("Response: %s", resp.Body())
		var ErrorMoysklad models.ErrorMoysklad
		if err := json.Unmarshal(resp.Body(), &ErrorMoysklad); err != nil {
			return nil, errors.Errorf("API МойСклад вернул статус %d при создании заказа", resp.StatusCode())
		}
		return nil, errors.Wrapf(&ErrorMoysklad, "API МойСклад вернул статус %d при создании заказа", resp.StatusCode())
	}

	result := new(models.CustomerOrderResult)
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return nil, errors.Wrap(err, "ошибка при json.Unmarshal ответа entity/customerorder")
	}

	logger.Infof("Заказ создан в МойСклад, ID: %s", result.ID)
	return result, nil
}
