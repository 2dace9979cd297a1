package telegram

import (
	"ShopWithMoysklad/internal/catalog"
	"ShopWithMoysklad/internal/checkout"
	"ShopWithMoysklad/internal/config"
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const CATALOG_PAGE_SIZE = 5

const STATE_AWAIT_PHONE = "await_phone"
const STATE_AWAIT_ADDRESS = "await_address"

var botGlobal *tgbotapi.BotAPI

// состояния многошаговых диалогов (ввод телефона/адреса), по одному на чат
var userStates sync.Map

// BotStart запускает long polling; вызывается из main в отдельной горутине
func BotStart() {
	logger := logging.GetLogger()
	logger.Println("Start BotStart")
	defer logger.Println("End BotStart")

	cfg := config.GetConfig()
	if cfg.TELEGRAM.BotToken == "" {
		logger.Error("TELEGRAM.BotToken не настроен, бот не запущен")
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TELEGRAM.BotToken)
	if err != nil {
		logger.Errorf("failed tgbotapi.NewBotAPI, error: %v", err)
		return
	}
	bot.Debug = cfg.TELEGRAM.Debug == 1
	botGlobal = bot

	logger.Infof("Авторизован бот %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		logger.Errorf("failed bot.GetUpdatesChan, error: %v", err)
		return
	}

	for update := range updates {
		if update.CallbackQuery != nil {
			handleCallback(update.CallbackQuery)
			continue
		}
		if update.Message == nil {
			continue
		}
		if update.Message.IsCommand() && update.Message.Command() == "start" {
			handleStart(update.Message)
			continue
		}
		handleMessage(update.Message)
	}
}

func openDB() (*sqlx.DB, error) {
	cfg := config.GetConfig()
	db, err := sqlx.Connect("sqlite3", cfg.DBSQLITE.DB)
	if err != nil {
		return nil, errors.Wrap(err, "failed sqlx.Connect")
	}
	return db, nil
}

func handleStart(message *tgbotapi.Message) {
	logger := logging.GetLogger()
	logger.Info("Start handleStart")
	defer logger.Info("End handleStart")

	cfg := config.GetConfig()
	user := message.From

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		return
	}
	defer db.Close()

	err = database.AddUser(db, int64(user.ID), user.UserName, user.FirstName, user.LastName)
	if err != nil {
		logger.Errorf("failed database.AddUser: %v", err)
	}

	welcomeText := fmt.Sprintf(
		"🎉 Добро пожаловать в %s!\n\n%s\n\n🌐 Нажмите кнопку \"Открыть магазин\" для перехода в веб-каталог\n📱 Или используйте кнопки меню для быстрого доступа\n\nВыберите действие:",
		cfg.SHOP.Name, cfg.SHOP.Description)

	msg := tgbotapi.NewMessage(message.Chat.ID, welcomeText)
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := botGlobal.Send(msg); err != nil {
		logger.Errorf("failed bot.Send: %v", err)
	}
}

// handleMessage принимает телефон/адрес, если у чата есть ожидающее состояние
func handleMessage(message *tgbotapi.Message) {
	logger := logging.GetLogger()

	stateRaw, ok := userStates.Load(message.Chat.ID)
	if !ok {
		return
	}
	state := stateRaw.(string)
	userStates.Delete(message.Chat.ID)

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		return
	}
	defer db.Close()

	userID := int64(message.From.ID)
	user, err := database.GetUserInfo(db, userID)
	if err != nil {
		logger.Errorf("failed database.GetUserInfo: %v", err)
		return
	}

	var phone, address string
	if user != nil {
		phone = user.Phone.String
		address = user.Address.String
	}

	switch state {
	case STATE_AWAIT_PHONE:
		phone = strings.TrimSpace(message.Text)
	case STATE_AWAIT_ADDRESS:
		address = strings.TrimSpace(message.Text)
	default:
		return
	}

	if err := database.UpdateUserContact(db, userID, phone, address); err != nil {
		logger.Errorf("failed database.UpdateUserContact: %v", err)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "✅ Контактные данные сохранены")
	msg.ReplyMarkup = checkoutKeyboard()
	if _, err := botGlobal.Send(msg); err != nil {
		logger.Errorf("failed bot.Send: %v", err)
	}
}

// handleCallback - единый диспетчер callback-запросов по строковым префиксам
func handleCallback(query *tgbotapi.CallbackQuery) {
	logger := logging.GetLogger()
	logger.Info("Start handleCallback")
	defer logger.Info("End handleCallback")

	data := query.Data
	logger.Debugf("callback data: %s", data)

	// каждая ветка отвечает на callback ровно один раз: либо пустым
	// подтверждением здесь, либо всплывающим текстом внутри обработчика
	switch {
	case data == "main_menu":
		answer(query, "")
		showMainMenu(query)
	case data == "catalog":
		answer(query, "")
		showCatalog(query, 1)
	case data == "cart":
		answer(query, "")
		showCart(query)
	case data == "orders":
		answer(query, "")
		showOrders(query)
	case data == "about":
		answer(query, "")
		showAbout(query)
	case data == "support":
		answer(query, "")
		showSupport(query)
	case data == "checkout":
		showCheckout(query)
	case data == "confirm_order":
		confirmOrder(query)
	case data == "clear_cart":
		clearCart(query)
	case data == "set_phone":
		answer(query, "")
		userStates.Store(query.Message.Chat.ID, STATE_AWAIT_PHONE)
		sendText(query, "📱 Отправьте номер телефона сообщением")
	case data == "set_address":
		answer(query, "")
		userStates.Store(query.Message.Chat.ID, STATE_AWAIT_ADDRESS)
		sendText(query, "📍 Отправьте адрес доставки сообщением")
	case strings.HasPrefix(data, "product_"):
		answer(query, "")
		showProduct(query, strings.TrimPrefix(data, "product_"))
	case strings.HasPrefix(data, "pick_"):
		answer(query, "")
		showQuantityPicker(query, strings.TrimPrefix(data, "pick_"))
	case strings.HasPrefix(data, "add_"):
		addToCart(query, strings.TrimPrefix(data, "add_"), 1)
	case strings.HasPrefix(data, "qty_"):
		// qty_<productID>_<n>; ID МойСклад не содержит подчеркиваний
		rest := strings.TrimPrefix(data, "qty_")
		idx := strings.LastIndex(rest, "_")
		if idx < 0 {
			answer(query, "")
			return
		}
		quantity, err := strconv.Atoi(rest[idx+1:])
		if err != nil {
			logger.Errorf("некорректный callback qty: %s", data)
			answer(query, "")
			return
		}
		addToCart(query, rest[:idx], quantity)
	case strings.HasPrefix(data, "page_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "page_"))
		if err != nil {
			logger.Errorf("некорректный callback page: %s", data)
			answer(query, "")
			return
		}
		answer(query, "")
		showCatalog(query, page)
	default:
		answer(query, "")
	}
}

func answer(query *tgbotapi.CallbackQuery, text string) {
	logger := logging.GetLogger()
	if _, err := botGlobal.AnswerCallbackQuery(tgbotapi.NewCallback(query.ID, text)); err != nil {
		logger.Errorf("failed AnswerCallbackQuery: %v", err)
	}
}

func edit(query *tgbotapi.CallbackQuery, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	logger := logging.GetLogger()
	msg := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	msg.ReplyMarkup = &keyboard
	if _, err := botGlobal.Send(msg); err != nil {
		logger.Errorf("failed bot.Send: %v", err)
	}
}

func sendText(query *tgbotapi.CallbackQuery, text string) {
	logger := logging.GetLogger()
	msg := tgbotapi.NewMessage(query.Message.Chat.ID, text)
	if _, err := botGlobal.Send(msg); err != nil {
		logger.Errorf("failed bot.Send: %v", err)
	}
}

func showMainMenu(query *tgbotapi.CallbackQuery) {
	cfg := config.GetConfig()
	edit(query, fmt.Sprintf("🏠 Главное меню %s", cfg.SHOP.Name), mainMenuKeyboard())
}

func showCatalog(query *tgbotapi.CallbackQuery, page int) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	all, err := catalog.GetProductCache().All()
	if err != nil {
		logger.Errorf("каталог недоступен: %v", err)
		edit(query, "😔 К сожалению, товары временно недоступны", mainMenuKeyboard())
		return
	}
	if len(all) == 0 {
		edit(query, "😔 К сожалению, товары временно недоступны", mainMenuKeyboard())
		return
	}

	totalPages := (len(all) + CATALOG_PAGE_SIZE - 1) / CATALOG_PAGE_SIZE
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * CATALOG_PAGE_SIZE
	end := start + CATALOG_PAGE_SIZE
	if end > len(all) {
		end = len(all)
	}
	products := all[start:end]

	text := "🛍️ Каталог товаров:\n\n"
	for i := range products {
		text += fmt.Sprintf("%d. %s\n   💰 %d %s\n   📦 В наличии: %d шт.\n\n",
			start+i+1, products[i].Name, products[i].Price, cfg.SHOP.Currency, products[i].Stock)
	}
	text += "Выберите товар для просмотра:"

	edit(query, text, catalogKeyboard(products, page, totalPages))
}

func showProduct(query *tgbotapi.CallbackQuery, productID string) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	product, err := catalog.GetProductCache().FindByOriginalID(productID)
	if err != nil {
		logger.Errorf("товар не найден: %v", err)
		edit(query, "😔 Товар не найден", mainMenuKeyboard())
		return
	}

	text := fmt.Sprintf("🛍️ %s\n\n📝 %s\n\n💰 Цена: %d %s\n📦 В наличии: %d шт.",
		product.Name, product.Description, product.Price, cfg.SHOP.Currency, product.Stock)
	if len(product.AvailableSizes) > 0 {
		text += "\n📏 Размеры: " + strings.Join(product.AvailableSizes, ", ")
	}
	if len(product.AvailableColors) > 0 {
		text += "\n🎨 Цвета: " + strings.Join(product.AvailableColors, ", ")
	}

	edit(query, text, productKeyboard(productID))
}

func showQuantityPicker(query *tgbotapi.CallbackQuery, productID string) {
	edit(query, "🔢 Выберите количество:", quantityKeyboard(productID))
}

func addToCart(query *tgbotapi.CallbackQuery, productID string, quantity int) {
	logger := logging.GetLogger()

	product, err := catalog.GetProductCache().FindByOriginalID(productID)
	if err != nil {
		answer(query, "Товар не найден!")
		return
	}

	if product.Stock < quantity {
		answer(query, fmt.Sprintf("Недостаточно товара на складе! Доступно: %d", product.Stock))
		return
	}

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		answer(query, "Не удалось добавить товар")
		return
	}
	defer db.Close()

	item := &database.CartItem{
		UserID:      int64(query.From.ID),
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
	}
	if err := database.AddToCart(db, item); err != nil {
		logger.Errorf("failed database.AddToCart: %v", err)
		answer(query, "Не удалось добавить товар")
		return
	}

	answer(query, fmt.Sprintf("✅ %s добавлен в корзину!", product.Name))
	showProduct(query, productID)
}

func showCart(query *tgbotapi.CallbackQuery) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		return
	}
	defer db.Close()

	cartItems, err := database.GetCart(db, int64(query.From.ID))
	if err != nil {
		logger.Errorf("failed database.GetCart: %v", err)
		return
	}

	if len(cartItems) == 0 {
		edit(query, "🛒 Ваша корзина пуста", mainMenuKeyboard())
		return
	}

	text := "🛒 Ваша корзина:\n\n"
	total := 0
	for i := range cartItems {
		item := &cartItems[i]
		itemTotal := item.Price * item.Quantity
		total += itemTotal
		text += fmt.Sprintf("📦 %s\n   Количество: %d\n   Цена: %d %s\n   Сумма: %d %s\n\n",
			item.ProductName, item.Quantity, item.Price, cfg.SHOP.Currency, itemTotal, cfg.SHOP.Currency)
	}
	text += fmt.Sprintf("💰 Итого: %d %s", total, cfg.SHOP.Currency)

	edit(query, text, cartKeyboard())
}

func showCheckout(query *tgbotapi.CallbackQuery) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		answer(query, "Произошла ошибка")
		return
	}
	defer db.Close()

	cartItems, err := database.GetCart(db, int64(query.From.ID))
	if err != nil {
		logger.Errorf("failed database.GetCart: %v", err)
		answer(query, "Произошла ошибка")
		return
	}
	if len(cartItems) == 0 {
		answer(query, "Корзина пуста!")
		return
	}

	answer(query, "")

	total := 0
	text := "💳 Оформление заказа\n\n📋 Товары в заказе:\n"
	for i := range cartItems {
		item := &cartItems[i]
		itemTotal := item.Price * item.Quantity
		total += itemTotal
		text += fmt.Sprintf("• %s x%d = %d %s\n", item.ProductName, item.Quantity, itemTotal, cfg.SHOP.Currency)
	}
	text += fmt.Sprintf("\n💰 Итого: %d %s\n\nДля оформления заказа укажите контактную информацию:", total, cfg.SHOP.Currency)

	edit(query, text, checkoutKeyboard())
}

func confirmOrder(query *tgbotapi.CallbackQuery) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		answer(query, "Не удалось оформить заказ")
		return
	}
	defer db.Close()

	service := checkout.NewService(db, moysklad.GetAPI(), nil)
	order, err := service.Confirm(int64(query.From.ID))
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCartEmpty):
			answer(query, "Корзина пуста!")
		case errors.Is(err, checkout.ErrNoContactInfo):
			answer(query, "Сначала укажите телефон и адрес!")
		default:
			logger.Errorf("failed checkout.Confirm: %v", err)
			answer(query, "Не удалось оформить заказ")
		}
		return
	}

	answer(query, "")

	text := fmt.Sprintf(
		"✅ Заказ успешно оформлен!\n\n📋 Номер заказа: %s\n💰 Сумма: %d %s\n📱 Телефон: %s\n📍 Адрес: %s\n\nМы свяжемся с вами для подтверждения заказа!",
		order.OrderNumber, order.TotalAmount, cfg.SHOP.Currency, order.Phone, order.Address)

	edit(query, text, mainMenuKeyboard())
}

func clearCart(query *tgbotapi.CallbackQuery) {
	logger := logging.GetLogger()

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		answer(query, "Произошла ошибка")
		return
	}
	defer db.Close()

	if err := database.ClearCart(db, int64(query.From.ID)); err != nil {
		logger.Errorf("failed database.ClearCart: %v", err)
		answer(query, "Произошла ошибка")
		return
	}

	answer(query, "Корзина очищена!")
	edit(query, "🛒 Ваша корзина пуста", mainMenuKeyboard())
}

var orderStatusEmoji = map[string]string{
	database.ORDER_STATUS_NEW:        "🆕",
	database.ORDER_STATUS_CONFIRMED:  "✅",
	database.ORDER_STATUS_SYNCED:     "🔄",
	database.ORDER_STATUS_PROCESSING: "⚙️",
	database.ORDER_STATUS_SHIPPED:    "🚚",
	database.ORDER_STATUS_DELIVERED:  "📦",
	database.ORDER_STATUS_CANCELLED:  "❌",
}

func showOrders(query *tgbotapi.CallbackQuery) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	db, err := openDB()
	if err != nil {
		logger.Error(err)
		return
	}
	defer db.Close()

	orders, err := database.GetUserOrders(db, int64(query.From.ID))
	if err != nil {
		logger.Errorf("failed database.GetUserOrders: %v", err)
		return
	}

	if len(orders) == 0 {
		edit(query, "📋 У вас пока нет заказов", mainMenuKeyboard())
		return
	}

	text := "📋 Ваши заказы:\n\n"
	for i := range orders {
		order := &orders[i]
		emoji, ok := orderStatusEmoji[order.Status]
		if !ok {
			emoji = "❓"
		}
		text += fmt.Sprintf("%s Заказ %s\n   Статус: %s\n   Сумма: %d %s\n   Дата: %s\n\n",
			emoji, order.OrderNumber, order.Status, order.TotalAmount, cfg.SHOP.Currency,
			order.CreatedAt.Format("02.01.2006 15:04"))
	}

	edit(query, text, mainMenuKeyboard())
}

func showAbout(query *tgbotapi.CallbackQuery) {
	cfg := config.GetConfig()
	text := fmt.Sprintf(
		"ℹ️ О магазине\n\n%s\n\n%s\n\n✨ Особенности:\n• Широкий ассортимент товаров\n• Быстрая доставка\n• Качественное обслуживание\n• Интеграция с системой учета",
		cfg.SHOP.Name, cfg.SHOP.Description)
	edit(query, text, mainMenuKeyboard())
}

func showSupport(query *tgbotapi.CallbackQuery) {
	text := "📞 Служба поддержки\n\nНаши специалисты готовы помочь вам с любыми вопросами!\n\n🕐 Время работы:\n• Пн-Пт: 9:00 - 18:00\n• Сб: 10:00 - 16:00\n• Вс: выходной"
	edit(query, text, supportKeyboard())
}
