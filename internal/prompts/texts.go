package prompts

import "fmt"

// Key names a user-facing text.
type Key string

const (
	Welcome             Key = "welcome"
	Thinking            Key = "thinking"
	EmptyAnswer         Key = "empty_answer"
	ConfigError         Key = "config_error"
	UpstreamError       Key = "upstream_error" // %d status code
	NetworkError        Key = "network_error"  // %s cause
	InvalidQuery        Key = "invalid_query"
	ChatStarted         Key = "chat_started"
	ChatStopped         Key = "chat_stopped"
	NotInChat           Key = "not_in_chat"
	HistoryCleared      Key = "history_cleared"
	ModelsHeader        Key = "models_header"
	ModelChanged        Key = "model_changed" // %s label
	UnknownModel        Key = "unknown_model"
	LanguageChanged     Key = "language_changed"
	UnsupportedLanguage Key = "unsupported_language" // %s supported codes
	TicketPrompt        Key = "ticket_prompt"
	TicketCreated       Key = "ticket_created" // %d ticket id
	TicketFailed        Key = "ticket_failed"
	SupportReply        Key = "support_reply" // %d ticket id, %s text
	Balance             Key = "balance"       // %d tokens
	FeedbackPositive    Key = "feedback_positive"
	FeedbackNegative    Key = "feedback_negative"
	Back                Key = "back"
	StopChatButton      Key = "stop_chat_button"
	FAQTitle            Key = "faq_title"
	FAQNoMatch          Key = "faq_no_match"

	// Admin side of the support desk.
	TicketNotice Key = "ticket_notice" // %d ticket id, %s user, %s message
	ReplyButton  Key = "reply_button"
	ReplyPrompt  Key = "reply_prompt" // %d ticket id
	ReplySent    Key = "reply_sent"   // %d ticket id
	ReplyFailed  Key = "reply_failed" // %d ticket id
	ReplyUsage   Key = "reply_usage"
	NotAdmin     Key = "not_admin"
)

var texts = map[string]map[Key]string{
	"ru": {
		Welcome:             "Добро пожаловать в ИЛ24 — ваш помощник по технике. Команды: /chat, /models, /model <id>, /lang <код>, /support, /faq, /balance, /clear.",
		Thinking:            "⏳ Обрабатываю ваш запрос…",
		EmptyAnswer:         "(ИИ вернул пустой ответ)",
		ConfigError:         "API ИИ не настроено. Обратитесь к администратору.",
		UpstreamError:       "Ошибка API (код %d). Попробуйте позже.",
		NetworkError:        "Сбой сетевого соединения: %s",
		InvalidQuery:        "Извините — я отвечаю только на вопросы о ПК, ПО, обслуживании и мобильных ОС. ❌",
		ChatStarted:         "Чат запущен — задавайте вопрос🤖",
		ChatStopped:         "Чат завершен. Возвращайтесь в главное меню.",
		NotInChat:           "Чтобы задать вопрос, сначала начните чат: /chat",
		HistoryCleared:      "История очищена. 🗑️",
		ModelsHeader:        "Доступные модели (текущая помечена ✅):",
		ModelChanged:        "Модель изменена: %s. История очищена.",
		UnknownModel:        "Неизвестная модель. Список: /models",
		LanguageChanged:     "Язык успешно изменён. ✅",
		UnsupportedLanguage: "Этот язык не поддерживается. Доступны: %s",
		TicketPrompt:        "Опишите вашу проблему подробно и отправьте сообщение — оно станет тикетом. После отправки админы получат уведомление и смогут ответить вам. ✉️",
		TicketCreated:       "Заявка отправлена! Номер: #%d. Админы оповещены. ✅",
		TicketFailed:        "Не удалось сохранить заявку. Попробуйте позже.",
		SupportReply:        "Ответ поддержки по тикету #%d:\n\n%s",
		Balance:             "Ваш баланс: %d токенов.",
		FeedbackPositive:    "Спасибо за отзыв! Рад был помочь. 😊",
		FeedbackNegative:    "Жаль, что ответ не помог. Попробуйте переформулировать вопрос с деталями (модель, ОС, текст ошибки) или свяжитесь с поддержкой: /support",
		Back:                "Главное меню.",
		StopChatButton:      "⏹ Остановить чат",
		TicketNotice:        "📩 Новый тикет #%d\nПользователь: @%s\n\n%s",
		ReplyButton:         "Ответить на тикет",
		ReplyPrompt:         "Вы отвечаете на тикет #%d. Отправьте текст ответа следующим сообщением.",
		ReplySent:           "Ответ по тикету #%d отправлен, тикет закрыт.",
		ReplyFailed:         "Не удалось ответить на тикет #%d.",
		ReplyUsage:          "Использование: /reply <номер> <текст>",
		NotAdmin:            "Недостаточно прав.",
		FAQTitle:            "❓ Часто задаваемые вопросы",
		FAQNoMatch:          "Ответа в FAQ не нашлось. Задайте вопрос в /chat или напишите в /support.",
	},
	"en": {
		Welcome:             "Welcome to IL24, your tech assistant. Commands: /chat, /models, /model <id>, /lang <code>, /support, /faq, /balance, /clear.",
		Thinking:            "⏳ Processing your request…",
		EmptyAnswer:         "(AI returned an empty response)",
		ConfigError:         "AI API is not configured. Contact the administrator.",
		UpstreamError:       "API error (code %d). Try later.",
		NetworkError:        "Network failure: %s",
		InvalidQuery:        "Sorry, I only answer questions about PCs, software, maintenance and mobile OS. ❌",
		ChatStarted:         "Chat started, ask your question🤖",
		ChatStopped:         "Chat stopped. Returning to main menu. ↩️",
		NotInChat:           "Start a chat first to ask a question: /chat",
		HistoryCleared:      "Conversation history cleared. 🗑️",
		ModelsHeader:        "Available models (current one marked ✅):",
		ModelChanged:        "Model changed: %s. History cleared.",
		UnknownModel:        "Unknown model. See /models",
		LanguageChanged:     "Language changed. ✅",
		UnsupportedLanguage: "This language is not supported. Available: %s",
		TicketPrompt:        "Describe your problem in detail and send the message. It will become a ticket. Admins will be notified.",
		TicketCreated:       "Ticket created! Number: #%d. Admins notified. ✅",
		TicketFailed:        "Could not save your ticket. Please try again later.",
		SupportReply:        "Support reply to ticket #%d:\n\n%s",
		Balance:             "Your balance: %d tokens.",
		FeedbackPositive:    "Thank you for the feedback! Glad I could help. 😊",
		FeedbackNegative:    "Sorry the answer wasn't helpful. Try rephrasing with more details (model, OS, error text) or contact support: /support",
		Back:                "Main menu.",
		StopChatButton:      "⏹ Stop chat",
		TicketNotice:        "📩 New ticket #%d\nUser: @%s\n\n%s",
		ReplyButton:         "Reply to ticket",
		ReplyPrompt:         "You are replying to ticket #%d. Send the answer as your next message.",
		ReplySent:           "Reply to ticket #%d sent, ticket closed.",
		ReplyFailed:         "Could not reply to ticket #%d.",
		ReplyUsage:          "Usage: /reply <number> <text>",
		NotAdmin:            "Not enough permissions.",
		FAQTitle:            "❓ Frequently asked questions",
		FAQNoMatch:          "No FAQ entry matches. Ask in /chat or write to /support.",
	},
}

// Text returns the text for key in lang. Unknown keys return the key itself.
func Text(lang string, key Key) string {
	if s, ok := texts[Resolve(lang)][key]; ok {
		return s
	}
	return string(key)
}

// Textf formats the text for key in lang with args.
func Textf(lang string, key Key, args ...any) string {
	return fmt.Sprintf(Text(lang, key), args...)
}
