package faq

import "github.com/tbourn/go-assistant-backend/internal/prompts"

// minScore keeps one shared word in a long entry from counting as a match.
const minScore = 0.08

var builtin = map[string][]Entry{
	"ru": {
		{"На какие вопросы отвечает бот?", "Только о ПК, программах, обслуживании техники и мобильных ОС."},
		{"Сколько контекста хранит бот?", "Ассистент видит последние сообщения текущего чата. Очистить историю: /clear."},
		{"Что происходит при смене модели?", "История основного чата автоматически очищается, контекст сбрасывается."},
		{"Как сменить модель?", "Список моделей: /models. Выбор: /model и идентификатор модели."},
		{"Как сменить язык?", "Команда /lang с кодом языка, например /lang en."},
		{"Как связаться с поддержкой?", "Отправьте /support и опишите проблему одним сообщением. Админы получат тикет и ответят здесь."},
		{"Как узнать баланс токенов?", "Команда /balance."},
	},
	"en": {
		{"What questions does the bot answer?", "Only questions about PCs, software, maintenance and mobile OS."},
		{"How much context does the bot keep?", "The assistant sees the latest messages of the current chat. Clear the history with /clear."},
		{"What happens when I change the model?", "The main chat history is cleared automatically and the context is reset."},
		{"How do I change the model?", "List models with /models. Select one with /model followed by its id."},
		{"How do I change the language?", "Send /lang with a language code, e.g. /lang ru."},
		{"How do I contact support?", "Send /support and describe the problem in one message. Admins get a ticket and reply here."},
		{"How do I check my token balance?", "Send /balance."},
	},
}

var stopwords = []string{
	// ru
	"и", "в", "во", "на", "с", "со", "по", "о", "об", "а", "но", "ли", "что", "как", "это", "мне", "мой", "я", "у", "к", "же", "бот", "бота",
	// en
	"the", "a", "an", "and", "or", "of", "to", "in", "on", "is", "are", "do", "does", "i", "my", "me", "how", "what", "bot", "with",
}

// Book holds one index per supported language.
type Book struct {
	byLang map[string]*index
}

// NewBook indexes the built-in entries. extra entries, typically loaded with
// LoadFile, are added to every language.
func NewBook(extra []Entry) *Book {
	b := &Book{byLang: make(map[string]*index, len(builtin))}
	for lang, entries := range builtin {
		all := make([]Entry, 0, len(entries)+len(extra))
		all = append(all, entries...)
		all = append(all, extra...)
		b.byLang[lang] = newIndex(all, WithStopwords(stopwords), WithMinScore(minScore))
	}
	return b
}

func (b *Book) index(lang string) *index {
	if b == nil {
		return nil
	}
	return b.byLang[prompts.Resolve(lang)]
}

// Entries returns every entry for lang in display order.
func (b *Book) Entries(lang string) []Entry {
	idx := b.index(lang)
	if idx == nil {
		return nil
	}
	return idx.entries()
}

// Search returns up to k entries for lang ranked against query.
func (b *Book) Search(lang, query string, k int) []Match {
	idx := b.index(lang)
	if idx == nil {
		return nil
	}
	return idx.topK(query, k)
}
