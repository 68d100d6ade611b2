// Package prompts holds the localized system instructions, refusal phrases
// and user-facing texts, plus language negotiation for user profiles.
package prompts

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the language assumed for unknown users.
const Default = "ru"

// BrevityDirective is appended to every built-in system instruction.
const BrevityDirective = "Provide a concise final answer (1-3 sentences). " +
	"If the question is outside allowed topics, output the refusal sentence exactly as instructed and nothing else."

var (
	supported = []language.Tag{language.Russian, language.English}
	codes     = []string{"ru", "en"}
	matcher   = language.NewMatcher(supported)
)

var refusals = map[string]string{
	"ru": "Извините, я могу отвечать только на вопросы о ПК, программном обеспечении, обслуживании, ОС, также на вопросы связанные с смартфонами, их ОС и ПО.",
	"en": "Sorry, I can only answer questions about PCs, software, maintenance, and operating systems, as well as questions related to smartphones, their OS and software",
}

var instructions = map[string]string{
	"ru": "Вы — технический ассистент ИЛ24. Вы ДОЛЖНЫ отвечать ТОЛЬКО на вопросы, напрямую связанные с персональными компьютерами (ПК), " +
		"операционными системами (Windows, macOS, Linux), программным обеспечением для ПК, обслуживанием железа, " +
		"а также мобильными операционными системами (Android, iOS) и их приложениями. " +
		"Если вопрос не относится к этим техническим темам (например, вопросы о жизни, еде, политике, общие советы и т.д.), " +
		"вы ДОЛЖНЫ ответить ровно следующую фразу и ничего больше: '" + refusals["ru"] + "'",
	"en": "You are the IL24 tech assistant. You MUST ONLY answer questions directly related to personal computers (PCs), " +
		"operating systems (Windows, macOS, Linux), PC software, hardware maintenance, " +
		"as well as mobile operating systems (Android, iOS) and their apps. " +
		"If a question is unrelated to these tech topics (e.g., questions about life, food, politics, general advice, etc.), " +
		"you MUST respond with exactly the following phrase and nothing else: '" + refusals["en"] + ".'",
}

// Languages returns the supported language codes in preference order.
func Languages() []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// Match maps a BCP 47 code or Accept-Language style value ("en-GB",
// "ru_RU", "EN") to a supported code. ok is false when nothing matches.
func Match(code string) (string, bool) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return codes[idx], true
}

// Resolve returns a supported code for lang, falling back to Default.
func Resolve(lang string) string {
	if _, ok := refusals[lang]; ok {
		return lang
	}
	if m, ok := Match(lang); ok {
		return m
	}
	return Default
}

// SystemInstruction returns the topic-restricting instruction for lang.
func SystemInstruction(lang string) string { return instructions[Resolve(lang)] }

// Refusal returns the canonical refusal sentence for lang.
func Refusal(lang string) string { return refusals[Resolve(lang)] }

// SystemMessage is the full built-in system message: the instruction,
// a blank line, then BrevityDirective.
func SystemMessage(lang string) string {
	return SystemInstruction(lang) + "\n\n" + BrevityDirective
}

// IsRefusal reports whether text carries the refusal sentence for lang.
func IsRefusal(lang, text string) bool {
	return strings.Contains(text, Refusal(lang))
}
