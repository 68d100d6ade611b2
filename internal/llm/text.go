package llm

import (
	"regexp"
	"strings"
)

// HintMarkdownV2 is the parse mode for escaped chat-transport text.
const HintMarkdownV2 = "MarkdownV2"

var reasoningBlock = regexp.MustCompile(`(?is)<think>.*?</think>`)

// StripReasoning removes <think>…</think> blocks and surrounding space.
func StripReasoning(s string) string {
	return strings.TrimSpace(reasoningBlock.ReplaceAllString(s, ""))
}

// markdownV2 escapes every character Telegram reserves in MarkdownV2.
// The backslash goes first so it is not doubled by later pairs.
var markdownV2 = strings.NewReplacer(
	`\`, `\\`,
	`_`, `\_`, `*`, `\*`, `[`, `\[`, `]`, `\]`, `(`, `\(`, `)`, `\)`,
	`~`, `\~`, "`", "\\`", `>`, `\>`, `#`, `\#`, `+`, `\+`, `-`, `\-`,
	`=`, `\=`, `|`, `\|`, `{`, `\{`, `}`, `\}`, `.`, `\.`, `!`, `\!`,
)

// EscapeMarkdownV2 makes s safe to send with parse_mode=MarkdownV2.
func EscapeMarkdownV2(s string) string {
	return markdownV2.Replace(s)
}
