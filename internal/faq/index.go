// Package faq answers frequently asked questions without calling a model.
// Entries are ranked by Jaccard similarity between the query token set and
// the entry's question and answer tokens: score = |Q ∩ E| / |Q ∪ E|.
//
// An index is immutable after construction and safe for concurrent use.
package faq

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Entry is one question with its answer.
type Entry struct {
	Question string `json:"question" example:"How do I change the language?"`
	Answer   string `json:"answer"   example:"Send /lang with a language code, e.g. /lang en."`
}

// Match is a ranked entry with its similarity score.
type Match struct {
	Entry
	Score float64 `json:"score" example:"0.42"`
}

// ----------------------------------------------------------------------------
// Options

// Option tunes index construction.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	minScore  float64
}

func defaultConfig() config {
	return config{}
}

// WithStopwords drops the given words from entry and query tokens.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMinScore discards matches scoring below s.
func WithMinScore(s float64) Option {
	return func(c *config) {
		if s >= 0 && s <= 1 {
			c.minScore = s
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	entry  Entry
	tokens map[string]struct{}
	tLen   int
	runes  int
}

type index struct {
	cfg  config
	docs []doc
}

func newIndex(entries []Entry, opts ...Option) *index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	docs := make([]doc, 0, len(entries))
	for _, e := range entries {
		e.Question = strings.TrimSpace(normalizeWhitespace(e.Question))
		e.Answer = strings.TrimSpace(normalizeWhitespace(e.Answer))
		if e.Question == "" || e.Answer == "" {
			continue
		}
		toks := tokenize(e.Question+" "+e.Answer, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{
			entry:  e,
			tokens: toks,
			tLen:   len(toks),
			runes:  utf8.RuneCountInString(e.Question) + utf8.RuneCountInString(e.Answer),
		})
	}
	return &index{cfg: cfg, docs: docs}
}

func (i *index) entries() []Entry {
	out := make([]Entry, len(i.docs))
	for n, d := range i.docs {
		out[n] = d.entry
	}
	return out
}

// topK returns up to k best-matching entries. Ties go to the shorter entry,
// then to the alphabetically first question.
func (i *index) topK(q string, k int) []Match {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		d     *doc
		score float64
	}
	buf := make([]scored, 0, min(k*4, len(i.docs)))
	for n := range i.docs {
		d := &i.docs[n]
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + d.tLen - over)
		if union <= 0 {
			continue
		}
		score := float64(over) / union
		if score <= 0 || score < i.cfg.minScore {
			continue
		}
		buf = append(buf, scored{d: d, score: score})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].d.runes != buf[b].d.runes {
			return buf[a].d.runes < buf[b].d.runes
		}
		return buf[a].d.entry.Question < buf[b].d.entry.Question
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Match, k)
	for n := 0; n < k; n++ {
		out[n] = Match{Entry: buf[n].d.entry, Score: buf[n].score}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
