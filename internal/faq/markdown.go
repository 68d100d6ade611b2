package faq

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// LoadFile reads extra entries from a Markdown file. See ParseMarkdown.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMarkdown(f)
}

// ParseMarkdown extracts entries from two layouts:
//
//	Q: How do I reset the router?
//	A: Hold the reset button for ten seconds.
//
//	| Question | Answer |
//	|----------|--------|
//	| How do I reset the router? | Hold the reset button for ten seconds. |
//
// Lines following a Q: or A: line continue it until a blank line. Rows with
// fewer than two cells, separator rows and header rows are skipped.
func ParseMarkdown(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		out []Entry
		cur Entry
		// field is the part continuation lines extend: 'q', 'a' or 0.
		field byte
	)
	flush := func() {
		if strings.TrimSpace(cur.Question) != "" && strings.TrimSpace(cur.Answer) != "" {
			out = append(out, cur)
		}
		cur, field = Entry{}, 0
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			field = 0
		case strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|"):
			flush()
			if e, ok := tableRow(line); ok {
				out = append(out, e)
			}
		case hasPrefixFold(line, "Q:"):
			flush()
			cur.Question, field = strings.TrimSpace(line[2:]), 'q'
		case hasPrefixFold(line, "A:"):
			cur.Answer, field = strings.TrimSpace(line[2:]), 'a'
		case field == 'q':
			cur.Question += " " + line
		case field == 'a':
			cur.Answer += " " + line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

func tableRow(line string) (Entry, bool) {
	raw := strings.Trim(line, "|")
	cols := strings.Split(raw, "|")

	allSep := true
	cleaned := make([]string, 0, len(cols))
	for _, c := range cols {
		cell := strings.TrimSpace(c)
		if cell != "" {
			cleaned = append(cleaned, cell)
		}
		tmp := strings.ReplaceAll(cell, ":", "")
		tmp = strings.ReplaceAll(tmp, "-", "")
		if strings.TrimSpace(tmp) != "" {
			allSep = false
		}
	}
	if allSep || len(cleaned) < 2 {
		return Entry{}, false
	}
	switch strings.ToLower(cleaned[0]) {
	case "question", "q", "вопрос":
		return Entry{}, false
	}
	return Entry{Question: cleaned[0], Answer: strings.Join(cleaned[1:], " ")}, true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
