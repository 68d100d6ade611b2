package faq

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMarkdown_QAParagraphs(t *testing.T) {
	in := `# FAQ

Q: How do I reset the router?
A: Hold the reset button
for ten seconds.

q: Where is the serial number?
a: On the bottom sticker.

Q: Dangling question without an answer
`
	got, err := ParseMarkdown(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2: %#v", len(got), got)
	}
	if got[0].Question != "How do I reset the router?" || got[0].Answer != "Hold the reset button for ten seconds." {
		t.Fatalf("first entry = %#v", got[0])
	}
	if got[1].Answer != "On the bottom sticker." {
		t.Fatalf("second entry = %#v", got[1])
	}
}

func TestParseMarkdown_TableRows(t *testing.T) {
	in := `| Question | Answer |
|:---------|-------:|
| Wi-Fi drops every hour | Update the adapter driver | then reboot |
| lonely cell |
`
	got, err := ParseMarkdown(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1: %#v", len(got), got)
	}
	if got[0].Question != "Wi-Fi drops every hour" || got[0].Answer != "Update the adapter driver then reboot" {
		t.Fatalf("row entry = %#v", got[0])
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "faq.md")
	if err := os.WriteFile(p, []byte("Q: a?\nA: b.\n"), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	got, err := LoadFile(p)
	if err != nil || len(got) != 1 {
		t.Fatalf("LoadFile = %#v, %v", got, err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.md")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
