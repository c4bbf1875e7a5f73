package render

import "strings"

const plainSeparator = " | "

var markdown = strings.NewReplacer("```", "", "`", "", "***", "", "**", "")

// PlainText flattens m to a single line for text-only chats: markdown is
// stripped, fields become "name: value" and lines are joined with " | ".
func PlainText(m Message) string {
	var parts []string
	add := func(s string) {
		for _, line := range strings.Split(markdown.Replace(s), "\n") {
			if line = strings.TrimRight(line, " "); strings.TrimSpace(line) != "" {
				parts = append(parts, line)
			}
		}
	}
	add(m.Content)
	for _, e := range m.Embeds {
		add(e.Title)
		add(e.Description)
		for _, f := range e.Fields {
			add(f.Name + ": " + f.Value)
		}
	}
	return strings.Join(parts, plainSeparator)
}

// Chunks splits s on " | " boundaries into pieces of at most limit bytes. A single
// part longer than limit is cut at a rune boundary.
func Chunks(s string, limit int) []string {
	if s == "" {
		return nil
	}
	if limit <= 0 || len(s) <= limit {
		return []string{s}
	}
	var (
		out []string
		cur string
	)
	flush := func() {
		if cur != "" {
			out = append(out, cur)
			cur = ""
		}
	}
	for _, part := range strings.Split(s, plainSeparator) {
		for len(part) > limit {
			flush()
			cut := limit
			for cut > 0 && !isRuneStart(part[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			out = append(out, part[:cut])
			part = part[cut:]
		}
		switch {
		case cur == "":
			cur = part
		case len(cur)+len(plainSeparator)+len(part) <= limit:
			cur += plainSeparator + part
		default:
			flush()
			cur = part
		}
	}
	flush()
	return out
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
