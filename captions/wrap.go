package captions

import (
	"strings"

	"golang.org/x/text/language"
)

// wrapText splits text into display lines of at most maxLen runes.
// In the default mode the split prefers the last space inside the window so
// words stay intact; in wide-glyph mode every rune has a fixed cell budget
// and the split is a hard cut. Chunks are trimmed and empty chunks dropped.
func wrapText(text string, maxLen int, wideGlyph bool) []string {
	var lines []string

	r := []rune(strings.TrimSpace(text))
	for len(r) > 0 {
		if len(r) <= maxLen {
			if chunk := strings.TrimSpace(string(r)); chunk != "" {
				lines = append(lines, chunk)
			}
			break
		}

		cut := maxLen
		if !wideGlyph {
			for i := maxLen; i > 0; i-- {
				if r[i] == ' ' {
					cut = i
					break
				}
			}
		}

		if chunk := strings.TrimSpace(string(r[:cut])); chunk != "" {
			lines = append(lines, chunk)
		}
		r = r[cut:]
		for len(r) > 0 && r[0] == ' ' {
			r = r[1:]
		}
	}

	return lines
}

// normalizeLines forces wrapped lines to exactly maxLines entries, dropping
// the oldest lines first so the newest text stays visible and padding with
// blanks at the end when content is short.
func normalizeLines(lines []string, maxLines int) []string {
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	out := make([]string, maxLines)
	copy(out, lines)
	return out
}

// wideGlyphLanguage reports whether the given BCP-47 code selects fixed-cell
// (wide-glyph) layout. Unparseable codes keep the default layout.
func wideGlyphLanguage(code string) bool {
	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "zh", "ja", "ko", "yue":
		return true
	}
	return false
}
