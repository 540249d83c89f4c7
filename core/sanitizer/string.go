package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Trim removes leading and trailing whitespace from the string.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// MaxLength cuts s to at most maxLen runes.
func MaxLength(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	return string(runes[:maxLen])
}

// RemoveControlChars drops control characters except newline and tab.
// Carriage returns are dropped too, so CRLF input becomes LF.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// NormalizeUnicode converts s to NFC so visually equal comments compare equal.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}

// CollapseBlankLines keeps at most one empty line between paragraphs.
func CollapseBlankLines(s string) string {
	return blankLinesRegex.ReplaceAllString(s, "\n\n")
}

// SingleLine replaces every whitespace run, newlines included, with one space.
func SingleLine(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// StripHTML removes tags and decodes entities.
func StripHTML(s string) string {
	return html.UnescapeString(htmlTagRegex.ReplaceAllString(s, ""))
}

// Comment prepares a comment body. maxLen <= 0 means no limit.
func Comment(s string, maxLen int) string {
	s = RemoveControlChars(s)
	s = NormalizeUnicode(s)
	s = CollapseBlankLines(s)
	s = Trim(s)
	if maxLen > 0 {
		s = Trim(MaxLength(s, maxLen))
	}
	return s
}

// LoginName prepares a login name: one line, no control characters, NFC.
func LoginName(s string) string {
	return SingleLine(NormalizeUnicode(RemoveControlChars(s)))
}
