// Package escape carries multi-line text inside a single protocol line.
package escape

import "strings"

// Escape replaces "\r\n", "\r" and "\n" with the two characters `\n` and
// doubles every backslash. The result never contains a raw newline.
func Escape(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/16)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\r', '\n':
			sb.WriteString(`\n`)
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Unescape reverses Escape and also understands `\r` and `\t`.
// An unrecognised escape drops both characters. The final character of the
// input is always emitted as is, so a trailing lone backslash survives.
func Unescape(line string) string {
	var sb strings.Builder
	sb.Grow(len(line))
	for i := 0; i < len(line); i++ {
		c := line[i]
		if i+1 >= len(line) || c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		switch line[i] {
		case 'n':
			sb.WriteByte('\n')
		case '\\':
			sb.WriteByte('\\')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		}
	}
	return sb.String()
}
