package texlog

import "strings"

// TeX hard-wraps log output at max_print_line columns (79 by default).
const wrapWidth = 79

// unwrap undoes the processor's hard wrapping: a physical line that reaches
// the wrap width continues on the next one, so its newline is dropped.
// Shorter lines keep their boundaries, which keeps distinct messages on
// distinct lines.
func unwrap(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		b.WriteString(line)
		if i == len(lines)-1 {
			break
		}
		if len(line) < wrapWidth {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
