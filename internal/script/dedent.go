package script

import "strings"

// Dedent strips the longest common leading whitespace from the non-blank
// lines of a code block. Python blocks are usually indented to match the
// surrounding markup; Starlark requires top-level statements to start at
// column one.
func Dedent(code string) string {
	lines := strings.Split(code, "\n")

	prefix := ""
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		if !found {
			prefix = indent
			found = true
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return code
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
