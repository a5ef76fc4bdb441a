package display

import "strconv"

// PageIndicator formats a zero-based index as the one-based number shown
// in the status bar.
func PageIndicator(index int) string {
	return strconv.Itoa(index + 1)
}

// Percent formats a capacity percentage, e.g. "42%".
func Percent(p int) string {
	return strconv.Itoa(p) + "%"
}

// Truncate limits a string to maxLen characters, adding ".." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 2 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
