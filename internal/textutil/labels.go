package textutil

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title converts a lowercase phrase such as "oracle binary" to title case.
func Title(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}

// AxisLabel renders "name = value" with one decimal, e.g. "logR = -1.5".
func AxisLabel(name string, v float64) string {
	return name + " = " + strconv.FormatFloat(v, 'f', 1, 64)
}

// Ternary is a generic conditional helper that returns a if cond is true, b otherwise.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
