package exprparse

import (
	"math"
	"strconv"
	"strings"
)

// Parsed is a user-entered value: the normalised text to show back to the
// user and the number it stands for.
type Parsed struct {
	Display string  `json:"display"`
	Numeric float64 `json:"numeric"`
}

// ParseInput normalises s for display (trimmed, lower case, "pi" shown as
// "π") and evaluates it. When evaluation fails the leading numeral is used,
// and 0 when there is none. It never fails.
func ParseInput(s string) Parsed {
	text := strings.ToLower(strings.TrimSpace(s))
	display := strings.ReplaceAll(text, "pi", "π")

	v, err := Eval(text)
	if err != nil {
		v = leadingNumber(display)
	}
	return Parsed{Display: display, Numeric: v}
}

// leadingNumber parses the longest numeral at the start of s, accepting a
// sign and a leading π. It returns 0 when s does not start with a number.
func leadingNumber(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r")
	sign := 1.0
	body := s
	if strings.HasPrefix(body, "-") {
		sign = -1
		body = body[1:]
	} else if strings.HasPrefix(body, "+") {
		body = body[1:]
	}

	if strings.HasPrefix(body, "π") {
		return sign * math.Pi
	}

	n := scanNumber(body)
	if n == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(body[:n], 64)
	if err != nil {
		return 0
	}
	return sign * v
}
