package service

import (
	"fmt"
	"unicode"
)

// VerticalCode derives a vertical's short code from its human name: the
// capital letters of the name, padded with 'X' when fewer than two, truncated
// to two. "Water Quality" -> "WQ", "Streetlights" -> "SX".
func VerticalCode(name string) string {
	var caps []rune
	for _, r := range name {
		if unicode.IsLetter(r) && unicode.IsUpper(r) {
			caps = append(caps, r)
		}
	}
	for len(caps) < 2 {
		caps = append(caps, 'X')
	}
	return string(caps[:2])
}

// postalSegment reduces a raw postal code to the fixed 4-digit segment of a
// node code: the last four digits, zero-padded, or "0000" when the lookup
// produced nothing usable.
func postalSegment(postalCode string) string {
	var digits []rune
	for _, r := range postalCode {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return "0000"
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	for len(digits) < 4 {
		digits = append([]rune{'0'}, digits...)
	}
	return string(digits)
}

// NodeCode formats a node resource code. The sensor-type field is a minimum
// width: ids of 100 or more widen the field rather than truncate, which keeps
// codes unique at the cost of a longer name.
func NodeCode(verticalCode string, sensorTypeID int, postal4 string, ordinal int) string {
	return fmt.Sprintf("%s%02d-%s-%04d", verticalCode, sensorTypeID, postal4, ordinal)
}
