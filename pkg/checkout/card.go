package checkout

import (
	"strconv"
	"strings"
)

// Display-normalization rules for the payment form. These mirror the
// storefront input masks exactly so values round-trip unchanged.

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups digits in blocks of 4, capped at 16 digits.
func FormatCardNumber(raw string) string {
	digits := stripNonDigits(raw)
	if len(digits) > 16 {
		digits = digits[:16]
	}

	var groups []string
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

// FormatExpiry inserts "/" after the 2nd digit, capped at MM/YY.
func FormatExpiry(raw string) string {
	digits := stripNonDigits(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// NormalizeCVC strips non-digits, capped at 4 digits.
func NormalizeCVC(raw string) string {
	digits := stripNonDigits(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

// ValidCardNumber accepts 13 to 16 digits, ignoring grouping spaces.
func ValidCardNumber(number string) bool {
	digits := stripNonDigits(number)
	return len(digits) >= 13 && len(digits) <= 16
}

// ValidExpiry accepts MM/YY with a real month.
func ValidExpiry(expiry string) bool {
	if len(expiry) != 5 || expiry[2] != '/' {
		return false
	}
	month, err := strconv.Atoi(expiry[:2])
	if err != nil {
		return false
	}
	if _, err := strconv.Atoi(expiry[3:]); err != nil {
		return false
	}
	return month >= 1 && month <= 12
}

// ValidCVC accepts 3 or 4 digits.
func ValidCVC(cvc string) bool {
	digits := stripNonDigits(cvc)
	return len(digits) == 3 || len(digits) == 4
}
