package verify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// canonicalDateLayout is the export format for date fields.
const canonicalDateLayout = "02-01-2006"

// dateLayouts are accepted input formats, tried in order. Day-first
// layouts come before month-first since invoices in scope use DD-MM.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z07:00",
}

// NormalizeDate parses a date string and renders it as DD-MM-YYYY.
func NormalizeDate(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed.Format(canonicalDateLayout), true
		}
	}
	return "", false
}

// amountPattern matches a plain decimal number after affix stripping.
var amountPattern = regexp.MustCompile(`^[-+]?\d+(\.\d+)?$`)

// currencySymbols are stripped from either end of an amount.
var currencySymbols = []string{"$", "€", "£", "₹", "¥"}

// currencyCodePattern matches ISO-style codes and common markers such
// as "PKR", "Rs." or "rs" when they appear as a separate affix.
var currencyCodePattern = regexp.MustCompile(`^(?i)(rs\.?|[A-Z]{2,4})$`)

// NormalizeAmount strips currency formatting (thousands separators,
// symbols, currency codes) and verifies the remainder is numeric.
// Unrecognized text like "approx 1k" fails rather than being guessed.
func NormalizeAmount(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", false
	}
	t = strings.ReplaceAll(t, ",", "")

	for _, sym := range currencySymbols {
		t = strings.TrimPrefix(t, sym)
		t = strings.TrimSuffix(t, sym)
	}
	t = strings.TrimSpace(t)

	// A currency marker may sit on either side: "PKR 1200", "1200 PKR".
	parts := strings.Fields(t)
	switch len(parts) {
	case 1:
		t = parts[0]
	case 2:
		if currencyCodePattern.MatchString(parts[0]) {
			t = parts[1]
		} else if currencyCodePattern.MatchString(parts[1]) {
			t = parts[0]
		} else {
			return "", false
		}
	default:
		return "", false
	}

	if !amountPattern.MatchString(t) {
		return "", false
	}
	if _, err := strconv.ParseFloat(t, 64); err != nil {
		return "", false
	}
	return t, true
}
