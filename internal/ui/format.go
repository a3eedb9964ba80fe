package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/five82/sixcities/internal/rental"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle keeps both ends of value, e.g. the file name of a long path.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// formatPrice renders a nightly price in euros, dropping a zero fraction.
func formatPrice(price float64) string {
	if price == math.Trunc(price) {
		return "€" + strconv.FormatFloat(price, 'f', 0, 64)
	}
	return "€" + strconv.FormatFloat(price, 'f', 2, 64)
}

// ratingStars renders a rating as five stars, rounded to the nearest whole star.
func ratingStars(rating float64) string {
	n := int(math.Round(rating))
	n = max(rental.RatingMin-1, min(n, rental.RatingMax))
	return strings.Repeat("★", n) + strings.Repeat("☆", rental.RatingMax-n)
}

// plural returns "1 bedroom" or "3 bedrooms".
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// reviewDate renders a review date as "March 2024", or the raw value when it
// does not parse.
func reviewDate(f rental.Feedback) string {
	t := f.ParsedDate()
	if t.IsZero() {
		return f.Date
	}
	return t.Format("January 2006")
}
