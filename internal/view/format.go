package view

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount in rupees with thousands separators,
// e.g. 2499 -> "₹2,499".
func FormatPrice(amount float64) string {
	return "₹" + printer.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}

// RatingStars draws a 0-5 rating: one ★ per whole point, ½ when the
// fraction is at least .5, then ☆ up to the rounded-up rating's complement.
// A rating like 4.2 therefore shows only four symbols.
func RatingStars(rating float64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("★", int(math.Floor(rating))))
	if math.Mod(rating, 1) >= 0.5 {
		b.WriteString("½")
	}
	b.WriteString(strings.Repeat("☆", 5-int(math.Ceil(rating))))
	return b.String()
}
