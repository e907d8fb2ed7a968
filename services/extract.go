package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// weightPatterns is the ordered unit table for weight extraction. Order is an
// invariant: gram spellings are tried before the looser count-based units so
// "5.2g carat box" resolves as grams. Each pattern anchors the number
// immediately before the unit token.
var weightPatterns = []struct {
	re         *regexp.Regexp
	multiplier float64
}{
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*g(?:rams?)?(?:\s|$|,)`), 1.0},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)-g(?:rams?)?`), 1.0},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*gr\.?(?:\s|$)`), 1.0},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*ct(?:s)?(?:\s|$)`), 0.2},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*carat`), 0.2},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*oz(?:\s|$)`), 28.35},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*kg(?:\s|$)`), 1000.0},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*lb(?:s)?(?:\s|$)`), 453.6},
}

// priceJunk matches currency symbols, thousands separators and whitespace.
var priceJunk = regexp.MustCompile(`[$,\s]`)

// dateFormats is the ordered list of sale-date layouts seen in the wild.
var dateFormats = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
	"2006-01-02",
}

// Weight sanity bounds in grams. Converted values outside the range are
// treated as a failed match and the next unit pattern is tried.
const (
	minWeightGrams = 0.01
	maxWeightGrams = 100000
)

// Price sanity bounds in USD.
const (
	minPriceUSD = 0
	maxPriceUSD = 1000000
)

// ExtractWeight pulls a weight in grams out of a listing title. The first
// unit pattern whose converted value passes the sanity bounds wins. Returns
// false when no pattern yields a usable weight.
func ExtractWeight(title string) (float64, bool) {
	for _, p := range weightPatterns {
		match := p.re.FindStringSubmatch(title)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		grams := value * p.multiplier
		if grams > minWeightGrams && grams < maxWeightGrams {
			return round3(grams), true
		}
	}
	return 0, false
}

// ExtractPrice parses a monetary string like "$1,250.00" into a bare USD
// value. Returns false on parse failure or an out-of-bounds amount.
func ExtractPrice(raw string) (float64, bool) {
	cleaned := priceJunk.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if price <= minPriceUSD || price >= maxPriceUSD {
		return 0, false
	}
	return round2(price), true
}

// ExtractDate normalizes a sale-date string to YYYY-MM-DD, trying each
// supported layout in order. When nothing parses the trimmed input is
// returned as-is; downstream consumers tolerate a non-ISO date and simply
// leave such sales out of the monthly buckets.
func ExtractDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return trimmed
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
