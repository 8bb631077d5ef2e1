// Package classify performs lightweight content-type sniffing on cell text
// for aggregate statistics. Classification is pattern-based and locale-light:
// it accepts common currency symbols and thousands separators but does not
// attempt full locale-aware number parsing.
package classify

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the detected content type of a cell's text.
type Kind int

const (
	Text Kind = iota
	Number
	Currency
	Percentage
	Date
	URL
	Email
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Currency:
		return "currency"
	case Percentage:
		return "percentage"
	case Date:
		return "date"
	case URL:
		return "url"
	case Email:
		return "email"
	default:
		return "text"
	}
}

// Numeric reports whether the kind carries a numeric value usable for
// aggregation.
func (k Kind) Numeric() bool {
	return k == Number || k == Currency || k == Percentage
}

var (
	currencyRe = regexp.MustCompile(`^[$€£¥₹]\s?-?\d{1,3}(,\d{3})*(\.\d+)?$|^[$€£¥₹]\s?-?\d+(\.\d+)?$|^-?\d{1,3}(,\d{3})*(\.\d+)?\s?[$€£¥₹]$`)
	percentRe  = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*(\.\d+)?\s?%$|^-?\d+(\.\d+)?\s?%$`)
	numberRe   = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*(\.\d+)?$|^-?\d+(\.\d+)?$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{1,2}/\d{1,2}/\d{2,4}$|^\d{1,2} (Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}$`)
	urlRe      = regexp.MustCompile(`^(https?://|www\.)\S+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	numericStripRe = regexp.MustCompile(`[$€£¥₹%,\s]`)
)

// Classify returns the content kind of the trimmed text. Text that fails
// every pattern classifies as Text.
func Classify(text string) Kind {
	text = strings.TrimSpace(text)
	if text == "" {
		return Text
	}
	switch {
	case currencyRe.MatchString(text):
		return Currency
	case percentRe.MatchString(text):
		return Percentage
	case dateRe.MatchString(text):
		return Date
	case numberRe.MatchString(text):
		return Number
	case urlRe.MatchString(text):
		return URL
	case emailRe.MatchString(text):
		return Email
	default:
		return Text
	}
}

// ParseNumeric extracts the numeric value from text, stripping currency
// symbols, percent signs and thousands separators first. Returns NaN when no
// number can be parsed.
func ParseNumeric(text string) float64 {
	cleaned := numericStripRe.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
