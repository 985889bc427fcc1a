package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
)

// amount matches a money amount with two decimals: 1.234,56 | 1234,56 | 12.50, optionally negative.
const amount = `-?(?:\d{1,3}(?:\.\d{3})+|\d+)[.,]\d{2}`

var (
	reSpace        = regexp.MustCompile(`\s+`)
	reUnitsPerCase = regexp.MustCompile(`(?i)\((\d+)\s*u\)`)
	reCaseCode     = regexp.MustCompile(`C(\d+)`)
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// NormSpace collapses whitespace runs to one space and trims.
func NormSpace(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// ParseDecimal parses a locale-formatted number. With a comma present, dots are thousands
// separators and the comma is the decimal point; otherwise a dot is the decimal point.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %w", err)
	}
	return d, nil
}

// ParseLocaleFloat is ParseDecimal for callers that want a float64.
func ParseLocaleFloat(s string) (float64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ResolveRate turns an inline tax rate into a fraction. Values above 1 are percentages.
// Missing, zero, exactly 1 or out-of-range values fall back to the catalog rate.
func ResolveRate(raw string, meta catalog.ProductMeta) float64 {
	if raw == "" {
		return meta.IVARate
	}
	d, err := ParseDecimal(raw)
	if err != nil || d.Sign() <= 0 || d.Equal(one) {
		return meta.IVARate
	}
	if d.GreaterThan(one) {
		d = d.Div(hundred)
	}
	if d.GreaterThanOrEqual(one) {
		return meta.IVARate
	}
	return d.InexactFloat64()
}

// resolvePercent reads an inline rate that is always a whole percentage (10 => 0.10).
func resolvePercent(raw string, meta catalog.ProductMeta) float64 {
	d, err := ParseDecimal(raw)
	if err != nil || d.Sign() <= 0 || d.GreaterThanOrEqual(hundred) {
		return meta.IVARate
	}
	return d.Div(hundred).InexactFloat64()
}

// UnitsPerCase reads a parenthesised "(N u)" hint from a description.
func UnitsPerCase(desc string) (int64, bool) {
	return multiplier(reUnitsPerCase, desc)
}

// CaseCode reads a "C<N>" case-size code from a description, case-insensitively.
func CaseCode(desc string) (int64, bool) {
	return multiplier(reCaseCode, strings.ToUpper(desc))
}

func multiplier(re *regexp.Regexp, s string) (int64, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Fold removes accents and uppercases, so "Albarán" and "ALBARAN" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// hasMarker reports whether line contains any of the folded markers.
func hasMarker(line string, markers ...string) bool {
	f := Fold(line)
	for _, m := range markers {
		if strings.Contains(f, m) {
			return true
		}
	}
	return false
}

// groups returns the named submatches of re in line, or nil.
func groups(re *regexp.Regexp, line string) map[string]string {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			out[name] = m[i]
		}
	}
	return out
}

// decimals parses the named fields of g, stopping at the first malformed one.
func decimals(g map[string]string, fields ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(fields))
	for _, f := range fields {
		d, err := ParseDecimal(g[f])
		if err != nil {
			return nil, fieldErr(f, g[f], err)
		}
		out = append(out, d)
	}
	return out, nil
}

// firstGroup returns the first capture group of the first pattern that matches.
func firstGroup(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
