package dateplan

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a regexp that finds a date mention in free text with
// the layout that parses the matched text.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

// Ordered, first match wins. Abbreviated month names sit before full ones,
// so a phrase like "14th february" is parsed through its "14th feb" prefix.
var datePatterns = []datePattern{
	{regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`), "2 Jan"},
	{regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)?\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)`), "2 January"},
	{regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`), "2/1/2006"},
	{regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`), "2006-1-2"},
}

// ordinalSuffix strips the suffix off a day number ("10th" -> "10")
// without touching month names that contain the same letters ("august").
var ordinalSuffix = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)

// validateTiming is the past-date guardrail. Relative phrases pass
// through untouched; explicit dates are parsed and compared against the
// clock snapshot. Phrases no pattern understands are accepted as-is
// rather than rejected.
func (v *Validator) validateTiming(timing string, now time.Time) (bool, string, string) {
	timingLower := strings.ToLower(strings.TrimSpace(timing))

	if timingLower == "" {
		return true, "", "today"
	}

	switch timingLower {
	case "today", "tonight", "this evening", "tomorrow":
		return true, "", timing
	}

	if strings.Contains(timingLower, "weekend") || strings.Contains(timingLower, "this week") {
		return true, "", timing
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, p := range datePatterns {
		match := p.re.FindString(timingLower)
		if match == "" {
			continue
		}

		parsed, err := time.Parse(p.layout, ordinalSuffix.ReplaceAllString(match, "$1"))
		if err != nil {
			continue
		}

		// Month-name layouts carry no year and parse to year zero;
		// resolve those against the current year.
		if parsed.Year() == 0 {
			resolved := time.Date(now.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			if resolved.Month() != parsed.Month() {
				continue // Feb 29 in a non-leap year
			}
			parsed = resolved
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}

		if parsed.Before(today) {
			// A month earlier than the current one usually means the user
			// intends next year. A past day in the current or a later
			// month is rejected outright.
			if parsed.Month() < now.Month() {
				rolled := time.Date(now.Year()+1, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
				if rolled.Month() != parsed.Month() {
					continue
				}
				msg := fmt.Sprintf("⚠️ Date adjusted to %s (next year)", rolled.Format("January 02, 2006"))
				return true, msg, rolled.Format("January 02")
			}
			return false, fmt.Sprintf("❌ Date '%s' is in the past. Please choose a future date.", timing), "today"
		}

		return true, "", timing
	}

	// Unparseable phrases like "next week" get the benefit of the doubt.
	return true, "", timing
}
