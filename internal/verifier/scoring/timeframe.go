package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/utils"
)

const (
	defaultRelativeMonths = 6
	defaultRelativeYears  = 1
	daysPerMonth          = 30
	daysPerYear           = 365
	fallbackWindowDays    = 180
)

var (
	monthYearPattern      = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*\.?\s*(\d{4})`)
	yearPattern           = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	endQualifierPattern   = regexp.MustCompile(`\bend`)
	relativeMonthsPattern = regexp.MustCompile(`(\d+)\s*month`)
	relativeYearsPattern  = regexp.MustCompile(`(\d+)\s*year`)

	monthsByPrefix = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// timeframeRule resolves a lower-cased timeframe into a window, reporting
// false when it does not apply.
type timeframeRule struct {
	name    string
	resolve func(tf string, ref time.Time) (dto.VerificationWindow, bool)
}

// timeframeRules are tried in order; the first match wins.
var timeframeRules = []timeframeRule{
	{name: "month_year", resolve: resolveMonthYear},
	{name: "year_end", resolve: resolveYearEnd},
	{name: "calendar_year", resolve: resolveCalendarYear},
	{name: "relative_months", resolve: resolveRelativeMonths},
	{name: "relative_years", resolve: resolveRelativeYears},
}

// ResolveTimeframe turns a free-text timeframe spoken relative to ref into a
// concrete verification window. It never fails: unrecognised text resolves
// to the 180 days following ref.
func ResolveTimeframe(timeframe string, ref time.Time) dto.VerificationWindow {
	window, _ := resolveTimeframe(timeframe, ref)
	return window
}

// resolveTimeframe also returns the name of the rule that matched.
func resolveTimeframe(timeframe string, ref time.Time) (dto.VerificationWindow, string) {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	ref = utils.Date(ref.Year(), ref.Month(), ref.Day())

	for _, rule := range timeframeRules {
		if window, ok := rule.resolve(tf, ref); ok {
			return window, rule.name
		}
	}
	return relativeWindow(ref, fallbackWindowDays), "fallback"
}

func resolveMonthYear(tf string, _ time.Time) (dto.VerificationWindow, bool) {
	m := monthYearPattern.FindStringSubmatch(tf)
	if m == nil {
		return dto.VerificationWindow{}, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return dto.VerificationWindow{}, false
	}
	month := monthsByPrefix[m[1][:3]]
	return dto.VerificationWindow{
		StartDate: utils.Date(year, month, 1),
		EndDate:   utils.LastDayOfMonth(year, month),
	}, true
}

func resolveYearEnd(tf string, _ time.Time) (dto.VerificationWindow, bool) {
	year, ok := findYear(tf)
	if !ok || !endQualifierPattern.MatchString(tf) {
		return dto.VerificationWindow{}, false
	}
	return dto.VerificationWindow{
		StartDate: utils.Date(year, time.October, 1),
		EndDate:   utils.Date(year, time.December, 31),
	}, true
}

func resolveCalendarYear(tf string, _ time.Time) (dto.VerificationWindow, bool) {
	year, ok := findYear(tf)
	if !ok {
		return dto.VerificationWindow{}, false
	}
	return dto.VerificationWindow{
		StartDate: utils.Date(year, time.January, 1),
		EndDate:   utils.Date(year, time.December, 31),
	}, true
}

func resolveRelativeMonths(tf string, ref time.Time) (dto.VerificationWindow, bool) {
	if !strings.Contains(tf, "month") {
		return dto.VerificationWindow{}, false
	}
	n := leadingCount(relativeMonthsPattern, tf, defaultRelativeMonths)
	return relativeWindow(ref, n*daysPerMonth), true
}

func resolveRelativeYears(tf string, ref time.Time) (dto.VerificationWindow, bool) {
	if !strings.Contains(tf, "year") {
		return dto.VerificationWindow{}, false
	}
	n := leadingCount(relativeYearsPattern, tf, defaultRelativeYears)
	return relativeWindow(ref, n*daysPerYear), true
}

func findYear(tf string) (int, bool) {
	m := yearPattern.FindStringSubmatch(tf)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	return year, err == nil
}

func leadingCount(pattern *regexp.Regexp, tf string, fallback int) int {
	m := pattern.FindStringSubmatch(tf)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return n
}

func relativeWindow(ref time.Time, days int) dto.VerificationWindow {
	return dto.VerificationWindow{
		StartDate: ref,
		EndDate:   ref.AddDate(0, 0, days),
	}
}
