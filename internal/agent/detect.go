package agent

import (
	"regexp"
	"strconv"
	"strings"

	"gripulse/pkg/contracts/domain"
)

var yearPattern = regexp.MustCompile(`\b(20[0-9]{2})\b`)

// indicatorKeywords maps query terms to indicators. Order matters:
// "power" must not shadow a later "water" match, so detection walks
// the indicators in their canonical order.
var indicatorKeywords = map[domain.IndicatorKey][]string{
	domain.IndicatorEnergy:    {"energy", "electricity", "power", "302"},
	domain.IndicatorWater:     {"water", "303"},
	domain.IndicatorEmissions: {"emission", "co2", "carbon", "ghg", "305"},
	domain.IndicatorWaste:     {"waste", "306"},
}

// DetectIndicator finds the indicator a free-form question is about.
func DetectIndicator(query string) (domain.IndicatorKey, bool) {
	q := strings.ToLower(query)
	for _, key := range domain.IndicatorOrder {
		for _, kw := range indicatorKeywords[key] {
			if strings.Contains(q, kw) {
				return key, true
			}
		}
	}
	return "", false
}

// ExtractYears pulls four-digit years out of a question, in order of
// appearance.
func ExtractYears(query string) []int {
	var years []int
	for _, m := range yearPattern.FindAllString(query, -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	return years
}
