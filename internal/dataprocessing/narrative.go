package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"gripulse/pkg/contracts/domain"
)

var indicatorSubjects = map[domain.IndicatorKey]string{
	domain.IndicatorEnergy:    "energy consumption",
	domain.IndicatorWater:     "water withdrawal and consumption",
	domain.IndicatorEmissions: "GHG emissions performance",
	domain.IndicatorWaste:     "waste generation and disposal",
}

// BuildIndicatorNarrative writes the short GRI-style narrative for one
// indicator and year: total, peak month, low month. The same text feeds
// PDF reports and the agent's fallback answer.
func BuildIndicatorNarrative(key domain.IndicatorKey, ms []domain.Measurement, year int, unit string) string {
	var yearRows []domain.Measurement
	for _, m := range ms {
		if m.Year == year && m.Value != nil {
			yearRows = append(yearRows, m)
		}
	}
	if len(yearRows) == 0 {
		return fmt.Sprintf("No available data for %d.", year)
	}

	var total float64
	peak, low := yearRows[0], yearRows[0]
	for _, m := range yearRows {
		total += *m.Value
		if *m.Value > *peak.Value {
			peak = m
		}
		if *m.Value < *low.Value {
			low = m
		}
	}

	subject, ok := indicatorSubjects[key]
	if !ok {
		subject = "KPI performance"
	}

	return fmt.Sprintf(
		"In %d, the organization reported a total %s of %s %s. "+
			"Monthly data shows that the highest recorded value occurred in month %d "+
			"with %s %s, while the lowest occurred in month %d with %s %s. "+
			"The data was monitored throughout the year to ensure accuracy, improve "+
			"operational control, and support decision-making toward efficiency and "+
			"resource optimization.",
		year, subject, FormatNumber(total), unit,
		peak.Month, FormatNumber(*peak.Value), unit,
		low.Month, FormatNumber(*low.Value), unit)
}

// BuildOutlookText writes the forward-looking paragraph under each
// indicator section.
func BuildOutlookText(forecast domain.Forecast, unit string) string {
	return fmt.Sprintf(
		"The projected performance for %d is estimated at %s %s. "+
			"This outlook reflects current operational patterns, historical trends, "+
			"and expected conditions influencing future performance. Resources will be "+
			"managed proactively to improve efficiency and reduce environmental impact.",
		forecast.Year, FormatNumber(forecast.Value), unit)
}

// BuildSummaryLine writes one executive-summary bullet for an indicator
// and year.
func BuildSummaryLine(ind domain.Indicator, totals []domain.YearlyTotal, year int, unit string) string {
	t, ok := TotalForYear(totals, year)
	if !ok {
		return fmt.Sprintf("%s: No data for %d.", ind.KPIName, year)
	}

	trend := "stable performance"
	if t.ChangePct != nil {
		if *t.ChangePct > 0 {
			trend = fmt.Sprintf("increased by %.1f%%", *t.ChangePct)
		} else {
			trend = fmt.Sprintf("decreased by %.1f%%", -*t.ChangePct)
		}
	}

	return fmt.Sprintf("%s (%s): %s %s (%s).",
		ind.KPIName, ind.GRICode, FormatNumber(t.Total), unit, trend)
}

// FormatNumber renders a value with thousands separators and two
// decimals, e.g. 1234567.8 -> "1,234,567.80".
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
