package exporter

import "fmt"

// formatFloat formats a float64 value for CSV output with exactly 2
// decimal places, so 13.4 exports as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
