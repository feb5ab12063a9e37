package money

import "fmt"

// Format renders an amount held in minor units (kopecks) as the
// "1500.00" decimal string used on the wire and in emails.
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
