// Command aqeda generates a synthetic air-quality dataset for ten Indian
// cities, analyses it and publishes the report, the chart panel and the raw
// measurements.
//
// Usage:
//
//	aqeda run    [--seed N] [--output-dir DIR] [--format text|json|yaml] [--no-charts]
//	aqeda serve  [--seed N] [--no-charts]
//	aqeda export [--seed N] [--format csv|json|yaml] [--output FILE]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
