// Package domain models synthetic ambient air-quality measurements for ten
// Indian cities.
//
// # Pollutants
//
// Every measurement carries three concentrations, all in μg/m³:
//
//	pm25  fine particulate matter (diameter ≤ 2.5 μm)
//	no2   nitrogen dioxide
//	so2   sulphur dioxide
//
// Raw draws are integers; the seasonal adjustment applied by the generator
// turns winter and spring PM2.5/NO2 values into fractional numbers.
//
// # Seasons
//
// Months map onto four fixed buckets that partition the calendar:
//
//	Winter   Dec, Jan, Feb
//	Spring   Mar, Apr, May
//	Summer   Jun, Jul, Aug
//	Monsoon  Sep, Oct, Nov
//
// # Pollution categories
//
// PM2.5 concentrations are classified with inclusive upper bounds:
//
//	≤ 30   Good
//	≤ 60   Moderate
//	≤ 90   Unhealthy for Sensitive
//	≤ 120  Unhealthy
//	> 120  Very Unhealthy
//
// # Reference thresholds
//
// The WHO annual-mean guideline for PM2.5 is 15 μg/m³ ([WHOGuidelinePM25]).
// Records with PM2.5 above 60 are counted as unhealthy and records with NO2
// above 80 as high-NO2 in the summary report.
package domain
