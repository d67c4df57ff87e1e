package domain

import "time"

// City is one of the fixed monitoring locations.
type City string

// Cities lists the monitored cities in generation order.
var Cities = [...]City{
	"Delhi", "Mumbai", "Kolkata", "Chennai", "Bangalore",
	"Hyderabad", "Pune", "Ahmedabad", "Jaipur", "Lucknow",
}

// Pollutant identifies a numeric measurement field.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	NO2  Pollutant = "no2"
	SO2  Pollutant = "so2"
)

// Pollutants lists the measured fields in report order.
var Pollutants = []Pollutant{PM25, NO2, SO2}

// Label returns the display name used in charts and reports.
func (p Pollutant) Label() string {
	switch p {
	case PM25:
		return "PM2.5"
	case NO2:
		return "NO2"
	case SO2:
		return "SO2"
	default:
		return string(p)
	}
}

// Value reads the pollutant's concentration from m.
func (p Pollutant) Value(m Measurement) float64 {
	switch p {
	case PM25:
		return m.PM25
	case NO2:
		return m.NO2
	case SO2:
		return m.SO2
	default:
		return 0
	}
}

// Reference thresholds in μg/m³.
const (
	WHOGuidelinePM25 = 15.0
	UnhealthyPM25    = 60.0
	HighNO2          = 80.0
)

// Measurement is one city/date observation.
type Measurement struct {
	City City      `json:"city" yaml:"city"`
	Date time.Time `json:"date" yaml:"date"`
	PM25 float64   `json:"pm25" yaml:"pm25"`
	NO2  float64   `json:"no2" yaml:"no2"`
	SO2  float64   `json:"so2" yaml:"so2"`
}

// Month returns the calendar month of the observation, 1 through 12.
func (m Measurement) Month() int {
	return int(m.Date.Month())
}

// Season returns the season bucket the observation falls into.
func (m Measurement) Season() Season {
	return SeasonOf(m.Month())
}

// Category classifies the observation by its PM2.5 concentration.
func (m Measurement) Category() Category {
	return CategorizePollution(m.PM25)
}
