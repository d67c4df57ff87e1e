package domain

// Category is an ordinal PM2.5 air-quality band.
type Category string

const (
	CategoryGood                  Category = "Good"
	CategoryModerate              Category = "Moderate"
	CategoryUnhealthyForSensitive Category = "Unhealthy for Sensitive"
	CategoryUnhealthy             Category = "Unhealthy"
	CategoryVeryUnhealthy         Category = "Very Unhealthy"
)

// Categories lists the bands from cleanest to most polluted.
var Categories = []Category{
	CategoryGood,
	CategoryModerate,
	CategoryUnhealthyForSensitive,
	CategoryUnhealthy,
	CategoryVeryUnhealthy,
}

// CategorizePollution maps a PM2.5 concentration to its band. Upper bounds
// are inclusive: 30 is Good, 30.5 is Moderate.
func CategorizePollution(pm25 float64) Category {
	switch {
	case pm25 <= 30:
		return CategoryGood
	case pm25 <= 60:
		return CategoryModerate
	case pm25 <= 90:
		return CategoryUnhealthyForSensitive
	case pm25 <= 120:
		return CategoryUnhealthy
	default:
		return CategoryVeryUnhealthy
	}
}
