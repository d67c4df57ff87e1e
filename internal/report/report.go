// Package report formats an analysis for people and machines: a dataset
// overview, a sectioned text report and JSON/YAML summaries.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
)

const (
	ruleWidth = 50
	unit      = "μg/m³"
)

// printer accumulates the first write error so sections can be written
// without checking every call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	p.printf("\n%s\n%s\n%s\n", rule, title, rule)
}

func (p *printer) heading(title string) {
	p.printf("\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
}

// WriteOverview prints the dataset shape, the first rows, the column types and
// the describe table.
func WriteOverview(w io.Writer, ov stats.Overview) error {
	p := &printer{w: w}
	p.printf("Dataset Overview\n%s\n", strings.Repeat("-", 30))
	p.printf("Dataset Shape: (%d, %d)\n", ov.Rows, ov.Cols)
	p.printf("\nFirst %d rows:\n%s\n", ov.Head.Nrow(), ov.Head.String())
	p.printf("\nColumns:\n")
	for i, name := range ov.Columns {
		p.printf("  %-6s %s\n", name, ov.Types[i])
	}
	p.printf("\nStatistical Summary:\n%s\n", ov.Describe.String())
	return p.err
}

// WriteText prints the full analysis report.
func WriteText(w io.Writer, a *analysis.Analysis) error {
	p := &printer{w: w}
	p.banner("ANALYSIS RESULTS")
	writePM25(p, a)
	writeCities(p, a)
	writeCorrelations(p, a)
	writeSeasons(p, a)
	writeSummary(p, a)
	return p.err
}

func writePM25(p *printer, a *analysis.Analysis) {
	p.heading("1. PM2.5 Analysis")
	p.printf("Average PM2.5 across all cities: %.1f %s\n", a.Means.PM25, unit)
	if a.ExceedsWHO {
		p.printf("Alert: Average PM2.5 (%.1f) exceeds WHO guideline (%g %s)\n",
			a.Means.PM25, domain.WHOGuidelinePM25, unit)
	} else {
		p.printf("Average PM2.5 is within WHO guidelines\n")
	}
}

func writeCities(p *printer, a *analysis.Analysis) {
	p.heading("2. City Analysis")
	p.printf("City with highest average NO2 levels: %s (%.1f %s)\n",
		a.HighestNO2.Key, a.HighestNO2.Value, unit)
	p.printf("\nTop %d most polluted cities (PM2.5):\n", len(a.TopPM25))
	for i, e := range a.TopPM25 {
		p.printf("  %d. %s: %.1f %s\n", i+1, e.Key, e.Value, unit)
	}
}

func writeCorrelations(p *printer, a *analysis.Analysis) {
	p.heading("3. Pollutant Correlations")
	for _, c := range a.Correlations {
		p.printf("Correlation between %s and %s: %.3f\n", c.A.Label(), c.B.Label(), c.R)
	}
	p.printf("\nCorrelation Strength:\n")
	for _, c := range a.Correlations {
		p.printf("  %s: %s\n", c.Name(), c.Strength)
	}
}

func writeSeasons(p *printer, a *analysis.Analysis) {
	p.heading("4. Seasonal Patterns")
	for _, s := range a.Seasonal {
		p.printf("%s: PM2.5=%.1f, NO2=%.1f\n", s.Label, s.PM25, s.NO2)
	}
}

func writeSummary(p *printer, a *analysis.Analysis) {
	p.banner("SUMMARY REPORT")

	p.printf("\nKEY FINDINGS:\n")
	p.printf("- Dataset contains %d records across %d cities\n", a.Records, a.Cities)
	p.printf("- Average PM2.5 level: %.1f %s (WHO guideline: %g %s)\n",
		a.Means.PM25, unit, domain.WHOGuidelinePM25, unit)
	p.printf("- Most polluted city (NO2): %s (%.1f %s)\n", a.HighestNO2.Key, a.HighestNO2.Value, unit)
	p.printf("- Strongest correlation: %s (%.3f)\n", a.Strongest.Name(), a.Strongest.R)

	p.printf("\nHEALTH IMPLICATIONS:\n")
	p.printf("- %d records show unhealthy PM2.5 levels (> %g)\n", a.UnhealthyPM25, domain.UnhealthyPM25)
	p.printf("- %d records show high NO2 levels (> %g)\n", a.HighNO2, domain.HighNO2)

	p.printf("\nDATA QUALITY:\n")
	p.printf("- No missing values detected\n")
	p.printf("- Data spans %d months for trend analysis\n", len(a.Monthly))
	p.printf("- All major pollutants (PM2.5, NO2, SO2) included\n")

	p.printf("\nRECOMMENDATIONS:\n")
	p.printf("1. Focus on %s pollution control measures\n", strings.ToLower(string(worstSeason(a))))
	p.printf("2. Monitor %s for NO2 reduction strategies\n", a.HighestNO2.Key)
	p.printf("3. Implement real-time air quality monitoring\n")
	p.printf("4. Correlate with weather data for better predictions\n")
}

// worstSeason is the season with the highest mean PM2.5, defaulting to winter
// when no season has data.
func worstSeason(a *analysis.Analysis) domain.Season {
	worst := domain.Winter
	best := -1.0
	for _, s := range a.Seasonal {
		if s.PM25 > best {
			worst, best = s.Season, s.PM25
		}
	}
	return worst
}
