// Command validate performs integrity checks on an exported measurements CSV.
// It verifies the row count, the city rotation, the date blocks and that every
// value lies in its raw draw range after the month's seasonal multiplier.
// With -seed it also regenerates the table and compares it value by value.
//
// Usage:
//
//	go run ./cmd/validate -csv out/measurements.csv [-seed 42]
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
)

// tolerance absorbs float formatting in the CSV round trip.
const tolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to an exported measurements CSV")
	seedFlag := flag.String("seed", "", "seed the CSV was generated with (enables the reproducibility phase)")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	var seed *uint64
	if *seedFlag != "" {
		v, err := strconv.ParseUint(*seedFlag, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -seed: %v\n", err)
			os.Exit(1)
		}
		seed = &v
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if code := run(f, seed, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(r io.Reader, seed *uint64, out io.Writer) int {
	fmt.Fprintln(out, "=== Air Quality Data Integrity Validation ===")
	fmt.Fprintln(out)

	records, err := stats.ReadCSV(r)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateShape(records),
		validateRotation(records),
		validateRanges(records),
	}
	if seed != nil {
		phases = append(phases, validateReproducible(records, *seed))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d\n", len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Shape ──

func validateShape(records []domain.Measurement) *phase {
	p := &phase{name: "Phase 1: Shape (rows per city)"}

	if len(records) != generator.Rows {
		p.errorf("row count: expected %d, got %d", generator.Rows, len(records))
	}
	perCity := make(map[domain.City]int)
	for _, r := range records {
		perCity[r.City]++
	}
	for _, c := range domain.Cities {
		if perCity[c] != generator.PointsPerCity {
			p.errorf("%s: expected %d rows, got %d", c, generator.PointsPerCity, perCity[c])
		}
	}
	if len(perCity) != len(domain.Cities) {
		p.errorf("distinct cities: expected %d, got %d", len(domain.Cities), len(perCity))
	}
	return p
}

// ── Phase 2: Rotation ──
// Cities cycle row by row; dates advance once per block of cities.

func validateRotation(records []domain.Measurement) *phase {
	p := &phase{name: "Phase 2: City rotation and date blocks"}

	n := len(domain.Cities)
	for i, r := range records {
		if want := domain.Cities[i%n]; r.City != want {
			p.errorf("row %d: city %q, expected %q", i+1, r.City, want)
		}
		if want := generator.SampleDates[(i/n)%len(generator.SampleDates)]; !r.Date.Equal(want) {
			p.errorf("row %d: date %s, expected %s", i+1, r.Date.Format(stats.DateLayout), want.Format(stats.DateLayout))
		}
	}
	return p
}

// ── Phase 3: Ranges ──

func validateRanges(records []domain.Measurement) *phase {
	p := &phase{name: "Phase 3: Value ranges (seasonally adjusted)"}

	for i, r := range records {
		for _, pol := range domain.Pollutants {
			v := pol.Value(r)
			if v < 0 || math.IsNaN(v) {
				p.errorf("row %d: %s=%v is negative or missing", i+1, pol.Label(), v)
				continue
			}
			lo, hi := generator.Bounds(pol)
			m := generator.Multiplier(pol, r.Month())
			if v < lo*m-tolerance || v > (hi-1)*m+tolerance {
				p.errorf("row %d: %s=%.2f outside [%.2f, %.2f] for month %d",
					i+1, pol.Label(), v, lo*m, (hi-1)*m, r.Month())
			}
		}
	}
	return p
}

// ── Phase 4: Reproducibility ──

func validateReproducible(records []domain.Measurement, seed uint64) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Reproducible from seed %d", seed)}

	want := generator.New(seed).Generate()
	if len(want) != len(records) {
		p.errorf("row count: regenerated %d, CSV has %d", len(want), len(records))
		return p
	}
	for i := range want {
		for _, pol := range domain.Pollutants {
			if got, exp := pol.Value(records[i]), pol.Value(want[i]); math.Abs(got-exp) > tolerance {
				p.errorf("row %d: %s=%.4f, regenerated %.4f", i+1, pol.Label(), got, exp)
			}
		}
	}
	return p
}
