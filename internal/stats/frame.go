package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DateLayout is the on-disk date format of exported tables.
const DateLayout = "2006-01-02"

// Frame column names.
const (
	ColCity  = "city"
	ColDate  = "date"
	ColPM25  = "pm25"
	ColNO2   = "no2"
	ColSO2   = "so2"
	ColMonth = "month"
)

var frameTypes = map[string]series.Type{
	ColCity:  series.String,
	ColDate:  series.String,
	ColPM25:  series.Float,
	ColNO2:   series.Float,
	ColSO2:   series.Float,
	ColMonth: series.Int,
}

// Frame builds a tabular view of the records with one column per field plus
// the derived month.
func Frame(records []domain.Measurement) dataframe.DataFrame {
	n := len(records)
	cities := make([]string, n)
	dates := make([]string, n)
	months := make([]int, n)
	for i, r := range records {
		cities[i] = string(r.City)
		dates[i] = r.Date.Format(DateLayout)
		months[i] = r.Month()
	}
	return dataframe.New(
		series.New(cities, series.String, ColCity),
		series.New(dates, series.String, ColDate),
		series.New(Values(records, domain.PM25), series.Float, ColPM25),
		series.New(Values(records, domain.NO2), series.Float, ColNO2),
		series.New(Values(records, domain.SO2), series.Float, ColSO2),
		series.New(months, series.Int, ColMonth),
	)
}

// Overview is the shape and descriptive summary of a table.
type Overview struct {
	Rows     int
	Cols     int
	Columns  []string
	Types    []series.Type
	Head     dataframe.DataFrame
	Describe dataframe.DataFrame
}

// Describe summarises the records: dimensions, column types, the first
// headRows rows and per-column descriptive statistics.
func Describe(records []domain.Measurement, headRows int) (Overview, error) {
	if len(records) == 0 {
		return Overview{}, fmt.Errorf("describe: %w", ErrEmptyInput)
	}
	df := Frame(records)
	if df.Err != nil {
		return Overview{}, fmt.Errorf("build frame: %w", df.Err)
	}

	rows, cols := df.Dims()
	head := make([]int, min(headRows, rows))
	for i := range head {
		head[i] = i
	}

	return Overview{
		Rows:     rows,
		Cols:     cols,
		Columns:  df.Names(),
		Types:    df.Types(),
		Head:     df.Subset(head),
		Describe: df.Describe(),
	}, nil
}

// WriteCSV writes the records as a CSV table with a header row.
func WriteCSV(w io.Writer, records []domain.Measurement) error {
	df := Frame(records)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV parses a table written by WriteCSV back into records.
func ReadCSV(r io.Reader) ([]domain.Measurement, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(frameTypes))
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	return FromFrame(df)
}

// FromFrame converts a table with city, date, pm25, no2 and so2 columns back
// into records.
func FromFrame(df dataframe.DataFrame) ([]domain.Measurement, error) {
	for _, col := range []string{ColCity, ColDate, ColPM25, ColNO2, ColSO2} {
		if df.Col(col).Err != nil {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	cities := df.Col(ColCity).Records()
	dates := df.Col(ColDate).Records()
	pm25 := df.Col(ColPM25).Float()
	no2 := df.Col(ColNO2).Float()
	so2 := df.Col(ColSO2).Float()

	out := make([]domain.Measurement, len(cities))
	for i := range out {
		d, err := time.Parse(DateLayout, dates[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+1, dates[i], err)
		}
		out[i] = domain.Measurement{
			City: domain.City(cities[i]),
			Date: d,
			PM25: pm25[i],
			NO2:  no2[i],
			SO2:  so2[i],
		}
	}
	return out, nil
}
