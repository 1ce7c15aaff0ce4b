// Package cities loads and saves the city list CSV. The input is either the
// bare two-column table copied out of the paper or a previous output of this
// tool, in which case the Wikidata columns are taken as given.
package cities

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

var header = []string{
	"City",
	"Country",
	"WikidataEntityID",
	"WikidataLongitude",
	"WikidataLatitude",
	"AverageTemperature",
}

// City is one row of the list. The pointer fields are nil until resolved;
// they are written out as empty columns, never as zeros.
type City struct {
	City               string
	Country            string
	WikidataEntityID   string
	WikidataLongitude  *float64
	WikidataLatitude   *float64
	AverageTemperature *float64
}

// Load reads the city list from a CSV file. The header must be either
// City,Country or the full six-column header written by Save.
func Load(filePath string) ([]City, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "city list")
	}
	defer f.Close()

	r := csv.NewReader(f)
	head, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "city list header")
	}
	full, err := checkHeader(head)
	if err != nil {
		return nil, err
	}

	var out []City
	for row := 2; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "city list row %d", row)
		}
		c := City{City: rec[0], Country: rec[1]}
		if full {
			c.WikidataEntityID = rec[2]
			if c.WikidataLongitude, err = parseOptFloat(rec[3]); err != nil {
				return nil, errors.Wrapf(err, "city list row %d: longitude", row)
			}
			if c.WikidataLatitude, err = parseOptFloat(rec[4]); err != nil {
				return nil, errors.Wrapf(err, "city list row %d: latitude", row)
			}
			if c.AverageTemperature, err = parseOptFloat(rec[5]); err != nil {
				return nil, errors.Wrapf(err, "city list row %d: temperature", row)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func checkHeader(head []string) (full bool, err error) {
	switch len(head) {
	case 2:
		if head[0] != header[0] || head[1] != header[1] {
			return false, errors.Errorf("unexpected header %v", head)
		}
		return false, nil
	case len(header):
		for i := range header {
			if head[i] != header[i] {
				return false, errors.Errorf("unexpected header %v", head)
			}
		}
		return true, nil
	default:
		return false, errors.Errorf("unexpected header %v", head)
	}
}

func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Save writes the full six-column list to a CSV file, replacing any previous
// contents.
func Save(filePath string, list []City) error {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "output file")
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, c := range list {
		rec := []string{
			c.City,
			c.Country,
			c.WikidataEntityID,
			formatOptFloat(c.WikidataLongitude),
			formatOptFloat(c.WikidataLatitude),
			formatOptFloat(c.AverageTemperature),
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
