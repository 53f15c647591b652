// Package export renders timetable sheets into downloadable files.
package export

import "fmt"

// Sheet is a titled table of string cells.
type Sheet struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (s Sheet) validate(format string) error {
	if len(s.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	for i, row := range s.Rows {
		if len(row) != len(s.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", format, i+1, len(row), len(s.Headers))
		}
	}
	return nil
}

// Renderer encodes a Sheet in one file format.
type Renderer interface {
	Render(sheet Sheet) ([]byte, error)
	ContentType() string
	Extension() string
}
