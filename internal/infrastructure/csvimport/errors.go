package csvimport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyFile is returned when the uploaded file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// MissingColumnsError reports every required header column absent from the
// upload in a single error.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// InvalidRowsError reports every data row missing a required field, by line
// number, in a single error.
type InvalidRowsError struct {
	Lines []int
}

func (e *InvalidRowsError) Error() string {
	lines := make([]string, len(e.Lines))
	for i, n := range e.Lines {
		lines[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("rows missing required fields at lines: %s", strings.Join(lines, ", "))
}
