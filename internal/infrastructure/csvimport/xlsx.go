package csvimport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser adapts the first sheet of a workbook into the same row stream
// the CSV parser produces: first row is the header, the rest are data.
type XLSXParser struct {
	records   [][]string
	headers   []string
	headerMap map[string]int
	cursor    int
}

// NewXLSXParser reads a workbook and positions at its first sheet.
func NewXLSXParser(r io.Reader) (*XLSXParser, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return &XLSXParser{
		records:   records,
		headerMap: make(map[string]int),
	}, nil
}

// ParseHeader resolves canonical column names from the sheet's first row.
func (p *XLSXParser) ParseHeader() error {
	header := p.records[0]
	if len(header) == 0 {
		return ErrMissingHeader
	}
	p.headers = make([]string, len(header))
	for i, h := range header {
		name := NormalizeHeader(h)
		p.headers[i] = name
		if _, exists := p.headerMap[name]; !exists {
			p.headerMap[name] = i
		}
	}
	p.cursor = 1
	return nil
}

// Headers returns the canonical header names in column order.
func (p *XLSXParser) Headers() []string {
	return p.headers
}

// ValidateHeaders returns the required columns absent from the header.
func (p *XLSXParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerMap[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// ReadAllRows returns the remaining data rows, skipping empty lines.
func (p *XLSXParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for ; p.cursor < len(p.records); p.cursor++ {
		record := p.records[p.cursor]
		row := &Row{
			LineNumber: p.cursor + 1,
			Data:       make(map[string]string, len(p.headers)),
		}
		for i, header := range p.headers {
			if i < len(record) {
				row.Data[header] = strings.TrimSpace(record[i])
			} else {
				row.Data[header] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ForFilename picks the reader matching the upload's file extension.
func ForFilename(name string, r io.Reader) (RowReader, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return NewCSVParser(r)
	case ".xlsx":
		return NewXLSXParser(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}
