package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// headerAliases maps normalized spreadsheet header variants to the canonical
// column names the rest of the import pipeline works with.
var headerAliases = map[string]string{
	"employee_id":         "consultant_id",
	"consultant_code":     "consultant_id",
	"invoice_number":      "invoice_no",
	"invoice":             "invoice_no",
	"period":              "billing_period",
	"month":               "billing_period",
	"fee":                 "professional_fee",
	"professional_fees":   "professional_fee",
	"bonus":               "variable",
	"referral":            "variable",
	"variable_pay":        "variable",
	"tds_deducted":        "tds",
	"reimbursements":      "reimbursement",
	"lop":                 "lop_days",
	"payable_days":        "net_payable_days",
	"email_id":            "email",
	"pan_no":              "pan",
	"gstin_no":            "gstin",
	"beneficiary_name":    "bank_beneficiary",
	"account_number":      "bank_account",
	"bank_account_number": "bank_account",
	"ifsc":                "bank_ifsc",
	"ifsc_code":           "bank_ifsc",
}

// RowReader is the common surface over the CSV and XLSX readers.
type RowReader interface {
	ParseHeader() error
	Headers() []string
	ValidateHeaders(required []string) []string
	ReadAllRows() ([]*Row, error)
}

// Row is one parsed data row keyed by canonical column name.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a canonical column name.
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty returns true if the row has no non-empty values.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// CSVParser reads payroll CSV uploads. Headers are normalized and
// alias-resolved before rows are keyed by them.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	headers    []string
	headerMap  map[string]int
	currentRow int
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)

	// Strip a UTF-8 BOM if present
	head, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	if err := validateUTF8(parser.bufReader); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(parser.bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if len(content) == checkSize {
		// Ignore a rune cut at the window boundary
		for i := 0; i < utf8.UTFMax && len(content) > 0; i++ {
			if utf8.Valid(content) {
				return nil
			}
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// NormalizeHeader lowercases a header token and collapses spaces and
// punctuation into single underscores, then resolves known aliases:
// "Invoice Number" and "invoice_no" name the same column.
func NormalizeHeader(h string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	normalized := strings.TrimRight(b.String(), "_")
	if canonical, ok := headerAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// ParseHeader reads the first line and resolves canonical column names.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := NormalizeHeader(h)
		p.headers[i] = name
		if _, exists := p.headerMap[name]; !exists {
			p.headerMap[name] = i
		}
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1
	return nil
}

// Headers returns the canonical header names in column order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// ValidateHeaders returns the required columns absent from the header.
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerMap[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// ReadRow reads the next data row.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.currentRow++
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	p.currentRow++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining data rows, skipping empty lines.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
