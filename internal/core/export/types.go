package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for formats other than excel and pdf
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents the export file format
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ParseFormat accepts pdf, excel and xlsx; empty means excel
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
}

// Exporter renders a table into one file format
type Exporter interface {
	Export(table *Table, writer io.Writer) error
	ContentType() string
	FileExtension() string
}

// Table is a titled grid of text cells
type Table struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time

	Headers []string
	Rows    [][]string
}

const (
	headerColor = "4472C4"
	stripeColor = "F2F2F2"
	fontFamily  = "Arial"
	fontSize    = 9
)
