package export

import (
	"bytes"
	"fmt"
)

// Service picks the exporter for a format and renders into memory
type Service struct {
	exporters map[Format]Exporter
}

func NewService() *Service {
	return &Service{
		exporters: map[Format]Exporter{
			FormatPDF:   NewPDFExporter(),
			FormatExcel: NewExcelExporter(),
		},
	}
}

// File is a rendered export
type File struct {
	Content     []byte
	ContentType string
	Extension   string
}

func (s *Service) Export(table *Table, format Format) (*File, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var buf bytes.Buffer
	if err := exporter.Export(table, &buf); err != nil {
		return nil, fmt.Errorf("%s export failed: %w", format, err)
	}

	return &File{
		Content:     buf.Bytes(),
		ContentType: exporter.ContentType(),
		Extension:   exporter.FileExtension(),
	}, nil
}
