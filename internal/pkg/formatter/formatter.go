package formatter

import (
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
)

const baseTitle = "MedWatch adverse event report"

// Formatter renders a report document in one export format
type Formatter interface {
	Format(doc *Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Factory hands out the formatter of an export format. Formatters are
// stateless, so one instance per format is shared.
type Factory struct {
	byFormat map[entity.ResultFormat]Formatter
}

func NewFactory() *Factory {
	return &Factory{byFormat: map[entity.ResultFormat]Formatter{
		entity.FormatMarkdown: NewMarkdownFormatter(),
		entity.FormatJSON:     NewJSONFormatter(),
		entity.FormatDOCX:     NewDOCXFormatter(),
		entity.FormatPDF:      NewPDFFormatter(),
	}}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	if fm, ok := f.byFormat[format]; ok {
		return fm, nil
	}
	return nil, fmt.Errorf("unsupported format %q: %w", format, entity.ErrInvalidParameter)
}
