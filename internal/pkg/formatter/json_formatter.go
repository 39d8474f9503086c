package formatter

import (
	"encoding/json"
	"fmt"
)

const (
	jsonContentType   = "application/json"
	jsonFileExtension = ".json"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (jf *JSONFormatter) Format(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

func (jf *JSONFormatter) ContentType() string {
	return jsonContentType
}

func (jf *JSONFormatter) FileExtension() string {
	return jsonFileExtension
}
