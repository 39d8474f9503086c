package formatter

import (
	"bytes"
	"fmt"
	"time"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", doc.Title)
	fmt.Fprintf(&buf, "- Session: `%s`\n- Status: %s\n- Generated: %s\n", doc.SessionID, doc.Status, doc.GeneratedAt.Format(time.RFC3339))

	for _, section := range doc.Sections {
		fmt.Fprintf(&buf, "\n## %s. %s\n\n", section.ID, section.Title)
		for _, item := range section.Answers {
			fmt.Fprintf(&buf, "**%d. %s**\n\n%s\n\n", item.Index+1, item.Question, item.Answer)
		}
	}

	if lines := reviewLines(doc.Review); lines != nil {
		buf.WriteString("\n## Pre-submission review\n\n")
		for _, line := range lines {
			fmt.Fprintf(&buf, "- **%s:** %s\n", line[0], line[1])
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
