package formatter

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(doc *Document) ([]byte, error) {
	out := document.New()
	defer out.Close()

	heading := func(style, text string) {
		par := out.AddParagraph()
		par.SetStyle(style)
		par.AddRun().AddText(text)
	}

	heading("Title", doc.Title)
	out.AddParagraph().AddRun().AddText(fmt.Sprintf("Session %s, status %s", doc.SessionID, doc.Status))

	for _, section := range doc.Sections {
		heading("Heading1", fmt.Sprintf("%s. %s", section.ID, section.Title))

		for _, item := range section.Answers {
			question := out.AddParagraph().AddRun()
			question.Properties().SetBold(true)
			question.AddText(fmt.Sprintf("%d. %s", item.Index+1, item.Question))

			out.AddParagraph().AddRun().AddText(item.Answer)
		}
	}

	if lines := reviewLines(doc.Review); lines != nil {
		heading("Heading1", "Pre-submission review")
		for _, line := range lines {
			par := out.AddParagraph()
			label := par.AddRun()
			label.Properties().SetBold(true)
			label.AddText(line[0] + ": ")
			par.AddRun().AddText(line[1])
		}
	}

	var buf bytes.Buffer
	if err := out.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
