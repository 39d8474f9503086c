package questionnaire

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
)

//go:embed questionnaire.json
var defaultQuestionnaire []byte

// sectionOrder is the order sections must appear in the questionnaire file
var sectionOrder = []entity.Section{
	entity.SectionProblem,
	entity.SectionAvailability,
	entity.SectionProduct,
	entity.SectionDevice,
	entity.SectionPerson,
	entity.SectionReporter,
}

// Bounds is an inclusive range of question indices
type Bounds struct {
	First int
	Last  int
}

// Contains reports whether index lies inside the bounds
func (b Bounds) Contains(index int) bool {
	return index >= b.First && index <= b.Last
}

// file mirrors questionnaire.json
type file struct {
	ProductTypeQuestion int    `json:"product_type_question"`
	CompletionMessage   string `json:"completion_message"`
	Sections            []struct {
		ID        entity.Section `json:"id"`
		Title     string         `json:"title"`
		Questions []string       `json:"questions"`
	} `json:"sections"`
}

// Questionnaire is the ordered, immutable MedWatch question table
type Questionnaire struct {
	questions         []entity.Question
	sections          map[entity.Section]Bounds
	titles            map[entity.Section]string
	productTypeIndex  int
	completionMessage string
}

// Default returns the questionnaire bundled with the binary
func Default() *Questionnaire {
	q, err := Parse(defaultQuestionnaire)
	if err != nil {
		panic(fmt.Sprintf("embedded questionnaire is invalid: %v", err))
	}
	return q
}

// Parse builds a Questionnaire from its JSON representation and checks
// the section layout the skip rules depend on.
func Parse(data []byte) (*Questionnaire, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("questionnaire is empty")
	}

	var raw file
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse questionnaire JSON: %w", err)
	}

	if len(raw.Sections) != len(sectionOrder) {
		return nil, fmt.Errorf("questionnaire must have %d sections, got %d", len(sectionOrder), len(raw.Sections))
	}

	if raw.CompletionMessage == "" {
		return nil, fmt.Errorf("questionnaire completion message is empty")
	}

	q := &Questionnaire{
		sections:          make(map[entity.Section]Bounds, len(sectionOrder)),
		titles:            make(map[entity.Section]string, len(sectionOrder)),
		productTypeIndex:  raw.ProductTypeQuestion,
		completionMessage: raw.CompletionMessage,
	}

	for i, section := range raw.Sections {
		if section.ID != sectionOrder[i] {
			return nil, fmt.Errorf("section %d must be %q, got %q", i, sectionOrder[i], section.ID)
		}
		if len(section.Questions) == 0 {
			return nil, fmt.Errorf("section %q has no questions", section.ID)
		}

		first := len(q.questions)
		for _, text := range section.Questions {
			if text == "" {
				return nil, fmt.Errorf("section %q contains an empty question", section.ID)
			}
			q.questions = append(q.questions, entity.Question{
				Index:   len(q.questions),
				Section: section.ID,
				Text:    text,
			})
		}

		q.sections[section.ID] = Bounds{First: first, Last: len(q.questions) - 1}
		q.titles[section.ID] = section.Title
	}

	// The product type question decides the branch, so it must be asked
	// before either skippable range starts.
	product := q.sections[entity.SectionProduct]
	if !product.Contains(q.productTypeIndex) || q.productTypeIndex == product.Last {
		return nil, fmt.Errorf("product type question %d must be inside section C before its last question", q.productTypeIndex)
	}

	return q, nil
}

// Count returns the number of questions
func (q *Questionnaire) Count() int {
	return len(q.questions)
}

// Question returns the question at index
func (q *Questionnaire) Question(index int) (entity.Question, bool) {
	if index < 0 || index >= len(q.questions) {
		return entity.Question{}, false
	}
	return q.questions[index], true
}

// Text returns the question text at index or an empty string
func (q *Questionnaire) Text(index int) string {
	question, _ := q.Question(index)
	return question.Text
}

// Questions returns a copy of all questions in order
func (q *Questionnaire) Questions() []entity.Question {
	out := make([]entity.Question, len(q.questions))
	copy(out, q.questions)
	return out
}

func (q *Questionnaire) Section(section entity.Section) Bounds {
	return q.sections[section]
}

func (q *Questionnaire) SectionTitle(section entity.Section) string {
	return q.titles[section]
}

// ProductTypeIndex is the question whose answer drives the C/D branch
func (q *Questionnaire) ProductTypeIndex() int {
	return q.productTypeIndex
}

// ProductDetailRange is the part of section C skipped for medical devices
func (q *Questionnaire) ProductDetailRange() Bounds {
	return Bounds{First: q.productTypeIndex + 1, Last: q.sections[entity.SectionProduct].Last}
}

// DeviceRange is section D, skipped for everything but medical devices
func (q *Questionnaire) DeviceRange() Bounds {
	return q.sections[entity.SectionDevice]
}

func (q *Questionnaire) CompletionMessage() string {
	return q.completionMessage
}
