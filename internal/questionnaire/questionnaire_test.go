package questionnaire

import (
	"testing"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Layout(t *testing.T) {
	q := Default()

	assert.Equal(t, 56, q.Count())
	assert.Equal(t, 7, q.ProductTypeIndex())

	tests := []struct {
		section entity.Section
		bounds  Bounds
	}{
		{entity.SectionProblem, Bounds{First: 0, Last: 4}},
		{entity.SectionAvailability, Bounds{First: 5, Last: 6}},
		{entity.SectionProduct, Bounds{First: 7, Last: 25}},
		{entity.SectionDevice, Bounds{First: 26, Last: 35}},
		{entity.SectionPerson, Bounds{First: 36, Last: 48}},
		{entity.SectionReporter, Bounds{First: 49, Last: 55}},
	}
	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			assert.Equal(t, tt.bounds, q.Section(tt.section))
		})
	}

	assert.Equal(t, Bounds{First: 8, Last: 25}, q.ProductDetailRange())
	assert.Equal(t, Bounds{First: 26, Last: 35}, q.DeviceRange())
}

func TestDefault_QuestionTexts(t *testing.T) {
	q := Default()

	assert.Contains(t, q.Text(0), "What kind of problem did you experience?")
	assert.Contains(t, q.Text(7), "What type of product is this?")
	assert.Equal(t, "Name of the medical device?", q.Text(26))
	assert.Equal(t, "Person’s initials?", q.Text(36))
	assert.Equal(t, "Do you want to stay anonymous from the manufacturer? (Yes/No)", q.Text(55))
	assert.Empty(t, q.Text(56))
	assert.Empty(t, q.Text(-1))

	for i, question := range q.Questions() {
		assert.Equal(t, i, question.Index)
		assert.NotEmpty(t, question.Text)
	}
}

func TestQuestions_ReturnsCopy(t *testing.T) {
	q := Default()

	questions := q.Questions()
	questions[0].Text = "changed"

	assert.NotEqual(t, "changed", q.Text(0))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "invalid json", data: "{"},
		{name: "missing sections", data: `{"completion_message":"done","sections":[]}`},
		{
			name: "wrong order",
			data: `{"product_type_question":2,"completion_message":"done","sections":[
				{"id":"B","questions":["b"]},{"id":"A","questions":["a"]},{"id":"C","questions":["c1","c2"]},
				{"id":"D","questions":["d"]},{"id":"E","questions":["e"]},{"id":"F","questions":["f"]}]}`,
		},
		{
			name: "empty section",
			data: `{"product_type_question":2,"completion_message":"done","sections":[
				{"id":"A","questions":["a"]},{"id":"B","questions":[]},{"id":"C","questions":["c1","c2"]},
				{"id":"D","questions":["d"]},{"id":"E","questions":["e"]},{"id":"F","questions":["f"]}]}`,
		},
		{
			name: "product type question outside C",
			data: `{"product_type_question":0,"completion_message":"done","sections":[
				{"id":"A","questions":["a"]},{"id":"B","questions":["b"]},{"id":"C","questions":["c1","c2"]},
				{"id":"D","questions":["d"]},{"id":"E","questions":["e"]},{"id":"F","questions":["f"]}]}`,
		},
		{
			name: "missing completion message",
			data: `{"product_type_question":2,"sections":[
				{"id":"A","questions":["a"]},{"id":"B","questions":["b"]},{"id":"C","questions":["c1","c2"]},
				{"id":"D","questions":["d"]},{"id":"E","questions":["e"]},{"id":"F","questions":["f"]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse([]byte(tt.data))
			assert.Error(t, err)
			assert.Nil(t, q)
		})
	}
}

func TestParse_Minimal(t *testing.T) {
	data := `{"product_type_question":2,"completion_message":"done","sections":[
		{"id":"A","title":"problem","questions":["a"]},{"id":"B","questions":["b"]},{"id":"C","questions":["type","c2","c3"]},
		{"id":"D","questions":["d1","d2"]},{"id":"E","questions":["e"]},{"id":"F","questions":["f"]}]}`

	q, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 9, q.Count())
	assert.Equal(t, Bounds{First: 3, Last: 4}, q.ProductDetailRange())
	assert.Equal(t, Bounds{First: 5, Last: 6}, q.DeviceRange())
	assert.Equal(t, "problem", q.SectionTitle(entity.SectionProblem))
	assert.Equal(t, "done", q.CompletionMessage())
}
